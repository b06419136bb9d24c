package export

import "fmt"

// Column describes one exported field: Key indexes the row map, Title is the header text.
type Column struct {
	Key   string
	Title string
	// Width is the relative PDF column width. Zero means 1.
	Width float64
}

// Dataset defines tabular export content.
type Dataset struct {
	Columns []Column
	Rows    []map[string]string
}

// Headers returns the column titles in order.
func (d Dataset) Headers() []string {
	headers := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		headers[i] = col.Title
		if headers[i] == "" {
			headers[i] = col.Key
		}
	}
	return headers
}

func (d Dataset) validate(format string) error {
	if len(d.Columns) == 0 {
		return fmt.Errorf("%s requires at least one column", format)
	}
	return nil
}
