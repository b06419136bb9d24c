package cms

import (
	"net/url"
	"strconv"
	"strings"
)

// Filter is a single Strapi filter clause such as filters[user][id][$eq]=7.
type Filter struct {
	Path     []string
	Operator string
	Value    string
}

// Eq builds an equality filter on the given field path.
func Eq(value string, path ...string) Filter {
	return Filter{Path: path, Operator: "$eq", Value: value}
}

// Query describes the query string of a collection request.
type Query struct {
	Filters  []Filter
	Populate string
	Sort     []string
	Page     int
	PageSize int
}

// WithPage returns a copy of q pointing at the given page.
func (q Query) WithPage(page, size int) Query {
	q.Page = page
	q.PageSize = size
	return q
}

// Encode renders the query. Bracketed keys are kept literal, values are
// percent-encoded the way encodeURIComponent does it.
func (q Query) Encode() string {
	parts := make([]string, 0, len(q.Filters)+4)
	for _, f := range q.Filters {
		if len(f.Path) == 0 {
			continue
		}
		op := f.Operator
		if op == "" {
			op = "$eq"
		}
		var key strings.Builder
		key.WriteString("filters")
		for _, segment := range f.Path {
			key.WriteString("[")
			key.WriteString(segment)
			key.WriteString("]")
		}
		key.WriteString("[")
		key.WriteString(op)
		key.WriteString("]")
		parts = append(parts, key.String()+"="+escape(f.Value))
	}
	if q.Populate != "" {
		parts = append(parts, "populate="+escape(q.Populate))
	}
	for i, field := range q.Sort {
		parts = append(parts, "sort["+strconv.Itoa(i)+"]="+escape(field))
	}
	if q.Page > 0 {
		parts = append(parts, "pagination[page]="+strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		parts = append(parts, "pagination[pageSize]="+strconv.Itoa(q.PageSize))
	}
	return strings.Join(parts, "&")
}

func escape(value string) string {
	if value == "*" {
		return value
	}
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}
