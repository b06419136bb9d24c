package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	appErrors "github.com/fomo-campus/fomo-portal/pkg/errors"
)

const uploadResource = "upload"

// File is one part of a media upload.
type File struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// UploadedFile is an entry of the CMS upload answer.
type UploadedFile struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	URL  string  `json:"url"`
	Mime string  `json:"mime"`
	Size float64 `json:"size"`
}

// Upload sends files as multipart form data under the "files" field. The CMS
// answers with a bare array of stored files rather than an envelope.
func (c *Client) Upload(ctx context.Context, src TokenSource, files ...File) ([]UploadedFile, error) {
	if len(files) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no files to upload")
	}

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for _, f := range files {
		if f.Content == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "upload file has no content")
		}
		part, err := writer.CreatePart(filePartHeader(f))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build upload")
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read upload file")
		}
	}
	if err := writer.Close(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build upload")
	}

	body, err := c.send(ctx, src, request{
		method:      http.MethodPost,
		path:        "/api/" + uploadResource,
		resource:    uploadResource,
		body:        buf,
		contentType: writer.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}

	var stored []UploadedFile
	if err := json.Unmarshal(body, &stored); err != nil {
		return nil, c.malformed(ctx, http.MethodPost, uploadResource, err)
	}
	if len(stored) == 0 {
		return nil, c.malformed(ctx, http.MethodPost, uploadResource, fmt.Errorf("empty upload response"))
	}
	return stored, nil
}

func filePartHeader(f File) textproto.MIMEHeader {
	name := f.Name
	if name == "" {
		name = "upload"
	}
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, quoteEscaper.Replace(name)))
	h.Set("Content-Type", contentType)
	return h
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")
