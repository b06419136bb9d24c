package cms

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/fomo-campus/fomo-portal/pkg/errors"
)

func TestUploadSendsMultipartFiles(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/upload", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		headers := r.MultipartForm.File["files"]
		require.Len(t, headers, 1)
		assert.Equal(t, "avatar.png", headers[0].Filename)
		assert.Equal(t, "image/png", headers[0].Header.Get("Content-Type"))
		f, err := headers[0].Open()
		require.NoError(t, err)
		content, _ := io.ReadAll(f)
		assert.Equal(t, "png-bytes", string(content))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":41,"name":"avatar.png","url":"/uploads/avatar_1.png","mime":"image/png","size":1.2}]`))
	})

	stored, err := client.Upload(context.Background(), StaticToken("tok"), File{Name: "avatar.png", ContentType: "image/png", Content: strings.NewReader("png-bytes")})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, int64(41), stored[0].ID)
	assert.Equal(t, "/uploads/avatar_1.png", stored[0].URL)
}

func TestUploadRejectsUnexpectedAnswers(t *testing.T) {
	bodies := []string{`[]`, `{"data":{"id":1}}`}
	for _, body := range bodies {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		_, err := client.Upload(context.Background(), StaticToken("tok"), File{Name: "a.txt", Content: strings.NewReader("a")})
		require.Error(t, err, body)
		assert.True(t, errors.Is(err, appErrors.ErrUpstream), body)
	}
}

func TestUploadRequiresFiles(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("unexpected request")
	})
	_, err := client.Upload(context.Background(), StaticToken("tok"))
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
