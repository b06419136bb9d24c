package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/fomo-campus/fomo-portal/internal/middleware"
	"github.com/fomo-campus/fomo-portal/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type savedSessions struct {
	saves int
	last  *models.Session
}

func (s *savedSessions) Save(ctx context.Context, session *models.Session) error {
	s.saves++
	s.last = session
	return nil
}

func authedSession() *models.Session {
	return &models.Session{ID: "sess-1", Token: "tok", User: &models.User{ID: 7, Username: "gec"}}
}

// newEngine attaches session to every request the way the session middleware would.
func newEngine(session *models.Session) *gin.Engine {
	r := gin.New()
	r.Use(middleware.WithResponseMeta())
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextSessionKey, session)
		c.Next()
	})
	return r
}

func perform(r http.Handler, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func performJSON(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	return perform(r, method, target, reader, "application/json")
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

type pageView[T any] struct {
	Status   string `json:"status"`
	Data     *T     `json:"data"`
	Redirect string `json:"redirect"`
}

func decodeView[T any](t *testing.T, w *httptest.ResponseRecorder) pageView[T] {
	t.Helper()
	env := decodeEnvelope(t, w)
	var view pageView[T]
	require.NoError(t, json.Unmarshal(env.Data, &view), string(env.Data))
	return view
}

func multipartBody(t *testing.T, field, filename, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}
