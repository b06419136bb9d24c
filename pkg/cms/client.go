package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/fomo-campus/fomo-portal/pkg/errors"
	"github.com/fomo-campus/fomo-portal/pkg/middleware/requestid"
)

const maxResponseBytes = 8 << 20

// Observer receives one observation per CMS round trip.
type Observer interface {
	ObserveCMSRequest(method, resource, outcome string, duration time.Duration)
}

// Options configures a Client.
type Options struct {
	BaseURL      string
	MediaBaseURL string
	Timeout      time.Duration
	HTTPClient   *http.Client
	Logger       *zap.Logger
	Observer     Observer
}

// Client talks to the Strapi-style CMS REST API.
type Client struct {
	baseURL   string
	mediaBase string
	http      *http.Client
	logger    *zap.Logger
	observer  Observer
}

// Meta is the metadata block of collection responses.
type Meta struct {
	Pagination Pagination `json:"pagination"`
}

// Pagination mirrors the CMS pagination metadata.
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

// StatusError is the CMS's own description of a non-2xx answer.
type StatusError struct {
	StatusCode int
	Name       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("cms status %d", e.StatusCode)
	}
	if e.Name == "" {
		return fmt.Sprintf("cms status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("cms status %d: %s: %s", e.StatusCode, e.Name, e.Message)
}

type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta *Meta           `json:"meta,omitempty"`
}

type writeEnvelope struct {
	Data interface{} `json:"data"`
}

type errorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
}

type request struct {
	method      string
	path        string
	resource    string
	query       Query
	body        io.Reader
	contentType string
}

var errNoData = errors.New("cms response carried no data")

// New constructs a Client. BaseURL must be an absolute http(s) URL.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	parsed, err := url.Parse(base)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("invalid cms base url %q", opts.BaseURL)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	mediaBase := strings.TrimRight(opts.MediaBaseURL, "/")
	if mediaBase == "" {
		mediaBase = base
	}
	return &Client{baseURL: base, mediaBase: mediaBase, http: httpClient, logger: logger, observer: opts.Observer}, nil
}

// BaseURL returns the CMS origin the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// AssetURL resolves a media reference against the configured media base.
func (c *Client) AssetURL(ref string) string {
	return ResolveAssetURL(c.mediaBase, ref)
}

// Get reads a collection or single-type resource and decodes the "data"
// member of the envelope into dest. A null data member yields ErrNotFound.
func (c *Client) Get(ctx context.Context, src TokenSource, resource string, q Query, dest interface{}) (*Meta, error) {
	env, err := c.doEnvelope(ctx, src, request{method: http.MethodGet, path: "/api/" + resource, resource: resource, query: q})
	if err != nil {
		return nil, err
	}
	if err := decodeData(env.Data, dest); err != nil {
		if errors.Is(err, errNoData) {
			return env.Meta, appErrors.Clone(appErrors.ErrNotFound, resource+" not found")
		}
		return nil, c.malformed(ctx, http.MethodGet, resource, err)
	}
	return env.Meta, nil
}

// Create POSTs payload wrapped as {"data": payload} and decodes the created record.
func (c *Client) Create(ctx context.Context, src TokenSource, resource string, payload, dest interface{}) error {
	return c.write(ctx, src, http.MethodPost, resource, "/api/"+resource, payload, dest)
}

// Update PUTs payload wrapped as {"data": payload} to resource/documentID.
func (c *Client) Update(ctx context.Context, src TokenSource, resource, documentID string, payload, dest interface{}) error {
	if strings.TrimSpace(documentID) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "document id is required")
	}
	return c.write(ctx, src, http.MethodPut, resource, "/api/"+resource+"/"+url.PathEscape(documentID), payload, dest)
}

// Delete removes resource/documentID.
func (c *Client) Delete(ctx context.Context, src TokenSource, resource, documentID string) error {
	if strings.TrimSpace(documentID) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "document id is required")
	}
	_, err := c.send(ctx, src, request{method: http.MethodDelete, path: "/api/" + resource + "/" + url.PathEscape(documentID), resource: resource})
	return err
}

// Fetch is the generic GET helper: <base>/api/<endpoint>, decoded into dest
// without envelope unwrapping. endpoint may carry its own query string.
func (c *Client) Fetch(ctx context.Context, src TokenSource, endpoint string, dest interface{}) error {
	endpoint = strings.TrimLeft(endpoint, "/")
	resource := endpoint
	if i := strings.IndexByte(resource, '?'); i >= 0 {
		resource = resource[:i]
	}
	body, err := c.send(ctx, src, request{method: http.MethodGet, path: "/api/" + endpoint, resource: resource})
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return c.malformed(ctx, http.MethodGet, resource, err)
	}
	return nil
}

func (c *Client) write(ctx context.Context, src TokenSource, method, resource, path string, payload, dest interface{}) error {
	raw, err := json.Marshal(writeEnvelope{Data: payload})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to encode payload")
	}
	env, err := c.doEnvelope(ctx, src, request{
		method:      method,
		path:        path,
		resource:    resource,
		body:        bytes.NewReader(raw),
		contentType: "application/json",
	})
	if err != nil {
		return err
	}
	if err := decodeData(env.Data, dest); err != nil {
		return c.malformed(ctx, method, resource, err)
	}
	return nil
}

func (c *Client) doEnvelope(ctx context.Context, src TokenSource, req request) (*envelope, error) {
	body, err := c.send(ctx, src, req)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, c.malformed(ctx, req.method, req.resource, err)
	}
	return &env, nil
}

// send performs the round trip and returns the body of a 2xx answer.
func (c *Client) send(ctx context.Context, src TokenSource, req request) ([]byte, error) {
	token, ok := tokenFrom(src)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication token missing")
	}

	target := c.baseURL + req.path
	if encoded := req.query.Encode(); encoded != "" {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + encoded
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, req.body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build cms request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	reqID := requestid.FromContext(ctx)
	if reqID != "" {
		httpReq.Header.Set(requestid.HeaderKey, reqID)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		c.observe(req.method, req.resource, "unavailable", duration)
		c.logger.Warn("cms request failed",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.String("request_id", reqID),
			zap.Error(err),
		)
		message := "content backend unreachable"
		if ctx.Err() != nil {
			message = "content backend request cancelled"
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, message)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.observe(req.method, req.resource, "unavailable", duration)
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, "failed to read cms response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		appErr := statusError(resp.StatusCode, body)
		c.observe(req.method, req.resource, strings.ToLower(appErr.Code), duration)
		c.logger.Warn("cms request rejected",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Int("status", resp.StatusCode),
			zap.String("request_id", reqID),
			zap.Error(appErr.Err),
		)
		return nil, appErr
	}

	c.observe(req.method, req.resource, "ok", duration)
	return body, nil
}

func (c *Client) malformed(ctx context.Context, method, resource string, err error) error {
	c.logger.Warn("cms response malformed",
		zap.String("method", method),
		zap.String("resource", resource),
		zap.String("request_id", requestid.FromContext(ctx)),
		zap.Error(err),
	)
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "content backend returned an unexpected payload")
}

func (c *Client) observe(method, resource, outcome string, d time.Duration) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveCMSRequest(method, resourceLabel(resource), outcome, d)
}

// resourceLabel keeps metric cardinality bounded to the collection name.
func resourceLabel(resource string) string {
	if i := strings.IndexAny(resource, "/?"); i >= 0 {
		return resource[:i]
	}
	return resource
}

func decodeData(raw json.RawMessage, dest interface{}) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return errNoData
	}
	if dest == nil {
		return nil
	}
	return json.Unmarshal(trimmed, dest)
}

func statusError(status int, body []byte) *appErrors.Error {
	detail := &StatusError{StatusCode: status}
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		detail.Name = parsed.Error.Name
		detail.Message = parsed.Error.Message
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 512 {
		detail.Message = text
	}

	base := appErrors.ErrUpstream
	switch {
	case status == http.StatusUnauthorized:
		base = appErrors.ErrUnauthorized
	case status == http.StatusForbidden:
		base = appErrors.ErrForbidden
	case status == http.StatusNotFound:
		base = appErrors.ErrNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		base = appErrors.ErrValidation
	}

	message := base.Message
	if base == appErrors.ErrValidation && detail.Message != "" {
		message = detail.Message
	}
	return appErrors.Wrap(detail, base.Code, base.Status, message)
}
