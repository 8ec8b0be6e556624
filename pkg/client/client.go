// Package client is a Go wrapper over the marketplace REST API, one method
// per dashboard call. Responses are unwrapped from the {success, message,
// content, meta} envelope; failures come back as *APIError.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"marketplace-backend/internal/domain"

	"github.com/goccy/go-json"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	retries    int
	backoff    time.Duration
}

type Option func(*Client)

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry retries idempotent GETs on transport errors, 429 and 5xx.
func WithRetry(retries int, backoff time.Duration) Option {
	return func(c *Client) {
		c.retries = retries
		c.backoff = backoff
	}
}

// New builds a client with no request timeout of its own; deadlines come from
// the caller's context or from WithHTTPClient.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
		backoff:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a failed call: a non-2xx status or success=false.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error (status %d)", e.Status)
	}
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Content json.RawMessage   `json:"content"`
	Meta    json.RawMessage   `json:"meta"`
	Fields  map[string]string `json:"fields"`
}

type versionKey struct{}

// IfMatch attaches a known entity version; the next call sends it as If-Match.
func IfMatch(ctx context.Context, version int64) context.Context {
	return context.WithValue(ctx, versionKey{}, version)
}

// request is one API call. body is either JSON-encodable or, with
// contentType set, a raw reader.
type request struct {
	method      string
	path        string
	query       url.Values
	body        interface{}
	contentType string
}

// do sends req and decodes the envelope. content and meta receive the
// matching envelope members when non-nil.
func (c *Client) do(ctx context.Context, req request, content, meta interface{}) (*envelope, error) {
	var payload []byte
	if req.body != nil && req.contentType == "" {
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		payload = b
	}

	attempts := 1
	if req.method == http.MethodGet {
		attempts += c.retries
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(i) * c.backoff):
			}
		}

		env, retry, err := c.send(ctx, req, payload)
		if err == nil {
			return env, decodeInto(env, content, meta)
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) send(ctx context.Context, req request, payload []byte) (*envelope, bool, error) {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	switch {
	case req.contentType != "":
		body = req.body.(io.Reader)
	case payload != nil:
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return nil, false, err
	}
	httpReq.Header.Set("Accept", "application/json")
	switch {
	case req.contentType != "":
		httpReq.Header.Set("Content-Type", req.contentType)
	case payload != nil:
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}
	if v, ok := ctx.Value(versionKey{}).(int64); ok {
		httpReq.Header.Set("If-Match", `"`+strconv.FormatInt(v, 10)+`"`)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, true, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		return nil, retryable(resp.StatusCode), apiErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		return nil, retryable(resp.StatusCode), &APIError{Status: resp.StatusCode, Message: env.Message, Fields: env.Fields}
	}
	return &env, false, nil
}

// retryable: 4xx other than 429 is a permanent error in the request.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func decodeInto(env *envelope, content, meta interface{}) error {
	if content != nil && len(env.Content) > 0 {
		if err := json.Unmarshal(env.Content, content); err != nil {
			return fmt.Errorf("decode content: %w", err)
		}
	}
	if meta != nil && len(env.Meta) > 0 {
		if err := json.Unmarshal(env.Meta, meta); err != nil {
			return fmt.Errorf("decode meta: %w", err)
		}
	}
	return nil
}

// ActionResult is the outcome of a status action: the server's toast
// message and the committed transition.
type ActionResult struct {
	Message    string
	Transition domain.Transition
}

func (c *Client) action(ctx context.Context, path string, body interface{}) (*ActionResult, error) {
	var tr domain.Transition
	env, err := c.do(ctx, request{method: http.MethodPost, path: path, body: body}, &tr, nil)
	if err != nil {
		return nil, err
	}
	return &ActionResult{Message: env.Message, Transition: tr}, nil
}

func pageQuery(page int, extra map[string]string) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	for k, v := range extra {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

func escape(id string) string { return url.PathEscape(id) }
