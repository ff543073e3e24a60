package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	vferrors "github.com/videofonik/vfconsole/pkg/errors"
	"github.com/videofonik/vfconsole/pkg/httputil"
	"github.com/videofonik/vfconsole/pkg/observability"
)

// DefaultBaseURL is the production backend.
const DefaultBaseURL = "https://api.videofonik.com"

const (
	defaultTimeout = 60 * time.Second
	apiPrefix      = "/api/v1"
	userAgent      = "vfconsole"
)

// Client is the backend API client. It is safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	creds   Credentials
	headers map[string]string
	backoff httputil.Backoff
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithCredentials sets the token source for authenticated requests.
func WithCredentials(creds Credentials) Option { return func(c *Client) { c.creds = creds } }

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRetry sets how often idempotent requests are attempted and the
// initial backoff delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.backoff.Attempts = attempts
		c.backoff.Delay = delay
	}
}

// WithHeader adds a default header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// NewHTTPClient creates an HTTP client with the standard request timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

// NewClient creates a client for the backend at baseURL. An empty baseURL
// selects DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		http:    NewHTTPClient(),
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: map[string]string{"User-Agent": userAgent, "Accept": "application/json"},
		backoff: httputil.DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// request describes one API call.
type request struct {
	method      string
	path        string // relative to /api/v1
	body        io.Reader
	contentType string
	anonymous   bool // never send credentials
}

// get performs an idempotent GET with retries and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, v any) error {
	return c.backoff.Retry(ctx, func() error {
		return c.do(ctx, request{method: http.MethodGet, path: path}, v)
	})
}

// send performs a single mutating request.
func (c *Client) send(ctx context.Context, r request, v any) error {
	return httputil.Final(c.do(ctx, r, v))
}

func (c *Client) do(ctx context.Context, r request, v any) error {
	endpoint := c.baseURL + apiPrefix + r.path
	if rc, ok := r.body.(io.Closer); ok {
		defer rc.Close()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, r.body)
	if err != nil {
		return vferrors.Wrap(vferrors.ErrCodeInternal, err, "build %s %s", r.method, r.path)
	}
	for k, val := range c.headers {
		req.Header.Set(k, val)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set(httputil.RequestIDHeader, httputil.RequestIDOrNew(ctx))
	if !r.anonymous && c.creds != nil {
		token, err := c.creds.Token(ctx)
		switch {
		case err == nil && token != "":
			req.Header.Set("Authorization", "Bearer "+token)
		case err != nil && !errors.Is(err, ErrNoCredentials):
			return vferrors.Wrap(vferrors.ErrCodeUnauthorized, err, "load credentials")
		}
	}

	span := observability.Start(observability.StageRequest, r.method+" "+req.URL.Host+req.URL.Path)
	resp, err := c.http.Do(req)
	if err != nil {
		span.End(ctx, 0, err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return vferrors.Wrap(vferrors.ErrCodeTimeout, ctxErr, "%s %s", r.method, r.path)
		}
		return &httputil.RetryableError{Err: vferrors.Wrap(vferrors.ErrCodeNetwork, err, "%s %s", r.method, r.path)}
	}
	defer resp.Body.Close()
	span.End(ctx, resp.StatusCode, nil)

	if err := checkStatus(resp); err != nil {
		return err
	}
	if v == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return vferrors.Wrap(vferrors.ErrCodeInvalidFormat, err, "decode %s %s", r.method, r.path)
	}
	return nil
}

// checkStatus maps non-2xx responses to errors. 5xx and 429 responses are
// marked retryable; callers decide whether to honour that.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	e := vferrors.FromStatus(resp.StatusCode, parseDetail(data))
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		e.Cause = &vferrors.RateLimitedError{RetryAfter: retryAfter, Message: e.Detail}
		return &httputil.RetryableError{Err: e, After: time.Duration(retryAfter) * time.Second}
	}
	if resp.StatusCode >= 500 {
		return &httputil.RetryableError{Err: e}
	}
	return e
}

// parseDetail extracts the backend's explanation from an error body. The
// backend answers {"detail": "..."} for domain errors and a list of
// {"loc": [...], "msg": "..."} objects for request validation errors.
func parseDetail(data []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(data, &body) != nil || len(body.Detail) == 0 {
		text := strings.TrimSpace(string(data))
		if len(text) > maxDetail {
			text = text[:maxDetail] + "..."
		}
		return text
	}
	var s string
	if json.Unmarshal(body.Detail, &s) == nil {
		return s
	}
	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if json.Unmarshal(body.Detail, &items) == nil && len(items) > 0 {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if len(it.Loc) > 0 {
				msgs = append(msgs, fmt.Sprintf("%v: %s", it.Loc[len(it.Loc)-1], it.Msg))
			} else {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return string(body.Detail)
}

const maxDetail = 200

func escape(segment string) string { return url.PathEscape(segment) }
