// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package apiclient wraps the analytics backend's REST API.
//
// It attaches the session's bearer token, normalizes non-2xx responses into
// *APIError, reports transport failures as *NetworkError, and decodes JSON
// bodies. It never retries on its own beyond the optional 429 handling in
// httputil; retry policy belongs to the caller.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/pdiddy/trendscope/internal/httputil"
	"github.com/pdiddy/trendscope/internal/telemetry"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 32 << 20

// Config configures a Client.
type Config struct {
	// BaseURL is the REST root every path is resolved against.
	BaseURL string

	// HTTPClient defaults to a client with no timeout.
	HTTPClient *http.Client

	// Tokens supplies the bearer token. A nil source, or a source that
	// returns an error, sends the request without Authorization.
	Tokens oauth2.TokenSource

	// UserAgent is sent on every request.
	UserAgent string

	// MaxRetries is the number of retries on HTTP 429 (0 disables).
	MaxRetries int

	// OnUnauthorized runs on every 401 before the error is returned.
	// The CLI clears the session here; the dashboard also redirects to login.
	OnUnauthorized func(err *APIError)

	Logger *zap.Logger
}

// Client issues requests against the backend.
type Client struct {
	base           *url.URL
	http           *http.Client
	tokens         oauth2.TokenSource
	userAgent      string
	maxRetries     int
	onUnauthorized func(err *APIError)
	log            *zap.Logger
}

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q must be http or https", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		base:           base,
		http:           hc,
		tokens:         cfg.Tokens,
		userAgent:      cfg.UserAgent,
		maxRetries:     cfg.MaxRetries,
		onUnauthorized: cfg.OnUnauthorized,
		log:            log.Named("apiclient"),
	}, nil
}

// BaseURL returns the REST root.
func (c *Client) BaseURL() string { return c.base.String() }

type requestOptions struct {
	skipAuth bool
	endpoint string
}

// RequestOption adjusts a single request.
type RequestOption func(*requestOptions)

// SkipAuth sends the request without an Authorization header.
func SkipAuth() RequestOption {
	return func(o *requestOptions) { o.skipAuth = true }
}

// Endpoint sets the route template used for metrics, e.g. "/clusters/{id}".
// Without it the literal path is used.
func Endpoint(template string) RequestOption {
	return func(o *requestOptions) { o.endpoint = template }
}

// Get fetches path with the given query and decodes the JSON body into out.
// out is left untouched for 204 and non-JSON responses.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out, opts)
}

// Post sends body as JSON and decodes the JSON response into out.
func (c *Client) Post(ctx context.Context, path string, body any, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out, opts)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any, opts []RequestOption) error {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}
	endpoint := ro.endpoint
	if endpoint == "" {
		endpoint = path
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path, query), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(payload)), nil
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !ro.skipAuth {
		c.authorize(req)
	}

	start := time.Now()
	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.maxRetries)
	telemetry.APIDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		telemetry.APIRequests.WithLabelValues(method, endpoint, telemetry.StatusClass(0)).Inc()
		c.log.Error("request failed",
			zap.String("method", method),
			zap.String("endpoint", path),
			zap.Error(err))
		return &NetworkError{Method: method, Endpoint: path, Err: err}
	}
	defer resp.Body.Close()
	telemetry.APIRequests.WithLabelValues(method, endpoint, telemetry.StatusClass(resp.StatusCode)).Inc()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &NetworkError{Method: method, Endpoint: path, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(method, path, resp, data)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 || !isJSON(resp.Header.Get("Content-Type")) {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) fail(method, path string, resp *http.Response, body []byte) error {
	statusText := statusText(resp)
	msg := serverMessage(body)
	if msg == "" {
		msg = statusText
	}
	apiErr := &APIError{
		Method:     method,
		Endpoint:   path,
		Status:     resp.StatusCode,
		StatusText: statusText,
		Message:    msg,
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.log.Warn("session rejected",
			zap.String("method", method),
			zap.String("endpoint", path))
		if c.onUnauthorized != nil {
			c.onUnauthorized(apiErr)
		}
		return apiErr
	}

	c.log.Error("api error",
		zap.String("method", method),
		zap.String("endpoint", path),
		zap.Int("status", resp.StatusCode),
		zap.String("message", msg))
	return apiErr
}

func (c *Client) authorize(req *http.Request) {
	if c.tokens == nil {
		return
	}
	tok, err := c.tokens.Token()
	if err != nil {
		c.log.Debug("no bearer token", zap.Error(err))
		return
	}
	tok.SetAuthHeader(req)
}

func (c *Client) resolve(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(path, "/")
	u.RawPath = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// statusText returns the reason phrase from the status line, falling back to
// the standard text for the code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
