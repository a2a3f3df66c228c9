// Package api is the HTTP/JSON client for the Postify REST API.
//
// All requests go through Client.do, which attaches the session's bearer
// token, tags the request with an id, and turns responses into the error
// taxonomy in errors.go. A 401 on a request that carried the stored token
// fires the unauthorized handler exactly once per response, so the
// session is cleared in one place for every feature.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/postify/internal/log"
	"github.com/felixgeelhaar/postify/internal/version"
)

// maxErrorBody bounds how much of an error response is kept
const maxErrorBody = 64 << 10

// UnauthorizedHandler is called when the API rejects the stored token
type UnauthorizedHandler func(ctx context.Context)

// Client is the Postify API client
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         oauth2.TokenSource
	onUnauthorized UnauthorizedHandler
	logger         *log.Logger
	userAgent      string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithTokenSource sets where bearer tokens come from, normally the session store
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithUnauthorizedHandler sets the reaction to a rejected stored token
func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *Client) { c.onUnauthorized = h }
}

// WithLogger sets the logger
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient creates a new API client for baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:    log.Nop(),
		userAgent: version.UserAgent(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "api")
	return c
}

// BaseURL returns the API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request describes one API call
type request struct {
	method string
	path   string
	query  url.Values
	body   interface{}
	// auth attaches the session token; the call fails with
	// ErrNotAuthenticated before sending when there is none
	auth bool
}

// do performs the request and decodes a 2xx JSON body into target
func (c *Client) do(ctx context.Context, r request, target interface{}) error {
	var reqBody io.Reader
	if r.body != nil {
		jsonBody, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	endpoint := c.baseURL + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	if r.auth {
		if c.tokens == nil {
			return ErrNotAuthenticated
		}
		tok, err := c.tokens.Token()
		if err != nil || tok == nil || tok.AccessToken == "" {
			return ErrNotAuthenticated
		}
		tok.SetAuthHeader(req)
	}

	logger := c.logger.WithContext(log.ContextWithRequestID(ctx, requestID))
	logger.DebugContext(ctx, "api request", "method", r.method, "path", r.path, "auth", r.auth)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// a cancelled command is not a connectivity problem
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		logger.DebugContext(ctx, "api transport failure", "error", err.Error())
		return &NetworkError{Op: r.method, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	logger.DebugContext(ctx, "api response",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := parseError(resp, requestID)
		if resp.StatusCode == http.StatusUnauthorized && r.auth && c.onUnauthorized != nil {
			logger.InfoContext(ctx, "stored token rejected, clearing session")
			c.onUnauthorized(ctx)
			apiErr.SessionCleared = true
		}
		return apiErr
	}

	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: r.method, URL: endpoint, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// parseError builds an APIError from a non-2xx response. The message is
// taken from the first of "message", "error" or "msg" in a JSON body.
func parseError(resp *http.Response, requestID string) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		RequestID:  requestID,
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		apiErr.Message = errResp.text()
	}

	if apiErr.Message == "" {
		if raw := strings.TrimSpace(string(body)); raw != "" && !strings.HasPrefix(raw, "<") {
			apiErr.Message = raw
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
	}
	return apiErr
}

// pathID escapes an identifier for use as a path segment
func pathID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || id == "undefined" || id == "null" {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return url.PathEscape(id), nil
}

// IsUnauthorized reports whether err is a 401 from the API
func IsUnauthorized(err error) bool {
	return stderrors.Is(err, ErrUnauthorized)
}
