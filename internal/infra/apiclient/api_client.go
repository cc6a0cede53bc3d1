// Package apiclient provides the JSON client the web front uses to call the
// API. Default headers set on a Client apply to all of its subsequent
// requests; Clone gives each browser session its own set.
package apiclient

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
	"sync"

	context_ "github.com/mkrupp/fishpizzaria/internal/infra/context"
	"github.com/mkrupp/fishpizzaria/internal/infra/logging"
)

const (
	TraceIDHeader       = "X-Request-ID"
	AuthorizationHeader = "Authorization"

	maxErrorBodySize = 1 << 10
)

var (
	// ErrUnexpectedStatus is returned when the API answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrDecode is returned when a 2xx response body cannot be decoded.
	ErrDecode = errors.New("decode response")
)

// StatusError carries the status of a non-2xx API response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap makes errors.Is(err, ErrUnexpectedStatus) hold.
func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// Config holds configuration for the shared API client.
type Config struct {
	// BaseURL is prepended to every request path
	BaseURL string `env:"BASE_URL" default:"http://localhost:3333"`
}

// Client is a JSON HTTP client with a mutable set of default headers.
// It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        logging.Logger

	mu      sync.RWMutex
	headers http.Header
}

// New creates a Client for cfg.BaseURL.
// If httpClient is nil, http.DefaultClient will be used.
func New(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		log:        logging.GetLogger("infra.apiclient"),
		headers:    make(http.Header),
	}
}

// Clone returns a Client for the same API and transport whose default
// headers start as a copy of c's and change independently afterwards.
func (c *Client) Clone() *Client {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return &Client{
		httpClient: c.httpClient,
		baseURL:    c.baseURL,
		log:        c.log,
		headers:    c.headers.Clone(),
	}
}

// SetDefaultHeader sets a header sent with every subsequent request.
func (c *Client) SetDefaultHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.headers.Set(key, value)
}

// DefaultHeader returns the current default value for key.
func (c *Client) DefaultHeader(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.headers.Get(key)
}

// PostJSON sends in as a JSON body to path and decodes the response into out.
// out may be nil to discard the body.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, bytes.NewReader(body), out)
}

// GetJSON requests path and decodes the response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) (err error) {
	target, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("join url: %w", err)
	}

	log := c.log.With(logging.Group("http", "method", method, "url", target))

	defer func() {
		if err != nil {
			log.DebugContext(ctx, "api request failed", "error", err)
		} else {
			log.DebugContext(ctx, "api request done")
		}
	}()

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	c.mu.RLock()
	for key, values := range c.headers {
		req.Header[key] = append([]string(nil), values...)
	}
	c.mu.RUnlock()

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if traceID, ok := context_.TraceIDFromContext(ctx); ok {
		req.Header.Set(TraceIDHeader, traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", strings.ToLower(method), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))

		return &StatusError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(msg)),
		}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Join(ErrDecode, err)
	}

	return nil
}
