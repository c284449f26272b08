// Package httpclient provides a typed client for the fundbalance HTTP API
package httpclient

import (
	"bytes"
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

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/simaogato/fundbalance-backend/internal/adapter/http/dto"
)

const (
	DefaultBaseURL = "http://localhost:8080"
	DefaultTimeout = 15 * time.Second
)

// ErrTransport is wrapped by every TransportError
var ErrTransport = errors.New("transport error")

// TransportError reports a call that did not produce a usable envelope: the request failed,
// the server answered with a non-2xx status, or the body was empty or not valid JSON
type TransportError struct {
	Method     string
	Path       string
	StatusCode int    // 0 when no response was received
	Message    string // Envelope message when the error response carried one
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s %s: %s (status %d)", e.Method, e.Path, e.Message, e.StatusCode)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
	default:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// APIError is a well-formed envelope with success=false
type APIError struct {
	Path    string
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client talks to the fundbalance HTTP API
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit caps outgoing requests per second
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), max(1, requestsPerSecond))
	}
}

// WithLogger sets the logger
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log.With().Str("component", "httpclient").Logger()
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new API client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Health checks the server liveness endpoint
func (c *Client) Health(ctx context.Context) (*dto.Health, error) {
	return call[dto.Health](ctx, c, http.MethodGet, "/health", nil)
}

// ListBuckets returns the whole portfolio
func (c *Client) ListBuckets(ctx context.Context) ([]dto.Bucket, error) {
	return callSlice[dto.Bucket](ctx, c, http.MethodGet, "/api/buckets", nil)
}

// AddFund appends a fund and returns the updated portfolio
func (c *Client) AddFund(ctx context.Context, req dto.AddFundRequest) ([]dto.Bucket, error) {
	return callSlice[dto.Bucket](ctx, c, http.MethodPost, "/api/funds", req)
}

// UpdateFund changes one field of a fund and returns the updated portfolio
func (c *Client) UpdateFund(ctx context.Context, req dto.UpdateFundRequest) ([]dto.Bucket, error) {
	return callSlice[dto.Bucket](ctx, c, http.MethodPut, "/api/funds", req)
}

// PatchFund changes several fields of a fund at once and returns the updated portfolio
func (c *Client) PatchFund(ctx context.Context, req dto.PatchFundRequest) ([]dto.Bucket, error) {
	return callSlice[dto.Bucket](ctx, c, http.MethodPatch, "/api/funds", req)
}

// DeleteFund removes a fund and returns the updated portfolio
func (c *Client) DeleteFund(ctx context.Context, req dto.DeleteFundRequest) ([]dto.Bucket, error) {
	return callSlice[dto.Bucket](ctx, c, http.MethodDelete, "/api/funds", req)
}

// Rebalance runs the engine and returns the per-bucket plan in portfolio order;
// an empty threshold lets the server use its default. The run is the newest history record.
func (c *Client) Rebalance(ctx context.Context, threshold dto.Number) ([]dto.BucketPlan, error) {
	var body any
	if !threshold.IsZero() {
		body = dto.RebalanceRequest{Threshold: threshold}
	}
	return callSlice[dto.BucketPlan](ctx, c, http.MethodPost, "/api/rebalance", body)
}

// ListHistory returns the most recent runs, newest first; limit <= 0 uses the server default
func (c *Client) ListHistory(ctx context.Context, limit int) ([]dto.RecordSummary, error) {
	path := "/api/rebalance/history"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	return callSlice[dto.RecordSummary](ctx, c, http.MethodGet, path, nil)
}

// GetHistory returns one run with its suggestions and stats
func (c *Client) GetHistory(ctx context.Context, id int64) (*dto.RecordDetail, error) {
	return call[dto.RecordDetail](ctx, c, http.MethodGet, fmt.Sprintf("/api/rebalance/history/%d", id), nil)
}

// Overview returns the current allocation against targets
func (c *Client) Overview(ctx context.Context) (*dto.Overview, error) {
	return call[dto.Overview](ctx, c, http.MethodGet, "/api/overview", nil)
}

func callSlice[T any](ctx context.Context, c *Client, method, path string, body any) ([]T, error) {
	data, err := call[[]T](ctx, c, method, path, body)
	if err != nil {
		return nil, err
	}
	return *data, nil
}

// call performs one request and unwraps the envelope
func call[T any](ctx context.Context, c *Client, method, path string, body any) (*T, error) {
	transportErr := func(status int, message string, err error) error {
		return &TransportError{Method: method, Path: path, StatusCode: status, Message: message, Err: err}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, transportErr(0, "", fmt.Errorf("rate limit wait: %w", err))
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug().Str("method", method).Str("path", path).Msg("API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportErr(0, "", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportErr(resp.StatusCode, "", fmt.Errorf("failed to read response: %w", err))
	}

	var envelope dto.Result[T]
	decodeErr := json.Unmarshal(raw, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := ""
		if decodeErr == nil {
			message = envelope.Message
		}
		return nil, transportErr(resp.StatusCode, message, nil)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, transportErr(0, "", errors.New("empty response body"))
	}
	if decodeErr != nil {
		return nil, transportErr(0, "", fmt.Errorf("failed to decode response: %w", decodeErr))
	}

	if !envelope.Success {
		return nil, &APIError{Path: path, Message: envelope.Message}
	}
	if envelope.Data == nil {
		return nil, transportErr(0, "", errors.New("response has no data"))
	}

	return envelope.Data, nil
}
