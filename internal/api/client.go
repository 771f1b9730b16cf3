package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mailadmin/client-go/internal/apierrors"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://localhost:3000"
	// DefaultTimeout bounds every HTTP request.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRetries is zero: failures surface immediately and the
	// caller decides whether to try again.
	DefaultMaxRetries = 0

	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 64 << 10
)

// Client is the HTTP client for the admin API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      *RetryConfig
	log        zerolog.Logger
}

// Option configures the API client.
type Option func(*Client)

// WithBaseURL sets the base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetries sets the number of retries for retryable status codes.
func WithRetries(retries int) Option {
	return func(c *Client) {
		c.retry.MaxRetries = retries
	}
}

// WithRetryOn sets the HTTP status codes that trigger a retry.
func WithRetryOn(statusCodes []int) Option {
	return func(c *Client) {
		set := make(map[int]struct{}, len(statusCodes))
		for _, code := range statusCodes {
			set[code] = struct{}{}
		}
		c.retry.RetryableOn = func(statusCode int) bool {
			_, ok := set[statusCode]
			return ok
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.log = logger
	}
}

// New creates a new API client.
func New(opts ...Option) (*Client, error) {
	retry := DefaultRetryConfig()
	retry.MaxRetries = DefaultMaxRetries

	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		retry: retry,
		log:   zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.baseURL = strings.TrimRight(c.baseURL, "/")
	if c.baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	return c, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a JSON request and decodes a JSON response into result.
// token, when non-empty, is sent as a bearer token. A nil result discards
// the body; 204 responses never decode.
func (c *Client) Do(ctx context.Context, method, path, token string, body, result any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = data
	}

	url := c.baseURL + path
	log := c.log.With().Str("method", method).Str("path", path).Logger()
	retry := c.retry
	if !idempotent(method) {
		retry = noRetry
	}

	var resp *http.Response
	for attempt := 0; ; attempt++ {
		req, err := c.newRequest(ctx, method, url, token, payload)
		if err != nil {
			return err
		}

		start := time.Now()
		resp, err = c.httpClient.Do(req)
		if err != nil {
			log.Debug().Err(err).Int("attempt", attempt).Msg("request failed")
			if ctx.Err() != nil {
				return &apierrors.NetworkError{Err: ctx.Err(), URL: url, Attempt: attempt}
			}
			if !retry.ShouldRetry(attempt, 0) {
				return &apierrors.NetworkError{Err: err, URL: url, Attempt: attempt}
			}
		} else {
			log.Debug().
				Int("status", resp.StatusCode).
				Int("attempt", attempt).
				Str("request_id", req.Header.Get(requestIDHeader)).
				Dur("elapsed", time.Since(start)).
				Msg("response received")
			if !retry.ShouldRetry(attempt, resp.StatusCode) {
				break
			}
			resp.Body.Close()
		}

		if err := retry.Wait(ctx, attempt); err != nil {
			return &apierrors.NetworkError{Err: err, URL: url, Attempt: attempt}
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseErrorResponse(resp)
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to decode response: empty body")
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, url, token string, payload []byte) (*http.Request, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func parseErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	apiErr := &apierrors.APIError{
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get(requestIDHeader),
	}

	var errResp struct {
		Message   string `json:"message"`
		Error     string `json:"error"`
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		apiErr.Message = errResp.Message
		if apiErr.Message == "" {
			apiErr.Message = errResp.Error
		}
		if errResp.RequestID != "" {
			apiErr.RequestID = errResp.RequestID
		}
	}

	return apiErr
}
