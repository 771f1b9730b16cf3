package api

import (
	"context"
	"math"
	"math/rand/v2"
	"net/http"
	"time"
)

// RetryConfig controls how Do replays idempotent requests.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	// Jitter spreads each delay by up to ±Jitter of its value (0.0 to 1.0).
	Jitter float64
	// RetryableOn reports whether a status warrants another attempt.
	// Status 0 stands for a transport error with no response.
	RetryableOn func(statusCode int) bool
}

// retryableStatus is the default set of statuses worth replaying.
var retryableStatus = map[int]struct{}{
	0:                              {},
	http.StatusRequestTimeout:      {},
	http.StatusTooManyRequests:     {},
	http.StatusInternalServerError: {},
	http.StatusBadGateway:          {},
	http.StatusServiceUnavailable:  {},
	http.StatusGatewayTimeout:      {},
}

var noRetry = &RetryConfig{RetryableOn: func(int) bool { return false }}

// DefaultRetryConfig returns the backoff used once retries are enabled.
// Client.New sets MaxRetries to DefaultMaxRetries on top of it.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries: 3,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   10 * time.Second,
		Multiplier: 2.0,
		Jitter:     0.2,
		RetryableOn: func(statusCode int) bool {
			_, ok := retryableStatus[statusCode]
			return ok
		},
	}
}

// ShouldRetry reports whether attempt (zero-based) may be followed by another.
func (r *RetryConfig) ShouldRetry(attempt int, statusCode int) bool {
	return attempt < r.MaxRetries && r.RetryableOn(statusCode)
}

// Delay returns the pause before the attempt after attempt. The result,
// jitter included, never exceeds MaxDelay.
func (r *RetryConfig) Delay(attempt int) time.Duration {
	backoff := float64(r.BaseDelay) * math.Pow(r.Multiplier, float64(attempt))
	if r.Jitter > 0 {
		backoff *= 1 + r.Jitter*(2*rand.Float64()-1)
	}
	return time.Duration(min(backoff, float64(r.MaxDelay)))
}

// Wait sleeps for Delay(attempt) or until ctx ends.
func (r *RetryConfig) Wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(r.Delay(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// idempotent reports whether a request with this method may be replayed.
// Login posts a one-time nonce, so POST is never retried.
func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}
