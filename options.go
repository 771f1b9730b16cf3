package mailadmin

import (
	"net/http"
	"time"

	"github.com/agilira/go-timecache"
	"github.com/rs/zerolog"
)

const (
	defaultBaseURL         = "http://localhost:3000"
	defaultTimeout         = 30 * time.Second
	defaultKeyFetchTimeout = 10 * time.Second
)

// clientConfig holds configuration for the client.
type clientConfig struct {
	baseURL         string
	httpClient      *http.Client
	timeout         time.Duration
	keyFetchTimeout time.Duration
	retries         int
	retryOn         []int
	logger          zerolog.Logger
	clock           func() time.Time
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		baseURL:         defaultBaseURL,
		timeout:         defaultTimeout,
		keyFetchTimeout: defaultKeyFetchTimeout,
		logger:          zerolog.Nop(),
		clock:           timecache.CachedTime,
	}
}

// Option configures the client.
type Option func(*clientConfig)

// WithBaseURL sets the API base URL.
// Default: http://localhost:3000
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client. Its own timeout applies and
// WithTimeout is ignored.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-request HTTP timeout.
// Default: 30 seconds
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithKeyFetchTimeout bounds the shared public key fetch. Callers may
// still give up earlier through their own context.
// Default: 10 seconds
func WithKeyFetchTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.keyFetchTimeout = timeout
	}
}

// WithRetries sets the number of retries for idempotent API calls.
// Default: 0
func WithRetries(count int) Option {
	return func(c *clientConfig) {
		c.retries = count
	}
}

// WithRetryOn sets the HTTP status codes that trigger a retry.
// Default: [408, 429, 500, 502, 503, 504]
func WithRetryOn(statusCodes []int) Option {
	return func(c *clientConfig) {
		c.retryOn = statusCodes
	}
}

// WithLogger sets the logger. Default: no logging.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithClock sets the time source used for signature timestamps.
// Default: the process-wide cached clock from go-timecache.
func WithClock(now func() time.Time) Option {
	return func(c *clientConfig) {
		if now != nil {
			c.clock = now
		}
	}
}
