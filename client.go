package mailadmin

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mailadmin/client-go/internal/api"
	"github.com/mailadmin/client-go/internal/keycache"
)

// Client is the mail-admin API client. It is safe for concurrent use.
type Client struct {
	apiClient *api.Client
	keys      *keycache.Cache
	clock     func() time.Time
	log       zerolog.Logger

	mu      sync.RWMutex
	session *Session
	keyInfo KeyInfo
}

// Session is the state returned by a successful Login.
type Session struct {
	Token string
	User  json.RawMessage
}

// New creates a client. No network call is made until a method needs one.
func New(opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	apiClient, err := buildAPIClient(cfg)
	if err != nil {
		return nil, err
	}

	c := &Client{
		apiClient: apiClient,
		clock:     cfg.clock,
		log:       cfg.logger,
	}
	c.keys = keycache.New(c.fetchPublicKey,
		keycache.WithFetchTimeout(cfg.keyFetchTimeout),
		keycache.WithLogger(cfg.logger.With().Str("component", "keycache").Logger()),
	)

	return c, nil
}

// buildAPIClient creates and configures an API client from the given config.
func buildAPIClient(cfg *clientConfig) (*api.Client, error) {
	apiOpts := []api.Option{
		api.WithBaseURL(cfg.baseURL),
		api.WithLogger(cfg.logger.With().Str("component", "api").Logger()),
	}
	if cfg.timeout > 0 {
		apiOpts = append(apiOpts, api.WithTimeout(cfg.timeout))
	}
	if cfg.retries > 0 {
		apiOpts = append(apiOpts, api.WithRetries(cfg.retries))
	}
	if len(cfg.retryOn) > 0 {
		apiOpts = append(apiOpts, api.WithRetryOn(cfg.retryOn))
	}
	if cfg.httpClient != nil {
		apiOpts = append(apiOpts, api.WithHTTPClient(cfg.httpClient))
	}

	return api.New(apiOpts...)
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.apiClient.BaseURL()
}

func (c *Client) fetchPublicKey(ctx context.Context) (string, error) {
	resp, err := c.apiClient.GetPublicKey(ctx)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.keyInfo = resp.Info
	c.mu.Unlock()
	return resp.Key, nil
}
