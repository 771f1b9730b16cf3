// Package keycache holds the server's public key for the life of a client.
//
// The first [Cache.Get] triggers a fetch; concurrent callers arriving while
// it is in flight join the same fetch instead of issuing their own. A
// successful result is kept until [Cache.Invalidate]. A failure leaves the
// cache empty so the next call fetches again.
package keycache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"
)

// DefaultFetchTimeout bounds a single shared fetch.
const DefaultFetchTimeout = 10 * time.Second

const flightKey = "public-key"

// Fetcher retrieves the public key from its source.
type Fetcher func(ctx context.Context) (string, error)

// Cache is a single-slot, single-flight cache for the public key.
// It is safe for concurrent use.
type Cache struct {
	fetch        Fetcher
	fetchTimeout time.Duration
	log          zerolog.Logger

	mu  sync.RWMutex
	key string

	group   singleflight.Group
	fetches atomic.Int64
	failed  atomic.Int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithFetchTimeout bounds each shared fetch. Zero or negative disables the bound.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Cache) {
		c.fetchTimeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Cache) {
		c.log = logger
	}
}

// New creates a Cache backed by fetch.
func New(fetch Fetcher, opts ...Option) *Cache {
	c := &Cache{
		fetch:        fetch,
		fetchTimeout: DefaultFetchTimeout,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached key, fetching it if necessary. ctx only controls
// how long this caller waits: cancelling it does not abort a fetch other
// callers may be sharing.
func (c *Cache) Get(ctx context.Context) (string, error) {
	if key, ok := c.cached(); ok {
		return key, nil
	}

	ch := c.group.DoChan(flightKey, c.load)

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Invalidate drops the cached key. The next Get fetches again. A fetch
// already in flight is not affected and will still populate the cache.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.key = ""
	c.mu.Unlock()
	c.log.Debug().Msg("public key invalidated")
}

// Stats reports fetch activity.
type Stats struct {
	// Fetches counts fetcher invocations, successful or not.
	Fetches int64
	// Failures counts fetcher invocations that returned an error.
	Failures int64
	// Cached reports whether a key is currently held.
	Cached bool
}

// Stats returns a snapshot of fetch activity.
func (c *Cache) Stats() Stats {
	_, cached := c.cached()
	return Stats{
		Fetches:  c.fetches.Load(),
		Failures: c.failed.Load(),
		Cached:   cached,
	}
}

func (c *Cache) cached() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.key, c.key != ""
}

// load runs once per flight. It rechecks the slot so a caller that lost
// the race with a just-finished flight does not fetch twice.
func (c *Cache) load() (any, error) {
	if key, ok := c.cached(); ok {
		return key, nil
	}

	ctx := context.Background()
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.fetchTimeout)
		defer cancel()
	}

	c.fetches.Inc()
	start := time.Now()
	key, err := c.fetch(ctx)
	if err != nil {
		c.failed.Inc()
		c.log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("public key fetch failed")
		return nil, err
	}

	c.mu.Lock()
	c.key = key
	c.mu.Unlock()

	c.log.Debug().Dur("elapsed", time.Since(start)).Msg("public key cached")
	return key, nil
}
