// Package lookup is the shared HTTP plumbing of the external data sources:
// bounded timeouts, collapsed concurrent calls and an optional response cache.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/trainer/internal/domain/model"
	"github.com/okian/trainer/pkg/logger"
	"github.com/okian/trainer/pkg/metrics"
)

const (
	defaultTimeout   = 5 * time.Second
	defaultUserAgent = "trainer/1.0 (+https://github.com/okian/trainer)"
	maxBodyBytes     = 1 << 20
)

// Fetcher performs a JSON GET on behalf of a named source.
type Fetcher interface {
	GetJSON(ctx context.Context, source, url string, out any) error
}

// Client implements Fetcher over net/http.
type Client struct {
	http      *http.Client
	timeout   time.Duration
	userAgent string
	cache     Cache
	cacheTTL  time.Duration
	group     singleflight.Group
	logger    logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every upstream call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header. Nominatim and Wikipedia reject
// anonymous clients.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithCache stores successful responses for ttl.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) {
		if cache != nil && ttl > 0 {
			c.cache = cache
			c.cacheTTL = ttl
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a lookup client.
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{},
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON fetches url and decodes the body into out. Identical concurrent
// calls share one upstream request.
func (c *Client) GetJSON(ctx context.Context, source, url string, out any) error {
	const op = "lookup.get"

	key := source + "|" + url
	if body, ok := c.fromCache(ctx, source, key); ok {
		if err := json.Unmarshal(body, out); err == nil {
			return nil
		}
	}

	// The flight outlives any single caller; fetch still bounds it by c.timeout.
	shared := context.WithoutCancel(ctx)
	v, err, joined := c.group.Do(key, func() (any, error) {
		return c.fetch(shared, source, url)
	})
	if err != nil {
		return model.WrapKind(op, ErrUpstream, err)
	}
	body := v.([]byte)
	if joined {
		c.logger.Debug(ctx, "lookup shared with concurrent caller", logger.String("source", source))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return model.WrapKind(op, ErrDecode, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil {
			c.logger.Warn(ctx, "lookup cache write failed", logger.String("source", source), logger.Error(err))
		}
	}
	return nil
}

func (c *Client) fromCache(ctx context.Context, source, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	body, ok := c.cache.Get(ctx, key)
	metrics.RecordLookupCache(source, ok)
	return body, ok
}

func (c *Client) fetch(ctx context.Context, source, url string) (_ []byte, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.RecordLookup(source, err == nil, float64(time.Since(start).Microseconds())/1000.0)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{Source: source, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s body: %w", source, err)
	}
	c.logger.Debug(ctx, "lookup fetched",
		logger.String("source", source),
		logger.Int("bytes", len(body)),
		logger.Duration("took", time.Since(start)),
	)
	return body, nil
}
