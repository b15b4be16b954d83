// Package cratesio implements the Registry port against the crates.io web API.
package cratesio

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/obraunsdorf/cargo-downgrade/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/time/rate"
)

const defaultCacheSize = 1024

// Client implements ports.Registry using the crates.io API.
// Requests are spaced by a rate limiter and successful answers are memoized
// for the lifetime of the client.
type Client struct {
	baseURL    string
	userAgent  string
	interval   time.Duration
	cacheSize  int
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *lru.Cache[string, []domain.VersionRecord]
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the crate endpoint prefix, e.g. https://crates.io/api/v1/crates.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithInterval sets the minimum spacing between two requests.
// A zero interval disables rate limiting.
func WithInterval(interval time.Duration) Option {
	return func(c *Client) {
		c.interval = interval
	}
}

// WithCacheSize sets how many crates are memoized.
func WithCacheSize(size int) Option {
	return func(c *Client) {
		c.cacheSize = size
	}
}

// NewClient creates a new crates.io client.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:   domain.DefaultRegistryURL,
		userAgent: domain.DefaultUserAgent,
		interval:  domain.DefaultRequestInterval,
		cacheSize: defaultCacheSize,
		httpClient: &http.Client{
			Timeout: domain.DefaultRequestTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	limit := rate.Inf
	if c.interval > 0 {
		limit = rate.Every(c.interval)
	}
	c.limiter = rate.NewLimiter(limit, 1)

	cache, err := lru.New[string, []domain.VersionRecord](max(c.cacheSize, 1))
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create registry cache")
	}
	c.cache = cache

	return c, nil
}

// Versions returns the full version history of the named crate.
func (c *Client) Versions(ctx context.Context, name string) ([]domain.VersionRecord, error) {
	if cached, ok := c.cache.Get(name); ok {
		return slices.Clone(cached), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, zerr.With(domain.Kind(domain.ErrRegistryRequestFailed, err), "crate", name)
	}

	resp, err := c.fetch(ctx, name)
	if err != nil {
		return nil, zerr.With(err, "crate", name)
	}

	records := make([]domain.VersionRecord, 0, len(resp.Versions))
	for _, v := range resp.Versions {
		records = append(records, domain.VersionRecord{
			Num:         v.Num,
			PublishedAt: v.CreatedAt,
			Yanked:      v.Yanked,
		})
	}

	c.cache.Add(name, records)
	return slices.Clone(records), nil
}

// fetch performs the HTTP request for a single crate.
func (c *Client) fetch(ctx context.Context, name string) (*crateResponse, error) {
	endpoint := c.baseURL + "/" + url.PathEscape(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, domain.Kind(domain.ErrRegistryRequestFailed, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.Kind(domain.ErrRegistryRequestFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.Kind(domain.ErrCrateNotFound, nil)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, zerr.With(domain.Kind(domain.ErrRegistryRequestFailed, nil), "status_code", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.Kind(domain.ErrRegistryRequestFailed, err)
	}

	var crate crateResponse
	if err := json.Unmarshal(body, &crate); err != nil {
		return nil, domain.Kind(domain.ErrRegistryParseFailed, err)
	}

	return &crate, nil
}
