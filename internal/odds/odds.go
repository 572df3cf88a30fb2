// Package odds adapts the external odds provider. It sits outside the core
// pipeline: lines are fetched (or served from a small in-process TTL cache)
// before core work begins. The cache is non-durable; every line carries its
// own timestamp and the validator enforces freshness independently.
package odds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"playcall/internal/types"
)

// Provider fetches current lines for one matchup.
type Provider interface {
	Lines(ctx context.Context, homeTeam, awayTeam string) ([]types.LineInfo, error)
}

// HTTPProvider is the real provider adapter.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProvider builds a provider against the given odds API base URL.
func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Lines fetches the posted lines for a matchup.
func (p *HTTPProvider) Lines(ctx context.Context, homeTeam, awayTeam string) ([]types.LineInfo, error) {
	url := fmt.Sprintf("%s/v1/lines?home=%s&away=%s", p.baseURL, homeTeam, awayTeam)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("odds fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("odds fetch: provider returned %d", resp.StatusCode)
	}
	var lines []types.LineInfo
	if err := json.NewDecoder(resp.Body).Decode(&lines); err != nil {
		return nil, fmt.Errorf("odds decode: %w", err)
	}
	return lines, nil
}

// cacheEntry pairs cached lines with their expiry.
type cacheEntry struct {
	lines   []types.LineInfo
	expires time.Time
}

// CachedProvider wraps a Provider with an in-process TTL map and counts
// hits and misses for provenance.
type CachedProvider struct {
	inner  Provider
	ttl    time.Duration
	logger *zap.Logger

	mu      sync.Mutex
	entries map[string]cacheEntry
	hits    int
	misses  int
}

// NewCachedProvider wraps inner with a TTL cache.
func NewCachedProvider(inner Provider, ttl time.Duration, logger *zap.Logger) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		ttl:     ttl,
		logger:  logger,
		entries: make(map[string]cacheEntry),
	}
}

// Lines serves from cache when fresh, otherwise fetches and caches.
func (c *CachedProvider) Lines(ctx context.Context, homeTeam, awayTeam string) ([]types.LineInfo, error) {
	key := homeTeam + "|" + awayTeam
	now := time.Now()

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && now.Before(e.expires) {
		c.hits++
		c.mu.Unlock()
		return e.lines, nil
	}
	c.misses++
	c.mu.Unlock()

	lines, err := c.inner.Lines(ctx, homeTeam, awayTeam)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{lines: lines, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Debug("odds cached", zap.String("matchup", key), zap.Int("lines", len(lines)))
	}
	return lines, nil
}

// Stats returns cumulative cache counters.
func (c *CachedProvider) Stats() types.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return types.CacheStats{Hits: c.hits, Misses: c.misses}
}
