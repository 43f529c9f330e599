package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stuchain/cuepoint/internal/domain"
)

// Cache is the persistence surface the cached provider needs.
type Cache interface {
	GetCache(key string) ([]byte, error)
	SetCache(key string, data []byte, ttl time.Duration) error
	ClearCache() error
}

// CachedProvider wraps a Provider with a TTL cache. Cache hits are reported
// on the per-call outcome, never through shared state, so concurrent
// resolutions see only their own hits.
type CachedProvider struct {
	provider Provider
	cache    Cache
	ttl      time.Duration
}

func NewCachedProvider(provider Provider, cache Cache, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		cache:    cache,
		ttl:      ttl,
	}
}

func (c *CachedProvider) Search(ctx context.Context, query string, maxResults int) (*domain.SearchOutcome, error) {
	key := fmt.Sprintf("search:%d:%s", maxResults, query)

	if data, err := c.cache.GetCache(key); err == nil && data != nil {
		var urls []string
		if json.Unmarshal(data, &urls) == nil {
			return &domain.SearchOutcome{URLs: urls, CacheHit: true}, nil
		}
	}

	out, err := c.provider.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(out.URLs); err == nil {
		_ = c.cache.SetCache(key, data, c.ttl)
	}
	return out, nil
}

func (c *CachedProvider) FetchTrack(ctx context.Context, url string) (*domain.DetailOutcome, error) {
	// Mock fixtures live in memory; persisting them only pollutes the
	// cache table across provider switches.
	if IsMockURL(url) {
		return c.provider.FetchTrack(ctx, url)
	}

	key := "track:" + url

	if data, err := c.cache.GetCache(key); err == nil && data != nil {
		var fields domain.RawFields
		if json.Unmarshal(data, &fields) == nil {
			return &domain.DetailOutcome{Fields: &fields, CacheHit: true}, nil
		}
	}

	out, err := c.provider.FetchTrack(ctx, url)
	if err != nil {
		return nil, err
	}

	if out.Fields != nil {
		if data, err := json.Marshal(out.Fields); err == nil {
			_ = c.cache.SetCache(key, data, c.ttl)
		}
	}
	return out, nil
}

func (c *CachedProvider) ClearCache() error {
	return c.cache.ClearCache()
}
