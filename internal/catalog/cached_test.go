package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stuchain/cuepoint/internal/domain"
)

type countingProvider struct {
	inner    Provider
	searches int
	fetches  int
	err      error
}

func (c *countingProvider) Search(ctx context.Context, query string, maxResults int) (*domain.SearchOutcome, error) {
	c.searches++
	if c.err != nil {
		return nil, c.err
	}
	return c.inner.Search(ctx, query, maxResults)
}

func (c *countingProvider) FetchTrack(ctx context.Context, url string) (*domain.DetailOutcome, error) {
	c.fetches++
	if c.err != nil {
		return nil, c.err
	}
	return c.inner.FetchTrack(ctx, url)
}

type memCache struct {
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (m *memCache) GetCache(key string) ([]byte, error) {
	return m.data[key], nil
}

func (m *memCache) SetCache(key string, data []byte, _ time.Duration) error {
	m.data[key] = data
	return nil
}

func (m *memCache) ClearCache() error {
	m.data = map[string][]byte{}
	return nil
}

func TestCachedProviderSearch(t *testing.T) {
	upstream := &countingProvider{inner: NewMockProvider()}
	c := NewCachedProvider(upstream, newMemCache(), time.Hour)

	first, err := c.Search(context.Background(), "opus", 10)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	assert.Equal(t, 1, upstream.searches)

	second, err := c.Search(context.Background(), "opus", 10)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.URLs, second.URLs)
	assert.Equal(t, 1, upstream.searches, "cache hit must not reach upstream")

	// Different result cap is a different cache entry.
	_, err = c.Search(context.Background(), "opus", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, upstream.searches)
}

// staticProvider serves one fixed track under a site-style URL, so cache
// behavior can be tested without the mock-URL bypass.
type staticProvider struct {
	url    string
	fields domain.RawFields
}

func (s *staticProvider) Search(context.Context, string, int) (*domain.SearchOutcome, error) {
	return &domain.SearchOutcome{URLs: []string{s.url}}, nil
}

func (s *staticProvider) FetchTrack(_ context.Context, url string) (*domain.DetailOutcome, error) {
	if url != s.url {
		return nil, errors.New("no such track")
	}
	f := s.fields
	return &domain.DetailOutcome{Fields: &f}, nil
}

func TestCachedProviderFetchTrack(t *testing.T) {
	upstream := &countingProvider{inner: &staticProvider{
		url:    "https://tracks.test/opus",
		fields: domain.RawFields{Title: "Opus", Artists: "Eric Prydz"},
	}}
	c := NewCachedProvider(upstream, newMemCache(), time.Hour)

	first, err := c.FetchTrack(context.Background(), "https://tracks.test/opus")
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	require.NotNil(t, first.Fields)

	second, err := c.FetchTrack(context.Background(), "https://tracks.test/opus")
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Fields.Title, second.Fields.Title)
	assert.Equal(t, 1, upstream.fetches)
}

func TestCachedProviderBypassesMockTracks(t *testing.T) {
	upstream := &countingProvider{inner: NewMockProvider()}
	cache := newMemCache()
	c := NewCachedProvider(upstream, cache, time.Hour)

	for i := 0; i < 2; i++ {
		out, err := c.FetchTrack(context.Background(), "mock://track/1")
		require.NoError(t, err)
		assert.False(t, out.CacheHit)
	}
	assert.Equal(t, 2, upstream.fetches, "mock fixtures are never cached")
	assert.Empty(t, cache.data)
}

func TestCachedProviderUpstreamError(t *testing.T) {
	upstream := &countingProvider{inner: NewMockProvider(), err: errors.New("site down")}
	c := NewCachedProvider(upstream, newMemCache(), time.Hour)

	_, err := c.Search(context.Background(), "opus", 10)
	assert.Error(t, err)

	_, err = c.FetchTrack(context.Background(), "mock://track/1")
	assert.Error(t, err)
}

func TestMockProviderSearchDeterministic(t *testing.T) {
	p := NewMockProvider()

	first, err := p.Search(context.Background(), "opus prydz", 10)
	require.NoError(t, err)
	second, err := p.Search(context.Background(), "opus prydz", 10)
	require.NoError(t, err)
	assert.Equal(t, first.URLs, second.URLs)
	require.NotEmpty(t, first.URLs)
	assert.Equal(t, "mock://track/1", first.URLs[0])
}

func TestMockProviderFetchUnknown(t *testing.T) {
	p := NewMockProvider()
	_, err := p.FetchTrack(context.Background(), "mock://track/404")
	assert.Error(t, err)
}
