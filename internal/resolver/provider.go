package resolver

import (
	"context"

	"github.com/stuchain/cuepoint/internal/domain"
)

// SearchProvider runs one catalog search and returns track page URLs in
// catalog relevance order, truncated to maxResults.
type SearchProvider interface {
	Search(ctx context.Context, query string, maxResults int) (*domain.SearchOutcome, error)
}

// DetailFetcher loads one track page and extracts its raw fields.
type DetailFetcher interface {
	FetchTrack(ctx context.Context, url string) (*domain.DetailOutcome, error)
}

// Provider is the catalog surface the resolver needs.
type Provider interface {
	SearchProvider
	DetailFetcher
}
