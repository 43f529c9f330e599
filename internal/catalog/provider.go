// Package catalog talks to the track catalog website: searching, scraping
// track pages into raw fields, and caching both through the store.
package catalog

import (
	"context"

	"github.com/stuchain/cuepoint/internal/domain"
)

// Provider is the catalog surface resolution runs against.
type Provider interface {
	// Search returns track page URLs for a query, best matches first,
	// at most maxResults.
	Search(ctx context.Context, query string, maxResults int) (*domain.SearchOutcome, error)
	// FetchTrack scrapes one track page into its raw fields.
	FetchTrack(ctx context.Context, url string) (*domain.DetailOutcome, error)
}
