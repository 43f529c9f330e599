package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/stuchain/cuepoint/internal/domain"
	"github.com/stuchain/cuepoint/internal/textnorm"
)

// MockProvider serves a fixed in-memory catalog. Used in development mode
// and in tests that need deterministic search behavior without a site.
type MockProvider struct {
	// Tracks maps track URL to its fields.
	Tracks map[string]domain.RawFields
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		Tracks: map[string]domain.RawFields{
			"mock://track/1": {Title: "Opus", Artists: "Eric Prydz", Key: "A minor", ReleaseYear: 2015, BPM: 126, Genre: "Progressive House", Label: "Virgin", ReleaseDate: "2015-01-19"},
			"mock://track/2": {Title: "Opus (Four Tet Remix)", Artists: "Eric Prydz", Key: "A minor", ReleaseYear: 2016, BPM: 122, Genre: "Electronica", Label: "Virgin", ReleaseDate: "2016-02-26"},
			"mock://track/3": {Title: "Strobe", Artists: "deadmau5", Key: "B major", ReleaseYear: 2009, BPM: 128, Genre: "Progressive House", Label: "mau5trap", ReleaseDate: "2009-09-07"},
			"mock://track/4": {Title: "Sun & Moon", Artists: "Above & Beyond feat. Richard Bedford", Key: "F minor", ReleaseYear: 2011, BPM: 133, Genre: "Trance", Label: "Anjunabeats", ReleaseDate: "2011-04-29"},
		},
	}
}

// Search matches queries against title and artist tokens. Results are
// ordered by shared token count, URL as tie-break, so output is stable.
func (p *MockProvider) Search(_ context.Context, query string, maxResults int) (*domain.SearchOutcome, error) {
	queryTokens := textnorm.Tokens(query)

	type hit struct {
		url    string
		shared int
	}
	var hits []hit
	for u, f := range p.Tracks {
		haystack := textnorm.TokenSet(f.Title + " " + f.Artists)
		shared := 0
		for _, tok := range queryTokens {
			if _, ok := haystack[tok]; ok {
				shared++
			}
		}
		if shared > 0 {
			hits = append(hits, hit{url: u, shared: shared})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].shared != hits[j].shared {
			return hits[i].shared > hits[j].shared
		}
		return hits[i].url < hits[j].url
	})

	var urls []string
	for _, h := range hits {
		if maxResults > 0 && len(urls) >= maxResults {
			break
		}
		urls = append(urls, h.url)
	}
	return &domain.SearchOutcome{URLs: urls}, nil
}

func (p *MockProvider) FetchTrack(_ context.Context, url string) (*domain.DetailOutcome, error) {
	f, ok := p.Tracks[url]
	if !ok {
		return nil, fmt.Errorf("mock catalog: no track at %s", url)
	}
	return &domain.DetailOutcome{Fields: &f}, nil
}

// IsMockURL reports whether a track URL belongs to the mock catalog.
func IsMockURL(url string) bool {
	return strings.HasPrefix(url, "mock://")
}
