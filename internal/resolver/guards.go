package resolver

import (
	"strings"

	"github.com/stuchain/cuepoint/internal/config"
	"github.com/stuchain/cuepoint/internal/domain"
	"github.com/stuchain/cuepoint/internal/textnorm"
)

// Reject reasons recorded on guarded-out candidates.
const (
	RejectTitleSubset    = "title_token_subset"
	RejectArtistMismatch = "artist_mismatch"
)

// applyGuards sets GuardOK and RejectReason on a scored candidate. Guards
// are hard rejections: a candidate that fails one can never become the
// winner no matter its score.
func applyGuards(cfg config.ResolverConfig, q domain.TrackQuery, flags domain.MixFlags, cand *domain.CandidateRecord) {
	// Token-set similarity scores a strict-subset pair at or near 100 in
	// both directions: "Sunlight" would otherwise beat out the requested
	// "Sunlight Through Rain", and "Sunlight Reprise" the requested
	// "Sunlight". Acapella and dub requests are exempt: those cuts are
	// routinely listed under the bare title.
	if isStrictTitleSubset(cand.Title, q.Title) && !flags.ExpectsShortTitle() {
		cand.GuardOK = false
		cand.RejectReason = RejectTitleSubset
		return
	}

	if !q.TitleOnly && strings.TrimSpace(q.ArtistText) != "" {
		if cand.ArtistSim < cfg.ArtistSimFloor && !textnorm.ArtistTokenOverlap(q.ArtistText, cand.Artists) {
			cand.GuardOK = false
			cand.RejectReason = RejectArtistMismatch
			return
		}
	}

	cand.GuardOK = true
}

// isStrictTitleSubset reports whether either normalized title's tokens form
// a strict subset of the other's: a truncated candidate against a full query
// title, or a padded candidate against a bare one.
func isStrictTitleSubset(candidateTitle, queryTitle string) bool {
	cand := textnorm.TokenSet(candidateTitle)
	query := textnorm.TokenSet(queryTitle)
	return strictSubset(cand, query) || strictSubset(query, cand)
}

func strictSubset(a, b map[string]struct{}) bool {
	if len(a) >= len(b) {
		return false
	}
	for tok := range a {
		if _, ok := b[tok]; !ok {
			return false
		}
	}
	return true
}
