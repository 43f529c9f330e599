package resolver

import (
	"github.com/stuchain/cuepoint/internal/config"
	"github.com/stuchain/cuepoint/internal/domain"
	"github.com/stuchain/cuepoint/internal/mixparse"
	"github.com/stuchain/cuepoint/internal/musickey"
	"github.com/stuchain/cuepoint/internal/textnorm"
)

// scoreCandidate fills in the similarity and score fields of a candidate
// built from one fetched track page. Provenance fields (URL, query index,
// elapsed) are the caller's job.
//
// Base score is the weighted title/artist blend; in title-only mode the
// title similarity carries full weight. Year and key bonuses apply only when
// the requested mix variant is satisfied: a query that asks for a remix must
// not have a plain original nudged over the line by metadata bonuses.
func scoreCandidate(cfg config.ResolverConfig, q domain.TrackQuery, flags domain.MixFlags, f *domain.RawFields) domain.CandidateRecord {
	cand := domain.CandidateRecord{
		Title:       f.Title,
		Artists:     f.Artists,
		Key:         f.Key,
		ReleaseYear: f.ReleaseYear,
		BPM:         f.BPM,
		Label:       f.Label,
		Genre:       f.Genre,
		ReleaseName: f.ReleaseName,
		ReleaseDate: f.ReleaseDate,
		ArtworkURL:  f.ArtworkURL,
	}

	cand.TitleSim = textnorm.TitleSimilarity(q.Title, f.Title)
	if q.TitleOnly {
		cand.BaseScore = float64(cand.TitleSim)
	} else {
		cand.ArtistSim = textnorm.ArtistSimilarity(q.ArtistText, f.Artists)
		cand.BaseScore = cfg.TitleWeight*float64(cand.TitleSim) + cfg.ArtistWeight*float64(cand.ArtistSim)
	}

	if variantSatisfied(flags, f.Title) {
		if q.YearHint != 0 && f.ReleaseYear == q.YearHint {
			cand.BonusYear = cfg.BonusYear
		}
		if q.KeyHint != "" && f.Key != "" && musickey.Equivalent(q.KeyHint, f.Key) {
			cand.BonusKey = cfg.BonusKey
		}
	}

	cand.Score = cand.BaseScore + float64(cand.BonusYear) + float64(cand.BonusKey)
	if cand.Score < 0 {
		cand.Score = 0
	}
	return cand
}

// variantSatisfied reports whether the candidate title carries every mix
// marker the query asked for. Queries without variant markers always pass.
func variantSatisfied(want domain.MixFlags, candidateTitle string) bool {
	if !want.RequiresVariant() {
		return true
	}
	got := mixparse.ParseMixFlags(candidateTitle)
	switch {
	case want.IsRemix && !got.IsRemix:
		return false
	case want.IsExtended && !got.IsExtended:
		return false
	case want.IsClub && !got.IsClub:
		return false
	case want.IsDub && !got.IsDub:
		return false
	case want.IsAcapella && !got.IsAcapella:
		return false
	}
	return true
}
