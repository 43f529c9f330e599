package dto

import "github.com/stuchain/cuepoint/internal/domain"

// WinnerResponse is the flattened winner snapshot, present only for matched
// tracks.
type WinnerResponse struct {
	URL     string  `json:"url"`
	Title   string  `json:"title"`
	Artists string  `json:"artists"`
	Key     string  `json:"key,omitempty"`
	Year    int     `json:"year,omitempty"`
	BPM     int     `json:"bpm,omitempty"`
	Label   string  `json:"label,omitempty"`
	Genre   string  `json:"genre,omitempty"`
	Score   float64 `json:"score"`
}

type TrackResultResponse struct {
	ID             int64           `json:"id"`
	Position       int             `json:"position"`
	Title          string          `json:"title"`
	Artist         string          `json:"artist,omitempty"`
	Location       string          `json:"location,omitempty"`
	YearHint       int             `json:"year_hint,omitempty"`
	KeyHint        string          `json:"key_hint,omitempty"`
	Status         string          `json:"status"`
	Best           *WinnerResponse `json:"best,omitempty"`
	LastQueryIndex int             `json:"last_query_index"`
	QueriesRun     int             `json:"queries_run"`
	CandidateCount int             `json:"candidate_count"`
	ElapsedMS      int64           `json:"elapsed_ms"`
	Error          string          `json:"error,omitempty"`
}

func NewTrackResultResponse(tr *domain.TrackResult) TrackResultResponse {
	resp := TrackResultResponse{
		ID:             tr.ID,
		Position:       tr.Position,
		Title:          tr.Title,
		Artist:         tr.Artist,
		Location:       tr.Location,
		YearHint:       tr.YearHint,
		KeyHint:        tr.KeyHint,
		Status:         string(tr.Status),
		LastQueryIndex: tr.LastQueryIndex,
		QueriesRun:     tr.QueriesRun,
		CandidateCount: tr.CandidateCount,
		ElapsedMS:      tr.ElapsedMS,
		Error:          tr.Error,
	}
	if tr.BestURL.Valid {
		resp.Best = &WinnerResponse{
			URL:     tr.BestURL.String,
			Title:   tr.BestTitle.String,
			Artists: tr.BestArtists.String,
			Key:     tr.BestKey.String,
			Year:    int(tr.BestYear.Int64),
			BPM:     int(tr.BestBPM.Int64),
			Label:   tr.BestLabel.String,
			Genre:   tr.BestGenre.String,
			Score:   tr.BestScore.Float64,
		}
	}
	return resp
}

func NewTrackResultListResponse(results []*domain.TrackResult) []TrackResultResponse {
	out := make([]TrackResultResponse, 0, len(results))
	for _, tr := range results {
		out = append(out, NewTrackResultResponse(tr))
	}
	return out
}

// TrackDetailResponse adds the full candidate breakdown and query audit trail
// to one track result.
type TrackDetailResponse struct {
	TrackResultResponse
	Candidates []domain.CandidateRecord `json:"candidates"`
	QueryAudit []domain.QueryAuditEntry `json:"query_audit"`
}

func NewTrackDetailResponse(tr *domain.TrackResult, candidates []domain.CandidateRecord, audit []domain.QueryAuditEntry) TrackDetailResponse {
	if candidates == nil {
		candidates = []domain.CandidateRecord{}
	}
	if audit == nil {
		audit = []domain.QueryAuditEntry{}
	}
	return TrackDetailResponse{
		TrackResultResponse: NewTrackResultResponse(tr),
		Candidates:          candidates,
		QueryAudit:          audit,
	}
}
