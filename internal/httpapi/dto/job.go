package dto

import (
	"github.com/stuchain/cuepoint/internal/domain"
	"github.com/stuchain/cuepoint/internal/store"
)

type JobResponse struct {
	ID           string  `json:"id"`
	Status       string  `json:"status"`
	PlaylistName string  `json:"playlist_name"`
	WriteTags    bool    `json:"write_tags"`
	TitleOnly    bool    `json:"title_only"`
	Progress     float64 `json:"progress"`
	TotalTracks  int     `json:"total_tracks"`
	Matched      int     `json:"matched"`
	Unmatched    int     `json:"unmatched"`
	Error        string  `json:"error,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func NewJobResponse(j *domain.Job) JobResponse {
	resp := JobResponse{
		ID:           j.ID,
		Status:       string(j.Status),
		PlaylistName: j.PlaylistName,
		WriteTags:    j.WriteTags,
		TitleOnly:    j.TitleOnly,
		Progress:     j.Progress,
		TotalTracks:  j.TotalTracks,
		Matched:      j.Matched,
		Unmatched:    j.Unmatched,
		CreatedAt:    j.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:    j.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if j.Error != nil {
		resp.Error = *j.Error
	}
	return resp
}

func NewJobListResponse(jobs []*domain.Job) []JobResponse {
	out := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, NewJobResponse(j))
	}
	return out
}

type StatsResponse struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

func NewStatsResponse(s *store.JobStats) StatsResponse {
	return StatsResponse{
		Total:     s.Total,
		Completed: s.Completed,
		Failed:    s.Failed,
		Cancelled: s.Cancelled,
	}
}
