package domain

import (
	"database/sql"
	"time"
)

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusParsing   JobStatus = "parsing"
	JobStatusResolving JobStatus = "resolving"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Active reports whether the job still needs worker attention.
func (s JobStatus) Active() bool {
	return s == JobStatusQueued || s == JobStatusParsing || s == JobStatusResolving
}

// Job is one playlist resolution run.
type Job struct {
	ID           string    `json:"id" db:"id"`
	Status       JobStatus `json:"status" db:"status"`
	PlaylistName string    `json:"playlist_name" db:"playlist_name"`
	PlaylistPath string    `json:"-" db:"playlist_path"`
	WriteTags    bool      `json:"write_tags" db:"write_tags"`
	TitleOnly    bool      `json:"title_only" db:"title_only"`

	Progress    float64 `json:"progress" db:"progress"` // 0-100
	TotalTracks int     `json:"total_tracks" db:"total_tracks"`
	Matched     int     `json:"matched" db:"matched"`
	Unmatched   int     `json:"unmatched" db:"unmatched"`

	Error     *string   `json:"error,omitempty" db:"error"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type TrackStatus string

const (
	TrackStatusPending   TrackStatus = "pending"
	TrackStatusMatched   TrackStatus = "matched"
	TrackStatusUnmatched TrackStatus = "unmatched"
	TrackStatusError     TrackStatus = "error"
)

// TrackResult is the persisted outcome for one playlist entry. Winner fields
// are null when the track did not match.
type TrackResult struct {
	ID       int64  `json:"id" db:"id"`
	JobID    string `json:"job_id" db:"job_id"`
	Position int    `json:"position" db:"position"`

	// Playlist input.
	Title    string `json:"title" db:"title"`
	Artist   string `json:"artist" db:"artist"`
	Location string `json:"location,omitempty" db:"location"`
	YearHint int    `json:"year_hint,omitempty" db:"year_hint"`
	KeyHint  string `json:"key_hint,omitempty" db:"key_hint"`

	Status TrackStatus `json:"status" db:"status"`

	// Winner snapshot.
	BestURL     sql.NullString  `json:"best_url,omitempty" db:"best_url"`
	BestTitle   sql.NullString  `json:"best_title,omitempty" db:"best_title"`
	BestArtists sql.NullString  `json:"best_artists,omitempty" db:"best_artists"`
	BestKey     sql.NullString  `json:"best_key,omitempty" db:"best_key"`
	BestYear    sql.NullInt64   `json:"best_year,omitempty" db:"best_year"`
	BestBPM     sql.NullInt64   `json:"best_bpm,omitempty" db:"best_bpm"`
	BestLabel   sql.NullString  `json:"best_label,omitempty" db:"best_label"`
	BestGenre   sql.NullString  `json:"best_genre,omitempty" db:"best_genre"`
	BestScore   sql.NullFloat64 `json:"best_score,omitempty" db:"best_score"`

	LastQueryIndex int    `json:"last_query_index" db:"last_query_index"`
	QueriesRun     int    `json:"queries_run" db:"queries_run"`
	CandidateCount int    `json:"candidate_count" db:"candidate_count"`
	ElapsedMS      int64  `json:"elapsed_ms" db:"elapsed_ms"`
	Error          string `json:"error,omitempty" db:"error"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
