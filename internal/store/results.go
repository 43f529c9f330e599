package store

import (
	"database/sql"
	"fmt"

	"github.com/stuchain/cuepoint/internal/domain"
)

// SaveTrackResult persists one resolved playlist entry together with its
// candidate records and query audit trail, atomically. The generated row id
// is written back to tr.ID.
func (db *DB) SaveTrackResult(tr *domain.TrackResult, candidates []domain.CandidateRecord, audit []domain.QueryAuditEntry) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.NamedExec(`INSERT INTO track_results (
			job_id, position, title, artist, location, year_hint, key_hint, status,
			best_url, best_title, best_artists, best_key, best_year, best_bpm, best_label, best_genre, best_score,
			last_query_index, queries_run, candidate_count, elapsed_ms, error, created_at
		) VALUES (
			:job_id, :position, :title, :artist, :location, :year_hint, :key_hint, :status,
			:best_url, :best_title, :best_artists, :best_key, :best_year, :best_bpm, :best_label, :best_genre, :best_score,
			:last_query_index, :queries_run, :candidate_count, :elapsed_ms, :error, :created_at
		)`, tr)
	if err != nil {
		return fmt.Errorf("insert track result: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("track result id: %w", err)
	}
	tr.ID = id

	for i := range candidates {
		c := candidates[i]
		_, err := tx.Exec(`INSERT INTO candidates (
				track_result_id, url, title, artists, key_name, release_year, bpm, label, genre,
				release_name, release_date, artwork_url,
				title_sim, artist_sim, base_score, bonus_year, bonus_key, score, guard_ok, reject_reason,
				query_index, query_text, candidate_index, elapsed_ms, is_winner
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, c.URL, c.Title, c.Artists, c.Key, c.ReleaseYear, c.BPM, c.Label, c.Genre,
			c.ReleaseName, c.ReleaseDate, c.ArtworkURL,
			c.TitleSim, c.ArtistSim, c.BaseScore, c.BonusYear, c.BonusKey, c.Score, c.GuardOK, c.RejectReason,
			c.QueryIndex, c.QueryText, c.CandidateIndex, c.ElapsedMS, c.IsWinner)
		if err != nil {
			return fmt.Errorf("insert candidate: %w", err)
		}
	}

	for i := range audit {
		a := audit[i]
		_, err := tx.Exec(`INSERT INTO query_audit (
				track_result_id, query_index, query_text, query_type, candidate_count, elapsed_ms, cache_hit, error
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, a.QueryIndex, a.QueryText, a.QueryType, a.CandidateCount, a.ElapsedMS, a.CacheHit, a.Error)
		if err != nil {
			return fmt.Errorf("insert query audit: %w", err)
		}
	}

	return tx.Commit()
}

func (db *DB) ListTrackResults(jobID string) ([]*domain.TrackResult, error) {
	query := `SELECT id, job_id, position, title, artist, location, year_hint, key_hint, status,
		best_url, best_title, best_artists, best_key, best_year, best_bpm, best_label, best_genre, best_score,
		last_query_index, queries_run, candidate_count, elapsed_ms, error, created_at
		FROM track_results WHERE job_id = ? ORDER BY position ASC`

	var results []*domain.TrackResult
	err := db.Select(&results, query, jobID)
	return results, err
}

func (db *DB) GetTrackResult(jobID string, position int) (*domain.TrackResult, error) {
	query := `SELECT id, job_id, position, title, artist, location, year_hint, key_hint, status,
		best_url, best_title, best_artists, best_key, best_year, best_bpm, best_label, best_genre, best_score,
		last_query_index, queries_run, candidate_count, elapsed_ms, error, created_at
		FROM track_results WHERE job_id = ? AND position = ?`

	tr := &domain.TrackResult{}
	err := db.Get(tr, query, jobID, position)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tr, nil
}

// ListCandidates returns a track's candidate records in discovery order.
func (db *DB) ListCandidates(trackResultID int64) ([]domain.CandidateRecord, error) {
	query := `SELECT url, title, artists, key_name, release_year, bpm, label, genre,
		release_name, release_date, artwork_url,
		title_sim, artist_sim, base_score, bonus_year, bonus_key, score, guard_ok, reject_reason,
		query_index, query_text, candidate_index, elapsed_ms, is_winner
		FROM candidates WHERE track_result_id = ? ORDER BY id ASC`

	var candidates []domain.CandidateRecord
	err := db.Select(&candidates, query, trackResultID)
	return candidates, err
}

func (db *DB) ListQueryAudit(trackResultID int64) ([]domain.QueryAuditEntry, error) {
	query := `SELECT query_index, query_text, query_type, candidate_count, elapsed_ms, cache_hit, error
		FROM query_audit WHERE track_result_id = ? ORDER BY query_index ASC`

	var audit []domain.QueryAuditEntry
	err := db.Select(&audit, query, trackResultID)
	return audit, err
}
