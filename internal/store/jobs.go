package store

import (
	"database/sql"
	"time"

	"github.com/stuchain/cuepoint/internal/domain"
)

func (db *DB) CreateJob(job *domain.Job) error {
	query := `INSERT INTO jobs (id, status, playlist_name, playlist_path, write_tags, title_only, progress, created_at, updated_at)
		VALUES (:id, :status, :playlist_name, :playlist_path, :write_tags, :title_only, :progress, :created_at, :updated_at)`

	_, err := db.NamedExec(query, job)
	return err
}

func (db *DB) GetJob(id string) (*domain.Job, error) {
	query := `SELECT id, status, playlist_name, playlist_path, write_tags, title_only, progress,
		total_tracks, matched, unmatched, error, created_at, updated_at FROM jobs WHERE id = ?`

	job := &domain.Job{}
	err := db.Get(job, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (db *DB) ListJobs(limit int) ([]*domain.Job, error) {
	query := `SELECT id, status, playlist_name, playlist_path, write_tags, title_only, progress,
		total_tracks, matched, unmatched, error, created_at, updated_at
		FROM jobs ORDER BY created_at DESC LIMIT ?`

	var jobs []*domain.Job
	err := db.Select(&jobs, query, limit)
	return jobs, err
}

// NextQueuedJob returns the oldest queued job, or nil when the queue is
// empty.
func (db *DB) NextQueuedJob() (*domain.Job, error) {
	query := `SELECT id, status, playlist_name, playlist_path, write_tags, title_only, progress,
		total_tracks, matched, unmatched, error, created_at, updated_at
		FROM jobs WHERE status = ? ORDER BY created_at ASC LIMIT 1`

	job := &domain.Job{}
	err := db.Get(job, query, domain.JobStatusQueued)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (db *DB) UpdateJobStatus(id string, status domain.JobStatus, progress float64) error {
	query := `UPDATE jobs SET status = ?, progress = ?, updated_at = ? WHERE id = ?`
	_, err := db.Exec(query, status, progress, time.Now(), id)
	return err
}

// UpdateJobProgress refreshes the per-track counters while a job resolves.
func (db *DB) UpdateJobProgress(id string, progress float64, totalTracks, matched, unmatched int) error {
	query := `UPDATE jobs SET progress = ?, total_tracks = ?, matched = ?, unmatched = ?, updated_at = ? WHERE id = ?`
	_, err := db.Exec(query, progress, totalTracks, matched, unmatched, time.Now(), id)
	return err
}

func (db *DB) UpdateJobError(id string, errorMsg string) error {
	query := `UPDATE jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?`
	_, err := db.Exec(query, domain.JobStatusFailed, errorMsg, time.Now(), id)
	return err
}

// CancelJob marks an active job cancelled. Returns true when a row changed,
// false when the job was already finished or unknown.
func (db *DB) CancelJob(id string) (bool, error) {
	query := `UPDATE jobs SET status = ?, updated_at = ? WHERE id = ? AND status IN (?, ?, ?)`
	res, err := db.Exec(query, domain.JobStatusCancelled, time.Now(), id,
		domain.JobStatusQueued, domain.JobStatusParsing, domain.JobStatusResolving)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ResetStuckJobs requeues jobs left mid-flight by an unclean shutdown.
func (db *DB) ResetStuckJobs() error {
	query := `UPDATE jobs SET status = ?, progress = 0, updated_at = ? WHERE status IN (?, ?)`
	_, err := db.Exec(query, domain.JobStatusQueued, time.Now(),
		domain.JobStatusParsing, domain.JobStatusResolving)
	return err
}

func (db *DB) ClearFinishedJobs() error {
	query := `DELETE FROM jobs WHERE status IN (?, ?, ?)`
	_, err := db.Exec(query, domain.JobStatusCompleted, domain.JobStatusFailed, domain.JobStatusCancelled)
	return err
}

type JobStats struct {
	Total     int `db:"total"`
	Completed int `db:"completed"`
	Failed    int `db:"failed"`
	Cancelled int `db:"cancelled"`
}

func (db *DB) GetJobStats() (*JobStats, error) {
	query := `SELECT
		COUNT(*) as total,
		COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) as completed,
		COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) as failed,
		COALESCE(SUM(CASE WHEN status = 'cancelled' THEN 1 ELSE 0 END), 0) as cancelled
	FROM jobs
	WHERE status IN ('completed', 'failed', 'cancelled')`

	stats := &JobStats{}
	err := db.Get(stats, query)
	return stats, err
}
