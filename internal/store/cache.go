package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/stuchain/cuepoint/internal/constants"
)

// Catalog response cache, keyed by request shape (see catalog.CachedProvider
// for key construction). Expiry is enforced lazily: an expired row is
// evicted by the read that finds it.

var (
	cacheGetQuery = fmt.Sprintf(
		`SELECT data, expires_at FROM %s WHERE key = ?`, constants.CacheTable)
	cacheEvictQuery  = fmt.Sprintf(`DELETE FROM %s WHERE key = ?`, constants.CacheTable)
	cacheUpsertQuery = fmt.Sprintf(
		`INSERT INTO %s (key, data, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`,
		constants.CacheTable)
	cacheClearQuery = fmt.Sprintf(`DELETE FROM %s`, constants.CacheTable)
)

// GetCache returns the cached payload for key, or nil for a miss. An
// expired row counts as a miss and is deleted.
func (db *DB) GetCache(key string) ([]byte, error) {
	var row struct {
		Data      []byte       `db:"data"`
		ExpiresAt sql.NullTime `db:"expires_at"`
	}
	if err := db.Get(&row, cacheGetQuery, key); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get cache: %w", err)
	}

	if row.ExpiresAt.Valid && !time.Now().Before(row.ExpiresAt.Time) {
		if _, err := db.Exec(cacheEvictQuery, key); err != nil {
			return nil, fmt.Errorf("evict expired cache: %w", err)
		}
		return nil, nil
	}
	return row.Data, nil
}

// SetCache upserts a payload under key. ttl 0 stores it without expiry; a
// negative ttl writes an already-expired row.
func (db *DB) SetCache(key string, data []byte, ttl time.Duration) error {
	var expiresAt interface{}
	if ttl != 0 {
		expiresAt = time.Now().Add(ttl)
	}
	if _, err := db.Exec(cacheUpsertQuery, key, data, expiresAt); err != nil {
		return fmt.Errorf("set cache: %w", err)
	}
	return nil
}

func (db *DB) ClearCache() error {
	if _, err := db.Exec(cacheClearQuery); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}
