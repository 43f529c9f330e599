package store

const Schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	playlist_name TEXT NOT NULL,
	playlist_path TEXT NOT NULL,
	write_tags BOOLEAN NOT NULL DEFAULT 0,
	title_only BOOLEAN NOT NULL DEFAULT 0,
	progress REAL NOT NULL DEFAULT 0,
	total_tracks INTEGER NOT NULL DEFAULT 0,
	matched INTEGER NOT NULL DEFAULT 0,
	unmatched INTEGER NOT NULL DEFAULT 0,
	error TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);

CREATE TABLE IF NOT EXISTS track_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id TEXT NOT NULL,
	position INTEGER NOT NULL,

	-- Playlist input.
	title TEXT NOT NULL,
	artist TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	year_hint INTEGER NOT NULL DEFAULT 0,
	key_hint TEXT NOT NULL DEFAULT '',

	status TEXT NOT NULL,

	-- Winner snapshot, null when unmatched.
	best_url TEXT,
	best_title TEXT,
	best_artists TEXT,
	best_key TEXT,
	best_year INTEGER,
	best_bpm INTEGER,
	best_label TEXT,
	best_genre TEXT,
	best_score REAL,

	last_query_index INTEGER NOT NULL DEFAULT -1,
	queries_run INTEGER NOT NULL DEFAULT 0,
	candidate_count INTEGER NOT NULL DEFAULT 0,
	elapsed_ms INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT '',

	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,

	UNIQUE (job_id, position),
	FOREIGN KEY (job_id) REFERENCES jobs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_track_results_job_id ON track_results(job_id);

CREATE TABLE IF NOT EXISTS candidates (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	track_result_id INTEGER NOT NULL,

	url TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	artists TEXT NOT NULL DEFAULT '',
	key_name TEXT NOT NULL DEFAULT '',
	release_year INTEGER NOT NULL DEFAULT 0,
	bpm INTEGER NOT NULL DEFAULT 0,
	label TEXT NOT NULL DEFAULT '',
	genre TEXT NOT NULL DEFAULT '',
	release_name TEXT NOT NULL DEFAULT '',
	release_date TEXT NOT NULL DEFAULT '',
	artwork_url TEXT NOT NULL DEFAULT '',

	title_sim INTEGER NOT NULL DEFAULT 0,
	artist_sim INTEGER NOT NULL DEFAULT 0,
	base_score REAL NOT NULL DEFAULT 0,
	bonus_year INTEGER NOT NULL DEFAULT 0,
	bonus_key INTEGER NOT NULL DEFAULT 0,
	score REAL NOT NULL DEFAULT 0,
	guard_ok BOOLEAN NOT NULL DEFAULT 0,
	reject_reason TEXT NOT NULL DEFAULT '',

	query_index INTEGER NOT NULL DEFAULT 0,
	query_text TEXT NOT NULL DEFAULT '',
	candidate_index INTEGER NOT NULL DEFAULT 0,
	elapsed_ms INTEGER NOT NULL DEFAULT 0,
	is_winner BOOLEAN NOT NULL DEFAULT 0,

	FOREIGN KEY (track_result_id) REFERENCES track_results(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_candidates_track_result_id ON candidates(track_result_id);

CREATE TABLE IF NOT EXISTS query_audit (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	track_result_id INTEGER NOT NULL,

	query_index INTEGER NOT NULL,
	query_text TEXT NOT NULL,
	query_type TEXT NOT NULL,
	candidate_count INTEGER NOT NULL DEFAULT 0,
	elapsed_ms INTEGER NOT NULL DEFAULT 0,
	cache_hit BOOLEAN NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT '',

	FOREIGN KEY (track_result_id) REFERENCES track_results(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_query_audit_track_result_id ON query_audit(track_result_id);

CREATE TABLE IF NOT EXISTS cache (
	key TEXT PRIMARY KEY,
	data BLOB,
	expires_at DATETIME
);
`
