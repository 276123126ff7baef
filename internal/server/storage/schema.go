package storage

import "time"

// OpeningRecord is one persisted catalog entry. Moves holds the
// normalized tokens space-joined; Position is the entry's index in the
// sorted catalog, so loading by position reproduces the match order
// exactly, equal-length ties included.
type OpeningRecord struct {
	OpeningID  int64  `db:"opening_id"`
	Code       string `db:"code"`
	Name       string `db:"name"`
	Moves      string `db:"moves"`
	TokenCount int    `db:"token_count"`
	Position   int    `db:"position"`
	RunID      string `db:"run_id"`
}

// RunRecord tracks one catalog refresh from start to finish
type RunRecord struct {
	RunID        string     `db:"run_id"`
	State        string     `db:"state"`
	StartedAt    time.Time  `db:"started_at"`
	FinishedAt   *time.Time `db:"finished_at"` // nil while running
	PagesFetched int        `db:"pages_fetched"`
	PagesFailed  int        `db:"pages_failed"`
	EntryCount   int        `db:"entry_count"`
	Error        string     `db:"error"`
}

// FetchRecord is one page visit within a refresh run
type FetchRecord struct {
	LogID     int64     `db:"log_id"`
	RunID     string    `db:"run_id"`
	Code      string    `db:"code"`
	URL       string    `db:"url"`
	Status    string    `db:"status"` // "ok" or "failed"
	Attempts  int       `db:"attempts"`
	Entries   int       `db:"entries"`
	Error     string    `db:"error"`
	FetchedAt time.Time `db:"fetched_at"`
}

// AdminRecord is an operator account allowed to trigger refreshes
type AdminRecord struct {
	AdminID     string     `db:"admin_id"`
	Name        string     `db:"name"`
	SecretHash  string     `db:"secret_hash"`
	CreatedAt   time.Time  `db:"created_at"`
	LastLoginAt *time.Time `db:"last_login_at"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS openings (
	opening_id INTEGER PRIMARY KEY AUTOINCREMENT,
	code TEXT NOT NULL,
	name TEXT NOT NULL,
	moves TEXT NOT NULL,
	token_count INTEGER NOT NULL,
	position INTEGER NOT NULL,
	run_id TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_openings_code ON openings(code);
CREATE INDEX IF NOT EXISTS idx_openings_position ON openings(position);

CREATE TABLE IF NOT EXISTS refresh_runs (
	run_id TEXT PRIMARY KEY,
	state TEXT NOT NULL DEFAULT 'running' CHECK(state IN ('running', 'completed', 'failed')),
	started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	finished_at DATETIME,
	pages_fetched INTEGER NOT NULL DEFAULT 0,
	pages_failed INTEGER NOT NULL DEFAULT 0,
	entry_count INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_runs_state ON refresh_runs(state);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON refresh_runs(started_at);

CREATE TABLE IF NOT EXISTS fetch_log (
	log_id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	code TEXT NOT NULL,
	url TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('ok', 'failed')),
	attempts INTEGER NOT NULL DEFAULT 1,
	entries INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT '',
	fetched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (run_id) REFERENCES refresh_runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_fetch_log_run_id ON fetch_log(run_id);

CREATE TABLE IF NOT EXISTS admins (
	admin_id TEXT PRIMARY KEY,
	name TEXT UNIQUE NOT NULL COLLATE NOCASE,
	secret_hash TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_login_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_admins_name ON admins(name);
`
