package storage

import (
	"database/sql"
	"fmt"
	"log"
	"time"
)

// CreateRun inserts a new refresh run in the running state (synchronous:
// the caller needs the row to exist before the walk starts).
func (s *Store) CreateRun(record RunRecord) error {
	query := `INSERT INTO refresh_runs (run_id, state, started_at) VALUES (?, ?, ?)`
	_, err := s.db.Exec(query, record.RunID, record.State, record.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create run %s: %w", record.RunID, err)
	}
	return nil
}

// FinishRun closes a run with its final state and counters.
func (s *Store) FinishRun(runID, state string, pagesFetched, pagesFailed, entryCount int, errMsg string) error {
	query := `UPDATE refresh_runs
		SET state = ?, finished_at = ?, pages_fetched = ?, pages_failed = ?, entry_count = ?, error = ?
		WHERE run_id = ?`
	_, err := s.db.Exec(query, state, time.Now().UTC(), pagesFetched, pagesFailed, entryCount, errMsg, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", runID, err)
	}
	return nil
}

// GetRun retrieves one run by ID.
func (s *Store) GetRun(runID string) (*RunRecord, error) {
	var rec RunRecord
	query := `SELECT run_id, state, started_at, finished_at, pages_fetched, pages_failed, entry_count, error
		FROM refresh_runs WHERE run_id = ?`

	err := s.db.QueryRow(query, runID).Scan(
		&rec.RunID, &rec.State, &rec.StartedAt, &rec.FinishedAt,
		&rec.PagesFetched, &rec.PagesFailed, &rec.EntryCount, &rec.Error,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetRuns retrieves the most recent runs, newest first.
func (s *Store) GetRuns(limit int) ([]RunRecord, error) {
	query := `SELECT run_id, state, started_at, finished_at, pages_fetched, pages_failed, entry_count, error
		FROM refresh_runs ORDER BY started_at DESC`
	args := []any{}

	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		err := rows.Scan(
			&rec.RunID, &rec.State, &rec.StartedAt, &rec.FinishedAt,
			&rec.PagesFetched, &rec.PagesFailed, &rec.EntryCount, &rec.Error,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// LatestCompletedRun returns the most recently finished successful run,
// or nil when none exists yet.
func (s *Store) LatestCompletedRun() (*RunRecord, error) {
	var rec RunRecord
	query := `SELECT run_id, state, started_at, finished_at, pages_fetched, pages_failed, entry_count, error
		FROM refresh_runs WHERE state = 'completed'
		ORDER BY finished_at DESC LIMIT 1`

	err := s.db.QueryRow(query).Scan(
		&rec.RunID, &rec.State, &rec.StartedAt, &rec.FinishedAt,
		&rec.PagesFetched, &rec.PagesFailed, &rec.EntryCount, &rec.Error,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// RecordFetch appends one page outcome to the fetch log (async).
func (s *Store) RecordFetch(record FetchRecord) error {
	if !s.healthStatus.Load() {
		return nil
	}

	select {
	case s.writeChan <- func(tx *sql.Tx) error {
		query := `INSERT INTO fetch_log (run_id, code, url, status, attempts, entries, error, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := tx.Exec(query,
			record.RunID, record.Code, record.URL, record.Status,
			record.Attempts, record.Entries, record.Error, record.FetchedAt,
		)
		return err
	}:
		return nil
	default:
		log.Printf("Storage write queue full, dropping fetch log entry")
		return nil
	}
}

// GetFetchLog retrieves the per-page log of one run in visit order.
func (s *Store) GetFetchLog(runID string, limit int) ([]FetchRecord, error) {
	query := `SELECT log_id, run_id, code, url, status, attempts, entries, error, fetched_at
		FROM fetch_log WHERE run_id = ? ORDER BY log_id ASC`
	args := []any{runID}

	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []FetchRecord
	for rows.Next() {
		var rec FetchRecord
		err := rows.Scan(
			&rec.LogID, &rec.RunID, &rec.Code, &rec.URL, &rec.Status,
			&rec.Attempts, &rec.Entries, &rec.Error, &rec.FetchedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// DeleteFinishedRunsBefore removes finished runs older than the cutoff.
// Their fetch log rows go with them via the foreign key cascade.
func (s *Store) DeleteFinishedRunsBefore(cutoff time.Time) (int64, error) {
	query := `DELETE FROM refresh_runs WHERE state != 'running' AND started_at < ?`
	result, err := s.db.Exec(query, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
