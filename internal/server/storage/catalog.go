package storage

import (
	"fmt"
)

// ReplaceCatalog swaps the persisted catalog for a new one in a single
// transaction: readers see either the old rows or the new rows, never a
// partial mix. Records must arrive in catalog order with Position set.
func (s *Store) ReplaceCatalog(records []OpeningRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM openings`); err != nil {
		return fmt.Errorf("failed to clear openings: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO openings (
		code, name, moves, token_count, position, run_id
	) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.Exec(rec.Code, rec.Name, rec.Moves, rec.TokenCount, rec.Position, rec.RunID)
		if err != nil {
			return fmt.Errorf("failed to insert opening %s: %w", rec.Code, err)
		}
	}

	return tx.Commit()
}

// LoadCatalog returns the persisted catalog in match order.
func (s *Store) LoadCatalog() ([]OpeningRecord, error) {
	query := `SELECT opening_id, code, name, moves, token_count, position, run_id
		FROM openings ORDER BY position ASC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []OpeningRecord
	for rows.Next() {
		var rec OpeningRecord
		err := rows.Scan(
			&rec.OpeningID, &rec.Code, &rec.Name,
			&rec.Moves, &rec.TokenCount, &rec.Position, &rec.RunID,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// QueryOpenings retrieves openings filtered by exact code and/or a name
// substring, in match order.
func (s *Store) QueryOpenings(code, name string, limit int) ([]OpeningRecord, error) {
	query := `SELECT opening_id, code, name, moves, token_count, position, run_id
		FROM openings WHERE 1=1`
	args := []any{}

	if code != "" {
		query += ` AND code = ?`
		args = append(args, code)
	}
	if name != "" {
		query += ` AND name LIKE ? COLLATE NOCASE`
		args = append(args, "%"+name+"%")
	}

	query += ` ORDER BY position ASC`

	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []OpeningRecord
	for rows.Next() {
		var rec OpeningRecord
		err := rows.Scan(
			&rec.OpeningID, &rec.Code, &rec.Name,
			&rec.Moves, &rec.TokenCount, &rec.Position, &rec.RunID,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// CountOpenings returns the number of persisted catalog entries.
func (s *Store) CountOpenings() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM openings`).Scan(&count)
	return count, err
}

// CountCodes returns the number of distinct ECO codes in the catalog.
func (s *Store) CountCodes() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(DISTINCT code) FROM openings`).Scan(&count)
	return count, err
}
