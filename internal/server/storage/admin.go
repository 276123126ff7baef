package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// CreateAdmin creates an admin account with transaction isolation so
// two concurrent creates cannot race past the uniqueness check.
func (s *Store) CreateAdmin(record AdminRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := s.adminExists(tx, record.Name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("admin name already exists")
	}

	query := `INSERT INTO admins (admin_id, name, secret_hash, created_at) VALUES (?, ?, ?, ?)`
	if _, err := tx.Exec(query, record.AdminID, record.Name, record.SecretHash, record.CreatedAt); err != nil {
		return err
	}

	return tx.Commit()
}

// adminExists verifies name uniqueness within a transaction
func (s *Store) adminExists(tx *sql.Tx, name string) (bool, error) {
	var count int
	err := tx.QueryRow(`SELECT COUNT(*) FROM admins WHERE name = ? COLLATE NOCASE`, name).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetAdminByName retrieves an admin with case-insensitive matching.
func (s *Store) GetAdminByName(name string) (*AdminRecord, error) {
	var rec AdminRecord
	query := `SELECT admin_id, name, secret_hash, created_at, last_login_at
		FROM admins WHERE name = ? COLLATE NOCASE`

	err := s.db.QueryRow(query, name).Scan(
		&rec.AdminID, &rec.Name, &rec.SecretHash, &rec.CreatedAt, &rec.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetAllAdmins retrieves every admin account, newest first.
func (s *Store) GetAllAdmins() ([]AdminRecord, error) {
	query := `SELECT admin_id, name, secret_hash, created_at, last_login_at
		FROM admins ORDER BY created_at DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []AdminRecord
	for rows.Next() {
		var rec AdminRecord
		err := rows.Scan(&rec.AdminID, &rec.Name, &rec.SecretHash, &rec.CreatedAt, &rec.LastLoginAt)
		if err != nil {
			return nil, err
		}
		admins = append(admins, rec)
	}

	return admins, rows.Err()
}

// UpdateAdminSecret replaces an admin's secret hash.
func (s *Store) UpdateAdminSecret(adminID, secretHash string) error {
	_, err := s.db.Exec(`UPDATE admins SET secret_hash = ? WHERE admin_id = ?`, secretHash, adminID)
	return err
}

// UpdateAdminLastLoginSync records a successful login time.
func (s *Store) UpdateAdminLastLoginSync(adminID string, loginTime time.Time) error {
	_, err := s.db.Exec(`UPDATE admins SET last_login_at = ? WHERE admin_id = ?`, loginTime, adminID)
	if err != nil {
		return fmt.Errorf("failed to update last login for admin %s: %w", adminID, err)
	}
	return nil
}

// DeleteAdminByName removes an admin account. Returns the number of
// rows removed so callers can report a miss.
func (s *Store) DeleteAdminByName(name string) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM admins WHERE name = ? COLLATE NOCASE`, name)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
