// FILE: internal/server/service/admin.go
package service

import (
	"fmt"
	"time"

	"eco/internal/server/storage"

	"github.com/google/uuid"
	"github.com/lixenwraith/auth"
)

// Admin represents a registered administrator account
type Admin struct {
	AdminID     string
	Name        string
	CreatedAt   time.Time
	LastLoginAt *time.Time
}

// CreateAdmin creates a new admin account with transactional consistency
func (s *Service) CreateAdmin(name, secret string) (*Admin, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	secretHash, err := auth.HashPassword(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to hash secret: %w", err)
	}

	admin := &Admin{
		AdminID:   uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	record := storage.AdminRecord{
		AdminID:    admin.AdminID,
		Name:       name,
		SecretHash: secretHash,
		CreatedAt:  admin.CreatedAt,
	}

	if err = s.store.CreateAdmin(record); err != nil {
		return nil, err
	}

	return admin, nil
}

// AuthenticateAdmin verifies admin credentials and returns account information
func (s *Service) AuthenticateAdmin(name, secret string) (*Admin, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	record, err := s.store.GetAdminByName(name)
	if err != nil {
		// Always hash to prevent timing attacks
		auth.HashPassword(secret)
		return nil, fmt.Errorf("invalid credentials")
	}

	if err := auth.VerifyPassword(secret, record.SecretHash); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	return &Admin{
		AdminID:     record.AdminID,
		Name:        record.Name,
		CreatedAt:   record.CreatedAt,
		LastLoginAt: record.LastLoginAt,
	}, nil
}

// UpdateLastLogin updates the last login timestamp for an admin
func (s *Service) UpdateLastLogin(adminID string) error {
	if s.store == nil {
		return ErrStorageDisabled
	}

	if err := s.store.UpdateAdminLastLoginSync(adminID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to update last login time for admin %s: %w", adminID, err)
	}
	return nil
}

// GenerateAdminToken creates a JWT token for the specified admin
func (s *Service) GenerateAdminToken(admin *Admin) (string, time.Time, error) {
	claims := map[string]any{
		"name": admin.Name,
	}

	expiresAt := time.Now().UTC().Add(TokenTTL)
	token, err := auth.GenerateHS256Token(s.jwtSecret, admin.AdminID, claims, TokenTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ValidateToken verifies a JWT token and returns the admin ID with claims
func (s *Service) ValidateToken(token string) (string, map[string]any, error) {
	return auth.ValidateHS256Token(s.jwtSecret, token)
}
