package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mlenz/credenza/internal/auth/storage"
	"github.com/mlenz/credenza/internal/auth/user"
)

// CreateUser persists a new account record.
//
// The users.email UNIQUE constraint is the authority on duplicates; a
// violation surfaces as storage.ErrDuplicateEmail so concurrent
// registrations cannot race past an application-level lookup.
func (s *Store) CreateUser(ctx context.Context, u user.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if strings.TrimSpace(u.PasswordHash) == "" {
		return fmt.Errorf("password hash is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO users (id, email, password_hash, biometric_enabled, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.Email,
		u.PasswordHash,
		boolToInt(u.BiometricEnabled),
		toMillis(u.CreatedAt),
		toMillis(u.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUserByEmail fetches a user record by its normalized email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return user.User{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(email) == "" {
		return user.User{}, fmt.Errorf("email is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, email, password_hash, biometric_enabled, created_at, updated_at
FROM users
WHERE email = ?`, email)

	var u user.User
	var biometric int64
	var createdAt, updatedAt int64
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &biometric, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, storage.ErrNotFound
		}
		return user.User{}, fmt.Errorf("get user by email: %w", err)
	}

	u.BiometricEnabled = biometric != 0
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, nil
}

// SetBiometricEnabled updates the biometric flag for a user.
func (s *Store) SetBiometricEnabled(ctx context.Context, userID string, enabled bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE users
SET biometric_enabled = ?, updated_at = ?
WHERE id = ?`,
		boolToInt(enabled),
		nowMillis(),
		userID,
	)
	if err != nil {
		return fmt.Errorf("update biometric flag: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("biometric flag rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func boolToInt(value bool) int64 {
	if value {
		return 1
	}
	return 0
}
