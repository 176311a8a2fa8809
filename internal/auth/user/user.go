// Package user provides identity records and credential rules for local accounts.
package user

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/mlenz/credenza/internal/platform/errors"
	"github.com/mlenz/credenza/internal/platform/id"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidEmail indicates an email that fails basic shape checks.
	ErrInvalidEmail = apperrors.New(apperrors.CodeInvalidInput, "email must contain @")
	// ErrShortPassword indicates a password below the minimum length.
	ErrShortPassword = apperrors.New(apperrors.CodeInvalidInput, "password must be at least 6 characters")
)

// MinPasswordLength is the minimum accepted password length for registration.
const MinPasswordLength = 6

// User represents a local account record.
type User struct {
	ID               string
	Email            string
	PasswordHash     string
	BiometricEnabled bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CreateUserInput describes the data needed to create a user.
type CreateUserInput struct {
	Email    string
	Password string
}

// NormalizeEmail lowercases and trims an email address so lookups and the
// storage uniqueness constraint agree on one canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail enforces the minimal shape accepted for local accounts.
func ValidateEmail(email string) error {
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrShortPassword
	}
	return nil
}

// CreateUser creates a durable user identity from validated input.
//
// This is the canonical point where untrusted registration data becomes a
// stable identity: the email is normalized, the password is hashed, and the
// biometric flag starts false until an enrollment ceremony succeeds.
func CreateUser(input CreateUserInput, now func() time.Time, idGenerator func() (string, error)) (User, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.Email = NormalizeEmail(input.Email)
	if err := ValidateEmail(input.Email); err != nil {
		return User{}, err
	}
	if err := ValidatePassword(input.Password); err != nil {
		return User{}, err
	}

	userID, err := idGenerator()
	if err != nil {
		return User{}, fmt.Errorf("generate user id: %w", err)
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	createdAt := now().UTC()
	return User{
		ID:           userID,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}, nil
}

// HashPassword derives a bcrypt hash from a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether a plaintext password matches a stored hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
