// Package storage defines the persistence contracts consumed by the auth core.
package storage

import (
	"context"
	"time"

	"github.com/mlenz/credenza/internal/auth/user"
	"github.com/mlenz/credenza/internal/platform/errors"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New(errors.CodeNotFound, "record not found")

// ErrDuplicateEmail indicates a user record with the same email already exists.
var ErrDuplicateEmail = errors.New(errors.CodeDuplicateUser, "email already exists")

// UserStore persists local account records.
//
// Email uniqueness is enforced by the store itself, not by application-level
// checks, so concurrent registrations cannot race past a lookup.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) error
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	SetBiometricEnabled(ctx context.Context, userID string, enabled bool) error
}

// CredentialStore maps (service, account) to one opaque secret token.
//
// The core never reads a secret back for comparison; presence or absence is
// the only signal consumed.
type CredentialStore interface {
	Set(service, account, secret string) error
	Get(service, account string) (string, error)
	Delete(service, account string) error
}

// PasskeyCredential stores a WebAuthn platform credential keyed by the
// account it verifies. It is verifier-internal enrollment state and is
// deliberately not linked to the user directory.
type PasskeyCredential struct {
	CredentialID   string
	Account        string
	CredentialJSON string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastUsedAt     *time.Time
}

// PasskeyStore persists WebAuthn credential data for the platform verifier.
type PasskeyStore interface {
	PutPasskeyCredential(ctx context.Context, credential PasskeyCredential) error
	ListPasskeyCredentials(ctx context.Context, account string) ([]PasskeyCredential, error)
	DeletePasskeyCredential(ctx context.Context, credentialID string) error
}
