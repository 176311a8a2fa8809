// Package enroll mints and validates biometric enrollment tokens.
//
// The token stored in the OS keychain after a successful enrollment ceremony
// is a signed HMAC JWT carrying the user id and enrollment time. The auth
// core treats it as opaque: its presence is the enrollment evidence, and it
// is never validated on the login path. Signing keeps the record
// self-describing for support tooling without turning it into a second
// source of authorization.
package enroll

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mlenz/credenza/internal/auth/storage"
	"github.com/mlenz/credenza/internal/platform/id"
	"github.com/mlenz/credenza/internal/random"
)

const (
	tokenIssuer = "credenza"

	// signingKeyAccount is the keychain account holding the per-install
	// signing key, alongside the per-user enrollment records.
	signingKeyAccount = "__credenza_signing_key"

	signingKeySize = 32
)

// tokenClaims is the internal claims type used for JWT encoding.
type tokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// Token captures validated enrollment token claims.
type Token struct {
	UserID     string
	Email      string
	EnrolledAt time.Time
}

// Minter issues enrollment tokens signed with a per-install key.
type Minter struct {
	key []byte
	now func() time.Time
}

// NewMinter creates a token minter from existing key material.
func NewMinter(key []byte, now func() time.Time) (*Minter, error) {
	if len(key) != signingKeySize {
		return nil, fmt.Errorf("signing key must be %d bytes, got %d", signingKeySize, len(key))
	}
	if now == nil {
		now = time.Now
	}
	return &Minter{key: key, now: now}, nil
}

// LoadMinter loads the per-install signing key from the credential store,
// generating and persisting one on first use.
func LoadMinter(credentials storage.CredentialStore, service string, now func() time.Time) (*Minter, error) {
	if credentials == nil {
		return nil, fmt.Errorf("credential store is required")
	}
	if strings.TrimSpace(service) == "" {
		return nil, fmt.Errorf("service name is required")
	}

	encoded, err := credentials.Get(service, signingKeyAccount)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("load signing key: %w", err)
		}
		key, err := random.NewKey(signingKeySize)
		if err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
		if err := credentials.Set(service, signingKeyAccount, base64.StdEncoding.EncodeToString(key)); err != nil {
			return nil, fmt.Errorf("persist signing key: %w", err)
		}
		return NewMinter(key, now)
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode signing key: %w", err)
	}
	return NewMinter(key, now)
}

// Mint issues a signed enrollment token for a user.
func (m *Minter) Mint(userID, email string) (string, error) {
	if m == nil {
		return "", fmt.Errorf("minter is not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(email) == "" {
		return "", fmt.Errorf("email is required")
	}

	jti, err := id.NewID()
	if err != nil {
		return "", fmt.Errorf("generate token id: %w", err)
	}

	issuedAt := m.now().UTC()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   tokenIssuer,
			Subject:  email,
			ID:       jti,
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
		UserID: userID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign enrollment token: %w", err)
	}
	return signed, nil
}

// Parse validates a token signature and returns its claims. It exists for
// support tooling; the login path never calls it.
func (m *Minter) Parse(token string) (Token, error) {
	if m == nil {
		return Token{}, fmt.Errorf("minter is not configured")
	}

	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(strings.TrimSpace(token), &parsed, func(token *jwt.Token) (any, error) {
		return m.key, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil {
		return Token{}, fmt.Errorf("parse enrollment token: %w", err)
	}

	enrolledAt := time.Time{}
	if parsed.IssuedAt != nil {
		enrolledAt = parsed.IssuedAt.Time
	}
	return Token{
		UserID:     parsed.UserID,
		Email:      parsed.Subject,
		EnrolledAt: enrolledAt,
	}, nil
}
