package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mlenz/credenza/internal/auth/storage"
	"github.com/mlenz/credenza/internal/auth/user"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "credenza.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func testUser(id, email string) user.User {
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	return user.User{
		ID:           id,
		Email:        email,
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestCreateGetUserRoundTrip(t *testing.T) {
	store := openTempStore(t)

	input := testUser("user-1", "alice@example.com")
	if err := store.CreateUser(context.Background(), input); err != nil {
		t.Fatalf("create user: %v", err)
	}

	got, err := store.GetUserByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("get user by email: %v", err)
	}
	if got.ID != input.ID || got.Email != input.Email || got.PasswordHash != input.PasswordHash {
		t.Fatalf("unexpected user: %+v", got)
	}
	if got.BiometricEnabled {
		t.Fatal("expected biometric flag to round trip as false")
	}
	if !got.CreatedAt.Equal(input.CreatedAt) {
		t.Fatalf("expected created at %v, got %v", input.CreatedAt, got.CreatedAt)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	store := openTempStore(t)

	if err := store.CreateUser(context.Background(), testUser("user-1", "alice@example.com")); err != nil {
		t.Fatalf("create user: %v", err)
	}

	err := store.CreateUser(context.Background(), testUser("user-2", "alice@example.com"))
	if !errors.Is(err, storage.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email error, got %v", err)
	}
}

func TestCreateUserRequiresFields(t *testing.T) {
	store := openTempStore(t)

	tests := []struct {
		name  string
		input user.User
	}{
		{name: "missing id", input: user.User{Email: "a@x.com", PasswordHash: "h"}},
		{name: "missing email", input: user.User{ID: "u1", PasswordHash: "h"}},
		{name: "missing hash", input: user.User{ID: "u1", Email: "a@x.com"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := store.CreateUser(context.Background(), tc.input); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestGetUserByEmailNotFound(t *testing.T) {
	store := openTempStore(t)

	_, err := store.GetUserByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestSetBiometricEnabled(t *testing.T) {
	store := openTempStore(t)

	if err := store.CreateUser(context.Background(), testUser("user-1", "alice@example.com")); err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := store.SetBiometricEnabled(context.Background(), "user-1", true); err != nil {
		t.Fatalf("set biometric enabled: %v", err)
	}

	got, err := store.GetUserByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("get user by email: %v", err)
	}
	if !got.BiometricEnabled {
		t.Fatal("expected biometric flag set")
	}

	err = store.SetBiometricEnabled(context.Background(), "missing-user", true)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found for missing user, got %v", err)
	}
}

func TestPasskeyCredentialRoundTrip(t *testing.T) {
	store := openTempStore(t)

	created := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	credential := storage.PasskeyCredential{
		CredentialID:   "cred-1",
		Account:        "alice@example.com",
		CredentialJSON: `{"id":"cred-1"}`,
		CreatedAt:      created,
		UpdatedAt:      created,
	}
	if err := store.PutPasskeyCredential(context.Background(), credential); err != nil {
		t.Fatalf("put passkey credential: %v", err)
	}

	listed, err := store.ListPasskeyCredentials(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("list passkey credentials: %v", err)
	}
	if len(listed) != 1 || listed[0].CredentialID != "cred-1" {
		t.Fatalf("unexpected credentials: %+v", listed)
	}
	if listed[0].LastUsedAt != nil {
		t.Fatal("expected empty last used timestamp")
	}

	usedAt := created.Add(time.Hour)
	credential.LastUsedAt = &usedAt
	credential.UpdatedAt = usedAt
	if err := store.PutPasskeyCredential(context.Background(), credential); err != nil {
		t.Fatalf("update passkey credential: %v", err)
	}

	listed, err = store.ListPasskeyCredentials(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("list passkey credentials: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected upsert, got %d credentials", len(listed))
	}
	if listed[0].LastUsedAt == nil || !listed[0].LastUsedAt.Equal(usedAt) {
		t.Fatalf("expected last used %v, got %v", usedAt, listed[0].LastUsedAt)
	}

	if err := store.DeletePasskeyCredential(context.Background(), "cred-1"); err != nil {
		t.Fatalf("delete passkey credential: %v", err)
	}
	listed, err = store.ListPasskeyCredentials(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("list passkey credentials: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected no credentials after delete, got %d", len(listed))
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credenza.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.CreateUser(context.Background(), testUser("user-1", "alice@example.com")); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer func() {
		_ = reopened.Close()
	}()

	if _, err := reopened.GetUserByEmail(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("get user after reopen: %v", err)
	}
}
