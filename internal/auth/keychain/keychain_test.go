package keychain

import (
	"errors"
	"testing"

	"github.com/mlenz/credenza/internal/auth/storage"
	"github.com/zalando/go-keyring"
)

const testService = "credenza-test"

func TestSetGetDeleteRoundTrip(t *testing.T) {
	keyring.MockInit()
	store := New()

	if err := store.Set(testService, "alice@example.com", "token-1"); err != nil {
		t.Fatalf("set: %v", err)
	}

	secret, err := store.Get(testService, "alice@example.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if secret != "token-1" {
		t.Fatalf("expected token-1, got %q", secret)
	}

	if err := store.Set(testService, "alice@example.com", "token-2"); err != nil {
		t.Fatalf("replace: %v", err)
	}
	secret, err = store.Get(testService, "alice@example.com")
	if err != nil {
		t.Fatalf("get after replace: %v", err)
	}
	if secret != "token-2" {
		t.Fatalf("expected replacement token, got %q", secret)
	}

	if err := store.Delete(testService, "alice@example.com"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(testService, "alice@example.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestGetMissingMapsToNotFound(t *testing.T) {
	keyring.MockInit()
	store := New()

	_, err := store.Get(testService, "nobody@example.com")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteMissingIsIdempotent(t *testing.T) {
	keyring.MockInit()
	store := New()

	if err := store.Delete(testService, "nobody@example.com"); err != nil {
		t.Fatalf("expected idempotent delete, got %v", err)
	}
}
