// Package keychain adapts the OS credential manager to the auth storage contract.
//
// Secrets live in the platform keychain (Credential Manager, Keychain
// Services, or the freedesktop Secret Service) keyed by service name and
// account. The auth core only ever checks presence or absence of a record;
// it never compares secret values.
package keychain

import (
	"errors"
	"fmt"

	"github.com/mlenz/credenza/internal/auth/storage"
	apperrors "github.com/mlenz/credenza/internal/platform/errors"
	"github.com/zalando/go-keyring"
)

// Keychain implements storage.CredentialStore over the OS keychain.
type Keychain struct{}

var _ storage.CredentialStore = Keychain{}

// New returns a keychain-backed credential store.
func New() Keychain {
	return Keychain{}
}

// Set stores one opaque secret for (service, account), replacing any
// previous value.
func (Keychain) Set(service, account, secret string) error {
	if err := keyring.Set(service, account, secret); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageFailure,
			fmt.Sprintf("set keychain entry for %s", account), err)
	}
	return nil
}

// Get fetches the secret for (service, account). A missing entry maps to
// storage.ErrNotFound.
func (Keychain) Get(service, account string) (string, error) {
	secret, err := keyring.Get(service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", storage.ErrNotFound
		}
		return "", apperrors.Wrap(apperrors.CodeStorageFailure,
			fmt.Sprintf("get keychain entry for %s", account), err)
	}
	return secret, nil
}

// Delete removes the secret for (service, account). Deleting a missing
// entry is not an error, which keeps compensating cleanup idempotent.
func (Keychain) Delete(service, account string) error {
	if err := keyring.Delete(service, account); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return apperrors.Wrap(apperrors.CodeStorageFailure,
			fmt.Sprintf("delete keychain entry for %s", account), err)
	}
	return nil
}
