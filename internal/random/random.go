// Package random provides cryptographic random material helpers.
//
// It uses crypto/rand for key generation so callers never reach for a
// weaker source by accident.
package random

import (
	crand "crypto/rand"
	"fmt"
)

// NewKey generates size bytes of cryptographic key material.
func NewKey(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("key size must be positive, got %d", size)
	}
	key := make([]byte, size)
	if _, err := crand.Read(key); err != nil {
		return nil, fmt.Errorf("read random key: %w", err)
	}
	return key, nil
}
