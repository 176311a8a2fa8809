// Package id generates opaque identifiers for persistent records.
//
// Identifiers are UUIDv4 bytes encoded as unpadded lowercase base32, which
// keeps them compact, URL-safe, and free of case-sensitivity hazards in
// SQLite keys and keychain account names.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a 26-character lowercase base32 identifier.
func NewID() (string, error) {
	raw, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(raw[:])), nil
}
