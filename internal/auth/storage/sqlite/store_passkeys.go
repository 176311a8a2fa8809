package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mlenz/credenza/internal/auth/storage"
)

// PutPasskeyCredential stores or replaces a WebAuthn credential.
func (s *Store) PutPasskeyCredential(ctx context.Context, credential storage.PasskeyCredential) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(credential.CredentialID) == "" {
		return fmt.Errorf("credential id is required")
	}
	if strings.TrimSpace(credential.Account) == "" {
		return fmt.Errorf("account is required")
	}
	if strings.TrimSpace(credential.CredentialJSON) == "" {
		return fmt.Errorf("credential json is required")
	}

	lastUsed := sql.NullInt64{}
	if credential.LastUsedAt != nil {
		lastUsed = sql.NullInt64{Int64: toMillis(*credential.LastUsedAt), Valid: true}
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO passkey_credentials (credential_id, account, credential_json, created_at, updated_at, last_used_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(credential_id) DO UPDATE SET
    credential_json = excluded.credential_json,
    updated_at = excluded.updated_at,
    last_used_at = excluded.last_used_at`,
		credential.CredentialID,
		credential.Account,
		credential.CredentialJSON,
		toMillis(credential.CreatedAt),
		toMillis(credential.UpdatedAt),
		lastUsed,
	)
	if err != nil {
		return fmt.Errorf("put passkey credential: %w", err)
	}
	return nil
}

// ListPasskeyCredentials returns stored credentials for an account.
func (s *Store) ListPasskeyCredentials(ctx context.Context, account string) ([]storage.PasskeyCredential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(account) == "" {
		return nil, fmt.Errorf("account is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT credential_id, account, credential_json, created_at, updated_at, last_used_at
FROM passkey_credentials
WHERE account = ?
ORDER BY created_at`, account)
	if err != nil {
		return nil, fmt.Errorf("list passkey credentials: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	credentials := make([]storage.PasskeyCredential, 0)
	for rows.Next() {
		var credential storage.PasskeyCredential
		var createdAt, updatedAt int64
		var lastUsed sql.NullInt64
		if err := rows.Scan(
			&credential.CredentialID,
			&credential.Account,
			&credential.CredentialJSON,
			&createdAt,
			&updatedAt,
			&lastUsed,
		); err != nil {
			return nil, fmt.Errorf("scan passkey credential: %w", err)
		}
		credential.CreatedAt = fromMillis(createdAt)
		credential.UpdatedAt = fromMillis(updatedAt)
		if lastUsed.Valid {
			usedAt := fromMillis(lastUsed.Int64)
			credential.LastUsedAt = &usedAt
		}
		credentials = append(credentials, credential)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate passkey credentials: %w", err)
	}
	return credentials, nil
}

// DeletePasskeyCredential removes a stored credential.
func (s *Store) DeletePasskeyCredential(ctx context.Context, credentialID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(credentialID) == "" {
		return fmt.Errorf("credential id is required")
	}

	if _, err := s.sqlDB.ExecContext(ctx,
		"DELETE FROM passkey_credentials WHERE credential_id = ?", credentialID); err != nil {
		return fmt.Errorf("delete passkey credential: %w", err)
	}
	return nil
}
