package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"encore/internal/auth"
	"encore/internal/shared"
)

// CredentialRepository persists OAuth credentials, one row per listener.
// Implements [auth.Store].
type CredentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository creates a new [CredentialRepository] with the given database connection
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Load retrieves a listener's credential. Returns [shared.ErrNoCredential]
// when the listener has never authorized.
func (r *CredentialRepository) Load(listenerID string) (auth.Credential, error) {
	query := `
		SELECT access_token, refresh_token, expires_at
		FROM credentials
		WHERE listener_id = ?
	`

	var (
		accessToken  string
		refreshToken string
		expiresAt    time.Time
	)

	err := r.db.QueryRow(query, listenerID).Scan(&accessToken, &refreshToken, &expiresAt)
	if err == sql.ErrNoRows {
		return auth.Credential{}, fmt.Errorf("%w: %s", shared.ErrNoCredential, listenerID)
	}
	if err != nil {
		return auth.Credential{}, fmt.Errorf("failed to query credential: %w", err)
	}

	return auth.Credential{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// Save upserts a listener's credential.
func (r *CredentialRepository) Save(listenerID string, cred auth.Credential) error {
	query := `
		INSERT INTO credentials (listener_id, access_token, refresh_token, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(listener_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query, listenerID, cred.AccessToken, cred.RefreshToken, cred.ExpiresAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}

	return nil
}

// Delete removes a listener's credential, forcing re-authorization.
func (r *CredentialRepository) Delete(listenerID string) error {
	result, err := r.db.Exec("DELETE FROM credentials WHERE listener_id = ?", listenerID)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrNoCredential, listenerID)
	}

	return nil
}
