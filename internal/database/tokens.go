package database

import (
	"database/sql"
	"fmt"
	"time"
)

// AthleteToken is the encrypted OAuth token pair for one service account
type AthleteToken struct {
	AthleteID       string
	RefreshTokenEnc string
	AccessTokenEnc  string
	ExpiresAt       int64
	Scope           *string
	CreatedAt       int64
	UpdatedAt       int64
}

// Athlete is the identity record created when an athlete authorizes the app
type Athlete struct {
	ID        string
	Firstname *string
	Lastname  *string
	RevokedAt *int64
	CreatedAt int64
	UpdatedAt int64
}

// UpsertAthlete inserts or updates an athlete identity, clearing any
// previous revocation
func (db *DB) UpsertAthlete(a *Athlete) error {
	now := time.Now().Unix()

	_, err := db.conn.Exec(`
		INSERT INTO athletes (id, firstname, lastname, revoked_at, created_at, updated_at)
		VALUES (?, ?, ?, NULL, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			firstname = excluded.firstname,
			lastname = excluded.lastname,
			revoked_at = NULL,
			updated_at = excluded.updated_at
	`, a.ID, a.Firstname, a.Lastname, now, now)

	if err != nil {
		return fmt.Errorf("failed to upsert athlete: %w", err)
	}
	return nil
}

// GetAthleteToken retrieves the token record for an athlete.
// Returns nil without error when no record exists.
func (db *DB) GetAthleteToken(athleteID string) (*AthleteToken, error) {
	var t AthleteToken
	err := db.conn.QueryRow(`
		SELECT athlete_id, refresh_token_enc, access_token_enc, expires_at, scope,
		       created_at, updated_at
		FROM athlete_tokens WHERE athlete_id = ?
	`, athleteID).Scan(
		&t.AthleteID, &t.RefreshTokenEnc, &t.AccessTokenEnc, &t.ExpiresAt, &t.Scope,
		&t.CreatedAt, &t.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get athlete token: %w", err)
	}
	return &t, nil
}

// UpsertAthleteToken inserts or replaces the token pair for an athlete
func (db *DB) UpsertAthleteToken(t *AthleteToken) error {
	now := time.Now().Unix()

	_, err := db.conn.Exec(`
		INSERT INTO athlete_tokens (
			athlete_id, refresh_token_enc, access_token_enc, expires_at, scope,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(athlete_id) DO UPDATE SET
			refresh_token_enc = excluded.refresh_token_enc,
			access_token_enc = excluded.access_token_enc,
			expires_at = excluded.expires_at,
			scope = excluded.scope,
			updated_at = excluded.updated_at
	`, t.AthleteID, t.RefreshTokenEnc, t.AccessTokenEnc, t.ExpiresAt, t.Scope, now, now)

	if err != nil {
		return fmt.Errorf("failed to upsert athlete token: %w", err)
	}
	return nil
}

// UpdateAthleteToken replaces the token pair and expiry for an existing
// record, used after a refresh
func (db *DB) UpdateAthleteToken(athleteID, refreshTokenEnc, accessTokenEnc string, expiresAt int64, scope *string) error {
	result, err := db.conn.Exec(`
		UPDATE athlete_tokens
		SET refresh_token_enc = ?, access_token_enc = ?, expires_at = ?, scope = ?, updated_at = ?
		WHERE athlete_id = ?
	`, refreshTokenEnc, accessTokenEnc, expiresAt, scope, time.Now().Unix(), athleteID)

	if err != nil {
		return fmt.Errorf("failed to update athlete token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("athlete token not found")
	}

	return nil
}
