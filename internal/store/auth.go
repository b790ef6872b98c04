package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// ErrNoAuth is returned when no credentials have been stored yet
var ErrNoAuth = errors.New("not authenticated")

// GetAuth returns the stored credentials, or ErrNoAuth
func (db *DB) GetAuth() (*Auth, error) {
	var a Auth
	var expiresAt int64

	err := db.QueryRow(
		`SELECT athlete_id, access_token, refresh_token, expires_at FROM auth WHERE id = 1`,
	).Scan(&a.AthleteID, &a.AccessToken, &a.RefreshToken, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoAuth
	}
	if err != nil {
		return nil, fmt.Errorf("reading auth: %w", err)
	}

	a.ExpiresAt = time.Unix(expiresAt, 0)
	return &a, nil
}

// SaveAuth stores credentials, replacing any previous ones
func (db *DB) SaveAuth(athleteID int64, token *oauth2.Token) error {
	_, err := db.Exec(
		`INSERT INTO auth (id, athlete_id, access_token, refresh_token, expires_at, updated_at)
		VALUES (1, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP`,
		athleteID, token.AccessToken, token.RefreshToken, token.Expiry.Unix(),
	)
	if err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	return nil
}

// UpdateTokens persists a refreshed token, keeping the athlete ID
func (db *DB) UpdateTokens(token *oauth2.Token) error {
	res, err := db.Exec(
		`UPDATE auth SET access_token = ?, refresh_token = ?, expires_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1`,
		token.AccessToken, token.RefreshToken, token.Expiry.Unix(),
	)
	if err != nil {
		return fmt.Errorf("updating tokens: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoAuth
	}
	return nil
}

// Token converts stored credentials into an oauth2.Token
func (a *Auth) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  a.AccessToken,
		RefreshToken: a.RefreshToken,
		Expiry:       a.ExpiresAt,
	}
}
