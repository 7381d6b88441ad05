package repository

import (
	"context"
	"database/sql"
)

// TokenRepo persists refresh tokens verbatim in the `refresh_tokens`
// table. A refresh token is live only while its exact signed value sits
// in a row: sign-in inserts, rotation overwrites the value in place, and
// logout deletes. Expiry lives inside the signed token itself, so the
// store only answers "was this exact token ever revoked or rotated away".
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a fresh refresh token row for a new session.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token) VALUES (?,?)",
		userID, token)
	return err
}

// Find returns the owning user ID when the exact token string is stored.
func (r *TokenRepo) Find(ctx context.Context, token string) (uint64, error) {
	var userID uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id FROM refresh_tokens WHERE token=? LIMIT 1",
		token).Scan(&userID)
	if err == sql.ErrNoRows {
		return 0, ErrTokenNotFound
	}
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// Replace rotates a session: the stored row keeps its identity but its
// token value is overwritten, so the old value becomes unusable at once.
// Concurrent rotations of the same token race; last write wins and the
// loser's freshly returned token dies with the overwritten row.
func (r *TokenRepo) Replace(ctx context.Context, oldToken, newToken string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET token=?, created_at=UTC_TIMESTAMP() WHERE token=?",
		newToken, oldToken)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// Delete revokes a session. Deleting an absent token is not an error,
// which keeps logout idempotent.
func (r *TokenRepo) Delete(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE token=?", token)
	return err
}
