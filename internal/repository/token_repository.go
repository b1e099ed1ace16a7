package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sincarebunch/barbershop-api/internal/model"
	"github.com/sincarebunch/barbershop-api/internal/utils"
)

// DefaultRefreshTTL is how long a refresh token stays redeemable.
const DefaultRefreshTTL = 30 * 24 * time.Hour

// TokenRepo persists refresh tokens.  Callers always pass the raw token;
// only its SHA-256 hash reaches the 'token_hash' column.
type TokenRepo struct {
	DB  *sql.DB
	ttl time.Duration
	now func() time.Time
}

func NewTokenRepo(db *sql.DB, ttl time.Duration) *TokenRepo {
	if ttl <= 0 {
		ttl = DefaultRefreshTTL
	}
	return &TokenRepo{DB: db, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

// Create generates a new refresh token for userID, stores its hash and
// returns the raw value.
func (r *TokenRepo) Create(ctx context.Context, userID uint64) (string, error) {
	raw, err := utils.NewRefreshToken()
	if err != nil {
		return "", err
	}
	createdAt := r.now()
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at, created_at) VALUES (?,?,?,?)",
		userID, utils.HashRefreshRaw(raw), createdAt.Add(r.ttl), createdAt)
	if err != nil {
		return "", err
	}
	return raw, nil
}

// FindValid returns the stored token matching raw when it has not expired.
// An expired row is reported exactly like a missing one.
func (r *TokenRepo) FindValid(ctx context.Context, raw string) (*model.RefreshToken, error) {
	var t model.RefreshToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at, created_at FROM refresh_tokens WHERE token_hash=? AND expires_at > ? LIMIT 1",
		utils.HashRefreshRaw(raw), r.now()).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Delete removes the token matching raw and reports whether a row went away.
func (r *TokenRepo) Delete(ctx context.Context, raw string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE token_hash=?", utils.HashRefreshRaw(raw))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteExpired purges tokens whose expiry has passed and returns how many
// rows were removed.
func (r *TokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE expires_at <= ?", r.now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
