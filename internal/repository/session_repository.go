package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"authgate/internal/models"
)

var ErrSessionNotFound = errors.New("refresh session not found")

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, session models.RefreshSession) error {
	const query = `
		INSERT INTO refresh_sessions (
			id, user_id, token_hash, created_at, expires_at
		) VALUES (
			$1, $2, $3, $4, $5
		)
	`

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.TokenHash,
		session.CreatedAt,
		session.ExpiresAt,
	)
	return err
}

// Claim deletes the session matching the token hash and returns it. The
// delete-returning form makes rotation serializable per token: of two
// concurrent claims on the same token, exactly one gets the row back and
// the other sees ErrSessionNotFound.
func (r *SessionRepository) Claim(ctx context.Context, tokenHash []byte) (models.RefreshSession, error) {
	const query = `
		DELETE FROM refresh_sessions
		WHERE token_hash = $1
		RETURNING id, user_id, token_hash, created_at, expires_at
	`

	row := r.pool.QueryRow(ctx, query, tokenHash)
	var session models.RefreshSession
	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.TokenHash,
		&session.CreatedAt,
		&session.ExpiresAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.RefreshSession{}, ErrSessionNotFound
		}
		return models.RefreshSession{}, err
	}
	return session, nil
}

// DeleteByTokenHash removes a session if present. Deleting an unknown token
// is not an error, which keeps logout idempotent.
func (r *SessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash []byte) error {
	const query = `DELETE FROM refresh_sessions WHERE token_hash = $1`
	_, err := r.pool.Exec(ctx, query, tokenHash)
	return err
}

func (r *SessionRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	const query = `DELETE FROM refresh_sessions WHERE user_id = $1`
	cmd, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// DeleteExpired garbage-collects sessions past expiry. Expiry is enforced
// on read, so this only keeps the table small.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM refresh_sessions WHERE expires_at <= NOW()`
	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
