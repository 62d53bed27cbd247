package postgres

import (
	"context"
	"database/sql"
	"errors"

	"bizprofile/internal/model"
	"bizprofile/internal/repository"
)

// SessionPostgres is a PostgreSQL implementation of repository.SessionRepository.
type SessionPostgres struct {
	db *sql.DB
}

// NewSessionPostgres creates a new SessionPostgres repository.
func NewSessionPostgres(db *sql.DB) *SessionPostgres {
	return &SessionPostgres{db: db}
}

var _ repository.SessionRepository = (*SessionPostgres)(nil)

// Create inserts a session row. A duplicate token violates the unique
// constraint and is returned as-is.
func (r *SessionPostgres) Create(ctx context.Context, s *model.Session) error {
	const q = `
		INSERT INTO user_sessions (session_token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, q, s.SessionToken, s.UserID, s.ExpiresAt, s.CreatedAt)
	return err
}

// FindByToken fetches a session by its token.
func (r *SessionPostgres) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	const q = `
		SELECT session_token, user_id, expires_at, created_at
		FROM user_sessions
		WHERE session_token = $1
	`
	var s model.Session
	if err := r.db.QueryRowContext(ctx, q, token).Scan(
		&s.SessionToken,
		&s.UserID,
		&s.ExpiresAt,
		&s.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// DeleteByToken removes a session and reports whether a row existed.
func (r *SessionPostgres) DeleteByToken(ctx context.Context, token string) (bool, error) {
	const q = `DELETE FROM user_sessions WHERE session_token = $1`
	res, err := r.db.ExecContext(ctx, q, token)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
