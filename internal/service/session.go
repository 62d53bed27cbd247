package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"bizprofile/internal/model"
	"bizprofile/internal/repository"
)

// DefaultSessionTTL is the lifetime of a new session.
const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionManager resolves credentials to users and manages session records.
type SessionManager interface {
	// Resolve returns the owner of a live session, or nil when the token is
	// unknown, expired or orphaned. Expired sessions are deleted. Only store
	// failures produce an error.
	Resolve(ctx context.Context, token string) (*model.User, error)

	// Create persists a session for userID that expires after the configured TTL.
	Create(ctx context.Context, userID, token string) (*model.Session, error)

	// Destroy deletes a session and reports whether one existed.
	Destroy(ctx context.Context, token string) (bool, error)
}

type sessionManager struct {
	sessions repository.SessionRepository
	users    repository.UserRepository
	ttl      time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewSessionManager constructs a SessionManager. A non-positive ttl falls back to DefaultSessionTTL.
func NewSessionManager(sessions repository.SessionRepository, users repository.UserRepository, ttl time.Duration, log zerolog.Logger) SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &sessionManager{
		sessions: sessions,
		users:    users,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.With().Str("component", "session").Logger(),
	}
}

func (m *sessionManager) Resolve(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}

	sess, err := m.sessions.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			m.log.Debug().Msg("session not found")
			return nil, nil
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	if sess.Expired(m.now()) {
		m.log.Info().Str("user_id", sess.UserID).Msg("session expired")
		if _, err := m.sessions.DeleteByToken(ctx, token); err != nil {
			return nil, fmt.Errorf("delete expired session: %w", err)
		}
		return nil, nil
	}

	user, err := m.users.FindByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			m.log.Error().Str("user_id", sess.UserID).Msg("user not found for session")
			return nil, nil
		}
		return nil, fmt.Errorf("find session user: %w", err)
	}
	return user, nil
}

func (m *sessionManager) Create(ctx context.Context, userID, token string) (*model.Session, error) {
	now := m.now()
	sess := &model.Session{
		UserID:       userID,
		SessionToken: token,
		ExpiresAt:    now.Add(m.ttl),
		CreatedAt:    now,
	}
	if err := m.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

func (m *sessionManager) Destroy(ctx context.Context, token string) (bool, error) {
	removed, err := m.sessions.DeleteByToken(ctx, token)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	if !removed {
		m.log.Warn().Msg("session not found during logout")
	}
	return removed, nil
}
