package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"bizprofile/internal/broker"
	"bizprofile/internal/model"
	"bizprofile/internal/repository"
)

// LoginResult is the outcome of a successful broker exchange.
type LoginResult struct {
	User    *model.User
	Session *model.Session
}

// AuthService bridges the OAuth broker and local users and sessions.
type AuthService interface {
	// Login exchanges a broker session id, upserts the user and opens a session
	// carrying the broker's token.
	Login(ctx context.Context, sessionID string) (*LoginResult, error)

	// UpsertUser returns the user registered under the profile email, creating
	// one when absent. Existing users are never updated.
	UpsertUser(ctx context.Context, p *broker.Profile) (*model.User, error)
}

type authService struct {
	broker   broker.Exchanger
	users    repository.UserRepository
	sessions SessionManager
	log      zerolog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(ex broker.Exchanger, users repository.UserRepository, sessions SessionManager, log zerolog.Logger) AuthService {
	return &authService{
		broker:   ex,
		users:    users,
		sessions: sessions,
		log:      log.With().Str("component", "auth").Logger(),
	}
}

func (s *authService) Login(ctx context.Context, sessionID string) (*LoginResult, error) {
	if sessionID == "" {
		return nil, invalid("X-Session-ID", "header is required")
	}

	profile, err := s.broker.FetchSession(ctx, sessionID)
	if err != nil {
		s.log.Error().Err(err).Msg("broker exchange failed")
		if errors.Is(err, broker.ErrUnavailable) {
			return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}
		return nil, err
	}

	user, err := s.UpsertUser(ctx, profile)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Create(ctx, user.ID, profile.SessionToken)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("session created")
	return &LoginResult{User: user, Session: sess}, nil
}

func (s *authService) UpsertUser(ctx context.Context, p *broker.Profile) (*model.User, error) {
	existing, err := s.users.FindByEmail(ctx, p.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	user, err := s.users.Create(ctx, &model.User{
		ID:        uuid.NewString(),
		Email:     p.Email,
		Name:      p.Name,
		Picture:   p.Picture,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}
