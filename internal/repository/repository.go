// Package repository contains data access abstractions. Implementations
// live in subpackages (postgres) and contain no business logic.
package repository

import (
	"context"
	"errors"
	"time"

	"bizprofile/internal/model"
)

// ErrNotFound is returned when a lookup or a scoped write matches no row.
var ErrNotFound = errors.New("record not found")

// UserRepository persists users.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// SessionRepository persists sessions keyed by token.
type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	FindByToken(ctx context.Context, token string) (*model.Session, error)
	// DeleteByToken reports whether a row was removed.
	DeleteByToken(ctx context.Context, token string) (bool, error)
}

// BusinessRepository persists business profiles. Every method except Create
// filters on both id and owner, so a foreign owner sees ErrNotFound.
type BusinessRepository interface {
	Create(ctx context.Context, b *model.BusinessProfile) error
	ListByUser(ctx context.Context, userID string) ([]model.BusinessProfile, error)
	FindByID(ctx context.Context, userID, id string) (*model.BusinessProfile, error)
	// Update replaces the mutable fields and updated_at.
	Update(ctx context.Context, b *model.BusinessProfile) error
	SetLogoURL(ctx context.Context, userID, id, logoURL string, updatedAt time.Time) error
	// SetDocuments overwrites the whole documents list.
	SetDocuments(ctx context.Context, userID, id string, docs []model.BusinessDocument, updatedAt time.Time) error
	Delete(ctx context.Context, userID, id string) error
}
