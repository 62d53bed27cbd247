package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"bizprofile/internal/model"
	"bizprofile/internal/repository"
	"bizprofile/internal/storage"
)

// businessTypes is the closed set accepted for BusinessProfile.BusinessType.
var businessTypes = []string{
	"Restaurant",
	"Retail Store",
	"Salon & Spa",
	"Plumbing",
	"Electrical",
	"Cleaning Services",
	"Landscaping",
	"Auto Repair",
	"Construction",
	"Consulting",
	"Healthcare",
	"Fitness",
	"Photography",
	"Real Estate",
	"Other",
}

// BusinessTypes returns a copy of the accepted business types in display order.
func BusinessTypes() []string {
	out := make([]string, len(businessTypes))
	copy(out, businessTypes)
	return out
}

// IsBusinessType reports whether t is an accepted business type.
func IsBusinessType(t string) bool {
	for _, bt := range businessTypes {
		if bt == t {
			return true
		}
	}
	return false
}

// BusinessService is CRUD over business profiles scoped to their owner.
// A profile owned by another user is reported as ErrNotFound.
type BusinessService interface {
	List(ctx context.Context, userID string) ([]model.BusinessProfile, error)
	Get(ctx context.Context, userID, id string) (*model.BusinessProfile, error)
	Create(ctx context.Context, userID string, in model.BusinessInput) (*model.BusinessProfile, error)
	// Update fully replaces the mutable fields.
	Update(ctx context.Context, userID, id string, in model.BusinessInput) (*model.BusinessProfile, error)
	// Delete removes the profile, then best-effort removes its logo and document blobs.
	Delete(ctx context.Context, userID, id string) error
	BusinessTypes() []string
}

type businessService struct {
	repo  repository.BusinessRepository
	store storage.Storage
	now   func() time.Time
	log   zerolog.Logger
}

// NewBusinessService constructs a new BusinessService.
func NewBusinessService(repo repository.BusinessRepository, store storage.Storage, log zerolog.Logger) BusinessService {
	return &businessService{
		repo:  repo,
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		log:   log.With().Str("component", "business").Logger(),
	}
}

func (s *businessService) BusinessTypes() []string {
	return BusinessTypes()
}

func (s *businessService) List(ctx context.Context, userID string) ([]model.BusinessProfile, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	return items, nil
}

func (s *businessService) Get(ctx context.Context, userID, id string) (*model.BusinessProfile, error) {
	return findOwned(ctx, s.repo, userID, id)
}

func (s *businessService) Create(ctx context.Context, userID string, in model.BusinessInput) (*model.BusinessProfile, error) {
	in, err := normalizeInput(in)
	if err != nil {
		return nil, err
	}

	now := s.now()
	b := &model.BusinessProfile{
		ID:             uuid.NewString(),
		UserID:         userID,
		BusinessName:   in.BusinessName,
		BusinessType:   in.BusinessType,
		CustomServices: in.CustomServices,
		BusinessPhone:  in.BusinessPhone,
		Documents:      []model.BusinessDocument{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create business: %w", err)
	}
	s.log.Info().Str("user_id", userID).Str("business_id", b.ID).Msg("business created")
	return b, nil
}

func (s *businessService) Update(ctx context.Context, userID, id string, in model.BusinessInput) (*model.BusinessProfile, error) {
	b, err := findOwned(ctx, s.repo, userID, id)
	if err != nil {
		return nil, err
	}
	in, err = normalizeInput(in)
	if err != nil {
		return nil, err
	}

	b.BusinessName = in.BusinessName
	b.BusinessType = in.BusinessType
	b.CustomServices = in.CustomServices
	b.BusinessPhone = in.BusinessPhone
	b.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, b); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update business: %w", err)
	}
	return b, nil
}

func (s *businessService) Delete(ctx context.Context, userID, id string) error {
	b, err := findOwned(ctx, s.repo, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete business: %w", err)
	}

	for _, doc := range b.Documents {
		removeProbed(ctx, s.store, s.log, doc.ID, documentExtensions)
	}
	if b.LogoURL != nil && *b.LogoURL != "" {
		removeProbed(ctx, s.store, s.log, path.Base(*b.LogoURL), logoExtensions)
	}

	s.log.Info().Str("user_id", userID).Str("business_id", id).Int("documents", len(b.Documents)).Msg("business deleted")
	return nil
}

func findOwned(ctx context.Context, repo repository.BusinessRepository, userID, id string) (*model.BusinessProfile, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	b, err := repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find business: %w", err)
	}
	return b, nil
}

// normalizeInput trims fields, drops blank services and validates the result.
func normalizeInput(in model.BusinessInput) (model.BusinessInput, error) {
	in.BusinessName = strings.TrimSpace(in.BusinessName)
	in.BusinessType = strings.TrimSpace(in.BusinessType)
	in.BusinessPhone = strings.TrimSpace(in.BusinessPhone)

	services := make([]string, 0, len(in.CustomServices))
	for _, svc := range in.CustomServices {
		if svc = strings.TrimSpace(svc); svc != "" {
			services = append(services, svc)
		}
	}
	in.CustomServices = services

	if utf8.RuneCountInString(in.BusinessName) < 2 {
		return in, invalid("business_name", "must be at least 2 characters")
	}
	if !IsBusinessType(in.BusinessType) {
		return in, invalid("business_type", "%q is not a supported business type", in.BusinessType)
	}
	if in.BusinessPhone == "" {
		return in, invalid("business_phone", "is required")
	}
	return in, nil
}

// removeProbed deletes the blob stored for id under any of exts. Failures are
// logged and swallowed.
func removeProbed(ctx context.Context, store storage.Storage, log zerolog.Logger, id string, exts []string) {
	key, err := storage.Probe(ctx, store, id, exts)
	if err != nil {
		if !errors.Is(err, storage.ErrObjectNotFound) {
			log.Warn().Err(err).Str("blob_id", id).Msg("blob lookup failed")
		}
		return
	}
	if err := store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		log.Warn().Err(err).Str("blob_key", key).Msg("blob delete failed")
	}
}
