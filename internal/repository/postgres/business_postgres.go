package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bizprofile/internal/model"
	"bizprofile/internal/repository"
)

// BusinessPostgres is a PostgreSQL implementation of repository.BusinessRepository.
// custom_services and documents are JSONB columns.
type BusinessPostgres struct {
	db *sql.DB
}

// NewBusinessPostgres creates a new BusinessPostgres repository.
func NewBusinessPostgres(db *sql.DB) *BusinessPostgres {
	return &BusinessPostgres{db: db}
}

var _ repository.BusinessRepository = (*BusinessPostgres)(nil)

const businessColumns = `id, user_id, business_name, business_type, custom_services, business_phone, logo_url, documents, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// Create inserts a new business row.
func (r *BusinessPostgres) Create(ctx context.Context, b *model.BusinessProfile) error {
	services, err := encodeJSON(b.CustomServices)
	if err != nil {
		return err
	}
	docs, err := encodeJSON(b.Documents)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO businesses (` + businessColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.ExecContext(ctx, q,
		b.ID,
		b.UserID,
		b.BusinessName,
		b.BusinessType,
		services,
		b.BusinessPhone,
		nullString(b.LogoURL),
		docs,
		b.CreatedAt,
		b.UpdatedAt,
	)
	return err
}

// ListByUser returns every profile owned by userID in the table's natural order.
func (r *BusinessPostgres) ListByUser(ctx context.Context, userID string) ([]model.BusinessProfile, error) {
	const q = `SELECT ` + businessColumns + ` FROM businesses WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.BusinessProfile, 0)
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// FindByID fetches a profile by id, scoped to its owner.
func (r *BusinessPostgres) FindByID(ctx context.Context, userID, id string) (*model.BusinessProfile, error) {
	const q = `SELECT ` + businessColumns + ` FROM businesses WHERE id = $1 AND user_id = $2`
	b, err := scanBusiness(r.db.QueryRowContext(ctx, q, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// Update replaces the mutable fields of an owned profile.
func (r *BusinessPostgres) Update(ctx context.Context, b *model.BusinessProfile) error {
	services, err := encodeJSON(b.CustomServices)
	if err != nil {
		return err
	}
	const q = `
		UPDATE businesses
		SET business_name = $3, business_type = $4, custom_services = $5, business_phone = $6, updated_at = $7
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, q,
		b.ID,
		b.UserID,
		b.BusinessName,
		b.BusinessType,
		services,
		b.BusinessPhone,
		b.UpdatedAt,
	)
	return expectAffected(res, err)
}

// SetLogoURL points an owned profile at a new logo.
func (r *BusinessPostgres) SetLogoURL(ctx context.Context, userID, id, logoURL string, updatedAt time.Time) error {
	const q = `UPDATE businesses SET logo_url = $3, updated_at = $4 WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, userID, logoURL, updatedAt)
	return expectAffected(res, err)
}

// SetDocuments overwrites the documents list of an owned profile.
func (r *BusinessPostgres) SetDocuments(ctx context.Context, userID, id string, docs []model.BusinessDocument, updatedAt time.Time) error {
	encoded, err := encodeJSON(docs)
	if err != nil {
		return err
	}
	const q = `UPDATE businesses SET documents = $3, updated_at = $4 WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, userID, encoded, updatedAt)
	return expectAffected(res, err)
}

// Delete removes an owned profile.
func (r *BusinessPostgres) Delete(ctx context.Context, userID, id string) error {
	const q = `DELETE FROM businesses WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	return expectAffected(res, err)
}

func scanBusiness(row rowScanner) (*model.BusinessProfile, error) {
	var (
		b        model.BusinessProfile
		services []byte
		docs     []byte
		logo     sql.NullString
	)
	if err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.BusinessName,
		&b.BusinessType,
		&services,
		&b.BusinessPhone,
		&logo,
		&docs,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if logo.Valid {
		b.LogoURL = &logo.String
	}
	b.CustomServices = []string{}
	if len(services) > 0 {
		if err := json.Unmarshal(services, &b.CustomServices); err != nil {
			return nil, fmt.Errorf("decode custom_services: %w", err)
		}
	}
	b.Documents = []model.BusinessDocument{}
	if len(docs) > 0 {
		if err := json.Unmarshal(docs, &b.Documents); err != nil {
			return nil, fmt.Errorf("decode documents: %w", err)
		}
	}
	return &b, nil
}

// encodeJSON renders a list for a JSONB column; nil becomes [].
func encodeJSON[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode jsonb: %w", err)
	}
	return string(b), nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func expectAffected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
