package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"bizprofile/internal/model"
	"bizprofile/internal/repository"
	"bizprofile/internal/storage"
)

const (
	MaxLogoSize     = 2 << 20
	MaxDocumentSize = 5 << 20

	// LogoContentType is sent for every logo regardless of its stored extension.
	LogoContentType     = "image/png"
	DocumentContentType = "application/octet-stream"
)

// Probe order for blobs whose id does not carry the extension.
var (
	logoExtensions     = []string{".png", ".jpg", ".jpeg"}
	documentExtensions = []string{".pdf", ".doc", ".docx"}
)

var storedContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// FileInput is an uploaded file as received from the client.
type FileInput struct {
	Reader   io.Reader
	Filename string
	// Size is the declared size; -1 if unknown. The stored size is what was read.
	Size int64
}

// Blob is an open stored file. The caller closes Body.
type Blob struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
	Filename    string
}

// UploadService stores and serves logo and document blobs of business profiles.
type UploadService interface {
	UploadLogo(ctx context.Context, userID, businessID string, f FileInput) (string, error)
	UploadDocument(ctx context.Context, userID, businessID string, f FileInput) (*model.BusinessDocument, error)
	// FetchLogo is public: it does not check who owns businessID.
	FetchLogo(ctx context.Context, businessID, logoID string) (*Blob, error)
	FetchDocument(ctx context.Context, userID, businessID, docID string) (*Blob, error)
	DeleteDocument(ctx context.Context, userID, businessID, docID string) error
}

type uploadService struct {
	repo      repository.BusinessRepository
	store     storage.Storage
	urlPrefix string
	now       func() time.Time
	log       zerolog.Logger
}

// NewUploadService constructs a new UploadService. urlPrefix is prepended to
// the logo and document URLs recorded on profiles (for example "/api").
func NewUploadService(repo repository.BusinessRepository, store storage.Storage, urlPrefix string, log zerolog.Logger) UploadService {
	return &uploadService{
		repo:      repo,
		store:     store,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
		now:       func() time.Time { return time.Now().UTC() },
		log:       log.With().Str("component", "upload").Logger(),
	}
}

func (s *uploadService) UploadLogo(ctx context.Context, userID, businessID string, f FileInput) (string, error) {
	if _, err := findOwned(ctx, s.repo, userID, businessID); err != nil {
		return "", err
	}
	ext, data, err := readUpload(f, logoExtensions, MaxLogoSize, "2MB")
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	key, err := s.put(ctx, id, ext, data, f.Filename)
	if err != nil {
		return "", err
	}

	logoURL := fmt.Sprintf("%s/business/%s/logo/%s", s.urlPrefix, businessID, id)
	if err := s.repo.SetLogoURL(ctx, userID, businessID, logoURL, s.now()); err != nil {
		return "", s.rollback(ctx, key, err)
	}

	s.log.Info().Str("business_id", businessID).Str("logo_id", id).Int("size", len(data)).Msg("logo uploaded")
	return logoURL, nil
}

func (s *uploadService) UploadDocument(ctx context.Context, userID, businessID string, f FileInput) (*model.BusinessDocument, error) {
	b, err := findOwned(ctx, s.repo, userID, businessID)
	if err != nil {
		return nil, err
	}
	ext, data, err := readUpload(f, documentExtensions, MaxDocumentSize, "5MB")
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	key, err := s.put(ctx, id, ext, data, f.Filename)
	if err != nil {
		return nil, err
	}

	now := s.now()
	doc := model.BusinessDocument{
		ID:         id,
		Filename:   filepath.Base(f.Filename),
		Size:       int64(len(data)),
		URL:        fmt.Sprintf("%s/business/%s/document/%s", s.urlPrefix, businessID, id),
		UploadedAt: now,
	}
	// Read-modify-write of the whole list: concurrent uploads to one
	// profile are last-writer-wins.
	docs := append(b.Documents, doc)
	if err := s.repo.SetDocuments(ctx, userID, businessID, docs, now); err != nil {
		return nil, s.rollback(ctx, key, err)
	}

	s.log.Info().Str("business_id", businessID).Str("document_id", id).Int64("size", doc.Size).Msg("document uploaded")
	return &doc, nil
}

func (s *uploadService) FetchLogo(ctx context.Context, businessID, logoID string) (*Blob, error) {
	blob, err := s.open(ctx, logoID, logoExtensions)
	if err != nil {
		return nil, err
	}
	blob.ContentType = LogoContentType
	return blob, nil
}

func (s *uploadService) FetchDocument(ctx context.Context, userID, businessID, docID string) (*Blob, error) {
	b, err := findOwned(ctx, s.repo, userID, businessID)
	if err != nil {
		return nil, err
	}
	doc, ok := b.FindDocument(docID)
	if !ok {
		return nil, ErrNotFound
	}
	blob, err := s.open(ctx, docID, documentExtensions)
	if err != nil {
		return nil, err
	}
	blob.ContentType = DocumentContentType
	blob.Filename = doc.Filename
	return blob, nil
}

func (s *uploadService) DeleteDocument(ctx context.Context, userID, businessID, docID string) error {
	b, err := findOwned(ctx, s.repo, userID, businessID)
	if err != nil {
		return err
	}
	if _, ok := b.FindDocument(docID); !ok {
		return ErrNotFound
	}

	remaining := make([]model.BusinessDocument, 0, len(b.Documents))
	for _, d := range b.Documents {
		if d.ID != docID {
			remaining = append(remaining, d)
		}
	}
	if err := s.repo.SetDocuments(ctx, userID, businessID, remaining, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update documents: %w", err)
	}

	removeProbed(ctx, s.store, s.log, docID, documentExtensions)
	return nil
}

func (s *uploadService) put(ctx context.Context, id, ext string, data []byte, original string) (string, error) {
	key := id + ext
	_, err := s.store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: storedContentTypes[ext],
		Metadata: map[string]string{
			"original-filename": filepath.Base(original),
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload to storage: %w", err)
	}
	return key, nil
}

// rollback removes a blob whose metadata write failed.
func (s *uploadService) rollback(ctx context.Context, key string, cause error) error {
	if delErr := s.store.Delete(ctx, key); delErr != nil {
		s.log.Error().Err(delErr).Str("blob_key", key).Msg("rollback delete failed")
		if errors.Is(cause, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("db save failed: %v; rollback delete failed: %v", cause, delErr)
	}
	if errors.Is(cause, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("db save failed: %w", cause)
}

func (s *uploadService) open(ctx context.Context, id string, exts []string) (*Blob, error) {
	key, err := storage.Probe(ctx, s.store, id, exts)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("probe blob: %w", err)
	}
	rc, info, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return &Blob{Body: rc, Size: info.Size, Filename: key}, nil
}

// readUpload validates the extension and size of f and reads it fully, so an
// oversized payload is rejected before anything is written.
func readUpload(f FileInput, allowed []string, max int64, maxLabel string) (string, []byte, error) {
	if f.Reader == nil {
		return "", nil, invalid("file", "is required")
	}
	ext := strings.ToLower(filepath.Ext(f.Filename))
	if !contains(allowed, ext) {
		return "", nil, invalid("file", "invalid file type, allowed: %s", strings.Join(allowed, ", "))
	}
	if f.Size > max {
		return "", nil, invalid("file", "file size exceeds %s limit", maxLabel)
	}
	data, err := io.ReadAll(io.LimitReader(f.Reader, max+1))
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > max {
		return "", nil, invalid("file", "file size exceeds %s limit", maxLabel)
	}
	if len(data) == 0 {
		return "", nil, invalid("file", "is empty")
	}
	return ext, data, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
