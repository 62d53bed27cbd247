package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"bizprofile/internal/model"
	"bizprofile/internal/repository"
	repoMocks "bizprofile/internal/repository/mocks"
	"bizprofile/internal/storage"
	storeMocks "bizprofile/internal/storage/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestUploadService(t *testing.T, repo repository.BusinessRepository) (UploadService, storage.Storage) {
	t.Helper()
	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	return NewUploadService(repo, store, "/api", zerolog.Nop()), store
}

func ownedBusiness(docs ...model.BusinessDocument) *model.BusinessProfile {
	return &model.BusinessProfile{ID: "b-1", UserID: "u-1", BusinessName: "Acme", Documents: docs}
}

func fileInput(name string, data []byte) FileInput {
	return FileInput{Reader: bytes.NewReader(data), Filename: name, Size: int64(len(data))}
}

func storedKeys(t *testing.T, store storage.Storage, id string, exts []string) []string {
	t.Helper()
	var keys []string
	for _, ext := range exts {
		if _, err := store.Stat(context.Background(), id+ext); err == nil {
			keys = append(keys, id+ext)
		}
	}
	return keys
}

func TestReadUpload(t *testing.T) {
	tests := []struct {
		name    string
		in      FileInput
		wantExt string
		wantErr bool
	}{
		{name: "upper-case extension", in: fileInput("LOGO.PNG", []byte("x")), wantExt: ".png"},
		{name: "jpeg", in: fileInput("a.jpeg", []byte("x")), wantExt: ".jpeg"},
		{name: "bad extension", in: fileInput("a.gif", []byte("x")), wantErr: true},
		{name: "no extension", in: fileInput("logo", []byte("x")), wantErr: true},
		{name: "declared oversize", in: FileInput{Reader: strings.NewReader("x"), Filename: "a.png", Size: MaxLogoSize + 1}, wantErr: true},
		{name: "actual oversize, unknown declared size", in: FileInput{Reader: bytes.NewReader(make([]byte, MaxLogoSize+1)), Filename: "a.png", Size: -1}, wantErr: true},
		{name: "exactly at limit", in: fileInput("a.png", make([]byte, MaxLogoSize)), wantExt: ".png"},
		{name: "empty", in: fileInput("a.png", nil), wantErr: true},
		{name: "missing reader", in: FileInput{Filename: "a.png"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, _, err := readUpload(tt.in, logoExtensions, MaxLogoSize, "2MB")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, ext)
		})
	}
}

func TestUploadService_UploadLogo(t *testing.T) {
	ctx := context.Background()

	t.Run("stores blob and records url", func(t *testing.T) {
		mRepo := new(repoMocks.MockBusinessRepository)
		mRepo.On("FindByID", ctx, "u-1", "b-1").Return(ownedBusiness(), nil)
		mRepo.On("SetLogoURL", ctx, "u-1", "b-1", mock.MatchedBy(func(u string) bool {
			return strings.HasPrefix(u, "/api/business/b-1/logo/")
		}), mock.Anything).Return(nil)
		svc, store := newTestUploadService(t, mRepo)

		url, err := svc.UploadLogo(ctx, "u-1", "b-1", fileInput("brand.JPG", []byte("jpeg-bytes")))

		require.NoError(t, err)
		id := url[strings.LastIndex(url, "/")+1:]
		assert.Equal(t, []string{id + ".jpg"}, storedKeys(t, store, id, logoExtensions))
		mRepo.AssertExpectations(t)
	})

	t.Run("oversize writes nothing", func(t *testing.T) {
		mRepo := new(repoMocks.MockBusinessRepository)
		mStore := new(storeMocks.MockStorage)
		mRepo.On("FindByID", ctx, "u-1", "b-1").Return(ownedBusiness(), nil)
		svc := NewUploadService(mRepo, mStore, "/api", zerolog.Nop())

		_, err := svc.UploadLogo(ctx, "u-1", "b-1", fileInput("big.png", make([]byte, MaxLogoSize+1)))

		assert.ErrorIs(t, err, ErrValidation)
		mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mRepo.AssertNotCalled(t, "SetLogoURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bad extension writes nothing", func(t *testing.T) {
		mRepo := new(repoMocks.MockBusinessRepository)
		mStore := new(storeMocks.MockStorage)
		mRepo.On("FindByID", ctx, "u-1", "b-1").Return(ownedBusiness(), nil)
		svc := NewUploadService(mRepo, mStore, "/api", zerolog.Nop())

		_, err := svc.UploadLogo(ctx, "u-1", "b-1", fileInput("logo.svg", []byte("<svg/>")))

		assert.ErrorIs(t, err, ErrValidation)
		mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("foreign owner writes nothing", func(t *testing.T) {
		mRepo := new(repoMocks.MockBusinessRepository)
		mStore := new(storeMocks.MockStorage)
		mRepo.On("FindByID", ctx, "u-2", "b-1").Return(nil, repository.ErrNotFound)
		svc := NewUploadService(mRepo, mStore, "/api", zerolog.Nop())

		_, err := svc.UploadLogo(ctx, "u-2", "b-1", fileInput("logo.png", []byte("png")))

		assert.ErrorIs(t, err, ErrNotFound)
		mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("foreign owner with invalid file is not found", func(t *testing.T) {
		mRepo := new(repoMocks.MockBusinessRepository)
		mStore := new(storeMocks.MockStorage)
		mRepo.On("FindByID", ctx, "u-2", "b-1").Return(nil, repository.ErrNotFound)
		svc := NewUploadService(mRepo, mStore, "/api", zerolog.Nop())

		_, err := svc.UploadLogo(ctx, "u-2", "b-1", fileInput("logo.svg", make([]byte, MaxLogoSize+1)))

		assert.ErrorIs(t, err, ErrNotFound)
		assert.NotErrorIs(t, err, ErrValidation)
		mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rollback on metadata failure", func(t *testing.T) {
		mRepo := new(repoMocks.MockBusinessRepository)
		mStore := new(storeMocks.MockStorage)
		var putKey string
		mRepo.On("FindByID", ctx, "u-1", "b-1").Return(ownedBusiness(), nil)
		mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(
			func(_ context.Context, key string, _ io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
				putKey = key
				return storage.ObjectInfo{Key: key, Size: opt.Size}
			}, nil)
		mRepo.On("SetLogoURL", ctx, "u-1", "b-1", mock.Anything, mock.Anything).Return(errors.New("db fail"))
		mStore.On("Delete", ctx, mock.Anything).Return(nil)
		svc := NewUploadService(mRepo, mStore, "/api", zerolog.Nop())

		_, err := svc.UploadLogo(ctx, "u-1", "b-1", fileInput("logo.png", []byte("png")))

		assert.ErrorContains(t, err, "db save failed: db fail")
		mStore.AssertCalled(t, "Delete", ctx, putKey)
	})

	t.Run("rollback failure reports both errors", func(t *testing.T) {
		mRepo := new(repoMocks.MockBusinessRepository)
		mStore := new(storeMocks.MockStorage)
		mRepo.On("FindByID", ctx, "u-1", "b-1").Return(ownedBusiness(), nil)
		mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil)
		mRepo.On("SetLogoURL", ctx, "u-1", "b-1", mock.Anything, mock.Anything).Return(errors.New("db fail"))
		mStore.On("Delete", ctx, mock.Anything).Return(errors.New("disk fail"))
		svc := NewUploadService(mRepo, mStore, "/api", zerolog.Nop())

		_, err := svc.UploadLogo(ctx, "u-1", "b-1", fileInput("logo.png", []byte("png")))

		assert.EqualError(t, err, "db save failed: db fail; rollback delete failed: disk fail")
	})
}

func TestUploadService_DocumentRoundTrip(t *testing.T) {
	ctx := context.Background()
	content := []byte("%PDF-1.7 quarterly report")

	mRepo := new(repoMocks.MockBusinessRepository)
	var recorded []model.BusinessDocument
	mRepo.On("FindByID", ctx, "u-1", "b-1").Return(ownedBusiness(model.BusinessDocument{ID: "old"}), nil).Once()
	mRepo.On("SetDocuments", ctx, "u-1", "b-1", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		recorded = args.Get(3).([]model.BusinessDocument)
	}).Return(nil)
	svc, store := newTestUploadService(t, mRepo)

	doc, err := svc.UploadDocument(ctx, "u-1", "b-1", fileInput("Q3 report.pdf", content))
	require.NoError(t, err)

	assert.Equal(t, "Q3 report.pdf", doc.Filename)
	assert.Equal(t, int64(len(content)), doc.Size)
	assert.Equal(t, "/api/business/b-1/document/"+doc.ID, doc.URL)
	require.Len(t, recorded, 2)
	assert.Equal(t, "old", recorded[0].ID)
	assert.Equal(t, doc.ID, recorded[1].ID)
	assert.Equal(t, []string{doc.ID + ".pdf"}, storedKeys(t, store, doc.ID, documentExtensions))

	mRepo.On("FindByID", ctx, "u-1", "b-1").Return(ownedBusiness(recorded...), nil)
	blob, err := svc.FetchDocument(ctx, "u-1", "b-1", doc.ID)
	require.NoError(t, err)
	defer blob.Body.Close()

	got, err := io.ReadAll(blob.Body)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, DocumentContentType, blob.ContentType)
	assert.Equal(t, "Q3 report.pdf", blob.Filename)
	assert.Equal(t, int64(len(content)), blob.Size)
}

func TestUploadService_UploadDocument_Oversize(t *testing.T) {
	mRepo := new(repoMocks.MockBusinessRepository)
	mRepo.On("FindByID", mock.Anything, "u-1", "b-1").Return(ownedBusiness(), nil)
	svc, store := newTestUploadService(t, mRepo)

	_, err := svc.UploadDocument(context.Background(), "u-1", "b-1", FileInput{
		Reader:   bytes.NewReader(make([]byte, MaxDocumentSize+1)),
		Filename: "huge.docx",
		Size:     -1,
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Message, "5MB")
	mRepo.AssertNotCalled(t, "SetDocuments", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	_, err = storage.Probe(context.Background(), store, "huge", documentExtensions)
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestUploadService_UploadDocument_ForeignOwner(t *testing.T) {
	mRepo := new(repoMocks.MockBusinessRepository)
	mStore := new(storeMocks.MockStorage)
	mRepo.On("FindByID", mock.Anything, "u-2", "b-1").Return(nil, repository.ErrNotFound)
	svc := NewUploadService(mRepo, mStore, "/api", zerolog.Nop())

	_, err := svc.UploadDocument(context.Background(), "u-2", "b-1", fileInput("script.exe", []byte("MZ")))

	assert.ErrorIs(t, err, ErrNotFound)
	mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mRepo.AssertNotCalled(t, "SetDocuments", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadService_FetchDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("foreign owner", func(t *testing.T) {
		mRepo := new(repoMocks.MockBusinessRepository)
		mRepo.On("FindByID", ctx, "u-2", "b-1").Return(nil, repository.ErrNotFound)
		svc, _ := newTestUploadService(t, mRepo)

		_, err := svc.FetchDocument(ctx, "u-2", "b-1", "doc-1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("document not listed on profile", func(t *testing.T) {
		mRepo := new(repoMocks.MockBusinessRepository)
		mRepo.On("FindByID", ctx, "u-1", "b-1").Return(ownedBusiness(), nil)
		svc, store := newTestUploadService(t, mRepo)
		_, err := store.Put(ctx, "doc-1.pdf", strings.NewReader("x"), storage.PutObjectOptions{Size: 1})
		require.NoError(t, err)

		_, err = svc.FetchDocument(ctx, "u-1", "b-1", "doc-1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("listed but blob missing", func(t *testing.T) {
		mRepo := new(repoMocks.MockBusinessRepository)
		mRepo.On("FindByID", ctx, "u-1", "b-1").Return(ownedBusiness(model.BusinessDocument{ID: "doc-1", Filename: "a.pdf"}), nil)
		svc, _ := newTestUploadService(t, mRepo)

		_, err := svc.FetchDocument(ctx, "u-1", "b-1", "doc-1")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUploadService_FetchLogo(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockBusinessRepository)
	svc, store := newTestUploadService(t, mRepo)

	_, err := store.Put(ctx, "logo-1.jpeg", strings.NewReader("jpeg"), storage.PutObjectOptions{Size: 4})
	require.NoError(t, err)

	blob, err := svc.FetchLogo(ctx, "any-business", "logo-1")
	require.NoError(t, err)
	defer blob.Body.Close()
	got, _ := io.ReadAll(blob.Body)
	assert.Equal(t, "jpeg", string(got))
	assert.Equal(t, LogoContentType, blob.ContentType)

	_, err = svc.FetchLogo(ctx, "any-business", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.FetchLogo(ctx, "any-business", "../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)

	// public route never consults ownership
	mRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadService_DeleteDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("removes metadata and blob", func(t *testing.T) {
		mRepo := new(repoMocks.MockBusinessRepository)
		mRepo.On("FindByID", ctx, "u-1", "b-1").Return(ownedBusiness(
			model.BusinessDocument{ID: "doc-1"}, model.BusinessDocument{ID: "doc-2"},
		), nil)
		mRepo.On("SetDocuments", ctx, "u-1", "b-1", mock.MatchedBy(func(docs []model.BusinessDocument) bool {
			return len(docs) == 1 && docs[0].ID == "doc-2"
		}), mock.Anything).Return(nil)
		svc, store := newTestUploadService(t, mRepo)
		for _, key := range []string{"doc-1.docx", "doc-2.pdf"} {
			_, err := store.Put(ctx, key, strings.NewReader("x"), storage.PutObjectOptions{Size: 1})
			require.NoError(t, err)
		}

		require.NoError(t, svc.DeleteDocument(ctx, "u-1", "b-1", "doc-1"))

		assert.Empty(t, storedKeys(t, store, "doc-1", documentExtensions))
		assert.Equal(t, []string{"doc-2.pdf"}, storedKeys(t, store, "doc-2", documentExtensions))
		mRepo.AssertExpectations(t)
	})

	t.Run("unknown document", func(t *testing.T) {
		mRepo := new(repoMocks.MockBusinessRepository)
		mRepo.On("FindByID", ctx, "u-1", "b-1").Return(ownedBusiness(model.BusinessDocument{ID: "doc-2"}), nil)
		svc, _ := newTestUploadService(t, mRepo)

		assert.ErrorIs(t, svc.DeleteDocument(ctx, "u-1", "b-1", "doc-1"), ErrNotFound)
		mRepo.AssertNotCalled(t, "SetDocuments", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("blob already gone still succeeds", func(t *testing.T) {
		mRepo := new(repoMocks.MockBusinessRepository)
		mRepo.On("FindByID", ctx, "u-1", "b-1").Return(ownedBusiness(model.BusinessDocument{ID: "doc-1"}), nil)
		mRepo.On("SetDocuments", ctx, "u-1", "b-1", mock.Anything, mock.Anything).Return(nil)
		svc, _ := newTestUploadService(t, mRepo)

		assert.NoError(t, svc.DeleteDocument(ctx, "u-1", "b-1", "doc-1"))
	})
}
