package mocks

import (
	"context"

	"bizprofile/internal/broker"
	"bizprofile/internal/model"
	"bizprofile/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockSessionManager struct {
	mock.Mock
}

func (m *MockSessionManager) Resolve(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockSessionManager) Create(ctx context.Context, userID, token string) (*model.Session, error) {
	args := m.Called(ctx, userID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockSessionManager) Destroy(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, sessionID string) (*service.LoginResult, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockAuthService) UpsertUser(ctx context.Context, p *broker.Profile) (*model.User, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockBusinessService struct {
	mock.Mock
}

func (m *MockBusinessService) List(ctx context.Context, userID string) ([]model.BusinessProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BusinessProfile), args.Error(1)
}

func (m *MockBusinessService) Get(ctx context.Context, userID, id string) (*model.BusinessProfile, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BusinessProfile), args.Error(1)
}

func (m *MockBusinessService) Create(ctx context.Context, userID string, in model.BusinessInput) (*model.BusinessProfile, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BusinessProfile), args.Error(1)
}

func (m *MockBusinessService) Update(ctx context.Context, userID, id string, in model.BusinessInput) (*model.BusinessProfile, error) {
	args := m.Called(ctx, userID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BusinessProfile), args.Error(1)
}

func (m *MockBusinessService) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockBusinessService) BusinessTypes() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) UploadLogo(ctx context.Context, userID, businessID string, f service.FileInput) (string, error) {
	args := m.Called(ctx, userID, businessID, f)
	return args.String(0), args.Error(1)
}

func (m *MockUploadService) UploadDocument(ctx context.Context, userID, businessID string, f service.FileInput) (*model.BusinessDocument, error) {
	args := m.Called(ctx, userID, businessID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BusinessDocument), args.Error(1)
}

func (m *MockUploadService) FetchLogo(ctx context.Context, businessID, logoID string) (*service.Blob, error) {
	args := m.Called(ctx, businessID, logoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Blob), args.Error(1)
}

func (m *MockUploadService) FetchDocument(ctx context.Context, userID, businessID, docID string) (*service.Blob, error) {
	args := m.Called(ctx, userID, businessID, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Blob), args.Error(1)
}

func (m *MockUploadService) DeleteDocument(ctx context.Context, userID, businessID, docID string) error {
	args := m.Called(ctx, userID, businessID, docID)
	return args.Error(0)
}
