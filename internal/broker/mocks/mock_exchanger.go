package mocks

import (
	"context"

	"bizprofile/internal/broker"

	"github.com/stretchr/testify/mock"
)

type MockExchanger struct {
	mock.Mock
}

func (m *MockExchanger) FetchSession(ctx context.Context, sessionID string) (*broker.Profile, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*broker.Profile), args.Error(1)
}
