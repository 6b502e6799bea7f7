package mocks

import (
	"context"

	"github.com/questfit/questfit-server/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockLinkStateRepository is a mock implementation of the LinkStateRepository interface.
type MockLinkStateRepository struct {
	mock.Mock
}

func (m *MockLinkStateRepository) Put(ctx context.Context, correlationID string, state models.LinkState) error {
	args := m.Called(ctx, correlationID, state)
	return args.Error(0)
}

func (m *MockLinkStateRepository) TakeOnce(ctx context.Context, correlationID string) (*models.LinkState, error) {
	args := m.Called(ctx, correlationID)
	state, _ := args.Get(0).(*models.LinkState)
	return state, args.Error(1)
}

func (m *MockLinkStateRepository) Len(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
