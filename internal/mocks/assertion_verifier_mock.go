package mocks

import (
	"context"

	"github.com/questfit/questfit-server/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockAssertionVerifier is a mock implementation of the AssertionVerifier interface.
type MockAssertionVerifier struct {
	mock.Mock
}

func (m *MockAssertionVerifier) Verify(ctx context.Context, assertionToken string) (*models.AssertionResult, error) {
	args := m.Called(ctx, assertionToken)
	result, _ := args.Get(0).(*models.AssertionResult)
	return result, args.Error(1)
}
