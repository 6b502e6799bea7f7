package mocks

import (
	"context"

	"github.com/questfit/questfit-server/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockLinkFlow is a mock implementation of the LinkFlow interface.
type MockLinkFlow struct {
	mock.Mock
}

func (m *MockLinkFlow) BeginPrimary(ctx context.Context, assertionToken, fitnessAccessToken string) (*models.PrimaryOutcome, error) {
	args := m.Called(ctx, assertionToken, fitnessAccessToken)
	outcome, _ := args.Get(0).(*models.PrimaryOutcome)
	return outcome, args.Error(1)
}

func (m *MockLinkFlow) CompleteFitness(ctx context.Context, code, state string) (*models.PrimaryOutcome, error) {
	args := m.Called(ctx, code, state)
	outcome, _ := args.Get(0).(*models.PrimaryOutcome)
	return outcome, args.Error(1)
}

func (m *MockLinkFlow) CompleteCodeHost(ctx context.Context, code, state string) (*models.LinkCompleteResult, error) {
	args := m.Called(ctx, code, state)
	result, _ := args.Get(0).(*models.LinkCompleteResult)
	return result, args.Error(1)
}

func (m *MockLinkFlow) Resume(ctx context.Context, correlationToken string) (*models.PrimaryOutcome, error) {
	args := m.Called(ctx, correlationToken)
	outcome, _ := args.Get(0).(*models.PrimaryOutcome)
	return outcome, args.Error(1)
}
