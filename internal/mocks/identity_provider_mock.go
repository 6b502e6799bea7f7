package mocks

import (
	"context"

	"github.com/questfit/questfit-server/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockIdentityProvider is a mock implementation of the provider.IdentityProvider interface.
type MockIdentityProvider struct {
	mock.Mock
	ProviderName string
}

func (m *MockIdentityProvider) Name() string {
	return m.ProviderName
}

func (m *MockIdentityProvider) AuthCodeURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockIdentityProvider) ExchangeCode(ctx context.Context, code string) (*models.ProviderTokens, error) {
	args := m.Called(ctx, code)
	tokens, _ := args.Get(0).(*models.ProviderTokens)
	return tokens, args.Error(1)
}

func (m *MockIdentityProvider) FetchIdentity(ctx context.Context, accessToken string) (*models.ProviderIdentity, error) {
	args := m.Called(ctx, accessToken)
	identity, _ := args.Get(0).(*models.ProviderIdentity)
	return identity, args.Error(1)
}
