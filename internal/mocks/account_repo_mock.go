package mocks

import (
	"context"

	"github.com/questfit/questfit-server/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of the AccountRepository interface.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) CreateAccount(ctx context.Context, account *models.Account) (int64, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) GetAccountBySubjectID(ctx context.Context, subjectID string) (*models.Account, error) {
	args := m.Called(ctx, subjectID)
	account, _ := args.Get(0).(*models.Account)
	return account, args.Error(1)
}

func (m *MockAccountRepository) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	account, _ := args.Get(0).(*models.Account)
	return account, args.Error(1)
}

func (m *MockAccountRepository) UpdateFitnessTokens(ctx context.Context, id int64, tokens models.ProviderTokens) error {
	args := m.Called(ctx, id, tokens)
	return args.Error(0)
}
