package mocks

import (
	"context"

	"github.com/questfit/questfit-server/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockSessionRepository is a mock implementation of the SessionRepository interface.
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) StoreSession(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	args := m.Called(ctx, sessionID)
	session, _ := args.Get(0).(*models.Session)
	return session, args.Error(1)
}

func (m *MockSessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionRepository) GetAccountSessions(ctx context.Context, accountID int64) ([]*models.Session, error) {
	args := m.Called(ctx, accountID)
	sessions, _ := args.Get(0).([]*models.Session)
	return sessions, args.Error(1)
}

func (m *MockSessionRepository) DeleteAccountSessions(ctx context.Context, accountID int64, excludeIDs ...string) (int64, error) {
	variadicArgs := make([]interface{}, len(excludeIDs))
	for i, v := range excludeIDs {
		variadicArgs[i] = v
	}
	callArgs := append([]interface{}{ctx, accountID}, variadicArgs...)
	args := m.Called(callArgs...)
	return args.Get(0).(int64), args.Error(1)
}
