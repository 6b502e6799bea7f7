package mocks

import (
	"context"
	"time"

	"github.com/questfit/questfit-server/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockSessionManager is a mock implementation of the SessionManager interface.
type MockSessionManager struct {
	mock.Mock
}

func (m *MockSessionManager) IssueSession(ctx context.Context, account *models.Account) (string, time.Time, error) {
	args := m.Called(ctx, account)
	expiry, _ := args.Get(1).(time.Time)
	return args.String(0), expiry, args.Error(2)
}

func (m *MockSessionManager) VerifySession(ctx context.Context, sessionToken string) (*models.VerifySessionResponse, error) {
	args := m.Called(ctx, sessionToken)
	resp, _ := args.Get(0).(*models.VerifySessionResponse)
	return resp, args.Error(1)
}

func (m *MockSessionManager) ListSessions(ctx context.Context, accountID int64) ([]*models.Session, error) {
	args := m.Called(ctx, accountID)
	sessions, _ := args.Get(0).([]*models.Session)
	return sessions, args.Error(1)
}

func (m *MockSessionManager) SignOut(ctx context.Context, sessionToken string) error {
	args := m.Called(ctx, sessionToken)
	return args.Error(0)
}

func (m *MockSessionManager) SignOutAccountSessions(ctx context.Context, accountID int64, excludeTokens ...string) (int64, error) {
	variadicArgs := make([]interface{}, len(excludeTokens))
	for i, v := range excludeTokens {
		variadicArgs[i] = v
	}
	callArgs := append([]interface{}{ctx, accountID}, variadicArgs...)
	args := m.Called(callArgs...)
	return args.Get(0).(int64), args.Error(1)
}
