package repository

import (
	"context"
	"errors"

	"github.com/questfit/questfit-server/internal/models"
)

// Common account errors.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
)

// AccountRepository defines operations on the durable account store.
type AccountRepository interface {
	// CreateAccount inserts a new account and returns its generated ID.
	// It returns ErrAccountExists if an account with the same subject ID
	// already exists.
	CreateAccount(ctx context.Context, account *models.Account) (int64, error)

	// GetAccountBySubjectID retrieves an account by its primary-assertion
	// subject. It returns ErrAccountNotFound if no such account exists.
	GetAccountBySubjectID(ctx context.Context, subjectID string) (*models.Account, error)

	// GetAccountByID retrieves an account by its internal ID.
	GetAccountByID(ctx context.Context, id int64) (*models.Account, error)

	// UpdateFitnessTokens replaces the stored fitness-provider credentials
	// after a token refresh.
	UpdateFitnessTokens(ctx context.Context, id int64, tokens models.ProviderTokens) error
}
