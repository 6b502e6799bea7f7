package repository

import (
	"context"
	"errors"

	"github.com/questfit/questfit-server/internal/models"
)

// ErrSessionNotFound is returned when a session ID is not found or has expired.
var ErrSessionNotFound = errors.New("session not found or expired")

// SessionRepository defines the interface for managing login sessions.
type SessionRepository interface {
	// StoreSession saves a new session or updates an existing one.
	StoreSession(ctx context.Context, session *models.Session) error
	// GetSession retrieves a session by its ID.
	// It should return ErrSessionNotFound if the session doesn't exist or is expired.
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	// DeleteSession removes a session, effectively logging the user out.
	DeleteSession(ctx context.Context, sessionID string) error
	// GetAccountSessions lists all live sessions for an account.
	GetAccountSessions(ctx context.Context, accountID int64) ([]*models.Session, error)
	// DeleteAccountSessions deletes all session records for an account,
	// optionally excluding some session IDs ("logout other devices").
	DeleteAccountSessions(ctx context.Context, accountID int64, excludeIDs ...string) (int64, error)
}
