package memory

import (
	"context"
	"testing"
	"time"

	"github.com/questfit/questfit-server/internal/models"
	"github.com/questfit/questfit-server/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(id string, accountID int64) *models.Session {
	return &models.Session{
		SessionID: id,
		AccountID: accountID,
		SubjectID: "firebase-uid-1",
		CreatedAt: time.Now().UTC(),
		Expiry:    time.Now().Add(time.Hour),
	}
}

func TestMemorySession_StoreAndGet(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	require.NoError(t, repo.StoreSession(ctx, testSession("tok-1", 42)))

	got, err := repo.GetSession(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.AccountID)

	// The returned session is a copy; mutating it must not affect the store.
	got.AccountID = 999
	again, err := repo.GetSession(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), again.AccountID)
}

func TestMemorySession_GetExpired(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	expired := testSession("tok-1", 42)
	expired.Expiry = time.Now().Add(-time.Minute)
	require.NoError(t, repo.StoreSession(ctx, expired))

	_, err := repo.GetSession(ctx, "tok-1")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestMemorySession_Delete(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	require.NoError(t, repo.StoreSession(ctx, testSession("tok-1", 42)))
	require.NoError(t, repo.DeleteSession(ctx, "tok-1"))

	assert.ErrorIs(t, repo.DeleteSession(ctx, "tok-1"), repository.ErrSessionNotFound)
}

func TestMemorySession_DeleteAccountSessionsWithExclusion(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	require.NoError(t, repo.StoreSession(ctx, testSession("tok-1", 42)))
	require.NoError(t, repo.StoreSession(ctx, testSession("tok-2", 42)))
	require.NoError(t, repo.StoreSession(ctx, testSession("tok-3", 42)))
	require.NoError(t, repo.StoreSession(ctx, testSession("other", 7)))

	deleted, err := repo.DeleteAccountSessions(ctx, 42, "tok-2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, err = repo.GetSession(ctx, "tok-2")
	assert.NoError(t, err)
	_, err = repo.GetSession(ctx, "other")
	assert.NoError(t, err)

	sessions, err := repo.GetAccountSessions(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}
