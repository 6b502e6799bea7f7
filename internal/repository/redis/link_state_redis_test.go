package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/questfit/questfit-server/internal/models"
	"github.com/questfit/questfit-server/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLinkStateRepo(t *testing.T, ttl time.Duration) (repository.LinkStateRepository, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	require.NoError(t, client.Ping(context.Background()).Err())

	return NewRedisLinkStateRepository(client, ttl), mr
}

func linkStateFixture(stage models.LinkStage) models.LinkState {
	return models.LinkState{
		Stage: stage,
		Identity: models.AssertionResult{
			SubjectID:   "firebase-uid-1",
			DisplayName: "Ada Runner",
			Email:       "ada@example.com",
		},
	}
}

func TestRedisLinkState_PutAndTakeOnce(t *testing.T) {
	repo, mr := newTestRedisLinkStateRepo(t, 10*time.Minute)
	defer mr.Close()
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "corr-1", linkStateFixture(models.StageAwaitingFitness)))

	// The key carries the configured TTL.
	ttl := mr.TTL(makeLinkStateKey("corr-1"))
	assert.InDelta(t, (10 * time.Minute).Seconds(), ttl.Seconds(), 5)

	state, err := repo.TakeOnce(ctx, "corr-1")
	require.NoError(t, err)
	assert.Equal(t, models.StageAwaitingFitness, state.Stage)
	assert.Equal(t, "ada@example.com", state.Identity.Email)
	assert.False(t, state.CreatedAt.IsZero())

	// GETDEL consumed the entry.
	_, err = repo.TakeOnce(ctx, "corr-1")
	assert.ErrorIs(t, err, repository.ErrLinkStateNotFound)
	assert.False(t, mr.Exists(makeLinkStateKey("corr-1")))
}

func TestRedisLinkState_TakeOnceUnknownID(t *testing.T) {
	repo, mr := newTestRedisLinkStateRepo(t, 10*time.Minute)
	defer mr.Close()

	_, err := repo.TakeOnce(context.Background(), "never-issued")
	assert.ErrorIs(t, err, repository.ErrLinkStateNotFound)
}

func TestRedisLinkState_PutRejectsEmptyID(t *testing.T) {
	repo, mr := newTestRedisLinkStateRepo(t, 10*time.Minute)
	defer mr.Close()

	err := repo.Put(context.Background(), "", linkStateFixture(models.StageAwaitingFitness))
	assert.Error(t, err)
}

func TestRedisLinkState_EntryExpires(t *testing.T) {
	repo, mr := newTestRedisLinkStateRepo(t, 10*time.Minute)
	defer mr.Close()
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "corr-1", linkStateFixture(models.StageAwaitingCodeHost)))

	mr.FastForward(11 * time.Minute)

	_, err := repo.TakeOnce(ctx, "corr-1")
	assert.ErrorIs(t, err, repository.ErrLinkStateNotFound)
}

func TestRedisLinkState_PutRefreshesStateAndTTL(t *testing.T) {
	repo, mr := newTestRedisLinkStateRepo(t, 10*time.Minute)
	defer mr.Close()
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "corr-1", linkStateFixture(models.StageAwaitingFitness)))
	mr.FastForward(5 * time.Minute)

	// Advancing the stage rewrites the entry with a fresh TTL.
	require.NoError(t, repo.Put(ctx, "corr-1", linkStateFixture(models.StageAwaitingCodeHost)))
	mr.FastForward(6 * time.Minute)

	state, err := repo.TakeOnce(ctx, "corr-1")
	require.NoError(t, err)
	assert.Equal(t, models.StageAwaitingCodeHost, state.Stage)
}

func TestRedisLinkState_RePutKeepsOriginalDeadline(t *testing.T) {
	repo, mr := newTestRedisLinkStateRepo(t, 10*time.Minute)
	defer mr.Close()
	ctx := context.Background()

	// A re-stored entry carries its original CreatedAt; the key TTL is the
	// remaining window, not a fresh one.
	state := linkStateFixture(models.StageAwaitingCodeHost)
	state.CreatedAt = time.Now().UTC().Add(-6 * time.Minute)
	require.NoError(t, repo.Put(ctx, "corr-1", state))

	ttl := mr.TTL(makeLinkStateKey("corr-1"))
	assert.InDelta(t, (4 * time.Minute).Seconds(), ttl.Seconds(), 5)

	mr.FastForward(5 * time.Minute)
	_, err := repo.TakeOnce(ctx, "corr-1")
	assert.ErrorIs(t, err, repository.ErrLinkStateNotFound)
}

func TestRedisLinkState_StaleEntryIsNotStored(t *testing.T) {
	repo, mr := newTestRedisLinkStateRepo(t, 10*time.Minute)
	defer mr.Close()
	ctx := context.Background()

	state := linkStateFixture(models.StageAwaitingCodeHost)
	state.CreatedAt = time.Now().UTC().Add(-11 * time.Minute)
	require.NoError(t, repo.Put(ctx, "corr-1", state))

	assert.False(t, mr.Exists(makeLinkStateKey("corr-1")))
	_, err := repo.TakeOnce(ctx, "corr-1")
	assert.ErrorIs(t, err, repository.ErrLinkStateNotFound)
}

func TestRedisLinkState_Len(t *testing.T) {
	repo, mr := newTestRedisLinkStateRepo(t, 10*time.Minute)
	defer mr.Close()
	ctx := context.Background()

	n, err := repo.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Put(ctx, fmt.Sprintf("corr-%d", i), linkStateFixture(models.StageAwaitingFitness)))
	}
	// Unrelated keys are not counted.
	mr.Set("session:other", "x")

	n, err = repo.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}
