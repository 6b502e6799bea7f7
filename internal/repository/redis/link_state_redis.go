package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/questfit/questfit-server/internal/models"
	"github.com/questfit/questfit-server/internal/repository"
	"github.com/redis/go-redis/v9"
)

const linkStateKeyPrefix = "link_state:"

func makeLinkStateKey(correlationID string) string {
	return linkStateKeyPrefix + correlationID
}

// RedisLinkStateRepository implements LinkStateRepository on Redis so the
// linking flow survives process restarts and multi-instance deployments.
// Expiry is delegated to Redis TTLs, so no sweeper is needed; take-once is a
// single GETDEL, which is atomic server-side.
type RedisLinkStateRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLinkStateRepository(client *redis.Client, ttl time.Duration) repository.LinkStateRepository {
	return &RedisLinkStateRepository{client: client, ttl: ttl}
}

func (r *RedisLinkStateRepository) Put(ctx context.Context, correlationID string, state models.LinkState) error {
	if correlationID == "" {
		return errors.New("correlation id must not be empty")
	}
	if state.CreatedAt.IsZero() {
		state.CreatedAt = time.Now().UTC()
	}

	// The TTL is anchored to CreatedAt, so re-storing a taken entry keeps
	// its original deadline instead of winning a fresh window. An entry
	// already past its deadline is not stored at all.
	ttl := r.ttl - time.Since(state.CreatedAt)
	if ttl <= 0 {
		return nil
	}

	jsonData, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal link state: %w", err)
	}
	if err := r.client.Set(ctx, makeLinkStateKey(correlationID), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store link state: %w", err)
	}
	return nil
}

func (r *RedisLinkStateRepository) TakeOnce(ctx context.Context, correlationID string) (*models.LinkState, error) {
	jsonData, err := r.client.GetDel(ctx, makeLinkStateKey(correlationID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrLinkStateNotFound
		}
		return nil, fmt.Errorf("failed to take link state: %w", err)
	}

	var state models.LinkState
	if err := json.Unmarshal([]byte(jsonData), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal link state: %w", err)
	}
	return &state, nil
}

func (r *RedisLinkStateRepository) Len(ctx context.Context) (int, error) {
	var (
		cursor uint64
		count  int
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, linkStateKeyPrefix+"*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to scan link states: %w", err)
		}
		count += len(keys)
		cursor = next
		if cursor == 0 {
			return count, nil
		}
	}
}
