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

// RedisSessionRepository implements SessionRepository using Redis.
type RedisSessionRepository struct {
	client *redis.Client
}

func makeSessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// Helper to construct the per-account session index key.
func makeAccountSessionsKey(accountID int64) string {
	return fmt.Sprintf("account_sessions:%d", accountID)
}

func NewRedisSessionRepository(client *redis.Client) repository.SessionRepository {
	return &RedisSessionRepository{
		client: client,
	}
}

// StoreSession saves the session data and adds it to the account's session index.
func (r *RedisSessionRepository) StoreSession(ctx context.Context, session *models.Session) error {
	if session == nil || session.SessionID == "" || session.AccountID <= 0 {
		return errors.New("invalid session data: sessionID and accountID must be set")
	}

	jsonData, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := max(time.Until(session.Expiry), 0)
	if ttl <= 0 {
		return r.DeleteSession(ctx, session.SessionID)
	}

	sessionKey := makeSessionKey(session.SessionID)
	accountKey := makeAccountSessionsKey(session.AccountID)

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey, jsonData, ttl)
	pipe.SAdd(ctx, accountKey, session.SessionID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute session store pipeline: %w", err)
	}
	return nil
}

// GetSession retrieves a session by its ID. Redis TTLs handle most expiry;
// the deserialized expiry is checked again so a stale index entry can never
// resurrect a dead session.
func (r *RedisSessionRepository) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	sessionKey := makeSessionKey(sessionID)

	jsonData, err := r.client.Get(ctx, sessionKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET failed: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(jsonData, &session); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	if session.IsExpired() {
		pipe := r.client.Pipeline()
		pipe.Del(ctx, sessionKey)
		if session.AccountID > 0 {
			pipe.SRem(ctx, makeAccountSessionsKey(session.AccountID), sessionID)
		}
		_, _ = pipe.Exec(ctx)
		return nil, repository.ErrSessionNotFound
	}

	return &session, nil
}

// DeleteSession removes a session and its index entry.
func (r *RedisSessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	sessionKey := makeSessionKey(sessionID)

	// Fetch first to learn the account for index cleanup.
	jsonData, err := r.client.Get(ctx, sessionKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return repository.ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get session before delete: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(jsonData, &session); err != nil {
		r.client.Del(ctx, sessionKey)
		return fmt.Errorf("failed to unmarshal session before delete (key deleted): %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey)
	if session.AccountID > 0 {
		pipe.SRem(ctx, makeAccountSessionsKey(session.AccountID), sessionID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute session delete pipeline: %w", err)
	}
	return nil
}

// GetAccountSessions lists the live sessions recorded in the account index.
// Index entries whose session key already expired are skipped.
func (r *RedisSessionRepository) GetAccountSessions(ctx context.Context, accountID int64) ([]*models.Session, error) {
	sessionIDs, err := r.client.SMembers(ctx, makeAccountSessionsKey(accountID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get account sessions with SMEMBERS: %w", err)
	}

	var sessions []*models.Session
	for _, id := range sessionIDs {
		session, err := r.GetSession(ctx, id)
		if errors.Is(err, repository.ErrSessionNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// DeleteAccountSessions deletes all sessions for an account, optionally
// excluding some. It returns the count of sessions actually deleted.
func (r *RedisSessionRepository) DeleteAccountSessions(ctx context.Context, accountID int64, excludeIDs ...string) (int64, error) {
	accountKey := makeAccountSessionsKey(accountID)

	sessionIDs, err := r.client.SMembers(ctx, accountKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get account sessions with SMEMBERS: %w", err)
	}
	if len(sessionIDs) == 0 {
		return 0, nil
	}

	excludeMap := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excludeMap[id] = struct{}{}
	}

	var sessionKeysToDelete []string
	var idsToRemoveFromSet []string
	for _, id := range sessionIDs {
		if _, shouldExclude := excludeMap[id]; !shouldExclude {
			sessionKeysToDelete = append(sessionKeysToDelete, makeSessionKey(id))
			idsToRemoveFromSet = append(idsToRemoveFromSet, id)
		}
	}
	if len(sessionKeysToDelete) == 0 {
		return 0, nil
	}

	pipe := r.client.TxPipeline()
	delCmd := pipe.Del(ctx, sessionKeysToDelete...)

	sremArgs := make([]interface{}, len(idsToRemoveFromSet))
	for i, v := range idsToRemoveFromSet {
		sremArgs[i] = v
	}
	pipe.SRem(ctx, accountKey, sremArgs...)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to execute account sessions delete pipeline: %w", err)
	}

	return delCmd.Val(), nil
}
