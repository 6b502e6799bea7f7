package memory

import (
	"context"
	"sync"

	"github.com/questfit/questfit-server/internal/models"
	"github.com/questfit/questfit-server/internal/repository"
)

// MemorySessionRepository implements SessionRepository in memory, mainly for
// tests and single-process development setups.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string]*models.Session)}
}

func (r *MemorySessionRepository) StoreSession(ctx context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *session
	r.sessions[session.SessionID] = &cp
	return nil
}

func (r *MemorySessionRepository) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[sessionID]
	if !ok || session.IsExpired() {
		return nil, repository.ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

func (r *MemorySessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sessionID]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(r.sessions, sessionID)
	return nil
}

func (r *MemorySessionRepository) GetAccountSessions(ctx context.Context, accountID int64) ([]*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Session
	for _, session := range r.sessions {
		if session.AccountID == accountID && !session.IsExpired() {
			cp := *session
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MemorySessionRepository) DeleteAccountSessions(ctx context.Context, accountID int64, excludeIDs ...string) (int64, error) {
	excluded := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, session := range r.sessions {
		if session.AccountID != accountID {
			continue
		}
		if _, skip := excluded[id]; skip {
			continue
		}
		delete(r.sessions, id)
		deleted++
	}
	return deleted, nil
}
