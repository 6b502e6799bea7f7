package memory

import (
	"context"
	"sync"
	"time"

	"github.com/questfit/questfit-server/internal/models"
	"github.com/questfit/questfit-server/internal/repository"
	"github.com/rs/zerolog/log"
)

// MemoryLinkStateRepository implements LinkStateRepository with a
// mutex-guarded map. Single-process only: entries do not survive restarts
// and are invisible to other instances.
type MemoryLinkStateRepository struct {
	mu      sync.Mutex
	entries map[string]models.LinkState
	ttl     time.Duration
	quit    chan struct{}
	once    sync.Once
}

func NewMemoryLinkStateRepository(ttl time.Duration) *MemoryLinkStateRepository {
	return &MemoryLinkStateRepository{
		entries: make(map[string]models.LinkState),
		ttl:     ttl,
		quit:    make(chan struct{}),
	}
}

func (r *MemoryLinkStateRepository) Put(ctx context.Context, correlationID string, state models.LinkState) error {
	if state.CreatedAt.IsZero() {
		state.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[correlationID] = state
	return nil
}

// TakeOnce removes and returns the entry under a single critical section so
// that concurrent calls for the same id cannot both succeed. Expired entries
// are deleted on read and reported as not found.
func (r *MemoryLinkStateRepository) TakeOnce(ctx context.Context, correlationID string) (*models.LinkState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.entries[correlationID]
	if !ok {
		return nil, repository.ErrLinkStateNotFound
	}
	delete(r.entries, correlationID)
	if time.Since(state.CreatedAt) >= r.ttl {
		return nil, repository.ErrLinkStateNotFound
	}
	return &state, nil
}

func (r *MemoryLinkStateRepository) Len(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries), nil
}

// StartSweeper evicts abandoned entries on a fixed interval so memory stays
// bounded even when flows are never completed. Stop with StopSweeper.
func (r *MemoryLinkStateRepository) StartSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if removed := r.sweep(); removed > 0 {
					log.Debug().Int("removed", removed).Msg("Swept expired link states")
				}
			case <-r.quit:
				return
			}
		}
	}()
}

func (r *MemoryLinkStateRepository) StopSweeper() {
	r.once.Do(func() { close(r.quit) })
}

func (r *MemoryLinkStateRepository) sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, state := range r.entries {
		if time.Since(state.CreatedAt) >= r.ttl {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}
