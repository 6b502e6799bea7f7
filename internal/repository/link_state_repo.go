package repository

import (
	"context"
	"errors"

	"github.com/questfit/questfit-server/internal/models"
)

// ErrLinkStateNotFound is returned when a correlation id is unknown, already
// consumed, or expired. Callers cannot distinguish the three on purpose.
var ErrLinkStateNotFound = errors.New("link state not found or expired")

// LinkStateRepository holds in-flight account-linking state keyed by an
// opaque correlation id.
//
// Put and TakeOnce for the same key are linearizable: a stored entry is
// returned by exactly one successful TakeOnce, which removes it. Entries
// older than the store's expiry window are invisible to readers and are
// eventually evicted.
type LinkStateRepository interface {
	// Put inserts or overwrites the state for a correlation id. A zero
	// CreatedAt is stamped with the current time; the expiry window is
	// measured from CreatedAt, so re-storing a taken entry does not extend
	// its deadline.
	Put(ctx context.Context, correlationID string, state models.LinkState) error
	// TakeOnce atomically removes and returns the state for a correlation id.
	// It returns ErrLinkStateNotFound for absent, consumed, and expired
	// entries alike.
	TakeOnce(ctx context.Context, correlationID string) (*models.LinkState, error)
	// Len reports the number of entries currently held, expired or not.
	Len(ctx context.Context) (int, error)
}
