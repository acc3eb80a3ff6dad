package workspace

import (
	"context"
	"time"
)

// SessionRepository stores sessions. Get and Update hand out copies, so callers
// never share registry maps with the store.
type SessionRepository interface {
	Create(ctx context.Context, session Session) error
	Get(ctx context.Context, id string) (Session, error)
	// Update runs fn on a copy of the session under the store's lock and saves
	// the result with Version incremented. Nothing is saved when fn fails.
	Update(ctx context.Context, id string, fn func(*Session) error) (Session, error)
	Delete(ctx context.Context, id string) error
	DeleteIdleSince(ctx context.Context, cutoff time.Time) ([]string, error)
	Count(ctx context.Context) (int, error)
}
