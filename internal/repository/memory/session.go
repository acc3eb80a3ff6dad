package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/workspace"
)

type sessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]workspace.Session
	now      func() time.Time
}

// Create implements workspace.SessionRepository.
func (r *sessionRepository) Create(ctx context.Context, session workspace.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID]; exists {
		return fmt.Errorf("session %s already exists", session.ID)
	}

	now := r.now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	session.LastAccessedAt = now
	r.sessions[session.ID] = session.Clone()
	return nil
}

// Get implements workspace.SessionRepository. A read counts as activity.
func (r *sessionRepository) Get(ctx context.Context, id string) (workspace.Session, error) {
	if err := ctx.Err(); err != nil {
		return workspace.Session{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return workspace.Session{}, workspace.ErrSessionNotFound
	}
	session.LastAccessedAt = r.now()
	r.sessions[id] = session

	return session.Clone(), nil
}

// Update implements workspace.SessionRepository.
func (r *sessionRepository) Update(ctx context.Context, id string, fn func(*workspace.Session) error) (workspace.Session, error) {
	if err := ctx.Err(); err != nil {
		return workspace.Session{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sessions[id]
	if !ok {
		return workspace.Session{}, workspace.ErrSessionNotFound
	}

	draft := current.Clone()
	if err := fn(&draft); err != nil {
		return workspace.Session{}, err
	}

	now := r.now()
	draft.ID = current.ID
	draft.CreatedAt = current.CreatedAt
	draft.Version = current.Version + 1
	draft.UpdatedAt = now
	draft.LastAccessedAt = now
	r.sessions[id] = draft

	return draft.Clone(), nil
}

// Delete implements workspace.SessionRepository.
func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return workspace.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// DeleteIdleSince implements workspace.SessionRepository.
func (r *sessionRepository) DeleteIdleSince(ctx context.Context, cutoff time.Time) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	for id, session := range r.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			delete(r.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed, nil
}

// Count implements workspace.SessionRepository.
func (r *sessionRepository) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions), nil
}

func NewSessionRepository() workspace.SessionRepository {
	return newSessionRepository(time.Now)
}

func newSessionRepository(now func() time.Time) *sessionRepository {
	return &sessionRepository{
		sessions: make(map[string]workspace.Session),
		now:      now,
	}
}
