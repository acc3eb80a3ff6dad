package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/performance"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/ranking"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestRepo() (*sessionRepository, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)}
	return newSessionRepository(clock.Now), clock
}

func TestSessionRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo()

	require.NoError(t, repo.Create(ctx, workspace.Session{ID: "s1", Registry: performance.Registry{}}))
	assert.Error(t, repo.Create(ctx, workspace.Session{ID: "s1"}))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	assert.NotNil(t, got.Evaluations)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, workspace.ErrSessionNotFound)
}

func TestSessionRepository_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo()
	require.NoError(t, repo.Create(ctx, workspace.Session{
		ID:       "s1",
		Registry: performance.Registry{"Andi": performance.NewEmployeeRecord("Andi", 2025)},
	}))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	delete(got.Registry, "Andi")
	got.Evaluations["Andi"] = ranking.Evaluation{Rank: 1}

	again, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, again.Registry, 1)
	assert.Empty(t, again.Evaluations)
}

func TestSessionRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo, clock := newTestRepo()
	require.NoError(t, repo.Create(ctx, workspace.Session{ID: "s1", Registry: performance.Registry{}}))

	clock.Advance(time.Minute)
	updated, err := repo.Update(ctx, "s1", func(s *workspace.Session) error {
		s.Registry["Andi"] = performance.NewEmployeeRecord("Andi", 2025)
		s.Status = "imported"
		s.Version = 99
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.Version)
	assert.Equal(t, "imported", updated.Status)
	assert.Equal(t, clock.Now(), updated.UpdatedAt)

	failure := errors.New("boom")
	_, err = repo.Update(ctx, "s1", func(s *workspace.Session) error {
		delete(s.Registry, "Andi")
		return failure
	})
	assert.ErrorIs(t, err, failure)

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, got.Registry, 1, "failed update must not be saved")
	assert.Equal(t, int64(1), got.Version)

	_, err = repo.Update(ctx, "missing", func(*workspace.Session) error { return nil })
	assert.ErrorIs(t, err, workspace.ErrSessionNotFound)
}

func TestSessionRepository_DeleteIdleSince(t *testing.T) {
	ctx := context.Background()
	repo, clock := newTestRepo()
	require.NoError(t, repo.Create(ctx, workspace.Session{ID: "old"}))
	require.NoError(t, repo.Create(ctx, workspace.Session{ID: "fresh"}))

	clock.Advance(time.Hour)
	_, err := repo.Get(ctx, "fresh")
	require.NoError(t, err)

	removed, err := repo.DeleteIdleSince(ctx, clock.Now().Add(-30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, removed)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.ErrorIs(t, repo.Delete(ctx, "old"), workspace.ErrSessionNotFound)
	require.NoError(t, repo.Delete(ctx, "fresh"))
}

func TestSessionRepository_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo()
	require.NoError(t, repo.Create(ctx, workspace.Session{ID: "s1"}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, "s1", func(*workspace.Session) error { return nil })
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(50), got.Version)
}
