package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rubik "github.com/SeamusWaldron/rubik_server"
)

// fakeClock lets tests move time forward by hand.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestManager(t *testing.T, opts ...Option) (*Manager, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	opts = append([]Option{func(m *Manager) { m.now = clock.Now }}, opts...)
	return NewManager(nil, opts...), clock
}

func TestNewManagerHasDefault(t *testing.T) {
	m, _ := newTestManager(t)
	assert.Equal(t, 1, m.Len())

	s := m.Default()
	assert.Equal(t, DefaultID, s.ID)
	assert.True(t, s.Cube.IsSolved())
}

func TestCreateAndGet(t *testing.T) {
	m, _ := newTestManager(t)

	s, err := m.Create()
	require.NoError(t, err)
	assert.NotEqual(t, DefaultID, s.ID)
	assert.Len(t, s.ID, 36)

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 2, m.Len())
}

func TestSessionsAreIndependent(t *testing.T) {
	m, _ := newTestManager(t)
	a, err := m.Create()
	require.NoError(t, err)
	b, err := m.Create()
	require.NoError(t, err)

	_, err = a.Cube.ApplyMove("R")
	require.NoError(t, err)

	assert.False(t, a.Cube.IsSolved())
	assert.True(t, b.Cube.IsSolved())
	assert.True(t, m.Default().Cube.IsSolved())
}

func TestGetUnknown(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDelete(t *testing.T) {
	m, _ := newTestManager(t)
	s, err := m.Create()
	require.NoError(t, err)

	require.NoError(t, m.Delete(s.ID))
	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Delete(s.ID), ErrSessionNotFound)
}

func TestDeleteDefaultResets(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Default().Cube.ApplyMove("U")
	require.NoError(t, err)

	require.NoError(t, m.Delete(DefaultID))
	assert.Equal(t, 1, m.Len())
	assert.True(t, m.Default().Cube.IsSolved())
}

func TestMaxSessions(t *testing.T) {
	m, _ := newTestManager(t, WithMaxSessions(2))
	_, err := m.Create()
	require.NoError(t, err)

	_, err = m.Create()
	assert.ErrorIs(t, err, ErrTooManySessions)
}

func TestListMostRecentFirst(t *testing.T) {
	m, clock := newTestManager(t)
	a, _ := m.Create()
	clock.Advance(time.Second)
	b, _ := m.Create()
	clock.Advance(time.Second)
	_, _ = m.Get(a.ID)

	infos := m.List()
	require.Len(t, infos, 3)
	assert.Equal(t, a.ID, infos[0].ID)
	assert.Equal(t, b.ID, infos[1].ID)
	assert.Equal(t, DefaultID, infos[2].ID)
	assert.Equal(t, rubik.SolvedFacelets, infos[0].Facelets)
}

func TestReapIdle(t *testing.T) {
	m, clock := newTestManager(t, WithIdleTimeout(time.Minute))
	stale, _ := m.Create()
	clock.Advance(50 * time.Second)
	fresh, _ := m.Create()
	clock.Advance(20 * time.Second)

	assert.Equal(t, 1, m.Reap(clock.Now()))

	_, err := m.Get(stale.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestReapSparesDefault(t *testing.T) {
	m, clock := newTestManager(t, WithIdleTimeout(time.Minute))
	clock.Advance(time.Hour)

	assert.Equal(t, 0, m.Reap(clock.Now()))
	assert.Equal(t, 1, m.Len())
}

func TestReapDisabled(t *testing.T) {
	m, clock := newTestManager(t)
	_, _ = m.Create()
	clock.Advance(24 * time.Hour)
	assert.Equal(t, 0, m.Reap(clock.Now()))
}

func TestHooks(t *testing.T) {
	var created, closed []string
	m, clock := newTestManager(t,
		WithIdleTimeout(time.Minute),
		WithHooks(Hooks{
			Created: func(s *Session) { created = append(created, s.ID) },
			Closed:  func(s *Session) { closed = append(closed, s.ID) },
		}),
	)
	a, _ := m.Create()
	b, _ := m.Create()
	require.NoError(t, m.Delete(a.ID))
	clock.Advance(2 * time.Minute)
	m.Reap(clock.Now())

	assert.Equal(t, []string{DefaultID, a.ID, b.ID}, created)
	assert.Equal(t, []string{a.ID, b.ID}, closed)
}

func TestFactoryReceivesID(t *testing.T) {
	var ids []string
	m := NewManager(func(id string) *rubik.Cube {
		ids = append(ids, id)
		return rubik.New()
	})
	s, err := m.Create()
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultID, s.ID}, ids)
}

func TestRunStopsWithContext(t *testing.T) {
	m, _ := newTestManager(t, WithIdleTimeout(time.Minute))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, time.Millisecond) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestSlowSolveDoesNotBlockOtherSessions(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	solver := rubik.SolverFunc(func(ctx context.Context, f string) (string, error) {
		close(started)
		<-release
		return "R'", nil
	})
	m := NewManager(func(string) *rubik.Cube {
		return rubik.New(rubik.WithSolver(solver), rubik.WithSolveTimeout(0))
	})

	a, err := m.Create()
	require.NoError(t, err)
	b, err := m.Create()
	require.NoError(t, err)
	_, err = a.Cube.ApplyMove("R")
	require.NoError(t, err)

	solved := make(chan error, 1)
	go func() {
		_, err := a.Cube.Solve(context.Background())
		solved <- err
	}()
	<-started

	listed := make(chan []Info, 1)
	go func() { listed <- m.List() }()
	time.Sleep(20 * time.Millisecond)

	// Create needs the write lock and Get the read lock; neither may
	// wait for session a's solver.
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := m.Create()
		assert.NoError(t, err)
		got, err := m.Get(b.ID)
		assert.NoError(t, err)
		assert.Same(t, b, got)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Create and Get blocked behind a solving session")
	}

	close(release)
	require.NoError(t, <-solved)
	assert.GreaterOrEqual(t, len(<-listed), 3)
}
