// Package session owns the cubes held by a server, one per client session.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	rubik "github.com/SeamusWaldron/rubik_server"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

// DefaultID names the session served by the legacy single-cube routes.
// It is created with the manager and never reaped.
const DefaultID = "default"

// Session is one client's cube.
type Session struct {
	ID        string
	Cube      *rubik.Cube
	CreatedAt time.Time

	mu         sync.Mutex
	lastAccess time.Time
}

// LastAccessed returns when the session was last fetched.
func (s *Session) LastAccessed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastAccess = now
	s.mu.Unlock()
}

// Info is a snapshot of a session for listings.
type Info struct {
	ID             string    `json:"id"`
	Facelets       string    `json:"cube_string"`
	Solved         bool      `json:"solved"`
	Moves          int       `json:"moves"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

// Info snapshots the session.
func (s *Session) Info() Info {
	snap := s.Cube.Snapshot()
	return Info{
		ID:             s.ID,
		Facelets:       snap.Facelets,
		Solved:         snap.Solved,
		Moves:          snap.Moves,
		CreatedAt:      s.CreatedAt,
		LastAccessedAt: s.LastAccessed(),
	}
}

// Factory builds the cube for a new session. The session id is passed
// so observers can tag events with it.
type Factory func(id string) *rubik.Cube

// Hooks are notified about session lifecycle changes.
type Hooks struct {
	Created func(*Session)
	Closed  func(*Session)
}

// Manager handles session lifecycle.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	factory     Factory
	hooks       Hooks
	idleTimeout time.Duration
	max         int
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithIdleTimeout sets how long a session may go unused before Reap
// removes it. Zero disables reaping.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) { m.idleTimeout = d }
}

// WithMaxSessions caps the number of sessions, the default one included.
// Zero means unlimited.
func WithMaxSessions(n int) Option {
	return func(m *Manager) { m.max = n }
}

// WithHooks installs lifecycle callbacks.
func WithHooks(h Hooks) Option {
	return func(m *Manager) { m.hooks = h }
}

// WithLogger sets the manager's logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a manager holding only the default session.
// A nil factory builds plain cubes.
func NewManager(factory Factory, opts ...Option) *Manager {
	if factory == nil {
		factory = func(string) *rubik.Cube { return rubik.New() }
	}
	m := &Manager{
		sessions: make(map[string]*Session),
		factory:  factory,
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.mu.Lock()
	m.add(DefaultID)
	m.mu.Unlock()
	return m
}

// add registers a new session; callers hold mu.
func (m *Manager) add(id string) *Session {
	now := m.now()
	s := &Session{ID: id, Cube: m.factory(id), CreatedAt: now, lastAccess: now}
	m.sessions[id] = s
	if m.hooks.Created != nil {
		m.hooks.Created(s)
	}
	return s
}

// Create starts a new session with a solved cube.
func (m *Manager) Create() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.max > 0 && len(m.sessions) >= m.max {
		return nil, ErrTooManySessions
	}

	s := m.add(uuid.NewString())
	m.logger.Info("session created", "session", s.ID, "active", len(m.sessions))
	return s, nil
}

// Get returns the session and marks it as used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch(m.now())
	return s, nil
}

// Default returns the legacy single-cube session.
func (m *Manager) Default() *Session {
	s, err := m.Get(DefaultID)
	if err != nil {
		// Delete refuses the default session, so it always exists.
		panic("session: default session missing")
	}
	return s
}

// Delete ends a session. The default session cannot be deleted; it is
// reset instead.
func (m *Manager) Delete(id string) error {
	if id == DefaultID {
		m.Default().Cube.Reset()
		return nil
	}

	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	m.closed(s, "deleted")
	return nil
}

// List returns session snapshots, most recently used first. The
// manager lock only covers collecting the sessions; a cube busy solving
// delays List but not other callers.
func (m *Manager) List() []Info {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	infos := make([]Info, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.Info())
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].LastAccessedAt.Equal(infos[j].LastAccessedAt) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].LastAccessedAt.After(infos[j].LastAccessedAt)
	})
	return infos
}

// Len returns the number of sessions, the default one included.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Reap removes sessions idle since before now minus the idle timeout and
// returns how many were removed.
func (m *Manager) Reap(now time.Time) int {
	if m.idleTimeout <= 0 {
		return 0
	}
	cutoff := now.Add(-m.idleTimeout)

	var expired []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if id == DefaultID {
			continue
		}
		if s.LastAccessed().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		m.closed(s, "idle")
	}
	return len(expired)
}

// Run reaps idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	if m.idleTimeout <= 0 || interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if n := m.Reap(now); n > 0 {
				m.logger.Debug("reaped idle sessions", "count", n)
			}
		}
	}
}

func (m *Manager) closed(s *Session, reason string) {
	m.logger.Info("session closed", "session", s.ID, "reason", reason)
	if m.hooks.Closed != nil {
		m.hooks.Closed(s)
	}
}
