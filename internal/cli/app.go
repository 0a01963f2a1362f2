package cli

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	rubik "github.com/SeamusWaldron/rubik_server"
	"github.com/SeamusWaldron/rubik_server/internal/config"
	"github.com/SeamusWaldron/rubik_server/internal/journal"
	"github.com/SeamusWaldron/rubik_server/internal/metrics"
	"github.com/SeamusWaldron/rubik_server/internal/session"
	"github.com/SeamusWaldron/rubik_server/internal/solver"
	"github.com/SeamusWaldron/rubik_server/internal/stream"
)

// app holds the components shared by the long running commands.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	solver   rubik.Solver
	metrics  *metrics.Metrics
	hub      *stream.Hub
	db       *journal.DB
	sessions *session.Manager

	mu        sync.Mutex
	recorders map[string]*journal.Recorder
}

type appOptions struct {
	hub bool
}

// newApp wires configuration, logging, the solver, metrics and the
// optional journal into a session manager.
func newApp(cmd *cobra.Command, opts appOptions) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return newAppFromConfig(cfg, newLogger(cfg), opts)
}

// buildSolver returns the solver for cfg. Tests replace it.
var buildSolver = func(cfg config.Config, logger *slog.Logger) rubik.Solver {
	k := solver.NewKociemba(cfg.Solver.Command, cfg.Solver.Args...)
	k.Logger = logger.With("component", "solver")
	return k
}

func newAppFromConfig(cfg config.Config, logger *slog.Logger, opts appOptions) (*app, error) {
	a := &app{
		cfg:       cfg,
		logger:    logger,
		solver:    buildSolver(cfg, logger),
		metrics:   metrics.New(),
		recorders: make(map[string]*journal.Recorder),
	}
	if opts.hub {
		a.hub = stream.NewHub(logger.With("component", "stream"))
	}

	if cfg.DBPath != "" {
		db, err := journal.OpenAndMigrate(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		a.db = db
		logger.Info("journal enabled", "path", db.Path())
	}

	a.sessions = session.NewManager(a.newCube,
		session.WithIdleTimeout(cfg.Sessions.IdleTimeout.Duration),
		session.WithMaxSessions(cfg.Sessions.Max),
		session.WithLogger(logger.With("component", "sessions")),
		session.WithHooks(session.Hooks{
			Created: a.sessionCreated,
			Closed:  a.sessionClosed,
		}),
	)
	return a, nil
}

// newCube is the session factory.
func (a *app) newCube(id string) *rubik.Cube {
	opts := []rubik.Option{
		rubik.WithSolver(a.solver),
		rubik.WithSolveTimeout(a.cfg.Solver.Timeout.Duration),
		rubik.WithLogger(a.logger.With("session", id)),
		rubik.WithObserver(a.metrics.Observe),
	}
	if a.hub != nil {
		opts = append(opts, rubik.WithObserver(a.hub.Observer(id)))
	}
	if a.db != nil {
		rec, err := journal.NewRecorder(a.db, id, a.logger)
		if err != nil {
			a.logger.Warn("journal disabled for session", "session", id, "error", err)
		} else {
			a.mu.Lock()
			a.recorders[id] = rec
			a.mu.Unlock()
			opts = append(opts, rubik.WithObserver(rec.Observe))
		}
	}
	return rubik.New(opts...)
}

func (a *app) sessionCreated(s *session.Session) {
	a.metrics.ActiveSessions.Inc()
}

func (a *app) sessionClosed(s *session.Session) {
	a.metrics.ActiveSessions.Dec()
	if a.hub != nil {
		a.hub.CloseSession(s.ID)
	}

	a.mu.Lock()
	rec, ok := a.recorders[s.ID]
	delete(a.recorders, s.ID)
	a.mu.Unlock()
	if ok {
		if err := rec.Close(); err != nil {
			a.logger.Warn("failed to end journal session", "session", s.ID, "error", err)
		}
	}
}

// Close ends every open journal session and closes the database.
func (a *app) Close() error {
	if a.db == nil {
		return nil
	}

	a.mu.Lock()
	recs := a.recorders
	a.recorders = make(map[string]*journal.Recorder)
	a.mu.Unlock()
	for id, rec := range recs {
		if err := rec.Close(); err != nil {
			a.logger.Warn("failed to end journal session", "session", id, "error", err)
		}
	}
	return a.db.Close()
}

// openDB opens the journal for read-only commands, falling back to the
// default path when neither the flag nor the config names one.
func openDB(cmd *cobra.Command) (*journal.DB, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	path := cfg.DBPath
	if path == "" {
		path, err = journal.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	db, err := journal.OpenAndMigrate(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
