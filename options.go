package rubik

import (
	"log/slog"
	"time"
)

// DefaultSolveTimeout bounds a solver call when no timeout is configured.
const DefaultSolveTimeout = 10 * time.Second

// Option configures a Cube.
type Option func(*config)

type config struct {
	solver       Solver
	solveTimeout time.Duration
	logger       *slog.Logger
	observers    []func(Event)
}

func defaultConfig() *config {
	return &config{
		solveTimeout: DefaultSolveTimeout,
		logger:       slog.New(slog.DiscardHandler),
	}
}

// WithSolver sets the solver used by Solve.
func WithSolver(s Solver) Option {
	return func(c *config) {
		c.solver = s
	}
}

// WithSolveTimeout bounds each solver call. A zero or negative value
// leaves only the caller's context in control.
func WithSolveTimeout(d time.Duration) Option {
	return func(c *config) {
		c.solveTimeout = d
	}
}

// WithLogger sets the logger for cube operations.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver registers a callback fired after every successful
// move, reset or solve. Callbacks run outside the cube's lock, in the
// goroutine that made the change.
func WithObserver(fn func(Event)) Option {
	return func(c *config) {
		if fn != nil {
			c.observers = append(c.observers, fn)
		}
	}
}
