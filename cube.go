package rubik

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// EventKind names what changed on a Cube.
type EventKind string

const (
	EventMove  EventKind = "move"
	EventReset EventKind = "reset"
	EventSolve EventKind = "solve"
)

// Event is delivered to observers after a Cube changes or is solved.
type Event struct {
	Kind     EventKind
	Moves    []Move       // moves applied, for EventMove
	Facelets string       // serialized grid after the change
	Solution *SolveResult // for EventSolve
	At       time.Time
}

// Cube owns one facelet grid and serializes every operation on it.
// The zero value is not usable; create cubes with New.
type Cube struct {
	mu    sync.Mutex
	grid  Grid
	moves int
	cfg   *config
}

// New creates a solved cube.
func New(opts ...Option) *Cube {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Cube{grid: Solved(), cfg: cfg}
}

// ApplyMove performs one move token and returns the serialized grid.
// Unknown tokens fail with an *InvalidMoveError and leave the grid as it was.
func (c *Cube) ApplyMove(token string) (string, error) {
	return c.ApplyMoves([]string{token})
}

// ApplyMoves performs a sequence of move tokens atomically: every token
// is validated before the first one is applied.
func (c *Cube) ApplyMoves(tokens []string) (string, error) {
	moves := make([]Move, 0, len(tokens))
	for _, tok := range tokens {
		m, err := ParseMove(tok)
		if err != nil {
			c.cfg.logger.Debug("rejected move", "token", tok)
			return "", err
		}
		moves = append(moves, m)
	}

	if len(moves) == 0 {
		return c.Facelets(), nil
	}

	c.mu.Lock()
	c.grid = ApplyAll(c.grid, moves)
	c.moves += len(moves)
	facelets := c.grid.String()
	c.mu.Unlock()

	c.cfg.logger.Debug("applied moves", "moves", FormatMoves(moves), "facelets", facelets)
	c.notify(Event{Kind: EventMove, Moves: moves, Facelets: facelets, At: time.Now()})
	return facelets, nil
}

// Solve asks the solver for a solution from the current grid. The
// solution is returned, not applied. An already solved cube returns an
// empty result without consulting the solver.
func (c *Cube) Solve(ctx context.Context) (SolveResult, error) {
	c.mu.Lock()
	if c.grid.IsSolved() || c.grid.SolverFacelets() == SolvedFacelets {
		c.mu.Unlock()
		return SolveResult{Solution: "", Steps: []Step{}}, nil
	}
	if c.cfg.solver == nil {
		c.mu.Unlock()
		return SolveResult{}, &SolveError{Kind: ErrSolverFailure, Err: ErrNoSolver}
	}

	// The lock is held across the solver call so the answer always
	// matches the grid it was computed for.
	facelets := c.grid.SolverFacelets()
	raw, err := c.callSolver(ctx, facelets)
	c.mu.Unlock()

	if err != nil {
		return SolveResult{}, c.classify(err)
	}

	result := SolveResult{Solution: raw, Steps: ParseSolution(raw)}
	c.cfg.logger.Info("solved cube", "facelets", facelets, "solution", raw, "steps", len(result.Steps))
	c.notify(Event{Kind: EventSolve, Facelets: facelets, Solution: &result, At: time.Now()})
	return result, nil
}

func (c *Cube) callSolver(ctx context.Context, facelets string) (string, error) {
	if c.cfg.solveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.solveTimeout)
		defer cancel()
	}

	// The solver runs on its own goroutine so one that ignores ctx still
	// releases the cube when the deadline passes.
	type reply struct {
		raw string
		err error
	}
	done := make(chan reply, 1)
	go func() {
		raw, err := c.cfg.solver.Solve(ctx, facelets)
		done <- reply{raw: raw, err: err}
	}()

	select {
	case r := <-done:
		if r.err == nil && ctx.Err() != nil {
			r.err = ctx.Err()
		}
		return r.raw, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// classify sorts a solver error into the client or server bucket.
func (c *Cube) classify(err error) error {
	se := ClassifySolverError(err)
	if se.Kind == ErrUnsolvable {
		c.cfg.logger.Info("solver rejected cube", "error", err)
	} else {
		c.cfg.logger.Error("solver failed", "error", err)
	}
	return se
}

// Reset replaces the grid with a solved one.
func (c *Cube) Reset() {
	c.mu.Lock()
	c.grid = Solved()
	c.moves = 0
	c.mu.Unlock()

	c.cfg.logger.Debug("reset cube")
	c.notify(Event{Kind: EventReset, Facelets: SolvedFacelets, At: time.Now()})
}

// Facelets returns the serialized grid.
func (c *Cube) Facelets() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grid.String()
}

// Grid returns a copy of the current grid.
func (c *Cube) Grid() Grid {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grid
}

// IsSolved reports whether the grid is in the solved state.
func (c *Cube) IsSolved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grid.IsSolved()
}

// MoveCount returns the number of primitive moves applied since the
// cube was created or last reset.
func (c *Cube) MoveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.moves
}

// Snapshot is the state of a Cube at one instant.
type Snapshot struct {
	Facelets string
	Solved   bool
	Moves    int
}

// Snapshot reads the facelets, solved flag and move count under one lock.
func (c *Cube) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Facelets: c.grid.String(),
		Solved:   c.grid.IsSolved(),
		Moves:    c.moves,
	}
}

// String returns a short description of the cube.
func (c *Cube) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fmt.Sprintf("cube(solved=%v moves=%d)", c.grid.IsSolved(), c.moves)
}

func (c *Cube) notify(ev Event) {
	for _, fn := range c.cfg.observers {
		fn(ev)
	}
}
