package journal

import (
	"fmt"
	"log/slog"
	"sync"

	rubik "github.com/SeamusWaldron/rubik_server"
)

// Recorder writes one session's cube events to the journal. Its Observe
// method is meant to be installed with rubik.WithObserver.
type Recorder struct {
	sessionID string
	moves     *MoveRepository
	solves    *SolveRepository
	sessions  *SessionRepository
	logger    *slog.Logger

	mu   sync.Mutex
	next int
}

// NewRecorder starts (or reopens) the session row and returns a recorder
// that appends after any moves already stored for it.
func NewRecorder(db *DB, sessionID string, logger *slog.Logger) (*Recorder, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Recorder{
		sessionID: sessionID,
		moves:     NewMoveRepository(db),
		solves:    NewSolveRepository(db),
		sessions:  NewSessionRepository(db),
		logger:    logger.With("session", sessionID),
	}

	if err := r.sessions.Create(sessionID); err != nil {
		return nil, err
	}
	next, err := r.moves.NextIndex(sessionID)
	if err != nil {
		return nil, err
	}
	r.next = next
	return r, nil
}

// SessionID returns the session the recorder writes for.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// Observe records ev. Journal failures are logged and otherwise ignored;
// they never fail the cube operation that produced the event.
func (r *Recorder) Observe(ev rubik.Event) {
	if err := r.record(ev); err != nil {
		r.logger.Warn("journal write failed", "event", ev.Kind, "error", err)
	}
}

func (r *Recorder) record(ev rubik.Event) error {
	switch ev.Kind {
	case rubik.EventMove:
		r.mu.Lock()
		defer r.mu.Unlock()
		if err := r.moves.CreateBatch(r.sessionID, r.next, ev.At, ev.Moves, ev.Facelets); err != nil {
			return err
		}
		r.next += len(ev.Moves)
		return nil

	case rubik.EventReset:
		return r.sessions.RecordReset(r.sessionID)

	case rubik.EventSolve:
		if ev.Solution == nil {
			return nil
		}
		_, err := r.solves.Create(r.sessionID, ev.Facelets, *ev.Solution)
		return err
	}
	return fmt.Errorf("unknown event kind %q", ev.Kind)
}

// Close marks the session as ended.
func (r *Recorder) Close() error {
	return r.sessions.End(r.sessionID)
}
