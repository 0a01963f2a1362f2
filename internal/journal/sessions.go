package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// SessionRecord is a cube session in the database.
type SessionRecord struct {
	SessionID  string
	StartedAt  time.Time
	EndedAt    *time.Time
	ResetCount int
	MoveCount  int
	SolveCount int
}

// SessionRepository provides CRUD operations for sessions.
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create records the start of a session. Starting a session id that
// already exists reopens it, which is how the default session survives
// restarts.
func (r *SessionRepository) Create(sessionID string) error {
	startedAt := time.Now().UTC()

	_, err := r.db.Exec(`
		INSERT INTO sessions (session_id, started_at)
		VALUES (?, ?)
		ON CONFLICT(session_id) DO UPDATE SET ended_at = NULL
	`, sessionID, startedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// End marks a session as closed.
func (r *SessionRepository) End(sessionID string) error {
	endedAt := time.Now().UTC()

	_, err := r.db.Exec(`
		UPDATE sessions SET ended_at = ? WHERE session_id = ?
	`, endedAt.Format(time.RFC3339), sessionID)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}

// RecordReset bumps the session's reset counter.
func (r *SessionRepository) RecordReset(sessionID string) error {
	_, err := r.db.Exec(`
		UPDATE sessions SET reset_count = reset_count + 1 WHERE session_id = ?
	`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to record reset: %w", err)
	}
	return nil
}

// Get retrieves a session by ID. It returns nil, nil when there is none.
func (r *SessionRepository) Get(sessionID string) (*SessionRecord, error) {
	row := r.db.QueryRow(sessionSelect+` WHERE s.session_id = ?`, sessionID)
	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// List retrieves the most recently started sessions.
func (r *SessionRepository) List(limit int) ([]SessionRecord, error) {
	rows, err := r.db.Query(sessionSelect+`
		ORDER BY s.started_at DESC, s.session_id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionRecord
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

const sessionSelect = `
	SELECT s.session_id, s.started_at, s.ended_at, s.reset_count,
		(SELECT COUNT(*) FROM moves m WHERE m.session_id = s.session_id),
		(SELECT COUNT(*) FROM solves v WHERE v.session_id = s.session_id)
	FROM sessions s`

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*SessionRecord, error) {
	var s SessionRecord
	var startedAtStr string
	var endedAtStr sql.NullString

	err := row.Scan(&s.SessionID, &startedAtStr, &endedAtStr, &s.ResetCount, &s.MoveCount, &s.SolveCount)
	if err != nil {
		return nil, err
	}

	s.StartedAt, _ = time.Parse(time.RFC3339, startedAtStr)
	if endedAtStr.Valid {
		t, _ := time.Parse(time.RFC3339, endedAtStr.String)
		s.EndedAt = &t
	}
	return &s, nil
}
