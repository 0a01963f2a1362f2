package journal

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	rubik "github.com/SeamusWaldron/rubik_server"
)

// SolveRecord is one solution returned for a session.
type SolveRecord struct {
	SolveID   string
	SessionID string
	CreatedAt time.Time
	Facelets  string
	Solution  string
	StepCount int
}

// SolveRepository provides CRUD operations for solves.
type SolveRepository struct {
	db *DB
}

// NewSolveRepository creates a new solve repository.
func NewSolveRepository(db *DB) *SolveRepository {
	return &SolveRepository{db: db}
}

// Create stores a solve result and returns its ID.
func (r *SolveRepository) Create(sessionID, facelets string, result rubik.SolveResult) (string, error) {
	id := uuid.New().String()
	createdAt := time.Now().UTC()

	_, err := r.db.Exec(`
		INSERT INTO solves (solve_id, session_id, created_at, facelets, solution, step_count)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, sessionID, createdAt.Format(time.RFC3339Nano), facelets, result.Solution, len(result.Steps))
	if err != nil {
		return "", fmt.Errorf("failed to create solve: %w", err)
	}
	return id, nil
}

// ListBySession retrieves a session's solves, oldest first.
func (r *SolveRepository) ListBySession(sessionID string) ([]SolveRecord, error) {
	rows, err := r.db.Query(`
		SELECT solve_id, session_id, created_at, facelets, solution, step_count
		FROM solves
		WHERE session_id = ?
		ORDER BY created_at, solve_id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list solves: %w", err)
	}
	defer rows.Close()

	var solves []SolveRecord
	for rows.Next() {
		var s SolveRecord
		var createdAtStr string
		if err := rows.Scan(&s.SolveID, &s.SessionID, &createdAtStr, &s.Facelets, &s.Solution, &s.StepCount); err != nil {
			return nil, fmt.Errorf("failed to scan solve: %w", err)
		}
		s.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAtStr)
		solves = append(solves, s)
	}
	return solves, rows.Err()
}
