package journal

import (
	"database/sql"
	"fmt"
	"time"

	rubik "github.com/SeamusWaldron/rubik_server"
)

// MoveRecord represents a move in the database.
type MoveRecord struct {
	MoveID    int64
	SessionID string
	MoveIndex int
	TsMs      int64
	Notation  string
	Facelets  string
}

// Move parses the stored notation.
func (m MoveRecord) Move() (rubik.Move, error) {
	return rubik.ParseMove(m.Notation)
}

// MoveRepository provides CRUD operations for moves.
type MoveRepository struct {
	db *DB
}

// NewMoveRepository creates a new move repository.
func NewMoveRepository(db *DB) *MoveRepository {
	return &MoveRepository{db: db}
}

// Create stores one move and returns its ID.
func (r *MoveRepository) Create(sessionID string, moveIndex int, at time.Time, move rubik.Move, facelets string) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO moves (session_id, move_index, ts_ms, notation, facelets)
		VALUES (?, ?, ?, ?, ?)
	`, sessionID, moveIndex, at.UnixMilli(), move.String(), facelets)
	if err != nil {
		return 0, fmt.Errorf("failed to create move: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get move ID: %w", err)
	}
	return id, nil
}

// CreateBatch stores a sequence of moves in a single transaction. final
// is the grid after the last move; the grids after each earlier move are
// rebuilt by undoing the sequence and replaying it.
func (r *MoveRepository) CreateBatch(sessionID string, startIndex int, at time.Time, moves []rubik.Move, final string) error {
	g, err := rubik.ParseGrid(final)
	if err != nil {
		return fmt.Errorf("failed to parse facelets: %w", err)
	}
	g = rubik.ApplyAll(g, rubik.InverseSequence(moves))

	return r.db.Transaction(func(tx *sql.Tx) error {
		for i, move := range moves {
			g.Apply(move)
			_, err := tx.Exec(`
				INSERT INTO moves (session_id, move_index, ts_ms, notation, facelets)
				VALUES (?, ?, ?, ?, ?)
			`, sessionID, startIndex+i, at.UnixMilli(), move.String(), g.String())
			if err != nil {
				return fmt.Errorf("failed to create move %d: %w", startIndex+i, err)
			}
		}
		return nil
	})
}

// ListBySession retrieves all moves for a session in order.
func (r *MoveRepository) ListBySession(sessionID string) ([]MoveRecord, error) {
	rows, err := r.db.Query(`
		SELECT move_id, session_id, move_index, ts_ms, notation, facelets
		FROM moves
		WHERE session_id = ?
		ORDER BY move_index
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get moves: %w", err)
	}
	defer rows.Close()

	var moves []MoveRecord
	for rows.Next() {
		var m MoveRecord
		if err := rows.Scan(&m.MoveID, &m.SessionID, &m.MoveIndex, &m.TsMs, &m.Notation, &m.Facelets); err != nil {
			return nil, fmt.Errorf("failed to scan move: %w", err)
		}
		moves = append(moves, m)
	}
	return moves, rows.Err()
}

// Count returns the number of moves recorded for a session.
func (r *MoveRepository) Count(sessionID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM moves WHERE session_id = ?", sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count moves: %w", err)
	}
	return count, nil
}

// NextIndex returns the move index the next recorded move should use.
func (r *MoveRepository) NextIndex(sessionID string) (int, error) {
	var next int
	err := r.db.QueryRow(`
		SELECT COALESCE(MAX(move_index) + 1, 0) FROM moves WHERE session_id = ?
	`, sessionID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to get next move index: %w", err)
	}
	return next, nil
}
