package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rubik "github.com/SeamusWaldron/rubik_server"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenAndMigrate(filepath.Join(t.TempDir(), "nested", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateUp(t *testing.T) {
	db := openTestDB(t)

	v, err := db.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, LatestVersion(), v)

	// A second run is a no-op.
	require.NoError(t, db.MigrateUp())
	v, err = db.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, LatestVersion(), v)
}

func TestCurrentVersionOfEmptyDatabase(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer db.Close()

	v, err := db.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}

func TestSessionLifecycle(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionRepository(db)

	require.NoError(t, repo.Create("s1"))
	require.NoError(t, repo.RecordReset("s1"))
	require.NoError(t, repo.End("s1"))

	s, err := repo.Get("s1")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 1, s.ResetCount)
	assert.NotNil(t, s.EndedAt)

	// Reopening clears the end time.
	require.NoError(t, repo.Create("s1"))
	s, err = repo.Get("s1")
	require.NoError(t, err)
	assert.Nil(t, s.EndedAt)
	assert.Equal(t, 1, s.ResetCount)

	missing, err := repo.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMovesRoundTrip(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewSessionRepository(db).Create("s1"))
	repo := NewMoveRepository(db)

	moves := []rubik.Move{rubik.R, rubik.U, rubik.RPrime}
	final := rubik.ApplyAll(rubik.Solved(), moves)
	require.NoError(t, repo.CreateBatch("s1", 0, time.Now(), moves, final.String()))

	records, err := repo.ListBySession("s1")
	require.NoError(t, err)
	require.Len(t, records, 3)

	g := rubik.Solved()
	for i, rec := range records {
		assert.Equal(t, i, rec.MoveIndex)
		m, err := rec.Move()
		require.NoError(t, err)
		assert.Equal(t, moves[i], m)

		g.Apply(m)
		assert.Equal(t, g.String(), rec.Facelets, "facelets after move %d", i)
	}

	n, err := repo.Count("s1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	next, err := repo.NextIndex("s1")
	require.NoError(t, err)
	assert.Equal(t, 3, next)
}

func TestMoveRequiresSession(t *testing.T) {
	db := openTestDB(t)
	_, err := NewMoveRepository(db).Create("ghost", 0, time.Now(), rubik.R, rubik.SolvedFacelets)
	assert.Error(t, err)
}

func TestSolvesRoundTrip(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewSessionRepository(db).Create("s1"))
	repo := NewSolveRepository(db)

	res := rubik.SolveResult{Solution: "R2 U", Steps: rubik.ParseSolution("R2 U")}
	id, err := repo.Create("s1", rubik.SolvedFacelets, res)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	solves, err := repo.ListBySession("s1")
	require.NoError(t, err)
	require.Len(t, solves, 1)
	assert.Equal(t, id, solves[0].SolveID)
	assert.Equal(t, "R2 U", solves[0].Solution)
	assert.Equal(t, 2, solves[0].StepCount)
}

func TestRecorderFollowsCube(t *testing.T) {
	db := openTestDB(t)
	rec, err := NewRecorder(db, "s1", nil)
	require.NoError(t, err)

	solver := rubik.SolverFunc(func(ctx context.Context, f string) (string, error) {
		return "U' R'", nil
	})
	c := rubik.New(rubik.WithObserver(rec.Observe), rubik.WithSolver(solver))

	_, err = c.ApplyMoves([]string{"R", "U"})
	require.NoError(t, err)
	_, err = c.ApplyMove("F")
	require.NoError(t, err)
	_, err = c.Solve(context.Background())
	require.NoError(t, err)
	c.Reset()
	require.NoError(t, rec.Close())

	moves, err := NewMoveRepository(db).ListBySession("s1")
	require.NoError(t, err)
	require.Len(t, moves, 3)
	assert.Equal(t, "F", moves[2].Notation)
	assert.Equal(t, 2, moves[2].MoveIndex)

	sessions, err := NewSessionRepository(db).List(10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 3, sessions[0].MoveCount)
	assert.Equal(t, 1, sessions[0].SolveCount)
	assert.Equal(t, 1, sessions[0].ResetCount)
	assert.NotNil(t, sessions[0].EndedAt)
}

func TestRecorderResumesIndex(t *testing.T) {
	db := openTestDB(t)
	first, err := NewRecorder(db, "default", nil)
	require.NoError(t, err)
	first.Observe(rubik.Event{
		Kind:     rubik.EventMove,
		Moves:    []rubik.Move{rubik.L},
		Facelets: rubik.Apply(rubik.Solved(), rubik.L).String(),
		At:       time.Now(),
	})

	second, err := NewRecorder(db, first.SessionID(), nil)
	require.NoError(t, err)
	second.Observe(rubik.Event{
		Kind:     rubik.EventMove,
		Moves:    []rubik.Move{rubik.D},
		Facelets: rubik.Apply(rubik.Solved(), rubik.D).String(),
		At:       time.Now(),
	})

	moves, err := NewMoveRepository(db).ListBySession(first.SessionID())
	require.NoError(t, err)
	require.Len(t, moves, 2)
	assert.Equal(t, 1, moves[1].MoveIndex)
}
