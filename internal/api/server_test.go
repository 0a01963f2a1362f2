package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rubik "github.com/SeamusWaldron/rubik_server"
	"github.com/SeamusWaldron/rubik_server/internal/metrics"
	"github.com/SeamusWaldron/rubik_server/internal/session"
)

// fakeSolver answers every solve with reply, or fails with err.
type fakeSolver struct {
	reply string
	err   error
	seen  []string
}

func (f *fakeSolver) Solve(ctx context.Context, facelets string) (string, error) {
	f.seen = append(f.seen, facelets)
	return f.reply, f.err
}

type testEnv struct {
	server   *Server
	sessions *session.Manager
	solver   *fakeSolver
	metrics  *metrics.Metrics
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	env := &testEnv{solver: &fakeSolver{reply: "R'"}, metrics: metrics.New()}
	env.sessions = session.NewManager(func(string) *rubik.Cube {
		return rubik.New(rubik.WithSolver(env.solver))
	})
	opts = append([]Option{WithMetrics(env.metrics, "/metrics")}, opts...)
	env.server = NewServer(env.sessions, opts...)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestLegacyMove(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/move", map[string]string{"move": "R"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	decode(t, rec, &resp)
	assert.Equal(t, "R", resp["move"])
	assert.Equal(t, "UUFUUFUUFRRRRRRRRRFFDFFDFFDDDBDDBDDBLLLLLLLLLUBBUBBUBB", resp["cube_string"])
	assert.Equal(t, resp["cube_string"], env.sessions.Default().Cube.Facelets())
}

func TestLegacyMoveInvalid(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/move", map[string]string{"move": "X"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	decode(t, rec, &resp)
	assert.Contains(t, resp["detail"], `"X"`)
	assert.True(t, env.sessions.Default().Cube.IsSolved())
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.InvalidMoves))
}

func TestLegacyMoveMissingBody(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/move", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLegacySolveSolved(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/solve", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"solutionString":"","parsedMoves":[]}`, rec.Body.String())
	assert.Empty(t, env.solver.seen)
}

func TestLegacySolve(t *testing.T) {
	env := newTestEnv(t)
	env.solver.reply = "R2 U' F"
	env.do(t, http.MethodPost, "/move", map[string]string{"move": "F"})

	rec := env.do(t, http.MethodGet, "/solve", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"solutionString":"R2 U' F","parsedMoves":[["R","R"],"U'","F"]}`, rec.Body.String())

	count, err := testutil.GatherAndCount(env.metrics.Registry, "rubik_solves_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLegacySolveUnsolvable(t *testing.T) {
	env := newTestEnv(t)
	env.solver.err = rubik.Unsolvable("Error 8: Some corner is twisted")
	env.do(t, http.MethodPost, "/move", map[string]string{"move": "U"})

	rec := env.do(t, http.MethodGet, "/solve", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"Error 8: Some corner is twisted"}`, rec.Body.String())
}

func TestLegacySolveFailureIsGeneric(t *testing.T) {
	env := newTestEnv(t)
	env.solver.err = errors.New("pruning table missing at /opt/kociemba")
	env.do(t, http.MethodPost, "/move", map[string]string{"move": "U"})

	rec := env.do(t, http.MethodGet, "/solve", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pruning")
	assert.JSONEq(t, `{"detail":"Internal server error"}`, rec.Body.String())
}

func TestLegacyReset(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/move", map[string]string{"move": "M"})

	rec := env.do(t, http.MethodPost, "/reset-cube", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
	assert.True(t, env.sessions.Default().Cube.IsSolved())
}

func createSession(t *testing.T, env *testEnv) string {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var info session.Info
	decode(t, rec, &info)
	require.NotEmpty(t, info.ID)
	return info.ID
}

func TestSessionRoutes(t *testing.T) {
	env := newTestEnv(t)
	id := createSession(t, env)

	rec := env.do(t, http.MethodPost, "/api/sessions/"+id+"/move", map[string]string{"move": "L'"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/sessions/"+id+"/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var state struct {
		ID       string `json:"id"`
		Facelets string `json:"cube_string"`
		Moves    int    `json:"moves"`
		Net      string `json:"net"`
	}
	decode(t, rec, &state)
	assert.Equal(t, id, state.ID)
	assert.Equal(t, rubik.Apply(rubik.Solved(), rubik.LPrime).String(), state.Facelets)
	assert.Equal(t, 1, state.Moves)
	assert.NotEmpty(t, state.Net)

	// The default cube is untouched.
	assert.True(t, env.sessions.Default().Cube.IsSolved())

	rec = env.do(t, http.MethodPost, "/api/sessions/"+id+"/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var info session.Info
	decode(t, rec, &info)
	assert.True(t, info.Solved)

	rec = env.do(t, http.MethodDelete, "/api/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSessions(t *testing.T) {
	env := newTestEnv(t)
	createSession(t, env)
	createSession(t, env)

	rec := env.do(t, http.MethodGet, "/api/sessions?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Count    int            `json:"count"`
		Total    int            `json:"total"`
		Sessions []session.Info `json:"sessions"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 3, resp.Total)
}

func TestUnknownSession(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/api/sessions/nope", "/api/sessions/nope/state", "/api/sessions/nope/solve"} {
		rec := env.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
	rec := env.do(t, http.MethodPost, "/api/sessions/nope/move", map[string]string{"move": "R"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMovesForms(t *testing.T) {
	env := newTestEnv(t)
	id := createSession(t, env)
	path := "/api/sessions/" + id + "/moves"

	rec := env.do(t, http.MethodPost, path, map[string]interface{}{"moves": []string{"R", "U", "R'", "U'"}})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp movesResponse
	decode(t, rec, &resp)
	assert.Equal(t, rubik.ApplyAll(rubik.Solved(), rubik.SexyMove).String(), resp.Facelets)

	rec = env.do(t, http.MethodPost, path, map[string]string{"sequence": "U R U' R'"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &resp)
	assert.True(t, resp.Solved)

	rec = env.do(t, http.MethodPost, path, map[string]string{"algorithm": "sexy"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &resp)
	assert.Equal(t, []string{"R", "U", "R'", "U'"}, resp.Moves)
}

func TestMovesRejectsWholeSequence(t *testing.T) {
	env := newTestEnv(t)
	id := createSession(t, env)

	rec := env.do(t, http.MethodPost, "/api/sessions/"+id+"/moves", map[string]string{"sequence": "R U Q"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s, err := env.sessions.Get(id)
	require.NoError(t, err)
	assert.True(t, s.Cube.IsSolved())

	rec = env.do(t, http.MethodPost, "/api/sessions/"+id+"/moves", map[string]string{"algorithm": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionSolve(t *testing.T) {
	env := newTestEnv(t)
	id := createSession(t, env)
	env.do(t, http.MethodPost, "/api/sessions/"+id+"/move", map[string]string{"move": "R"})

	rec := env.do(t, http.MethodGet, "/api/sessions/"+id+"/solve", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"solutionString":"R'","parsedMoves":["R'"]}`, rec.Body.String())
	require.Len(t, env.solver.seen, 1)
	assert.Equal(t, rubik.Apply(rubik.Solved(), rubik.R).String(), env.solver.seen[0])
}

func TestTooManySessions(t *testing.T) {
	env := &testEnv{solver: &fakeSolver{}}
	env.sessions = session.NewManager(nil, session.WithMaxSessions(1))
	env.server = NewServer(env.sessions)

	rec := env.do(t, http.MethodPost, "/api/sessions", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAlgorithms(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/algorithms", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var algs map[string]string
	decode(t, rec, &algs)
	assert.Equal(t, "R U R' U'", algs["sexy"])
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","sessions":1}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `rubik_http_requests_total{code="200",route="/healthz"} 1`)
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, WithCORSOrigins("http://localhost:5500"))

	req := httptest.NewRequest(http.MethodOptions, "/move", nil)
	req.Header.Set("Origin", "http://localhost:5500")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5500", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodPost, "/move", strings.NewReader(`{"move":"U"}`))
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcard(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://anywhere.example")
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSPreflightCredentials(t *testing.T) {
	env := newTestEnv(t, WithCORSOrigins("http://localhost:5500"))

	req := httptest.NewRequest(http.MethodOptions, "/api/sessions/default", nil)
	req.Header.Set("Origin", "http://localhost:5500")
	req.Header.Set("Access-Control-Request-Method", "DELETE")
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

func TestCheckOrigin(t *testing.T) {
	env := newTestEnv(t, WithCORSOrigins("http://localhost:5500"))

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/default/ws", nil)
	assert.True(t, env.server.CheckOrigin(req), "no Origin header")

	req.Header.Set("Origin", "http://localhost:5500")
	assert.True(t, env.server.CheckOrigin(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, env.server.CheckOrigin(req))
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid move", &rubik.InvalidMoveError{Token: "Z"}, http.StatusBadRequest},
		{"unsolvable", rubik.Unsolvable("bad"), http.StatusBadRequest},
		{"wrapped unsolvable", &rubik.SolveError{Kind: rubik.ErrUnsolvable, Message: "x"}, http.StatusBadRequest},
		{"solver failure", &rubik.SolveError{Kind: rubik.ErrSolverFailure, Err: context.DeadlineExceeded}, http.StatusInternalServerError},
		{"no solver", &rubik.SolveError{Kind: rubik.ErrSolverFailure, Err: rubik.ErrNoSolver}, http.StatusInternalServerError},
		{"not found", session.ErrSessionNotFound, http.StatusNotFound},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := errorStatus(tt.err)
			assert.Equal(t, tt.code, code)
		})
	}
}
