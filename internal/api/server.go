// Package api serves cube sessions over HTTP.
//
// The unprefixed routes (/move, /solve, /reset-cube) drive the default
// session and keep the request and response shapes existing frontends
// use. Everything under /api addresses a session by id.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	rubik "github.com/SeamusWaldron/rubik_server"
	"github.com/SeamusWaldron/rubik_server/internal/metrics"
	"github.com/SeamusWaldron/rubik_server/internal/session"
	"github.com/SeamusWaldron/rubik_server/internal/stream"
)

// Server represents the REST API server.
type Server struct {
	sessions *session.Manager
	hub      *stream.Hub
	metrics  *metrics.Metrics
	logger   *slog.Logger

	origins     []string
	cors        *cors.Cors
	metricsPath string

	router  *mux.Router
	handler http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithHub enables the websocket route.
func WithHub(h *stream.Hub) Option {
	return func(s *Server) { s.hub = h }
}

// WithMetrics counts requests and solves and serves the registry at path.
func WithMetrics(m *metrics.Metrics, path string) Option {
	return func(s *Server) {
		s.metrics = m
		s.metricsPath = path
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCORSOrigins lists the origins allowed to call the API. "*" allows
// any origin.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// NewServer creates a new API server.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions: sessions,
		logger:   slog.New(slog.DiscardHandler),
		origins:  []string{"*"},
		router:   mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.cors = newCORS(s.origins)
	if s.hub != nil {
		s.hub.SetOriginCheck(s.CheckOrigin)
	}
	s.setupRoutes()
	// CORS wraps the router so preflight requests never reach route matching.
	s.handler = s.cors.Handler(s.router)
	return s
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.Use(s.observe)

	// Single-cube routes used by the original frontend.
	s.router.HandleFunc("/move", s.handleLegacyMove).Methods(http.MethodPost)
	s.router.HandleFunc("/solve", s.handleLegacySolve).Methods(http.MethodGet)
	s.router.HandleFunc("/reset-cube", s.handleLegacyReset).Methods(http.MethodPost)

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions", s.handleListSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods(http.MethodDelete)

	api.HandleFunc("/sessions/{id}/state", s.handleGetState).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/move", s.handleMove).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/moves", s.handleMoves).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/solve", s.handleSolve).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods(http.MethodPost)
	if s.hub != nil {
		api.HandleFunc("/sessions/{id}/ws", s.handleWebSocket)
	}

	api.HandleFunc("/algorithms", s.handleListAlgorithms).Methods(http.MethodGet)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil && s.metricsPath != "" {
		s.router.Handle(s.metricsPath, s.metrics.Handler()).Methods(http.MethodGet)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDetail writes errors the way the single-cube routes always have.
func respondDetail(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"detail": message})
}

// errorStatus maps a domain error to an HTTP status and a client-safe
// message. Anything unrecognised is a 500 with a generic message.
func errorStatus(err error) (int, string) {
	var se *rubik.SolveError
	switch {
	case errors.Is(err, rubik.ErrInvalidMove):
		return http.StatusBadRequest, strings.TrimPrefix(err.Error(), "rubik: ")
	case errors.As(err, &se) && se.Kind == rubik.ErrUnsolvable:
		msg := se.Message
		if msg == "" {
			msg = strings.TrimPrefix(rubik.ErrUnsolvable.Error(), "rubik: ")
		}
		return http.StatusBadRequest, msg
	case errors.Is(err, rubik.ErrUnsolvable):
		return http.StatusBadRequest, strings.TrimPrefix(rubik.ErrUnsolvable.Error(), "rubik: ")
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, session.ErrTooManySessions):
		return http.StatusTooManyRequests, err.Error()
	}
	return http.StatusInternalServerError, "Internal server error"
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, write func(http.ResponseWriter, int, string)) {
	status, msg := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	write(w, status, msg)
}

type moveRequest struct {
	Move string `json:"move"`
}

type moveResponse struct {
	Move     string `json:"move"`
	Facelets string `json:"cube_string"`
}

// decodeMove reads the move token. A missing or malformed body yields
// an empty token, which the cube rejects as an invalid move.
func decodeMove(r *http.Request) string {
	var req moveRequest
	json.NewDecoder(r.Body).Decode(&req)
	return req.Move
}

func (s *Server) applyMove(c *rubik.Cube, token string) (string, error) {
	facelets, err := c.ApplyMove(token)
	if err != nil && errors.Is(err, rubik.ErrInvalidMove) && s.metrics != nil {
		s.metrics.InvalidMoves.Inc()
	}
	return facelets, err
}

// solve wraps Cube.Solve with metrics.
func (s *Server) solve(r *http.Request, c *rubik.Cube) (rubik.SolveResult, error) {
	solved := c.IsSolved()
	start := time.Now()
	res, err := c.Solve(r.Context())
	if s.metrics != nil {
		s.metrics.ObserveSolve(solveOutcome(solved, err), time.Since(start))
	}
	return res, err
}

func solveOutcome(wasSolved bool, err error) string {
	switch {
	case err == nil && wasSolved:
		return "already_solved"
	case err == nil:
		return "ok"
	case errors.Is(err, rubik.ErrUnsolvable):
		return "unsolvable"
	}
	return "error"
}

// Legacy handlers

func (s *Server) handleLegacyMove(w http.ResponseWriter, r *http.Request) {
	token := decodeMove(r)
	facelets, err := s.applyMove(s.sessions.Default().Cube, token)
	if err != nil {
		s.fail(w, r, err, respondDetail)
		return
	}
	respondJSON(w, http.StatusOK, moveResponse{Move: token, Facelets: facelets})
}

func (s *Server) handleLegacySolve(w http.ResponseWriter, r *http.Request) {
	res, err := s.solve(r, s.sessions.Default().Cube)
	if err != nil {
		s.fail(w, r, err, respondDetail)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleLegacyReset(w http.ResponseWriter, r *http.Request) {
	s.sessions.Default().Cube.Reset()
	respondJSON(w, http.StatusOK, struct{}{})
}

// Session handlers

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err, respondError)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create()
	if err != nil {
		s.fail(w, r, err, respondError)
		return
	}
	respondJSON(w, http.StatusCreated, sess.Info())
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.sessions.List()
	total := len(sessions)

	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l < len(sessions) {
		sessions = sessions[:l]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, sess.Info())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.sessions.Delete(id); err != nil {
		s.fail(w, r, err, respondError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", id),
	})
}

type stateResponse struct {
	session.Info
	Net string `json:"net"`
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, stateResponse{Info: sess.Info(), Net: sess.Cube.Grid().Net()})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	token := decodeMove(r)
	facelets, err := s.applyMove(sess.Cube, token)
	if err != nil {
		s.fail(w, r, err, respondError)
		return
	}
	respondJSON(w, http.StatusOK, moveResponse{Move: token, Facelets: facelets})
}

// movesRequest carries a sequence as a list, a space separated string,
// or the name of a stored algorithm. The first non-empty field wins.
type movesRequest struct {
	Moves     []string `json:"moves,omitempty"`
	Sequence  string   `json:"sequence,omitempty"`
	Algorithm string   `json:"algorithm,omitempty"`
}

func (req movesRequest) tokens() ([]string, error) {
	switch {
	case len(req.Moves) > 0:
		return req.Moves, nil
	case strings.TrimSpace(req.Sequence) != "":
		return strings.Fields(req.Sequence), nil
	case req.Algorithm != "":
		alg, ok := rubik.Algorithms[req.Algorithm]
		if !ok {
			return nil, fmt.Errorf("%w: unknown algorithm %q", rubik.ErrInvalidMove, req.Algorithm)
		}
		tokens := make([]string, len(alg))
		for i, m := range alg {
			tokens[i] = m.String()
		}
		return tokens, nil
	}
	return nil, nil
}

type movesResponse struct {
	Moves    []string `json:"moves"`
	Facelets string   `json:"cube_string"`
	Solved   bool     `json:"solved"`
}

func (s *Server) handleMoves(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req movesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tokens, err := req.tokens()
	if err != nil {
		s.fail(w, r, err, respondError)
		return
	}

	facelets, err := sess.Cube.ApplyMoves(tokens)
	if err != nil {
		if s.metrics != nil && errors.Is(err, rubik.ErrInvalidMove) {
			s.metrics.InvalidMoves.Inc()
		}
		s.fail(w, r, err, respondError)
		return
	}
	if tokens == nil {
		tokens = []string{}
	}
	respondJSON(w, http.StatusOK, movesResponse{Moves: tokens, Facelets: facelets, Solved: sess.Cube.IsSolved()})
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	res, err := s.solve(r, sess.Cube)
	if err != nil {
		s.fail(w, r, err, respondError)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Cube.Reset()
	respondJSON(w, http.StatusOK, sess.Info())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.hub.ServeWS(w, r, sess.ID)
}

func (s *Server) handleListAlgorithms(w http.ResponseWriter, r *http.Request) {
	algs := make(map[string]string, len(rubik.Algorithms))
	for _, name := range rubik.AlgorithmNames() {
		algs[name] = rubik.FormatMoves(rubik.Algorithms[name])
	}
	respondJSON(w, http.StatusOK, algs)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}
