// Package mcptools exposes cube sessions as MCP tools.
package mcptools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	rubik "github.com/SeamusWaldron/rubik_server"
	"github.com/SeamusWaldron/rubik_server/internal/session"
)

const instructions = `Rubik's Cube - MCP Interface

Drive virtual 3x3 cubes with standard move notation and ask a two-phase
solver for solutions.

MOVES: R R' L L' U U' D D' F F' B B' M M'
Double turns are written twice (R R). Tokens are case sensitive.

STATE: cube_string is 54 symbols, faces in the order U R F D L B, each
face row by row. A solved cube is UUUUUUUUURRRRRRRRRFFFFFFFFFDDDDDDDDDLLLLLLLLLBBBBBBBBB.

AVAILABLE TOOLS:
- create_session: Start a new cube (solved)
- list_sessions: List active cubes
- cube_state: Show a cube's state and unfolded net
- apply_move: Apply one move
- apply_moves: Apply a sequence atomically (all tokens are checked first)
- solve: Get a solution for the current state (not applied)
- reset: Return a cube to solved
- list_algorithms: Named sequences usable with apply_moves

Every tool takes an optional session_id; without it the default cube is used.`

// Tools serves MCP tool calls against a session manager.
type Tools struct {
	sessions  *session.Manager
	mcpServer *server.MCPServer
}

// New registers every tool on a fresh MCP server.
func New(sessions *session.Manager, version string) *Tools {
	t := &Tools{sessions: sessions}
	t.mcpServer = server.NewMCPServer(
		"Rubik's Cube",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(instructions),
	)
	t.registerTools()
	return t
}

// MCPServer returns the underlying server, e.g. for server.ServeStdio.
func (t *Tools) MCPServer() *server.MCPServer {
	return t.mcpServer
}

// ServeStdio serves MCP over stdin and stdout until the input closes.
func (t *Tools) ServeStdio() error {
	return server.ServeStdio(t.mcpServer)
}

var sessionIDProperty = map[string]interface{}{
	"type":        "string",
	"description": "Session ID (optional, defaults to the shared default cube)",
}

func (t *Tools) registerTools() {
	t.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new cube session, starting solved",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, t.handleCreateSession)

	t.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active cube sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, t.handleListSessions)

	t.mcpServer.AddTool(mcp.Tool{
		Name:        "cube_state",
		Description: "Get the cube's facelet string and unfolded net",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty,
			},
		},
	}, t.handleCubeState)

	t.mcpServer.AddTool(mcp.Tool{
		Name:        "apply_move",
		Description: "Apply a single move (R, R', L, L', U, U', D, D', F, F', B, B', M, M')",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty,
				"move": map[string]interface{}{
					"type":        "string",
					"description": "Move token",
					"enum":        moveTokens(),
				},
			},
			Required: []string{"move"},
		},
	}, t.handleApplyMove)

	t.mcpServer.AddTool(mcp.Tool{
		Name:        "apply_moves",
		Description: "Apply a space separated move sequence or a named algorithm. Nothing is applied if any token is invalid.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty,
				"sequence": map[string]interface{}{
					"type":        "string",
					"description": "Moves separated by spaces, e.g. \"R U R' U'\"",
				},
				"algorithm": map[string]interface{}{
					"type":        "string",
					"description": "Name of a stored algorithm (see list_algorithms)",
				},
			},
		},
	}, t.handleApplyMoves)

	t.mcpServer.AddTool(mcp.Tool{
		Name:        "solve",
		Description: "Ask the solver for a solution from the current state. The solution is returned, not applied.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty,
			},
		},
	}, t.handleSolve)

	t.mcpServer.AddTool(mcp.Tool{
		Name:        "reset",
		Description: "Reset the cube to the solved state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty,
			},
		},
	}, t.handleReset)

	t.mcpServer.AddTool(mcp.Tool{
		Name:        "list_algorithms",
		Description: "List the named move sequences",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, t.handleListAlgorithms)
}

func moveTokens() []string {
	tokens := make([]string, len(rubik.AllMoves))
	for i, m := range rubik.AllMoves {
		tokens[i] = m.String()
	}
	return tokens
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func (t *Tools) session(args map[string]interface{}) (*session.Session, error) {
	id, _ := args["session_id"].(string)
	if id == "" {
		return t.sessions.Default(), nil
	}
	return t.sessions.Get(id)
}

func (t *Tools) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, err := t.sessions.Create()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Created session %s\n\n%s", s.ID, formatState(s))), nil
}

func (t *Tools) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infos := t.sessions.List()

	var b strings.Builder
	fmt.Fprintf(&b, "%d session(s)\n", len(infos))
	for _, info := range infos {
		status := "scrambled"
		if info.Solved {
			status = "solved"
		}
		fmt.Fprintf(&b, "- %s: %s, %d moves\n", info.ID, status, info.Moves)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (t *Tools) handleCubeState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, err := t.session(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatState(s)), nil
}

func (t *Tools) handleApplyMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	s, err := t.session(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	move, _ := args["move"].(string)

	if _, err := s.Cube.ApplyMove(move); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Applied %s\n\n%s", move, formatState(s))), nil
}

func (t *Tools) handleApplyMoves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	s, err := t.session(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sequence, _ := args["sequence"].(string)
	tokens := strings.Fields(sequence)
	if name, _ := args["algorithm"].(string); len(tokens) == 0 && name != "" {
		alg, ok := rubik.Algorithms[name]
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown algorithm %q", name)), nil
		}
		tokens = strings.Fields(rubik.FormatMoves(alg))
	}
	if len(tokens) == 0 {
		return mcp.NewToolResultError("provide a sequence or an algorithm"), nil
	}

	if _, err := s.Cube.ApplyMoves(tokens); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Applied %s\n\n%s", strings.Join(tokens, " "), formatState(s))), nil
}

func (t *Tools) handleSolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, err := t.session(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.Cube.Solve(ctx)
	if err != nil {
		var se *rubik.SolveError
		if errors.As(err, &se) && se.Kind == rubik.ErrUnsolvable {
			return mcp.NewToolResultError("The solver rejected this state: " + se.Message), nil
		}
		return mcp.NewToolResultError("The solver failed; try again later."), nil
	}
	if res.Empty() {
		return mcp.NewToolResultText("The cube is already solved."), nil
	}

	moves, err := rubik.FlattenSteps(res.Steps)
	if err != nil {
		return mcp.NewToolResultText("Solution: " + res.Solution), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Solution: %s\nAs single turns (%d): %s\n\nUse apply_moves with the single-turn sequence to solve the cube.",
		res.Solution, len(moves), rubik.FormatMoves(moves),
	)), nil
}

func (t *Tools) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, err := t.session(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.Cube.Reset()
	return mcp.NewToolResultText("Cube reset\n\n" + formatState(s)), nil
}

func (t *Tools) handleListAlgorithms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	for _, name := range rubik.AlgorithmNames() {
		fmt.Fprintf(&b, "%s: %s\n", name, rubik.FormatMoves(rubik.Algorithms[name]))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func formatState(s *session.Session) string {
	g := s.Cube.Grid()
	status := "scrambled"
	if g.IsSolved() {
		status = "SOLVED"
	}
	return fmt.Sprintf("Session: %s\nStatus: %s\nMoves: %d\ncube_string: %s\n\n%s",
		s.ID, status, s.Cube.MoveCount(), g.String(), g.Net())
}
