// Package solver adapts external two-phase solvers to rubik.Solver.
package solver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	rubik "github.com/SeamusWaldron/rubik_server"
)

// waitDelay bounds how long output pipes may stay open after the
// process is killed.
const waitDelay = time.Second

// DefaultCommand is the console script installed by the kociemba package.
const DefaultCommand = "kociemba"

// Kociemba runs an external solver process once per solve. The facelet
// string is passed as the last argument and the solution is read from
// stdout.
type Kociemba struct {
	Command string
	Args    []string
	Logger  *slog.Logger
}

// NewKociemba returns a solver that runs command with the given leading
// arguments. An empty command selects DefaultCommand.
func NewKociemba(command string, args ...string) *Kociemba {
	if command == "" {
		command = DefaultCommand
	}
	return &Kociemba{Command: command, Args: args}
}

// Solve implements rubik.Solver.
func (k *Kociemba) Solve(ctx context.Context, facelets string) (string, error) {
	if err := Precheck(facelets); err != nil {
		return "", err
	}

	args := append(append([]string{}, k.Args...), facelets)
	cmd := exec.CommandContext(ctx, k.Command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	k.logger().Debug("running solver", "command", k.Command, "facelets", facelets)
	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("solver %s: %w", k.Command, ctxErr)
	}
	if err != nil {
		if msg, ok := rejection(stderr.String()); ok {
			return "", rubik.Unsolvable(msg)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			k.logger().Warn("solver exited", "code", exitErr.ExitCode(), "stderr", lastLine(stderr.String()))
		}
		return "", fmt.Errorf("solver %s: %w", k.Command, err)
	}

	solution := strings.TrimSpace(stdout.String())
	if msg, ok := rejection(solution); ok {
		return "", rubik.Unsolvable(msg)
	}
	return solution, nil
}

func (k *Kociemba) logger() *slog.Logger {
	if k.Logger != nil {
		return k.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// rejection recognises the ways a solver reports an invalid cube:
// a Python ValueError traceback, or the "Error N:" lines printed by the
// C solver.
func rejection(output string) (string, bool) {
	line := lastLine(output)
	switch {
	case strings.HasPrefix(line, "ValueError:"):
		return strings.TrimSpace(strings.TrimPrefix(line, "ValueError:")), true
	case strings.HasPrefix(line, "Error"):
		return line, true
	case strings.Contains(strings.ToLower(line), "invalid"):
		return line, true
	}
	return "", false
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}

// Precheck rejects facelet strings no solver could accept: wrong length,
// unknown symbols, a symbol count other than nine, or centers out of place.
// It does not check that the state is reachable.
func Precheck(facelets string) error {
	g, err := rubik.ParseGrid(facelets)
	if err != nil {
		return rubik.Unsolvable(strings.TrimPrefix(err.Error(), "rubik: "))
	}
	counts := g.Counts()
	for _, f := range rubik.Faces {
		if n := counts[f.Symbol()]; n != rubik.FaceSize {
			return rubik.Unsolvable(fmt.Sprintf("symbol %v appears %d times, want %d", f.Symbol(), n, rubik.FaceSize))
		}
	}
	for _, f := range rubik.Faces {
		if g.Center(f) != f.Symbol() {
			return rubik.Unsolvable(fmt.Sprintf("center of %v is %v", f, g.Center(f)))
		}
	}
	return nil
}
