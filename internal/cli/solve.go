package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	rubik "github.com/SeamusWaldron/rubik_server"
	"github.com/SeamusWaldron/rubik_server/internal/render"
)

var (
	solveScramble string
	solveFrom     string
	solveApply    bool
	solvePlain    bool
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Ask the solver for a solution",
	Long: `Solve a scrambled cube with the configured solver.

The state comes from a scramble applied to a solved cube or from a facelet
string:

  rubik solve --scramble "R U R' U' F"
  rubik solve --from DRLUUBFBRBLURRLRUBLRDDFDLFUFUFFDBRDUBRUFLLFDDBFLUBLRBD`,
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().StringVar(&solveScramble, "scramble", "", "Moves to apply to a solved cube first")
	solveCmd.Flags().StringVar(&solveFrom, "from", "", "Facelet string to solve")
	solveCmd.Flags().BoolVar(&solveApply, "apply", false, "Apply the solution and show the result")
	solveCmd.Flags().BoolVar(&solvePlain, "plain", false, "Print letters without colors")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	if (solveScramble == "") == (solveFrom == "") {
		return fmt.Errorf("give exactly one of --scramble or --from")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	solver := buildSolver(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		start  rubik.Grid
		result rubik.SolveResult
	)
	if solveFrom != "" {
		start, err = rubik.ParseGrid(solveFrom)
		if err != nil {
			return err
		}
		result, err = solveGrid(ctx, solver, cfg.Solver.Timeout.Duration, start)
	} else {
		cube := rubik.New(
			rubik.WithSolver(solver),
			rubik.WithSolveTimeout(cfg.Solver.Timeout.Duration),
			rubik.WithLogger(logger),
		)
		if _, err := cube.ApplyMoves(strings.Fields(solveScramble)); err != nil {
			return err
		}
		start = cube.Grid()
		result, err = cube.Solve(ctx)
	}
	if err != nil {
		return describeSolveError(err)
	}

	out := cmd.OutOrStdout()
	if result.Empty() {
		fmt.Fprintln(out, "Cube is already solved")
		return nil
	}

	moves, err := rubik.FlattenSteps(result.Steps)
	if err != nil {
		return fmt.Errorf("solver returned unreadable moves: %w", err)
	}
	fmt.Fprintf(out, "Solution:  %s (%d steps)\n", result.Solution, len(result.Steps))
	fmt.Fprintf(out, "Turns:     %s (%d)\n", rubik.FormatMoves(moves), len(moves))

	if solveApply {
		fmt.Fprintln(out)
		fmt.Fprintln(out, render.New(solvePlain).Summary("After solution", rubik.ApplyAll(start, moves)))
	}
	return nil
}

// solveGrid runs the solver on an arbitrary grid. It mirrors Cube.Solve
// for states that were not reached by moves.
func solveGrid(ctx context.Context, solver rubik.Solver, timeout time.Duration, g rubik.Grid) (rubik.SolveResult, error) {
	facelets := g.SolverFacelets()
	if g.IsSolved() || facelets == rubik.SolvedFacelets {
		return rubik.SolveResult{Steps: []rubik.Step{}}, nil
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	raw, err := solver.Solve(ctx, facelets)
	if err != nil {
		return rubik.SolveResult{}, rubik.ClassifySolverError(err)
	}
	return rubik.SolveResult{Solution: raw, Steps: rubik.ParseSolution(raw)}, nil
}

func describeSolveError(err error) error {
	var se *rubik.SolveError
	if errors.As(err, &se) && se.Kind == rubik.ErrUnsolvable {
		if se.Message != "" {
			return fmt.Errorf("cube cannot be solved: %s", se.Message)
		}
		return fmt.Errorf("cube cannot be solved")
	}
	return fmt.Errorf("solve failed: %w", err)
}
