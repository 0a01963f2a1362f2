package rubik

import "context"

// Solver computes a solution for a serialized grid.
//
// facelets is 54 symbols in serialization order. The returned string is
// space-separated notation in which tokens may carry a "2" suffix.
// Implementations wrap ErrUnsolvable when they reject the facelet string;
// any other error is treated as an internal failure.
type Solver interface {
	Solve(ctx context.Context, facelets string) (string, error)
}

// SolverFunc adapts a function to the Solver interface.
type SolverFunc func(ctx context.Context, facelets string) (string, error)

// Solve calls f.
func (f SolverFunc) Solve(ctx context.Context, facelets string) (string, error) {
	return f(ctx, facelets)
}

// SolveResult is the answer to a solve request. Both fields are empty
// when the cube was already solved.
type SolveResult struct {
	Solution string `json:"solutionString"`
	Steps    []Step `json:"parsedMoves"`
}

// Empty reports whether the result carries no moves.
func (r SolveResult) Empty() bool {
	return len(r.Steps) == 0
}
