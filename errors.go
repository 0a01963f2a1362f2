package rubik

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the rubik package.
var (
	// ErrInvalidMove reports a token outside the move alphabet.
	ErrInvalidMove = errors.New("rubik: invalid move")

	// ErrUnsolvable reports that the solver rejected the facelet string
	// as malformed or physically unreachable.
	ErrUnsolvable = errors.New("rubik: cube state is not solvable")

	// ErrSolverFailure reports any other solver failure, including timeouts.
	ErrSolverFailure = errors.New("rubik: solver failed")

	// ErrNoSolver is returned by Solve when the cube has no solver configured.
	ErrNoSolver = errors.New("rubik: no solver configured")
)

// InvalidMoveError carries the token that could not be dispatched.
type InvalidMoveError struct {
	Token string
}

func (e *InvalidMoveError) Error() string {
	return fmt.Sprintf("rubik: invalid move %q", e.Token)
}

// Is makes errors.Is(err, ErrInvalidMove) match.
func (e *InvalidMoveError) Is(target error) bool {
	return target == ErrInvalidMove
}

// SolveError describes a failed solve. Kind is ErrUnsolvable or
// ErrSolverFailure. Message is safe to show to clients only for
// ErrUnsolvable.
type SolveError struct {
	Kind    error
	Message string
	Err     error
}

func (e *SolveError) Error() string {
	if e.Kind == ErrUnsolvable && e.Message != "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Message)
	}
	return e.Kind.Error()
}

func (e *SolveError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Unsolvable builds the error a Solver returns when it rejects a
// facelet string, carrying the solver's message.
func Unsolvable(message string) error {
	return &SolveError{Kind: ErrUnsolvable, Message: message}
}

// ClassifySolverError wraps an error returned by a Solver. Errors matching
// ErrUnsolvable become client errors carrying the solver's message; any
// other error is an opaque ErrSolverFailure.
func ClassifySolverError(err error) *SolveError {
	if errors.Is(err, ErrUnsolvable) {
		return &SolveError{Kind: ErrUnsolvable, Message: unsolvableMessage(err), Err: err}
	}
	return &SolveError{Kind: ErrSolverFailure, Err: err}
}

// unsolvableMessage extracts the solver's explanation of a rejection.
func unsolvableMessage(err error) string {
	var se *SolveError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return strings.TrimPrefix(err.Error(), "rubik: ")
}
