package rubik

import (
	"encoding/json"
	"iter"
	"strings"
)

// Step is one element of an expanded solution: a single primitive token,
// or two identical tokens for a double turn.
type Step []string

// Double reports whether the step is an expanded half turn.
func (s Step) Double() bool {
	return len(s) == 2
}

// Moves validates the step's tokens against the move alphabet.
func (s Step) Moves() ([]Move, error) {
	moves := make([]Move, 0, len(s))
	for _, tok := range s {
		m, err := ParseMove(tok)
		if err != nil {
			return nil, err
		}
		moves = append(moves, m)
	}
	return moves, nil
}

// MarshalJSON encodes a single token as a string and a double as a pair.
func (s Step) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]string(s))
}

// UnmarshalJSON accepts either encoding produced by MarshalJSON.
func (s *Step) UnmarshalJSON(data []byte) error {
	var tok string
	if err := json.Unmarshal(data, &tok); err == nil {
		*s = Step{tok}
		return nil
	}
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	*s = Step(pair)
	return nil
}

// Steps lazily expands a solver's output. A token carrying a "2" becomes
// two copies of its face letter; every other token passes through as is.
// Tokens are not checked against the move alphabet.
func Steps(raw string) iter.Seq[Step] {
	return func(yield func(Step) bool) {
		for _, tok := range strings.Fields(raw) {
			step := Step{tok}
			if strings.Contains(tok, "2") {
				step = Step{tok[:1], tok[:1]}
			}
			if !yield(step) {
				return
			}
		}
	}
}

// ParseSolution expands raw solver output into its full list of steps.
func ParseSolution(raw string) []Step {
	steps := []Step{}
	for s := range Steps(raw) {
		steps = append(steps, s)
	}
	return steps
}

// FlattenSteps returns the primitive moves of steps in order.
func FlattenSteps(steps []Step) ([]Move, error) {
	var out []Move
	for _, s := range steps {
		moves, err := s.Moves()
		if err != nil {
			return nil, err
		}
		out = append(out, moves...)
	}
	return out, nil
}
