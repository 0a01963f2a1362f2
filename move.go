package rubik

import (
	"strings"
)

// Move is one primitive operation of the move engine.
// Double turns do not exist at this level; they are expanded to two
// quarter turns before reaching the engine.
type Move uint8

const (
	R      Move = iota // Right clockwise
	RPrime             // Right counter-clockwise
	L                  // Left clockwise
	LPrime             // Left counter-clockwise
	U                  // Up clockwise
	UPrime             // Up counter-clockwise
	D                  // Down clockwise
	DPrime             // Down counter-clockwise
	F                  // Front clockwise
	FPrime             // Front counter-clockwise
	B                  // Back clockwise
	BPrime             // Back counter-clockwise
	M                  // Middle slice, R' L then tilt up
	MPrime             // Middle slice, R L' then tilt down

	moveCount
)

// AllMoves lists every move in the alphabet.
var AllMoves = []Move{R, RPrime, L, LPrime, U, UPrime, D, DPrime, F, FPrime, B, BPrime, M, MPrime}

// FaceMoves lists the twelve face turns.
var FaceMoves = []Move{R, RPrime, L, LPrime, U, UPrime, D, DPrime, F, FPrime, B, BPrime}

var moveTokens = [moveCount]string{
	R: "R", RPrime: "R'",
	L: "L", LPrime: "L'",
	U: "U", UPrime: "U'",
	D: "D", DPrime: "D'",
	F: "F", FPrime: "F'",
	B: "B", BPrime: "B'",
	M: "M", MPrime: "M'",
}

// String returns the notation token for the move.
func (m Move) String() string {
	if m >= moveCount {
		return "?"
	}
	return moveTokens[m]
}

// Valid reports whether m is part of the alphabet.
func (m Move) Valid() bool {
	return m < moveCount
}

// Prime reports whether m is a counter-clockwise variant.
func (m Move) Prime() bool {
	return m.Valid() && m%2 == 1
}

// Inverse returns the move that undoes m.
// R becomes R', R' becomes R.
func (m Move) Inverse() Move {
	if !m.Valid() {
		return m
	}
	return m ^ 1
}

// MarshalText encodes the move as its notation token.
func (m Move) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, &InvalidMoveError{Token: m.String()}
	}
	return []byte(m.String()), nil
}

// UnmarshalText decodes a notation token.
func (m *Move) UnmarshalText(text []byte) error {
	parsed, err := ParseMove(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMove converts a notation token into a Move.
// Tokens must match exactly; "r", "R2" and "R '" are all rejected.
func ParseMove(token string) (Move, error) {
	for i, t := range moveTokens {
		if t == token {
			return Move(i), nil
		}
	}
	return 0, &InvalidMoveError{Token: token}
}

// ParseMoves parses a space-separated sequence of primitive moves.
// Unlike the notation parser it rejects the first unknown token.
func ParseMoves(s string) ([]Move, error) {
	parts := strings.Fields(s)
	moves := make([]Move, 0, len(parts))

	for _, part := range parts {
		move, err := ParseMove(part)
		if err != nil {
			return nil, err
		}
		moves = append(moves, move)
	}

	return moves, nil
}

// FormatMoves formats a slice of moves as a space-separated notation string.
func FormatMoves(moves []Move) string {
	if len(moves) == 0 {
		return ""
	}

	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.String()
	}

	return strings.Join(parts, " ")
}

// InverseSequence returns the moves that undo seq, last move first.
func InverseSequence(seq []Move) []Move {
	inv := make([]Move, len(seq))
	for i, m := range seq {
		inv[len(seq)-1-i] = m.Inverse()
	}
	return inv
}
