package rubik

import (
	"fmt"
	"strings"
)

// Face identifies one of the six cube faces.
// The numbering is the order faces appear in a serialized grid.
type Face int

const (
	FaceU Face = 0 // Up
	FaceR Face = 1 // Right
	FaceF Face = 2 // Front
	FaceD Face = 3 // Down
	FaceL Face = 4 // Left
	FaceB Face = 5 // Back
)

// Faces lists every face in serialization order.
var Faces = [6]Face{FaceU, FaceR, FaceF, FaceD, FaceL, FaceB}

func (f Face) String() string {
	switch f {
	case FaceU:
		return "U"
	case FaceR:
		return "R"
	case FaceF:
		return "F"
	case FaceD:
		return "D"
	case FaceL:
		return "L"
	case FaceB:
		return "B"
	default:
		return "?"
	}
}

// Symbol returns the sticker a face carries when the cube is solved.
func (f Face) Symbol() Sticker {
	return Sticker(f.String()[0])
}

// Sticker is a single facelet label. Labels name the face a sticker
// belongs to when solved, not a color.
type Sticker byte

func (s Sticker) String() string {
	return string(s)
}

// Valid reports whether s is one of the six face symbols.
func (s Sticker) Valid() bool {
	switch s {
	case 'U', 'R', 'F', 'D', 'L', 'B':
		return true
	}
	return false
}

// FaceSize is the number of stickers per face.
const FaceSize = 9

// FaceletCount is the number of stickers on the whole cube.
const FaceletCount = 6 * FaceSize

// SolvedFacelets is the serialized form of a solved grid.
const SolvedFacelets = "UUUUUUUUURRRRRRRRRFFFFFFFFFDDDDDDDDDLLLLLLLLLBBBBBBBBB"

// Grid holds the 54 stickers of a cube as six 3x3 faces.
// Each face is indexed [row][col] as seen from outside the cube:
//
//	U: B edge on top     R: U edge on top, F on the left
//	F: U edge on top     D: F edge on top
//	L: U edge on top     B: U edge on top, R on the left
//
// The center [1][1] of each face identifies it.
// Grid is a value type; assigning a Grid copies every sticker.
type Grid [6][3][3]Sticker

// Solved returns a grid with every face monochrome.
func Solved() Grid {
	var g Grid
	for _, f := range Faces {
		sym := f.Symbol()
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				g[f][r][c] = sym
			}
		}
	}
	return g
}

// ParseGrid reads a 54 symbol facelet string in serialization order.
// It only checks length and alphabet; a parsed grid may be unreachable.
func ParseGrid(s string) (Grid, error) {
	var g Grid
	if len(s) != FaceletCount {
		return g, fmt.Errorf("rubik: facelet string has %d symbols, want %d", len(s), FaceletCount)
	}
	for i := 0; i < FaceletCount; i++ {
		st := Sticker(s[i])
		if !st.Valid() {
			return g, fmt.Errorf("rubik: invalid facelet %q at position %d", s[i], i)
		}
		g[i/FaceSize][(i%FaceSize)/3][i%3] = st
	}
	return g, nil
}

// String serializes the grid face by face, row by row, in the format
// the external solver consumes.
func (g Grid) String() string {
	var b strings.Builder
	b.Grow(FaceletCount)
	for _, f := range Faces {
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				b.WriteByte(byte(g[f][r][c]))
			}
		}
	}
	return b.String()
}

// IsSolved reports whether every face shows only its own symbol.
func (g Grid) IsSolved() bool {
	return g == Solved()
}

// Equal reports whether both grids hold the same sticker at every position.
func (g Grid) Equal(other Grid) bool {
	return g == other
}

// Center returns the center sticker of f.
func (g Grid) Center(f Face) Sticker {
	return g[f][1][1]
}

// Counts returns how many stickers of each symbol the grid holds.
func (g Grid) Counts() map[Sticker]int {
	counts := make(map[Sticker]int, 6)
	for _, face := range g {
		for _, row := range face {
			for _, s := range row {
				counts[s]++
			}
		}
	}
	return counts
}

// SolverFacelets serializes the grid relative to its current centers.
// After a slice move the centers no longer match their faces; relabeling
// each sticker by the face whose center it matches yields a string the
// solver accepts and whose solution is expressed in the current frame.
func (g Grid) SolverFacelets() string {
	relabel := make(map[Sticker]Sticker, 6)
	for _, f := range Faces {
		relabel[g.Center(f)] = f.Symbol()
	}
	if len(relabel) != 6 {
		return g.String()
	}

	var b strings.Builder
	b.Grow(FaceletCount)
	for _, f := range Faces {
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				b.WriteByte(byte(relabel[g[f][r][c]]))
			}
		}
	}
	return b.String()
}

// Net returns a text representation of the unfolded cube.
func (g Grid) Net() string {
	var b strings.Builder

	// U face (indented)
	for r := 0; r < 3; r++ {
		b.WriteString("      ")
		for c := 0; c < 3; c++ {
			b.WriteString(g[FaceU][r][c].String() + " ")
		}
		b.WriteString("\n")
	}

	// L, F, R, B faces (side by side)
	for r := 0; r < 3; r++ {
		for _, f := range []Face{FaceL, FaceF, FaceR, FaceB} {
			for c := 0; c < 3; c++ {
				b.WriteString(g[f][r][c].String() + " ")
			}
		}
		b.WriteString("\n")
	}

	// D face (indented)
	for r := 0; r < 3; r++ {
		b.WriteString("      ")
		for c := 0; c < 3; c++ {
			b.WriteString(g[FaceD][r][c].String() + " ")
		}
		b.WriteString("\n")
	}

	return b.String()
}
