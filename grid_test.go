package rubik

import (
	"strings"
	"testing"
)

func TestSolvedSerialization(t *testing.T) {
	g := Solved()
	if got := g.String(); got != SolvedFacelets {
		t.Errorf("solved grid = %s, want %s", got, SolvedFacelets)
	}
	if !g.IsSolved() {
		t.Error("Solved() should be solved")
	}
}

func TestSingleMoveBreaksSolved(t *testing.T) {
	for _, m := range AllMoves {
		if Apply(Solved(), m).IsSolved() {
			t.Errorf("cube should not be solved after %v", m)
		}
	}
}

func TestParseGridRoundTrip(t *testing.T) {
	want := scrambled(7, 20)
	got, err := ParseGrid(want.String())
	if err != nil {
		t.Fatalf("ParseGrid: %v", err)
	}
	if !got.Equal(want) {
		t.Error("parsed grid differs from the original")
		t.Log(got.Net())
	}
}

func TestParseGridRejectsBadInput(t *testing.T) {
	tests := []string{
		"",
		SolvedFacelets[:53],
		SolvedFacelets + "U",
		strings.Replace(SolvedFacelets, "U", "X", 1),
	}
	for _, in := range tests {
		if _, err := ParseGrid(in); err == nil {
			t.Errorf("ParseGrid(%q) should fail", in)
		}
	}
}

func TestGridIsAValue(t *testing.T) {
	a := Solved()
	b := a
	b.Apply(R)
	if !a.IsSolved() {
		t.Error("copy of a grid should not share stickers")
	}
}

func TestFaceSymbols(t *testing.T) {
	want := "URFDLB"
	for i, f := range Faces {
		if f.Symbol() != Sticker(want[i]) {
			t.Errorf("face %d symbol = %v, want %c", i, f.Symbol(), want[i])
		}
		if int(f) != i {
			t.Errorf("face %v has index %d, want %d", f, int(f), i)
		}
	}
}

func TestNetLayout(t *testing.T) {
	net := Solved().Net()
	lines := strings.Split(strings.TrimRight(net, "\n"), "\n")
	if len(lines) != 9 {
		t.Fatalf("net has %d lines, want 9", len(lines))
	}
	if strings.TrimSpace(lines[0]) != "U U U" {
		t.Errorf("first line = %q", lines[0])
	}
	if strings.TrimSpace(lines[3]) != "L L L F F F R R R B B B" {
		t.Errorf("middle band = %q", lines[3])
	}
}

func TestSolverFaceletsMatchesStringWhenCentersAreHome(t *testing.T) {
	// Only face turns keep centers in place.
	g := ApplyAll(Solved(), []Move{R, U, FPrime, D, B, LPrime})
	if g.SolverFacelets() != g.String() {
		t.Error("relabelling should be a no-op when centers are home")
	}
}
