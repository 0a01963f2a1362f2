// Package rubik models a 3x3x3 twisty puzzle as a grid of 54 stickers and
// applies named moves to it.
//
// # Grid
//
// A Grid is six 3x3 faces in the order U, R, F, D, L, B. Each sticker is
// labelled with the face it belongs to when solved, so a solved grid
// serializes to
//
//	UUUUUUUUURRRRRRRRRFFFFFFFFFDDDDDDDDDLLLLLLLLLBBBBBBBBB
//
// which is the facelet format two-phase solvers consume.
//
// # Moves
//
// The alphabet is closed: R, R', L, L', U, U', D, D', F, F', B, B', M, M'.
// Face turns are table driven; each table lists the face that rotates
// and the four strips that cycle around it. M and M' are composed from
// the two outer turns and a whole-cube tilt.
//
//	g := rubik.Solved()
//	g = rubik.ApplyAll(g, rubik.SexyMove)
//	fmt.Println(g.Net())
//
// # State
//
// Cube wraps a Grid with a mutex and an optional Solver:
//
//	cube := rubik.New(rubik.WithSolver(s), rubik.WithSolveTimeout(5*time.Second))
//	facelets, err := cube.ApplyMove("R")
//	result, err := cube.Solve(ctx)
//	for _, step := range result.Steps {
//	    fmt.Println(step)
//	}
//
// Solutions use "2" suffixes for half turns; ParseSolution expands each
// into a pair of quarter turns.
package rubik
