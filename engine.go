package rubik

// Apply returns the grid that results from performing m on g.
// g itself is not modified. Apply panics on a Move outside the alphabet;
// use ParseMove or ApplyToken for untrusted input.
func Apply(g Grid, m Move) Grid {
	switch m {
	case R, RPrime, L, LPrime, U, UPrime, D, DPrime, F, FPrime, B, BPrime:
		return faceTurns[m].apply(g)
	case M:
		// The slice has no face of its own: turn both outer layers the
		// opposite way, then carry the whole cube along.
		g = faceTurns[RPrime].apply(g)
		g = faceTurns[L].apply(g)
		return tiltUp(g)
	case MPrime:
		g = faceTurns[R].apply(g)
		g = faceTurns[LPrime].apply(g)
		return tiltDown(g)
	default:
		panic("rubik: apply of invalid move " + m.String())
	}
}

// ApplyAll performs moves on g in order and returns the result.
func ApplyAll(g Grid, moves []Move) Grid {
	for _, m := range moves {
		g = Apply(g, m)
	}
	return g
}

// Apply performs m on the grid in place.
func (g *Grid) Apply(m Move) {
	*g = Apply(*g, m)
}

// ApplyToken parses token and performs it on g in place.
// On error g is left untouched.
func ApplyToken(g *Grid, token string) error {
	m, err := ParseMove(token)
	if err != nil {
		return err
	}
	g.Apply(m)
	return nil
}
