package rubik

// axis selects whether a strip is a row or a column of its face.
type axis uint8

const (
	row axis = iota
	col
)

// strip addresses three stickers in one row or column of a face,
// read top to bottom or left to right.
type strip struct {
	face  Face
	axis  axis
	index int
}

func rowOf(f Face, i int) strip { return strip{face: f, axis: row, index: i} }
func colOf(f Face, i int) strip { return strip{face: f, axis: col, index: i} }

// transfer copies the stickers of from into to, reversing their order
// when reverse is set.
type transfer struct {
	to      strip
	from    strip
	reverse bool
}

// turn describes a face turn: the face rotated in place and the four
// strips of the adjacent ring that cycle around it.
type turn struct {
	face      Face
	clockwise bool
	ring      [4]transfer
}

// clockwiseTurns holds the ring tables for the six clockwise face turns.
// Every transfer reads from the grid as it was before the turn.
var clockwiseTurns = map[Move]turn{
	R: {face: FaceR, clockwise: true, ring: [4]transfer{
		{to: colOf(FaceU, 2), from: colOf(FaceF, 2)},
		{to: colOf(FaceF, 2), from: colOf(FaceD, 2)},
		{to: colOf(FaceD, 2), from: colOf(FaceB, 0), reverse: true},
		{to: colOf(FaceB, 0), from: colOf(FaceU, 2), reverse: true},
	}},
	L: {face: FaceL, clockwise: true, ring: [4]transfer{
		{to: colOf(FaceU, 0), from: colOf(FaceB, 2), reverse: true},
		{to: colOf(FaceB, 2), from: colOf(FaceD, 0), reverse: true},
		{to: colOf(FaceD, 0), from: colOf(FaceF, 0)},
		{to: colOf(FaceF, 0), from: colOf(FaceU, 0)},
	}},
	U: {face: FaceU, clockwise: true, ring: [4]transfer{
		{to: rowOf(FaceL, 0), from: rowOf(FaceF, 0)},
		{to: rowOf(FaceF, 0), from: rowOf(FaceR, 0)},
		{to: rowOf(FaceR, 0), from: rowOf(FaceB, 0)},
		{to: rowOf(FaceB, 0), from: rowOf(FaceL, 0)},
	}},
	D: {face: FaceD, clockwise: true, ring: [4]transfer{
		{to: rowOf(FaceR, 2), from: rowOf(FaceF, 2)},
		{to: rowOf(FaceB, 2), from: rowOf(FaceR, 2)},
		{to: rowOf(FaceL, 2), from: rowOf(FaceB, 2)},
		{to: rowOf(FaceF, 2), from: rowOf(FaceL, 2)},
	}},
	F: {face: FaceF, clockwise: true, ring: [4]transfer{
		{to: rowOf(FaceU, 2), from: colOf(FaceL, 2), reverse: true},
		{to: colOf(FaceL, 2), from: rowOf(FaceD, 0)},
		{to: rowOf(FaceD, 0), from: colOf(FaceR, 0), reverse: true},
		{to: colOf(FaceR, 0), from: rowOf(FaceU, 2)},
	}},
	B: {face: FaceB, clockwise: true, ring: [4]transfer{
		{to: rowOf(FaceU, 0), from: colOf(FaceR, 2)},
		{to: colOf(FaceR, 2), from: rowOf(FaceD, 2), reverse: true},
		{to: rowOf(FaceD, 2), from: colOf(FaceL, 0)},
		{to: colOf(FaceL, 0), from: rowOf(FaceU, 0), reverse: true},
	}},
}

// invert returns the turn that undoes t: the face rotates the other way
// and every transfer runs backwards.
func (t turn) invert() turn {
	inv := turn{face: t.face, clockwise: !t.clockwise}
	for i, tr := range t.ring {
		inv.ring[i] = transfer{to: tr.from, from: tr.to, reverse: tr.reverse}
	}
	return inv
}

// faceTurns maps each of the twelve face moves to its table.
var faceTurns = buildFaceTurns()

func buildFaceTurns() [moveCount]*turn {
	var out [moveCount]*turn
	for m, t := range clockwiseTurns {
		cw := t
		ccw := t.invert()
		out[m] = &cw
		out[m.Inverse()] = &ccw
	}
	return out
}

// read copies the three stickers of s out of g.
func (g *Grid) read(s strip) [3]Sticker {
	var out [3]Sticker
	for i := 0; i < 3; i++ {
		if s.axis == row {
			out[i] = g[s.face][s.index][i]
		} else {
			out[i] = g[s.face][i][s.index]
		}
	}
	return out
}

// write stores three stickers into s.
func (g *Grid) write(s strip, v [3]Sticker) {
	for i := 0; i < 3; i++ {
		if s.axis == row {
			g[s.face][s.index][i] = v[i]
		} else {
			g[s.face][i][s.index] = v[i]
		}
	}
}

// apply performs the turn on src and returns the result.
func (t *turn) apply(src Grid) Grid {
	dst := src
	dst[t.face] = rotateFace(src[t.face], t.clockwise)
	for _, tr := range t.ring {
		v := src.read(tr.from)
		if tr.reverse {
			v[0], v[2] = v[2], v[0]
		}
		dst.write(tr.to, v)
	}
	return dst
}
