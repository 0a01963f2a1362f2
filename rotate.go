package rubik

// faceGrid is the 3x3 sticker grid of a single face.
type faceGrid = [3][3]Sticker

// rotateFace turns a single face a quarter turn about its center.
// Clockwise moves the sticker at (r, c) to (c, 2-r).
func rotateFace(f faceGrid, clockwise bool) faceGrid {
	var out faceGrid
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if clockwise {
				out[c][2-r] = f[r][c]
			} else {
				out[2-c][r] = f[r][c]
			}
		}
	}
	return out
}

// rotateHalf turns a single face 180 degrees.
func rotateHalf(f faceGrid) faceGrid {
	var out faceGrid
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[2-r][2-c] = f[r][c]
		}
	}
	return out
}
