package rubik

// tiltUp reorients the whole cube about the R-L axis so that the Front
// face becomes Up. Faces travelling across the back (B to D and U to B)
// are half turned so each sticker keeps its physical neighbours; the
// Right and Left faces spin in place.
func tiltUp(g Grid) Grid {
	var out Grid
	out[FaceU] = g[FaceF]
	out[FaceF] = g[FaceD]
	out[FaceD] = rotateHalf(g[FaceB])
	out[FaceB] = rotateHalf(g[FaceU])
	out[FaceR] = rotateFace(g[FaceR], true)
	out[FaceL] = rotateFace(g[FaceL], false)
	return out
}

// tiltDown is the inverse of tiltUp: Up becomes Front.
func tiltDown(g Grid) Grid {
	var out Grid
	out[FaceF] = g[FaceU]
	out[FaceD] = g[FaceF]
	out[FaceB] = rotateHalf(g[FaceD])
	out[FaceU] = rotateHalf(g[FaceB])
	out[FaceR] = rotateFace(g[FaceR], false)
	out[FaceL] = rotateFace(g[FaceL], true)
	return out
}
