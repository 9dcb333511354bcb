package raster

// Transform stage: pure arithmetic mapping quad-local or baked vertex
// positions into clip space. Matrices are column-major [16]float32; the
// model-view columns of an instanced rect are three 3-float columns
// (x-basis, y-basis, translation).

// MulMat4Vec4 applies a column-major 4x4 matrix to a 4-vector.
func MulMat4Vec4(m [16]float32, v [4]float32) [4]float32 {
	var out [4]float32
	for r := 0; r < 4; r++ {
		out[r] = m[0*4+r]*v[0] + m[1*4+r]*v[1] + m[2*4+r]*v[2] + m[3*4+r]*v[3]
	}
	return out
}

// InstancedPosition maps a quad-local vertex (px, py) through a
// per-instance affine transform given as columns, then through the
// shared projection. The affine step composes the columns with the
// homogeneous point (px, py, 1); the resulting world position enters the
// projection as (x, y, 0, 1).
func InstancedPosition(cols [3][3]float32, proj [16]float32, px, py float32) [4]float32 {
	wx := cols[0][0]*px + cols[1][0]*py + cols[2][0]
	wy := cols[0][1]*px + cols[1][1]*py + cols[2][1]
	return MulMat4Vec4(proj, [4]float32{wx, wy, 0, 1})
}

// SharedPosition maps a quad-local vertex through a shared 4x4
// model-view and then the projection, the axis-aligned variant of the
// transform stage.
func SharedPosition(modelView, proj [16]float32, px, py float32) [4]float32 {
	world := MulMat4Vec4(modelView, [4]float32{px, py, 0, 1})
	return MulMat4Vec4(proj, world)
}

// GlyphPosition translates a baked glyph vertex position by the
// instance's position offset, then applies model-view and projection.
// The baked position already encodes the glyph's local quad shape; the
// instance contributes translation only.
func GlyphPosition(modelView, proj [16]float32, baked [2]float32, offset [2]float32) [4]float32 {
	return SharedPosition(modelView, proj, baked[0]+offset[0], baked[1]+offset[1])
}

// GlyphUV translates a baked atlas UV by the instance's UV offset. No
// scaling is applied; the glyph's atlas sub-rectangle is fixed at
// vertex-bake time.
func GlyphUV(baked [2]float32, offset [2]float32) [2]float32 {
	return [2]float32{baked[0] + offset[0], baked[1] + offset[1]}
}
