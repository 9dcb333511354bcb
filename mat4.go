package quill

// Mat4 is a 4x4 float32 matrix in column-major order, the layout uniform
// buffers expect. Element (row r, column c) is stored at index c*4+r.
//
// Mat4 carries the per-pass projection transform and, for the
// axis-aligned rectangle pipeline, the shared model-view transform. It is
// supplied by the host and treated as immutable for the duration of a
// draw pass.
type Mat4 [16]float32

// Mat4Identity returns the identity matrix.
func Mat4Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Ortho2D returns a projection mapping pixel coordinates (origin top
// left, y down) onto clip space: x in [-1,1] left to right, y in [-1,1]
// bottom to top. Depth is left untouched at z=0.
//
// The clip-space convention ultimately belongs to the host; this is the
// conventional choice for rendering a window-sized pass.
func Ortho2D(width, height float64) Mat4 {
	m := Mat4Identity()
	m[0] = float32(2 / width)
	m[5] = float32(-2 / height)
	m[12] = -1
	m[13] = 1
	return m
}

// Mat4FromMatrix lifts a 2D affine transform into a 4x4 matrix, leaving
// z untouched. Used when a whole axis-aligned draw shares one placement.
func Mat4FromMatrix(a Matrix) Mat4 {
	m := Mat4Identity()
	m[0] = float32(a.A)
	m[1] = float32(a.D)
	m[4] = float32(a.B)
	m[5] = float32(a.E)
	m[12] = float32(a.C)
	m[13] = float32(a.F)
	return m
}

// Mul returns m * other.
func (m Mat4) Mul(other Mat4) Mat4 {
	var out Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+r] * other[c*4+k]
			}
			out[c*4+r] = sum
		}
	}
	return out
}

// TransformVec4 applies the matrix to a homogeneous 4-vector.
func (m Mat4) TransformVec4(v [4]float32) [4]float32 {
	var out [4]float32
	for r := 0; r < 4; r++ {
		out[r] = m[0*4+r]*v[0] + m[1*4+r]*v[1] + m[2*4+r]*v[2] + m[3*4+r]*v[3]
	}
	return out
}

// TransformPoint2D applies the matrix to the point (x, y, 0, 1) and
// returns the transformed x and y, ignoring w. This is the path a
// 2D vertex takes through a shared model-view transform.
func (m Mat4) TransformPoint2D(x, y float32) (float32, float32) {
	out := m.TransformVec4([4]float32{x, y, 0, 1})
	return out[0], out[1]
}
