package quill

// UnitQuad is the canonical quad geometry shared by every rectangle
// draw: six vertices forming two triangles that span the quad-local
// square [0,1]x[0,1]. The table is compiled into both the WGSL shaders
// and the software rasterizer and must never be mutated.
var UnitQuad = [6][2]float32{
	{0, 0},
	{1, 0},
	{1, 1},
	{1, 1},
	{0, 1},
	{0, 0},
}

// BorderWidths holds per-edge border thickness for an axis-aligned
// rectangle draw, in quad-local [0,1] units. The channel order is fixed
// as (Left, Top, Right, Bottom); the fragment stage compares it
// channel-for-channel against the margin vector (u.x, u.y, 1-u.x, 1-u.y).
//
// Values are expected in [0, 0.5]. A channel at or above 0.5 makes the
// border band reach past the quad's midline, so the whole quad renders
// in the line color; that is a defined outcome, not an error.
type BorderWidths struct {
	Left, Top, Right, Bottom float64
}

// UniformBorder returns equal thickness on all four edges.
func UniformBorder(w float64) BorderWidths {
	return BorderWidths{Left: w, Top: w, Right: w, Bottom: w}
}

// NormalizedIn converts thickness expressed in world units into
// quad-local units for a quad scaled to width w and height h. Horizontal
// edges divide by the width, vertical extents by the height, so the
// border keeps its world-space thickness regardless of the quad's scale.
func (b BorderWidths) NormalizedIn(w, h float64) BorderWidths {
	return BorderWidths{
		Left:   b.Left / w,
		Top:    b.Top / h,
		Right:  b.Right / w,
		Bottom: b.Bottom / h,
	}
}

// Vec4 returns the widths as a 4-float vector in (left, top, right,
// bottom) order, the layout of the line_width uniform.
func (b BorderWidths) Vec4() [4]float32 {
	return [4]float32{float32(b.Left), float32(b.Top), float32(b.Right), float32(b.Bottom)}
}
