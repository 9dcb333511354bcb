package quill

// RectInstance describes one transformed rectangle: a unit quad expanded
// through its own affine model-view transform, with a fill color, a line
// (border) color, and a border thickness per quad-local axis.
//
// LineWidth is expressed in quad-local [0,1] units, not world pixels: the
// fragment stage compares it against the distance to the nearest quad
// edge in local space, so a border's on-screen thickness scales with the
// instance transform. Hosts that want constant-pixel borders divide by
// the quad's world extent first (see BorderWidths.NormalizedIn).
//
// Instances are produced by the host per frame and consumed once per
// draw; nothing retains them.
type RectInstance struct {
	ModelView Matrix
	Fill      RGBA
	Line      RGBA
	LineWidth Point
}

// BorderedRect holds the per-draw uniform parameters of an axis-aligned
// rectangle pass: one shared placement and one set of colors and widths
// for every quad in the draw. Simple unrotated chrome (panel backgrounds,
// dialog frames) uses this variant to avoid per-instance attribute
// bandwidth.
type BorderedRect struct {
	ModelView  Mat4
	Projection Mat4
	Fill       RGBA
	Line       RGBA
	LineWidth  BorderWidths
}

// GlyphVertex is one corner of a pre-shaped glyph quad. Position is the
// glyph's local quad shape (baked by the host from glyph metrics) and UV
// addresses the glyph's sub-rectangle in the atlas. The vertex data is
// fixed per font; per-glyph placement happens through GlyphInstance.
type GlyphVertex struct {
	Position [2]float32
	UV       [2]float32
}

// GlyphQuadIndices indexes the four GlyphVertex corners into the two
// triangles of a glyph quad.
var GlyphQuadIndices = [6]uint16{0, 1, 2, 2, 3, 0}

// GlyphInstance places one glyph: a 2D translation added to the baked
// vertex position and a 2D translation added to the baked UV. There is
// deliberately no per-instance scaling; glyph shape and size are fixed
// at vertex-bake time and whole-run scaling lives in the model-view.
type GlyphInstance struct {
	PositionOffset Point
	UVOffset       Point
}

// TextParams holds the per-draw uniforms of a glyph pass. The atlas and
// sampler are bound separately by the executing pipeline.
type TextParams struct {
	ModelView  Mat4
	Projection Mat4
	Foreground RGBA
	Background RGBA
}
