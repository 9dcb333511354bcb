// Package raster implements the per-pixel decision logic of the
// rendering core as pure float32 functions, numerically equivalent to
// the WGSL fragment shaders. Every function here is stateless and
// deterministic; fragments may be evaluated in any order or concurrently.
package raster

import "github.com/chewxy/math32"

// RectFragment classifies one fragment of a transformed quad. u and v
// are the interpolated quad-local coordinates in [0,1]; wx and wy are
// the border thickness along each local axis.
//
// The distance to the nearest edge is taken independently per axis.
// This is not a Euclidean distance field: it is a per-axis margin test
// that reproduces an axis-aligned border band under any affine instance
// transform, with thickness expressed relative to the quad's own local
// scale.
func RectFragment(u, v float32, fill, line [4]float32, wx, wy float32) [4]float32 {
	dx := math32.Min(u, 1-u)
	dy := math32.Min(v, 1-v)
	// Closed comparison: a half-width band reaches the midline, so a
	// width of 0.5 covers the whole quad.
	if dx <= wx || dy <= wy {
		return line
	}
	return fill
}

// BorderedFragment classifies one fragment of an axis-aligned quad with
// per-edge border thickness. widths is ordered (left, top, right,
// bottom) and is compared channel-for-channel against the margin vector
// (u, v, 1-u, 1-v); any channel at or inside its threshold selects the
// line color.
func BorderedFragment(u, v float32, fill, line [4]float32, widths [4]float32) [4]float32 {
	if u <= widths[0] || v <= widths[1] || 1-u <= widths[2] || 1-v <= widths[3] {
		return line
	}
	return fill
}

// GlyphFragment blends the glyph foreground over the background by the
// sampled coverage alpha: out = bg*(1-a) + fg*a, per channel. The atlas
// stores coverage, not premultiplied color, so a=0 yields exactly bg and
// a=1 exactly fg.
func GlyphFragment(alpha float32, fg, bg [4]float32) [4]float32 {
	var out [4]float32
	for i := range out {
		out[i] = bg[i]*(1-alpha) + fg[i]*alpha
	}
	return out
}
