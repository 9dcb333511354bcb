package raster

import "github.com/chewxy/math32"

// Vertex is the output of the transform stage for one vertex: a
// clip-space position plus the two varying components carried to the
// fragment stage (quad-local UV for rectangles, atlas UV for glyphs).
type Vertex struct {
	Clip [4]float32
	U, V float32
}

// FragmentFunc computes the color of one fragment from its interpolated
// varyings. It must be a pure function: fragments are evaluated in
// arbitrary order, possibly concurrently.
type FragmentFunc func(u, v float32) [4]float32

// WriteFunc stores one shaded fragment at pixel (x, y).
type WriteFunc func(x, y int, color [4]float32)

// screenVertex is a vertex after viewport mapping.
type screenVertex struct {
	x, y float32
	u, v float32
}

// toScreen divides by w and maps NDC onto the pixel grid: x right,
// y down, origin top left.
func toScreen(v Vertex, width, height int) screenVertex {
	w := v.Clip[3]
	if w == 0 {
		w = 1
	}
	nx := v.Clip[0] / w
	ny := v.Clip[1] / w
	return screenVertex{
		x: (nx + 1) * 0.5 * float32(width),
		y: (1 - ny) * 0.5 * float32(height),
		u: v.U,
		v: v.V,
	}
}

func edgeFn(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// isTopLeft reports whether the edge from a to b is a top or left edge
// under the top-left fill rule, in y-down screen coordinates. Shared
// edges between adjacent triangles are then covered exactly once, which
// keeps the quad diagonal from blending twice.
func isTopLeft(a, b screenVertex) bool {
	dy := b.y - a.y
	return dy > 0 || (dy == 0 && b.x < a.x)
}

// DrawTriangle rasterizes one triangle, restricted to scanlines in
// [yMin, yMax), shading covered pixel centers with frag and storing them
// with write. Degenerate (zero-area) triangles produce no fragments.
func DrawTriangle(v0, v1, v2 Vertex, width, height, yMin, yMax int, frag FragmentFunc, write WriteFunc) {
	p0 := toScreen(v0, width, height)
	p1 := toScreen(v1, width, height)
	p2 := toScreen(v2, width, height)

	area := edgeFn(p0.x, p0.y, p1.x, p1.y, p2.x, p2.y)
	if area == 0 {
		return
	}
	if area < 0 {
		p1, p2 = p2, p1
		area = -area
	}

	minX := int(math32.Floor(math32.Min(p0.x, math32.Min(p1.x, p2.x))))
	maxX := int(math32.Ceil(math32.Max(p0.x, math32.Max(p1.x, p2.x))))
	minY := int(math32.Floor(math32.Min(p0.y, math32.Min(p1.y, p2.y))))
	maxY := int(math32.Ceil(math32.Max(p0.y, math32.Max(p1.y, p2.y))))

	if minX < 0 {
		minX = 0
	}
	if maxX > width {
		maxX = width
	}
	if minY < yMin {
		minY = yMin
	}
	if maxY > yMax {
		maxY = yMax
	}

	tl0 := isTopLeft(p1, p2)
	tl1 := isTopLeft(p2, p0)
	tl2 := isTopLeft(p0, p1)

	invArea := 1 / area
	for y := minY; y < maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x < maxX; x++ {
			px := float32(x) + 0.5

			w0 := edgeFn(p1.x, p1.y, p2.x, p2.y, px, py)
			w1 := edgeFn(p2.x, p2.y, p0.x, p0.y, px, py)
			w2 := edgeFn(p0.x, p0.y, p1.x, p1.y, px, py)

			if !covered(w0, tl0) || !covered(w1, tl1) || !covered(w2, tl2) {
				continue
			}

			b0 := w0 * invArea
			b1 := w1 * invArea
			b2 := w2 * invArea
			u := b0*p0.u + b1*p1.u + b2*p2.u
			v := b0*p0.v + b1*p1.v + b2*p2.v

			write(x, y, frag(u, v))
		}
	}
}

func covered(w float32, topLeft bool) bool {
	if w > 0 {
		return true
	}
	return w == 0 && topLeft
}

// DrawQuad rasterizes six transformed vertices as two triangles, the
// shape every instance expansion produces.
func DrawQuad(verts [6]Vertex, width, height, yMin, yMax int, frag FragmentFunc, write WriteFunc) {
	DrawTriangle(verts[0], verts[1], verts[2], width, height, yMin, yMax, frag, write)
	DrawTriangle(verts[3], verts[4], verts[5], width, height, yMin, yMax, frag, write)
}
