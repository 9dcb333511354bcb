package quill

import (
	"errors"

	"github.com/gogpu/quill/internal/parallel"
	"github.com/gogpu/quill/internal/raster"
)

// ErrNilTarget is returned when a renderer is created without a pixmap.
var ErrNilTarget = errors.New("quill: nil render target")

// RendererConfig configures a software Renderer.
type RendererConfig struct {
	// Workers is the number of goroutines rasterizing scanline bands.
	// If 0, GOMAXPROCS is used.
	Workers int
}

// Renderer is the software implementation of the rendering core: the
// same transform and fragment contract as the WGSL pipelines, evaluated
// on the CPU. It exists for testing, headless rendering, and hosts
// without a GPU device.
//
// Scanline bands are rasterized in parallel; fragments carry no state
// between evaluations, so band order is irrelevant. A Renderer itself is
// not safe for concurrent use; draws on one target are serialized by the
// caller just as GPU draws are serialized by a queue.
type Renderer struct {
	target     *Pixmap
	projection Mat4
	pool       *parallel.WorkerPool
}

// NewRenderer creates a software renderer drawing into target.
func NewRenderer(target *Pixmap, config *RendererConfig) (*Renderer, error) {
	if target == nil {
		return nil, ErrNilTarget
	}
	workers := 0
	if config != nil {
		workers = config.Workers
	}
	return &Renderer{
		target:     target,
		projection: Mat4Identity(),
		pool:       parallel.NewWorkerPool(workers),
	}, nil
}

// Close releases the renderer's worker pool. The target pixmap is left
// untouched.
func (r *Renderer) Close() {
	r.pool.Close()
}

// Target returns the pixmap draws composite into.
func (r *Renderer) Target() *Pixmap {
	return r.target
}

// SetProjection sets the pass-wide projection used by DrawRects. It
// corresponds to the projection uniform at group 0, binding 0 of the
// instanced rectangle pipeline and must stay fixed for a whole pass.
func (r *Renderer) SetProjection(proj Mat4) {
	r.projection = proj
}

// DrawRects rasterizes transformed rectangle instances. Each instance's
// unit quad is expanded through its own model-view transform and the
// pass projection; per pixel, quad-local coordinates decide between fill
// and border color.
func (r *Renderer) DrawRects(instances []RectInstance) {
	if len(instances) == 0 {
		return
	}

	type preparedRect struct {
		verts [6]raster.Vertex
		fill  [4]float32
		line  [4]float32
		wx    float32
		wy    float32
	}

	prepared := make([]preparedRect, len(instances))
	for i, inst := range instances {
		cols := inst.ModelView.Columns()
		var p preparedRect
		for vi, corner := range UnitQuad {
			p.verts[vi] = raster.Vertex{
				Clip: raster.InstancedPosition(cols, [16]float32(r.projection), corner[0], corner[1]),
				U:    corner[0],
				V:    corner[1],
			}
		}
		p.fill = inst.Fill.Vec4()
		p.line = inst.Line.Vec4()
		p.wx = float32(inst.LineWidth.X)
		p.wy = float32(inst.LineWidth.Y)
		prepared[i] = p
	}

	r.forEachBand(func(yMin, yMax int) {
		for i := range prepared {
			p := &prepared[i]
			frag := func(u, v float32) [4]float32 {
				return raster.RectFragment(u, v, p.fill, p.line, p.wx, p.wy)
			}
			raster.DrawQuad(p.verts, r.target.width, r.target.height, yMin, yMax, frag, r.blend)
		}
	})
}

// DrawBorderedRect rasterizes one axis-aligned rectangle draw: the unit
// quad placed by the shared model-view and projection, with per-edge
// border widths in (left, top, right, bottom) channel order.
func (r *Renderer) DrawBorderedRect(rect BorderedRect) {
	var verts [6]raster.Vertex
	for vi, corner := range UnitQuad {
		verts[vi] = raster.Vertex{
			Clip: raster.SharedPosition([16]float32(rect.ModelView), [16]float32(rect.Projection), corner[0], corner[1]),
			U:    corner[0],
			V:    corner[1],
		}
	}
	fill := rect.Fill.Vec4()
	line := rect.Line.Vec4()
	widths := rect.LineWidth.Vec4()

	r.forEachBand(func(yMin, yMax int) {
		frag := func(u, v float32) [4]float32 {
			return raster.BorderedFragment(u, v, fill, line, widths)
		}
		raster.DrawQuad(verts, r.target.width, r.target.height, yMin, yMax, frag, r.blend)
	})
}

// GlyphDraw bundles the inputs of one text draw: per-draw uniforms, the
// font's baked glyph quad, per-glyph placement instances, and the atlas
// with its sampling configuration.
type GlyphDraw struct {
	Params    TextParams
	Vertices  [4]GlyphVertex
	Instances []GlyphInstance
	Atlas     *Atlas
	Sampler   Sampler
}

// DrawGlyphs rasterizes glyph instances. Each instance translates the
// baked quad in position and UV; per pixel, the atlas coverage sample
// blends foreground over background.
func (r *Renderer) DrawGlyphs(d GlyphDraw) {
	if len(d.Instances) == 0 || d.Atlas == nil {
		return
	}

	mv := [16]float32(d.Params.ModelView)
	proj := [16]float32(d.Params.Projection)
	fg := d.Params.Foreground.Vec4()
	bg := d.Params.Background.Vec4()
	atlas := &raster.Atlas{Width: d.Atlas.Width, Height: d.Atlas.Height, Data: d.Atlas.Data}
	sampler := raster.Sampler{
		Filter:  raster.Filter(d.Sampler.Filter),
		Address: raster.AddressMode(d.Sampler.Address),
	}

	quads := make([][6]raster.Vertex, len(d.Instances))
	for i, inst := range d.Instances {
		posOff := inst.PositionOffset.Vec2()
		uvOff := inst.UVOffset.Vec2()
		var corners [4]raster.Vertex
		for ci, gv := range d.Vertices {
			uv := raster.GlyphUV(gv.UV, uvOff)
			corners[ci] = raster.Vertex{
				Clip: raster.GlyphPosition(mv, proj, gv.Position, posOff),
				U:    uv[0],
				V:    uv[1],
			}
		}
		for vi, idx := range GlyphQuadIndices {
			quads[i][vi] = corners[idx]
		}
	}

	r.forEachBand(func(yMin, yMax int) {
		frag := func(u, v float32) [4]float32 {
			return raster.GlyphFragment(sampler.Sample(atlas, u, v), fg, bg)
		}
		for i := range quads {
			raster.DrawQuad(quads[i], r.target.width, r.target.height, yMin, yMax, frag, r.blend)
		}
	})
}

// DrawImage rasterizes one textured quad: the unit quad placed by the
// shared model-view and projection, with the quad-local coordinate used
// as the texture coordinate. Samples composite source-over, so image
// alpha blends against the target.
func (r *Renderer) DrawImage(d ImageDraw) {
	if d.Image == nil || d.Image.Width <= 0 || d.Image.Height <= 0 {
		return
	}

	var verts [6]raster.Vertex
	for vi, corner := range UnitQuad {
		verts[vi] = raster.Vertex{
			Clip: raster.SharedPosition([16]float32(d.ModelView), [16]float32(d.Projection), corner[0], corner[1]),
			U:    corner[0],
			V:    corner[1],
		}
	}
	img := &raster.Image{Width: d.Image.Width, Height: d.Image.Height, Pix: d.Image.Pix}
	sampler := raster.Sampler{
		Filter:  raster.Filter(d.Sampler.Filter),
		Address: raster.AddressMode(d.Sampler.Address),
	}

	r.forEachBand(func(yMin, yMax int) {
		frag := func(u, v float32) [4]float32 {
			return sampler.SampleRGBA(img, u, v)
		}
		raster.DrawQuad(verts, r.target.width, r.target.height, yMin, yMax, frag, r.blend)
	})
}

func (r *Renderer) blend(x, y int, c [4]float32) {
	r.target.BlendPixel(x, y, RGBA{
		R: float64(c[0]),
		G: float64(c[1]),
		B: float64(c[2]),
		A: float64(c[3]),
	})
}

// forEachBand splits the target into scanline bands and runs fn for each
// band on the worker pool. Bands are disjoint, so no two goroutines
// touch the same pixel.
func (r *Renderer) forEachBand(fn func(yMin, yMax int)) {
	bands := parallel.Bands(r.target.height, r.pool.Workers())
	if len(bands) == 1 {
		fn(bands[0][0], bands[0][1])
		return
	}
	work := make([]func(), len(bands))
	for i, b := range bands {
		work[i] = func() { fn(b[0], b[1]) }
	}
	r.pool.ExecuteAll(work)
}
