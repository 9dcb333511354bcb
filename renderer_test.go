package quill

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func pixelNear(t *testing.T, p *Pixmap, x, y int, want RGBA) {
	t.Helper()
	got := p.GetPixel(x, y)
	const eps = 1.5 / 255
	if math.Abs(got.R-want.R) > eps || math.Abs(got.G-want.G) > eps ||
		math.Abs(got.B-want.B) > eps || math.Abs(got.A-want.A) > eps {
		t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
	}
}

func newTestRenderer(t *testing.T, size int) (*Renderer, *Pixmap) {
	t.Helper()
	pm := NewPixmap(size, size)
	r, err := NewRenderer(pm, nil)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	t.Cleanup(r.Close)
	return r, pm
}

func TestNewRendererNilTarget(t *testing.T) {
	_, err := NewRenderer(nil, nil)
	if !errors.Is(err, ErrNilTarget) {
		t.Errorf("NewRenderer(nil) error = %v, want ErrNilTarget", err)
	}
}

func TestDrawRectsFillAndBorder(t *testing.T) {
	r, pm := newTestRenderer(t, 64)
	r.SetProjection(Ortho2D(64, 64))
	r.DrawRects([]RectInstance{{
		ModelView: RectTransform(0, 0, 64, 64),
		Fill:      Blue,
		Line:      Red,
		LineWidth: Pt(0.1, 0.1),
	}})

	pixelNear(t, pm, 32, 32, Blue) // interior
	pixelNear(t, pm, 1, 32, Red)   // left border band
	pixelNear(t, pm, 62, 32, Red)  // right border band
	pixelNear(t, pm, 32, 1, Red)   // top border band
	pixelNear(t, pm, 32, 62, Red)  // bottom border band
}

func TestDrawRectsZeroWidth(t *testing.T) {
	r, pm := newTestRenderer(t, 32)
	r.SetProjection(Ortho2D(32, 32))
	r.DrawRects([]RectInstance{{
		ModelView: RectTransform(0, 0, 32, 32),
		Fill:      Green,
		Line:      Red,
		LineWidth: Pt(0, 0),
	}})

	for _, xy := range [][2]int{{0, 0}, {31, 0}, {16, 16}, {0, 31}, {31, 31}} {
		pixelNear(t, pm, xy[0], xy[1], Green)
	}
}

func TestDrawRectsHalfWidthAllLine(t *testing.T) {
	r, pm := newTestRenderer(t, 32)
	r.SetProjection(Ortho2D(32, 32))
	r.DrawRects([]RectInstance{{
		ModelView: RectTransform(0, 0, 32, 32),
		Fill:      Green,
		Line:      Red,
		LineWidth: Pt(0.5, 0.5),
	}})

	for _, xy := range [][2]int{{0, 0}, {16, 16}, {31, 31}} {
		pixelNear(t, pm, xy[0], xy[1], Red)
	}
}

func TestDrawRectsOutsideUntouched(t *testing.T) {
	r, pm := newTestRenderer(t, 64)
	pm.Clear(Black)
	r.SetProjection(Ortho2D(64, 64))
	r.DrawRects([]RectInstance{{
		ModelView: RectTransform(16, 16, 32, 32),
		Fill:      White,
		Line:      White,
	}})

	pixelNear(t, pm, 32, 32, White)
	pixelNear(t, pm, 8, 8, Black)
	pixelNear(t, pm, 56, 56, Black)
}

func TestDrawRectsRotated(t *testing.T) {
	r, pm := newTestRenderer(t, 64)
	pm.Clear(Black)
	r.SetProjection(Ortho2D(64, 64))

	// Rotate a 20x20 quad about its center at (32, 32). The center pixel
	// stays quad-local (0.5, 0.5) regardless of the angle.
	mv := Translate(32, 32).
		Multiply(Rotate(0.5)).
		Multiply(Scale(20, 20)).
		Multiply(Translate(-0.5, -0.5))
	r.DrawRects([]RectInstance{{
		ModelView: mv,
		Fill:      Blue,
		Line:      Red,
		LineWidth: Pt(0.1, 0.1),
	}})

	pixelNear(t, pm, 32, 32, Blue)
	pixelNear(t, pm, 2, 2, Black)
}

func TestDrawRectsEmpty(t *testing.T) {
	r, pm := newTestRenderer(t, 8)
	pm.Clear(Green)
	r.DrawRects(nil)
	pixelNear(t, pm, 4, 4, Green)
}

func TestDrawBorderedRectPerEdge(t *testing.T) {
	r, pm := newTestRenderer(t, 64)
	r.DrawBorderedRect(BorderedRect{
		ModelView:  Mat4FromMatrix(RectTransform(0, 0, 64, 64)),
		Projection: Ortho2D(64, 64),
		Fill:       Blue,
		Line:       Red,
		LineWidth:  BorderWidths{Left: 0.25},
	})

	pixelNear(t, pm, 8, 32, Red)   // inside the left band
	pixelNear(t, pm, 40, 32, Blue) // interior
	pixelNear(t, pm, 32, 1, Blue)  // top edge has no band
	pixelNear(t, pm, 62, 32, Blue) // right edge has no band
}

func TestDrawBorderedRectZeroWidths(t *testing.T) {
	r, pm := newTestRenderer(t, 32)
	r.DrawBorderedRect(BorderedRect{
		ModelView:  Mat4FromMatrix(RectTransform(0, 0, 32, 32)),
		Projection: Ortho2D(32, 32),
		Fill:       Green,
		Line:       Red,
	})

	for _, xy := range [][2]int{{0, 0}, {16, 16}, {31, 31}} {
		pixelNear(t, pm, xy[0], xy[1], Green)
	}
}

func fullGlyphQuad() [4]GlyphVertex {
	return [4]GlyphVertex{
		{Position: [2]float32{0, 0}, UV: [2]float32{0, 0}},
		{Position: [2]float32{1, 0}, UV: [2]float32{1, 0}},
		{Position: [2]float32{1, 1}, UV: [2]float32{1, 1}},
		{Position: [2]float32{0, 1}, UV: [2]float32{0, 1}},
	}
}

func TestDrawGlyphsCoverageSelectsColor(t *testing.T) {
	r, pm := newTestRenderer(t, 64)
	r.DrawGlyphs(GlyphDraw{
		Params: TextParams{
			ModelView:  Mat4FromMatrix(Scale(64, 64)),
			Projection: Ortho2D(64, 64),
			Foreground: White,
			Background: Black,
		},
		Vertices:  fullGlyphQuad(),
		Instances: []GlyphInstance{{}},
		// Left column empty, right column fully covered.
		Atlas:   &Atlas{Width: 2, Height: 2, Data: []uint8{0, 255, 0, 255}},
		Sampler: Sampler{Filter: FilterNearest, Address: AddressClampToEdge},
	})

	pixelNear(t, pm, 16, 32, Black)
	pixelNear(t, pm, 48, 32, White)
}

func TestDrawGlyphsPartialCoverage(t *testing.T) {
	r, pm := newTestRenderer(t, 16)
	r.DrawGlyphs(GlyphDraw{
		Params: TextParams{
			ModelView:  Mat4FromMatrix(Scale(16, 16)),
			Projection: Ortho2D(16, 16),
			Foreground: White,
			Background: Black,
		},
		Vertices:  fullGlyphQuad(),
		Instances: []GlyphInstance{{}},
		Atlas:     &Atlas{Width: 1, Height: 1, Data: []uint8{128}},
		Sampler:   Sampler{Filter: FilterNearest, Address: AddressClampToEdge},
	})

	mid := 128.0 / 255
	pixelNear(t, pm, 8, 8, RGBA{mid, mid, mid, 1})
}

func TestDrawGlyphsInstanceOffsets(t *testing.T) {
	r, pm := newTestRenderer(t, 64)
	pm.Clear(Blue)
	r.DrawGlyphs(GlyphDraw{
		Params: TextParams{
			ModelView:  Mat4FromMatrix(Scale(32, 32)),
			Projection: Ortho2D(64, 64),
			Foreground: White,
			Background: Black,
		},
		Vertices: fullGlyphQuad(),
		// Second instance shifted one quad to the right.
		Instances: []GlyphInstance{{}, {PositionOffset: Pt(1, 0)}},
		Atlas:     &Atlas{Width: 1, Height: 1, Data: []uint8{255}},
		Sampler:   Sampler{Filter: FilterNearest, Address: AddressClampToEdge},
	})

	pixelNear(t, pm, 16, 16, White) // first instance
	pixelNear(t, pm, 48, 16, White) // offset instance
	pixelNear(t, pm, 16, 48, Blue)  // below both quads
}

func TestDrawGlyphsNilAtlasNoop(t *testing.T) {
	r, pm := newTestRenderer(t, 8)
	pm.Clear(Green)
	r.DrawGlyphs(GlyphDraw{
		Vertices:  fullGlyphQuad(),
		Instances: []GlyphInstance{{}},
	})
	pixelNear(t, pm, 4, 4, Green)
}

// 2x2 quadrant image: red, green over blue, white, all opaque.
func quadrantImage() *Image {
	return &Image{Width: 2, Height: 2, Pix: []uint8{
		255, 0, 0, 255, 0, 255, 0, 255,
		0, 0, 255, 255, 255, 255, 255, 255,
	}}
}

func TestDrawImageQuadrants(t *testing.T) {
	r, pm := newTestRenderer(t, 32)
	r.DrawImage(ImageDraw{
		ModelView:  Mat4FromMatrix(RectTransform(0, 0, 32, 32)),
		Projection: Ortho2D(32, 32),
		Image:      quadrantImage(),
		Sampler:    Sampler{Filter: FilterNearest, Address: AddressClampToEdge},
	})

	pixelNear(t, pm, 8, 8, Red)
	pixelNear(t, pm, 24, 8, Green)
	pixelNear(t, pm, 8, 24, Blue)
	pixelNear(t, pm, 24, 24, White)
}

func TestDrawImageAlphaBlends(t *testing.T) {
	r, pm := newTestRenderer(t, 16)
	pm.Clear(Green)
	// A single half-transparent red texel composites over the cleared
	// background.
	r.DrawImage(ImageDraw{
		ModelView:  Mat4FromMatrix(RectTransform(0, 0, 16, 16)),
		Projection: Ortho2D(16, 16),
		Image:      &Image{Width: 1, Height: 1, Pix: []uint8{255, 0, 0, 128}},
		Sampler:    Sampler{Filter: FilterNearest},
	})

	a := 128.0 / 255
	pixelNear(t, pm, 8, 8, RGBA{R: a, G: 1 - a, B: 0, A: a})
}

func TestDrawImageOutsideUntouched(t *testing.T) {
	r, pm := newTestRenderer(t, 32)
	pm.Clear(Blue)
	r.DrawImage(ImageDraw{
		ModelView:  Mat4FromMatrix(RectTransform(4, 4, 8, 8)),
		Projection: Ortho2D(32, 32),
		Image:      quadrantImage(),
		Sampler:    Sampler{},
	})

	pixelNear(t, pm, 6, 6, Red)
	pixelNear(t, pm, 20, 20, Blue) // outside the quad
}

func TestDrawImageNilNoop(t *testing.T) {
	r, pm := newTestRenderer(t, 8)
	pm.Clear(Green)
	r.DrawImage(ImageDraw{
		ModelView:  Mat4FromMatrix(RectTransform(0, 0, 8, 8)),
		Projection: Ortho2D(8, 8),
	})
	pixelNear(t, pm, 4, 4, Green)
}

func TestRendererWorkerCountInvariant(t *testing.T) {
	render := func(workers int) []uint8 {
		pm := NewPixmap(64, 64)
		r, err := NewRenderer(pm, &RendererConfig{Workers: workers})
		if err != nil {
			t.Fatalf("NewRenderer: %v", err)
		}
		defer r.Close()

		r.SetProjection(Ortho2D(64, 64))
		r.DrawRects([]RectInstance{
			{ModelView: RectTransform(4, 4, 40, 40), Fill: Blue, Line: Red, LineWidth: Pt(0.1, 0.1)},
			{ModelView: Translate(30, 10).Multiply(Rotate(0.3)).Multiply(Scale(24, 24)), Fill: Green, Line: Black, LineWidth: Pt(0.05, 0.2)},
		})
		r.DrawBorderedRect(BorderedRect{
			ModelView:  Mat4FromMatrix(RectTransform(8, 40, 48, 16)),
			Projection: Ortho2D(64, 64),
			Fill:       RGBA{0.8, 0.8, 0.2, 0.5},
			Line:       Black,
			LineWidth:  UniformBorder(0.1),
		})
		return pm.Data()
	}

	single := render(1)
	for _, workers := range []int{2, 4, 8} {
		if !bytes.Equal(single, render(workers)) {
			t.Errorf("output with %d workers differs from single-threaded", workers)
		}
	}
}
