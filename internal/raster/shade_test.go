package raster

import "testing"

var (
	red   = [4]float32{1, 0, 0, 1}
	green = [4]float32{0, 1, 0, 1}
	white = [4]float32{1, 1, 1, 1}
	black = [4]float32{0, 0, 0, 1}
)

func TestRectFragment(t *testing.T) {
	tests := []struct {
		name   string
		u, v   float32
		wx, wy float32
		want   [4]float32
	}{
		{"center is fill", 0.5, 0.5, 0.1, 0.1, red},
		{"left edge is border", 0.0, 0.5, 0.1, 0.1, green},
		{"right edge is border", 0.99, 0.5, 0.1, 0.1, green},
		{"top edge is border", 0.5, 0.05, 0.1, 0.1, green},
		{"bottom edge is border", 0.5, 0.95, 0.1, 0.1, green},
		{"corner is border", 0.02, 0.02, 0.1, 0.1, green},
		{"zero width center", 0.5, 0.5, 0, 0, red},
		{"zero width near edge", 0.001, 0.5, 0, 0, red},
		{"half width x covers all", 0.5, 0.5, 0.5, 0, green},
		{"half width y covers all", 0.5, 0.5, 0, 0.5, green},
		{"half width x at edge", 0.5, 0, 0.5, 0, green},
		{"width at exact margin", 0.25, 0.5, 0.25, 0, green},
		{"x band only", 0.05, 0.5, 0.1, 0, green},
		{"y band not triggered by x", 0.05, 0.5, 0, 0.1, red},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RectFragment(tt.u, tt.v, red, green, tt.wx, tt.wy)
			if got != tt.want {
				t.Errorf("RectFragment(%v, %v, w=(%v,%v)) = %v, want %v",
					tt.u, tt.v, tt.wx, tt.wy, got, tt.want)
			}
		})
	}
}

// Shrinking a border width component never grows the border region.
func TestRectFragmentMonotonic(t *testing.T) {
	const steps = 50
	for i := 0; i <= steps; i++ {
		for j := 0; j <= steps; j++ {
			u := float32(i) / steps
			v := float32(j) / steps
			wide := RectFragment(u, v, red, green, 0.3, 0.3)
			narrow := RectFragment(u, v, red, green, 0.1, 0.1)
			if narrow == green && wide != green {
				t.Fatalf("border at u=%v v=%v with w=0.1 but not w=0.3", u, v)
			}
		}
	}
}

// Classification at a fixed (u, v) is independent of any instance
// transform: the fragment function never sees the transform at all, so
// two draws differing only in placement classify identically.
func TestRectFragmentDeterministic(t *testing.T) {
	for i := 0; i < 100; i++ {
		a := RectFragment(0.07, 0.6, red, green, 0.1, 0.1)
		b := RectFragment(0.07, 0.6, red, green, 0.1, 0.1)
		if a != b {
			t.Fatalf("evaluation %d differs: %v vs %v", i, a, b)
		}
	}
}

func TestBorderedFragment(t *testing.T) {
	widths := [4]float32{0.1, 0.2, 0.3, 0.05} // left, top, right, bottom
	tests := []struct {
		name string
		u, v float32
		want [4]float32
	}{
		{"center is fill", 0.5, 0.5, red},
		{"inside left threshold", 0.05, 0.5, green},
		{"outside left threshold", 0.15, 0.5, red},
		{"inside top threshold", 0.5, 0.15, green},
		{"inside right threshold", 0.75, 0.5, green},
		{"outside right threshold", 0.65, 0.5, red},
		{"inside bottom threshold", 0.5, 0.97, green},
		{"outside bottom threshold", 0.5, 0.9, red},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BorderedFragment(tt.u, tt.v, red, green, widths)
			if got != tt.want {
				t.Errorf("BorderedFragment(%v, %v) = %v, want %v", tt.u, tt.v, got, tt.want)
			}
		})
	}
}

func TestBorderedFragmentZeroWidths(t *testing.T) {
	// Pure fill holds strictly inside the quad.
	for _, uv := range [][2]float32{{0.5, 0.5}, {0.001, 0.999}, {0.25, 0.75}} {
		got := BorderedFragment(uv[0], uv[1], red, green, [4]float32{})
		if got != red {
			t.Errorf("BorderedFragment(%v, %v, zero widths) = %v, want fill", uv[0], uv[1], got)
		}
	}
}

func TestBorderedFragmentHalfWidthsCoverAll(t *testing.T) {
	widths := [4]float32{0.5, 0.5, 0.5, 0.5}
	for _, uv := range [][2]float32{{0.5, 0.5}, {0.25, 0.75}, {0.999, 0.001}} {
		got := BorderedFragment(uv[0], uv[1], red, green, widths)
		if got != green {
			t.Errorf("BorderedFragment(%v, %v, half widths) = %v, want line", uv[0], uv[1], got)
		}
	}
}

func TestGlyphFragment(t *testing.T) {
	tests := []struct {
		name   string
		alpha  float32
		fg, bg [4]float32
		want   [4]float32
	}{
		{"alpha 0 is background", 0, white, black, black},
		{"alpha 1 is foreground", 1, white, black, white},
		{"alpha half mixes", 0.5, white, black, [4]float32{0.5, 0.5, 0.5, 1}},
		{"per channel", 0.25, [4]float32{1, 0, 1, 1}, [4]float32{0, 1, 0, 0}, [4]float32{0.25, 0.75, 0.25, 0.25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GlyphFragment(tt.alpha, tt.fg, tt.bg)
			for i := range got {
				if diff := got[i] - tt.want[i]; diff > 1e-6 || diff < -1e-6 {
					t.Errorf("GlyphFragment(%v)[%d] = %v, want %v", tt.alpha, i, got[i], tt.want[i])
				}
			}
		})
	}
}
