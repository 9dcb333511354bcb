package quill

import (
	"math"
	"testing"
)

func TestPixmapSetGet(t *testing.T) {
	p := NewPixmap(4, 4)
	p.SetPixel(2, 1, Red)
	got := p.GetPixel(2, 1)
	if got != Red {
		t.Errorf("GetPixel(2,1) = %v, want red", got)
	}
	if p.GetPixel(0, 0) != Transparent {
		t.Error("untouched pixel not transparent")
	}
}

func TestPixmapOutOfBounds(t *testing.T) {
	p := NewPixmap(2, 2)
	p.SetPixel(-1, 0, Red)
	p.SetPixel(0, 5, Red)
	p.BlendPixel(2, 0, Red)
	if p.GetPixel(-1, 0) != Transparent || p.GetPixel(0, 5) != Transparent {
		t.Error("out-of-bounds read not transparent")
	}
	for _, b := range p.Data() {
		if b != 0 {
			t.Fatal("out-of-bounds write touched the buffer")
		}
	}
}

func TestPixmapClear(t *testing.T) {
	p := NewPixmap(3, 3)
	p.Clear(Blue)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if got := p.GetPixel(x, y); got != Blue {
				t.Fatalf("pixel (%d,%d) = %v after Clear(blue)", x, y, got)
			}
		}
	}
}

func TestBlendPixel(t *testing.T) {
	tests := []struct {
		name string
		dst  RGBA
		src  RGBA
		want RGBA
	}{
		{"opaque replaces", Blue, Red, Red},
		{"transparent no-op", Blue, RGBA{1, 1, 1, 0}, Blue},
		{"half over white", White, RGBA{0, 0, 0, 0.5}, RGBA{0.5, 0.5, 0.5, 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPixmap(1, 1)
			p.SetPixel(0, 0, tt.dst)
			p.BlendPixel(0, 0, tt.src)
			got := p.GetPixel(0, 0)
			const eps = 1.0 / 255
			if math.Abs(got.R-tt.want.R) > eps || math.Abs(got.G-tt.want.G) > eps ||
				math.Abs(got.B-tt.want.B) > eps || math.Abs(got.A-tt.want.A) > eps {
				t.Errorf("blend %v over %v = %v, want %v", tt.src, tt.dst, got, tt.want)
			}
		})
	}
}

func TestPixmapImage(t *testing.T) {
	p := NewPixmap(5, 7)
	if b := p.Bounds(); b.Dx() != 5 || b.Dy() != 7 {
		t.Errorf("Bounds() = %v", b)
	}
	p.SetPixel(1, 2, Green)
	img := p.ToImage()
	r, g, b, a := img.At(1, 2).RGBA()
	if r != 0 || g != 0xFFFF || b != 0 || a != 0xFFFF {
		t.Errorf("ToImage pixel = (%v, %v, %v, %v), want opaque green", r, g, b, a)
	}
}
