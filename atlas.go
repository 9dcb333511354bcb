package quill

import "image"

// Atlas is a single-channel glyph coverage texture: one byte per texel,
// 255 meaning fully covered. The host's font-rasterization collaborator
// owns and fills it; the rendering core only reads through it. On the
// GPU path it is expanded to RGBA8 texels with the coverage in alpha.
type Atlas struct {
	Width  int
	Height int
	Data   []uint8
}

// AtlasFromAlpha copies an alpha image into a coverage atlas.
func AtlasFromAlpha(img *image.Alpha) *Atlas {
	b := img.Bounds()
	a := &Atlas{
		Width:  b.Dx(),
		Height: b.Dy(),
		Data:   make([]uint8, b.Dx()*b.Dy()),
	}
	for y := 0; y < a.Height; y++ {
		copy(a.Data[y*a.Width:(y+1)*a.Width], img.Pix[y*img.Stride:y*img.Stride+a.Width])
	}
	return a
}

// Filter selects how atlas samples are reconstructed from texels.
type Filter uint8

const (
	// FilterNearest picks the nearest texel.
	FilterNearest Filter = iota
	// FilterBilinear blends the four surrounding texels.
	FilterBilinear
)

// AddressMode selects how out-of-range texture coordinates wrap.
type AddressMode uint8

const (
	// AddressClampToEdge clamps coordinates to the texture edge.
	AddressClampToEdge AddressMode = iota
	// AddressRepeat wraps coordinates by the fractional part.
	AddressRepeat
)

// Sampler is the sampling configuration of a glyph pipeline. It is part
// of pipeline configuration, not per-draw state.
type Sampler struct {
	Filter  Filter
	Address AddressMode
}
