package raster

import "github.com/chewxy/math32"

// Filter selects how an atlas sample is reconstructed from texels.
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

// Atlas is a read-only single-channel coverage texture: one byte per
// texel, 255 meaning fully covered. The RGB channels of the GPU-side
// atlas are ignored by the glyph shader, so the CPU path stores only
// coverage. The atlas is owned by the host; this core only reads it.
type Atlas struct {
	Width  int
	Height int
	Data   []uint8
}

// TexelAlpha returns the coverage of one texel as [0,1]. Coordinates
// outside the atlas read as zero coverage.
func (a *Atlas) TexelAlpha(x, y int) float32 {
	if x < 0 || x >= a.Width || y < 0 || y >= a.Height {
		return 0
	}
	return float32(a.Data[y*a.Width+x]) / 255
}

// Sampler mirrors the pipeline's sampler configuration for the CPU path.
type Sampler struct {
	Filter  Filter
	Address AddressMode
}

// Sample reads coverage at normalized coordinates (u, v), v increasing
// downward like the atlas rows.
func (s Sampler) Sample(a *Atlas, u, v float32) float32 {
	if a == nil || a.Width <= 0 || a.Height <= 0 {
		return 0
	}
	// Texel-space coordinates with the texel center at +0.5.
	tx := u*float32(a.Width) - 0.5
	ty := v*float32(a.Height) - 0.5

	if s.Filter == FilterNearest {
		return a.TexelAlpha(s.wrapX(a, int(math32.Round(tx))), s.wrapY(a, int(math32.Round(ty))))
	}

	x0 := int(math32.Floor(tx))
	y0 := int(math32.Floor(ty))
	fx := tx - float32(x0)
	fy := ty - float32(y0)

	a00 := a.TexelAlpha(s.wrapX(a, x0), s.wrapY(a, y0))
	a10 := a.TexelAlpha(s.wrapX(a, x0+1), s.wrapY(a, y0))
	a01 := a.TexelAlpha(s.wrapX(a, x0), s.wrapY(a, y0+1))
	a11 := a.TexelAlpha(s.wrapX(a, x0+1), s.wrapY(a, y0+1))

	top := a00 + (a10-a00)*fx
	bot := a01 + (a11-a01)*fx
	return top + (bot-top)*fy
}

// Image is a read-only RGBA8 texture with straight alpha, four bytes
// per texel. Unlike the coverage Atlas it carries full color; the image
// quad emits the sample as the fragment color.
type Image struct {
	Width  int
	Height int
	Pix    []uint8
}

// Texel returns one texel as a [0,1] RGBA vector. Coordinates outside
// the image read as transparent.
func (im *Image) Texel(x, y int) [4]float32 {
	if x < 0 || x >= im.Width || y < 0 || y >= im.Height {
		return [4]float32{}
	}
	i := (y*im.Width + x) * 4
	return [4]float32{
		float32(im.Pix[i]) / 255,
		float32(im.Pix[i+1]) / 255,
		float32(im.Pix[i+2]) / 255,
		float32(im.Pix[i+3]) / 255,
	}
}

// SampleRGBA reads a full color at normalized coordinates (u, v), with
// the same filtering and addressing rules as coverage sampling applied
// per channel.
func (s Sampler) SampleRGBA(im *Image, u, v float32) [4]float32 {
	if im == nil || im.Width <= 0 || im.Height <= 0 {
		return [4]float32{}
	}
	tx := u*float32(im.Width) - 0.5
	ty := v*float32(im.Height) - 0.5

	if s.Filter == FilterNearest {
		x := wrap(int(math32.Round(tx)), im.Width, s.Address)
		y := wrap(int(math32.Round(ty)), im.Height, s.Address)
		return im.Texel(x, y)
	}

	x0 := int(math32.Floor(tx))
	y0 := int(math32.Floor(ty))
	fx := tx - float32(x0)
	fy := ty - float32(y0)

	c00 := im.Texel(wrap(x0, im.Width, s.Address), wrap(y0, im.Height, s.Address))
	c10 := im.Texel(wrap(x0+1, im.Width, s.Address), wrap(y0, im.Height, s.Address))
	c01 := im.Texel(wrap(x0, im.Width, s.Address), wrap(y0+1, im.Height, s.Address))
	c11 := im.Texel(wrap(x0+1, im.Width, s.Address), wrap(y0+1, im.Height, s.Address))

	var out [4]float32
	for i := range out {
		top := c00[i] + (c10[i]-c00[i])*fx
		bot := c01[i] + (c11[i]-c01[i])*fx
		out[i] = top + (bot-top)*fy
	}
	return out
}

func (s Sampler) wrapX(a *Atlas, x int) int {
	return wrap(x, a.Width, s.Address)
}

func (s Sampler) wrapY(a *Atlas, y int) int {
	return wrap(y, a.Height, s.Address)
}

func wrap(i, n int, mode AddressMode) int {
	if n <= 0 {
		return 0
	}
	switch mode {
	case AddressRepeat:
		i %= n
		if i < 0 {
			i += n
		}
		return i
	default: // clamp to edge
		if i < 0 {
			return 0
		}
		if i >= n {
			return n - 1
		}
		return i
	}
}
