package quill

import "image"

// Image is an RGBA8 texture with straight (non-premultiplied) alpha,
// four bytes per texel. It is the source of an image draw; the host
// owns and fills it, the rendering core only reads through it.
type Image struct {
	Width  int
	Height int
	Pix    []uint8
}

// ImageFromNRGBA copies a straight-alpha image into an Image.
func ImageFromNRGBA(img *image.NRGBA) *Image {
	b := img.Bounds()
	im := &Image{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    make([]uint8, b.Dx()*b.Dy()*4),
	}
	for y := 0; y < im.Height; y++ {
		copy(im.Pix[y*im.Width*4:(y+1)*im.Width*4], img.Pix[y*img.Stride:y*img.Stride+im.Width*4])
	}
	return im
}

// ImageDraw bundles the inputs of one image draw: a shared placement
// mapping the unit quad into world space, the texture, and its sampling
// configuration. The quad-local coordinate doubles as the texture
// coordinate, so the image stretches to the placed quad.
type ImageDraw struct {
	ModelView  Mat4
	Projection Mat4
	Image      *Image
	Sampler    Sampler
}
