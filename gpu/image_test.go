package gpu

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/quill"
)

func TestImageSamplerDescriptor(t *testing.T) {
	tests := []struct {
		name        string
		sampler     quill.Sampler
		wantMag     gputypes.FilterMode
		wantAddress gputypes.AddressMode
	}{
		{
			"nearest clamp",
			quill.Sampler{Filter: quill.FilterNearest, Address: quill.AddressClampToEdge},
			gputypes.FilterModeNearest,
			gputypes.AddressModeClampToEdge,
		},
		{
			"bilinear repeat",
			quill.Sampler{Filter: quill.FilterBilinear, Address: quill.AddressRepeat},
			gputypes.FilterModeLinear,
			gputypes.AddressModeRepeat,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := imageSamplerDescriptor(tt.sampler)
			if d.MagFilter != tt.wantMag {
				t.Errorf("MagFilter = %v, want %v", d.MagFilter, tt.wantMag)
			}
			if d.MinFilter != gputypes.FilterModeLinear {
				t.Errorf("MinFilter = %v, want always linear", d.MinFilter)
			}
			if d.MipmapFilter != gputypes.FilterModeLinear {
				t.Errorf("MipmapFilter = %v, want linear", d.MipmapFilter)
			}
			for i, mode := range []gputypes.AddressMode{d.AddressModeU, d.AddressModeV, d.AddressModeW} {
				if mode != tt.wantAddress {
					t.Errorf("AddressMode[%d] = %v, want %v", i, mode, tt.wantAddress)
				}
			}
		})
	}
}

func TestCreateImageRejectsEmpty(t *testing.T) {
	p := NewImagePipeline(nil, nil, nil)
	for _, tt := range []struct {
		name string
		img  *quill.Image
	}{
		{"nil image", nil},
		{"zero width", &quill.Image{Width: 0, Height: 4, Pix: make([]uint8, 0)}},
		{"zero height", &quill.Image{Width: 4, Height: 0, Pix: make([]uint8, 0)}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := p.CreateImage(tt.img, quill.Sampler{}); err != ErrNilImage {
				t.Errorf("CreateImage error = %v, want ErrNilImage", err)
			}
		})
	}
}

// Texture view and sampler bindings carry raw native handles, so a
// hal resource's NativeHandle result can be assigned directly.
func TestBindingResourcesAcceptNativeHandles(t *testing.T) {
	tv := gputypes.TextureViewBinding{TextureView: uintptr(0x1234)}
	if tv.TextureView != uintptr(0x1234) {
		t.Errorf("TextureView = %#x, want 0x1234", tv.TextureView)
	}
	sb := gputypes.SamplerBinding{Sampler: uintptr(0x5678)}
	if sb.Sampler != uintptr(0x5678) {
		t.Errorf("Sampler = %#x, want 0x5678", sb.Sampler)
	}
}
