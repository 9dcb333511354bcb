package gpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/quill"
)

func float32At(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func TestDefaultPipelineConfig(t *testing.T) {
	c := DefaultPipelineConfig()
	if c.ColorFormat != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("ColorFormat = %v, want BGRA8Unorm", c.ColorFormat)
	}
	if c.SampleCount != 1 {
		t.Errorf("SampleCount = %v, want 1", c.SampleCount)
	}
}

func TestPipelineConfigApplyDefaults(t *testing.T) {
	var c PipelineConfig
	c.applyDefaults()
	if c.ColorFormat != gputypes.TextureFormatBGRA8Unorm || c.SampleCount != 1 {
		t.Errorf("zero config after defaults = %+v", c)
	}

	c = PipelineConfig{ColorFormat: gputypes.TextureFormatRGBA8Unorm, SampleCount: 4}
	c.applyDefaults()
	if c.ColorFormat != gputypes.TextureFormatRGBA8Unorm || c.SampleCount != 4 {
		t.Errorf("explicit config was overwritten: %+v", c)
	}
}

func TestSourceOverBlend(t *testing.T) {
	b := sourceOverBlend()
	if b.Color.SrcFactor != gputypes.BlendFactorSrcAlpha ||
		b.Color.DstFactor != gputypes.BlendFactorOneMinusSrcAlpha ||
		b.Color.Operation != gputypes.BlendOperationAdd {
		t.Errorf("color blend = %+v, want src-alpha over", b.Color)
	}
	if b.Alpha.SrcFactor != gputypes.BlendFactorOne ||
		b.Alpha.DstFactor != gputypes.BlendFactorZero {
		t.Errorf("alpha blend = %+v, want replace", b.Alpha)
	}
}

func TestUniformEntry(t *testing.T) {
	e := uniformEntry(3)
	if e.Binding != 3 {
		t.Errorf("Binding = %d, want 3", e.Binding)
	}
	if e.Visibility != gputypes.ShaderStageVertex|gputypes.ShaderStageFragment {
		t.Errorf("Visibility = %v, want vertex|fragment", e.Visibility)
	}
	if e.Buffer == nil || e.Buffer.Type != gputypes.BufferBindingTypeUniform {
		t.Errorf("Buffer layout = %+v, want uniform", e.Buffer)
	}
}

func TestMat4Bytes(t *testing.T) {
	var m quill.Mat4
	for i := range m {
		m[i] = float32(i)
	}
	buf := mat4Bytes(m)
	if len(buf) != 64 {
		t.Fatalf("len = %d, want 64", len(buf))
	}
	for i := range m {
		if got := float32At(buf, i*4); got != float32(i) {
			t.Errorf("element %d = %v, want %v", i, got, float32(i))
		}
	}
}

func TestVec4Bytes(t *testing.T) {
	buf := vec4Bytes([4]float32{0.25, -1, 3.5, 1})
	if len(buf) != 16 {
		t.Fatalf("len = %d, want 16", len(buf))
	}
	want := [4]float32{0.25, -1, 3.5, 1}
	for i, w := range want {
		if got := float32At(buf, i*4); got != w {
			t.Errorf("element %d = %v, want %v", i, got, w)
		}
	}
}
