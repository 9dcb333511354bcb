package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/quill"
)

// PipelineConfig holds the render-target parameters shared by all quill
// pipelines in a pass.
type PipelineConfig struct {
	// ColorFormat is the color attachment format.
	// Default: BGRA8Unorm.
	ColorFormat gputypes.TextureFormat

	// SampleCount is the MSAA sample count. Default: 1.
	SampleCount uint32
}

// DefaultPipelineConfig returns the default configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		ColorFormat: gputypes.TextureFormatBGRA8Unorm,
		SampleCount: 1,
	}
}

func (c *PipelineConfig) applyDefaults() {
	if c.ColorFormat == 0 {
		c.ColorFormat = gputypes.TextureFormatBGRA8Unorm
	}
	if c.SampleCount == 0 {
		c.SampleCount = 1
	}
}

// sourceOverBlend is the blend state of every quill pipeline: straight
// source-over for color, replaced alpha.
func sourceOverBlend() gputypes.BlendState {
	return gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorOne,
			DstFactor: gputypes.BlendFactorZero,
			Operation: gputypes.BlendOperationAdd,
		},
	}
}

// uniformEntry builds a bind group layout entry for a uniform buffer
// visible to both shader stages.
func uniformEntry(binding uint32) gputypes.BindGroupLayoutEntry {
	return gputypes.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	}
}

// createAndUploadBuffer creates a GPU buffer and uploads data through
// the queue.
func createAndUploadBuffer(device hal.Device, queue hal.Queue, label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func putFloat32(buf []byte, v float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
}

// mat4Bytes encodes a column-major 4x4 matrix as the 64-byte uniform
// layout.
func mat4Bytes(m quill.Mat4) []byte {
	buf := make([]byte, 64)
	for i, v := range m {
		putFloat32(buf[i*4:], v)
	}
	return buf
}

// vec4Bytes encodes a 4-float vector as the 16-byte uniform layout.
func vec4Bytes(v [4]float32) []byte {
	buf := make([]byte, 16)
	for i, f := range v {
		putFloat32(buf[i*4:], f)
	}
	return buf
}
