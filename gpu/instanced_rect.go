package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/quill"
)

// rectInstanceStride is the byte stride per instance in the transformed
// rectangle pipeline. Layout per instance:
//
//	model_view_col0 (vec3<f32>) = 12 bytes (location 0)
//	model_view_col1 (vec3<f32>) = 12 bytes (location 1)
//	model_view_col2 (vec3<f32>) = 12 bytes (location 2)
//	fill_color      (vec4<f32>) = 16 bytes (location 3)
//	line_color      (vec4<f32>) = 16 bytes (location 4)
//	line_width      (vec2<f32>) =  8 bytes (location 5)
//
// Total = 76 bytes per instance.
const rectInstanceStride = 76

// rectProjectionSize is the byte size of the projection uniform
// (mat4x4<f32>) at group 0, binding 0.
const rectProjectionSize = 64

// ErrNoInstances is returned when a batch is created with no instances.
var ErrNoInstances = errors.New("gpu: no instances")

// InstancedRectPipeline renders transformed rectangles: six vertices of
// the unit quad drawn once per instance, with the model-view transform,
// colors, and border widths read from the instance buffer. The only
// uniform is the pass projection.
type InstancedRectPipeline struct {
	device hal.Device
	queue  hal.Queue
	config PipelineConfig

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
}

// NewInstancedRectPipeline creates the pipeline wrapper. GPU objects are
// created lazily on first use.
func NewInstancedRectPipeline(device hal.Device, queue hal.Queue, config *PipelineConfig) *InstancedRectPipeline {
	cfg := DefaultPipelineConfig()
	if config != nil {
		cfg = *config
		cfg.applyDefaults()
	}
	return &InstancedRectPipeline{
		device: device,
		queue:  queue,
		config: cfg,
	}
}

// Destroy releases all GPU resources held by the pipeline. Safe to call
// multiple times.
func (p *InstancedRectPipeline) Destroy() {
	if p.device == nil {
		return
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

func (p *InstancedRectPipeline) ensurePipeline() error {
	if p.pipeline != nil {
		return nil
	}
	if instancedRectShaderSource == "" {
		return ErrEmptyShaderSource
	}

	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "quill_instanced_rect_shader",
		Source: hal.ShaderSource{WGSL: instancedRectShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile instanced_rect shader: %w", err)
	}
	p.shader = shader

	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "quill_instanced_rect_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			uniformEntry(0), // projection
		},
	})
	if err != nil {
		return fmt.Errorf("create instanced_rect bind layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "quill_instanced_rect_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create instanced_rect pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	blend := sourceOverBlend()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "quill_instanced_rect_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    rectInstanceLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    p.config.ColorFormat,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: p.config.SampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create instanced_rect pipeline: %w", err)
	}
	p.pipeline = pipeline

	slogger().Debug("created instanced rect pipeline",
		"format", p.config.ColorFormat, "samples", p.config.SampleCount)
	return nil
}

// rectInstanceLayout returns the instance buffer layout. Matches the
// Instance struct in instanced_rect.wgsl.
func rectInstanceLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: rectInstanceStride,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},  // model_view_col0
				{Format: gputypes.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1}, // model_view_col1
				{Format: gputypes.VertexFormatFloat32x3, Offset: 24, ShaderLocation: 2}, // model_view_col2
				{Format: gputypes.VertexFormatFloat32x4, Offset: 36, ShaderLocation: 3}, // fill_color
				{Format: gputypes.VertexFormatFloat32x4, Offset: 52, ShaderLocation: 4}, // line_color
				{Format: gputypes.VertexFormatFloat32x2, Offset: 68, ShaderLocation: 5}, // line_width
			},
		},
	}
}

// EncodeRectInstances encodes instances into the exact byte layout of
// the instance buffer.
func EncodeRectInstances(instances []quill.RectInstance) []byte {
	buf := make([]byte, len(instances)*rectInstanceStride)
	off := 0
	for _, inst := range instances {
		cols := inst.ModelView.Columns()
		for _, col := range cols {
			for _, v := range col {
				putFloat32(buf[off:], v)
				off += 4
			}
		}
		for _, v := range inst.Fill.Vec4() {
			putFloat32(buf[off:], v)
			off += 4
		}
		for _, v := range inst.Line.Vec4() {
			putFloat32(buf[off:], v)
			off += 4
		}
		putFloat32(buf[off:], float32(inst.LineWidth.X))
		putFloat32(buf[off+4:], float32(inst.LineWidth.Y))
		off += 8
	}
	return buf
}

// RectBatch holds the per-draw GPU resources of one transformed
// rectangle draw: the instance buffer, the projection uniform, and the
// bind group tying them to the pipeline.
type RectBatch struct {
	instanceBuf   hal.Buffer
	projBuf       hal.Buffer
	bindGroup     hal.BindGroup
	instanceCount uint32
}

// CreateBatch uploads instances and creates the per-draw resources. The
// projection starts as identity; call SetProjection before drawing.
func (p *InstancedRectPipeline) CreateBatch(instances []quill.RectInstance) (*RectBatch, error) {
	if len(instances) == 0 {
		return nil, ErrNoInstances
	}
	if err := p.ensurePipeline(); err != nil {
		return nil, err
	}

	instanceBuf, err := createAndUploadBuffer(p.device, p.queue, "quill_rect_instances",
		EncodeRectInstances(instances), gputypes.BufferUsageVertex)
	if err != nil {
		return nil, err
	}

	projBuf, err := createAndUploadBuffer(p.device, p.queue, "quill_rect_projection",
		mat4Bytes(quill.Mat4Identity()), gputypes.BufferUsageUniform)
	if err != nil {
		p.device.DestroyBuffer(instanceBuf)
		return nil, err
	}

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "quill_rect_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: projBuf.NativeHandle(), Offset: 0, Size: rectProjectionSize,
			}},
		},
	})
	if err != nil {
		p.device.DestroyBuffer(projBuf)
		p.device.DestroyBuffer(instanceBuf)
		return nil, fmt.Errorf("create rect bind group: %w", err)
	}

	return &RectBatch{
		instanceBuf:   instanceBuf,
		projBuf:       projBuf,
		bindGroup:     bindGroup,
		instanceCount: uint32(len(instances)),
	}, nil
}

// SetProjection writes the pass projection uniform.
func (b *RectBatch) SetProjection(queue hal.Queue, proj quill.Mat4) {
	queue.WriteBuffer(b.projBuf, 0, mat4Bytes(proj))
}

// RecordDraws records the batch into an open render pass.
func (p *InstancedRectPipeline) RecordDraws(rp hal.RenderPassEncoder, batch *RectBatch) {
	if batch == nil || batch.instanceCount == 0 {
		return
	}
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, batch.bindGroup, nil)
	rp.SetVertexBuffer(0, batch.instanceBuf, 0)
	rp.Draw(6, batch.instanceCount, 0, 0)
}

// Destroy releases the batch's GPU resources.
func (b *RectBatch) Destroy(device hal.Device) {
	if b.bindGroup != nil {
		device.DestroyBindGroup(b.bindGroup)
		b.bindGroup = nil
	}
	if b.projBuf != nil {
		device.DestroyBuffer(b.projBuf)
		b.projBuf = nil
	}
	if b.instanceBuf != nil {
		device.DestroyBuffer(b.instanceBuf)
		b.instanceBuf = nil
	}
	b.instanceCount = 0
}
