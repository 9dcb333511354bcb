package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/quill"
)

// Uniform buffer sizes for the bordered rectangle pipeline.
// Bindings 0-4 in rect.wgsl:
//
//	binding 0: model_view  (mat4x4<f32>) = 64 bytes
//	binding 1: projection  (mat4x4<f32>) = 64 bytes
//	binding 2: fill_color  (vec4<f32>)   = 16 bytes
//	binding 3: line_color  (vec4<f32>)   = 16 bytes
//	binding 4: line_width  (vec4<f32>)   = 16 bytes, channels left/top/right/bottom
const (
	rectMat4Size = 64
	rectVec4Size = 16
)

// BorderedRectPipeline renders a single axis-aligned rectangle per draw.
// All parameters live in uniform buffers; vertex positions come from a
// unit quad table indexed by vertex_index, so the pipeline binds no
// vertex buffers. Each border side carries its own width.
type BorderedRectPipeline struct {
	device hal.Device
	queue  hal.Queue
	config PipelineConfig

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
}

// NewBorderedRectPipeline creates the pipeline wrapper. GPU objects are
// created lazily on first use.
func NewBorderedRectPipeline(device hal.Device, queue hal.Queue, config *PipelineConfig) *BorderedRectPipeline {
	cfg := DefaultPipelineConfig()
	if config != nil {
		cfg = *config
		cfg.applyDefaults()
	}
	return &BorderedRectPipeline{
		device: device,
		queue:  queue,
		config: cfg,
	}
}

// Destroy releases all GPU resources held by the pipeline. Safe to call
// multiple times.
func (p *BorderedRectPipeline) Destroy() {
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

func (p *BorderedRectPipeline) ensurePipeline() error {
	if p.pipeline != nil {
		return nil
	}
	if rectShaderSource == "" {
		return ErrEmptyShaderSource
	}

	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "quill_rect_shader",
		Source: hal.ShaderSource{WGSL: rectShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile rect shader: %w", err)
	}
	p.shader = shader

	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "quill_rect_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			uniformEntry(0), // model_view
			uniformEntry(1), // projection
			uniformEntry(2), // fill_color
			uniformEntry(3), // line_color
			uniformEntry(4), // line_width
		},
	})
	if err != nil {
		return fmt.Errorf("create rect bind layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "quill_rect_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create rect pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	blend := sourceOverBlend()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "quill_rect_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
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
		return fmt.Errorf("create rect pipeline: %w", err)
	}
	p.pipeline = pipeline

	slogger().Debug("created bordered rect pipeline",
		"format", p.config.ColorFormat, "samples", p.config.SampleCount)
	return nil
}

// BorderedRectDraw holds the per-draw GPU resources of one bordered
// rectangle: five uniform buffers and the bind group tying them to the
// pipeline. Uniforms can be rewritten between frames via the Set
// methods without recreating the bind group.
type BorderedRectDraw struct {
	modelViewBuf hal.Buffer
	projBuf      hal.Buffer
	fillBuf      hal.Buffer
	lineBuf      hal.Buffer
	widthBuf     hal.Buffer
	bindGroup    hal.BindGroup
}

// CreateDraw uploads the rectangle parameters and creates the per-draw
// resources.
func (p *BorderedRectPipeline) CreateDraw(rect quill.BorderedRect) (*BorderedRectDraw, error) {
	if err := p.ensurePipeline(); err != nil {
		return nil, err
	}

	d := &BorderedRectDraw{}
	destroyPartial := func() {
		d.Destroy(p.device)
	}

	var err error
	d.modelViewBuf, err = createAndUploadBuffer(p.device, p.queue, "quill_rect_model_view",
		mat4Bytes(rect.ModelView), gputypes.BufferUsageUniform)
	if err != nil {
		return nil, err
	}
	d.projBuf, err = createAndUploadBuffer(p.device, p.queue, "quill_rect_proj",
		mat4Bytes(rect.Projection), gputypes.BufferUsageUniform)
	if err != nil {
		destroyPartial()
		return nil, err
	}
	d.fillBuf, err = createAndUploadBuffer(p.device, p.queue, "quill_rect_fill",
		vec4Bytes(rect.Fill.Vec4()), gputypes.BufferUsageUniform)
	if err != nil {
		destroyPartial()
		return nil, err
	}
	d.lineBuf, err = createAndUploadBuffer(p.device, p.queue, "quill_rect_line",
		vec4Bytes(rect.Line.Vec4()), gputypes.BufferUsageUniform)
	if err != nil {
		destroyPartial()
		return nil, err
	}
	d.widthBuf, err = createAndUploadBuffer(p.device, p.queue, "quill_rect_width",
		vec4Bytes(rect.LineWidth.Vec4()), gputypes.BufferUsageUniform)
	if err != nil {
		destroyPartial()
		return nil, err
	}

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "quill_rect_uniform_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: d.modelViewBuf.NativeHandle(), Offset: 0, Size: rectMat4Size,
			}},
			{Binding: 1, Resource: gputypes.BufferBinding{
				Buffer: d.projBuf.NativeHandle(), Offset: 0, Size: rectMat4Size,
			}},
			{Binding: 2, Resource: gputypes.BufferBinding{
				Buffer: d.fillBuf.NativeHandle(), Offset: 0, Size: rectVec4Size,
			}},
			{Binding: 3, Resource: gputypes.BufferBinding{
				Buffer: d.lineBuf.NativeHandle(), Offset: 0, Size: rectVec4Size,
			}},
			{Binding: 4, Resource: gputypes.BufferBinding{
				Buffer: d.widthBuf.NativeHandle(), Offset: 0, Size: rectVec4Size,
			}},
		},
	})
	if err != nil {
		destroyPartial()
		return nil, fmt.Errorf("create rect uniform bind group: %w", err)
	}
	d.bindGroup = bindGroup

	return d, nil
}

// SetModelView rewrites the model-view uniform.
func (d *BorderedRectDraw) SetModelView(queue hal.Queue, m quill.Mat4) {
	queue.WriteBuffer(d.modelViewBuf, 0, mat4Bytes(m))
}

// SetProjection rewrites the projection uniform.
func (d *BorderedRectDraw) SetProjection(queue hal.Queue, m quill.Mat4) {
	queue.WriteBuffer(d.projBuf, 0, mat4Bytes(m))
}

// SetColors rewrites the fill and line color uniforms.
func (d *BorderedRectDraw) SetColors(queue hal.Queue, fill, line quill.RGBA) {
	queue.WriteBuffer(d.fillBuf, 0, vec4Bytes(fill.Vec4()))
	queue.WriteBuffer(d.lineBuf, 0, vec4Bytes(line.Vec4()))
}

// SetLineWidth rewrites the border width uniform.
func (d *BorderedRectDraw) SetLineWidth(queue hal.Queue, w quill.BorderWidths) {
	queue.WriteBuffer(d.widthBuf, 0, vec4Bytes(w.Vec4()))
}

// RecordDraws records the rectangle into an open render pass. One draw
// covers the six unit quad vertices of a single instance.
func (p *BorderedRectPipeline) RecordDraws(rp hal.RenderPassEncoder, draw *BorderedRectDraw) {
	if draw == nil || draw.bindGroup == nil {
		return
	}
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, draw.bindGroup, nil)
	rp.Draw(6, 1, 0, 0)
}

// Destroy releases the draw's GPU resources.
func (d *BorderedRectDraw) Destroy(device hal.Device) {
	if d.bindGroup != nil {
		device.DestroyBindGroup(d.bindGroup)
		d.bindGroup = nil
	}
	for _, buf := range []*hal.Buffer{&d.widthBuf, &d.lineBuf, &d.fillBuf, &d.projBuf, &d.modelViewBuf} {
		if *buf != nil {
			device.DestroyBuffer(*buf)
			*buf = nil
		}
	}
}
