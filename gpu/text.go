package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/quill"
)

// glyphVertexStride is the byte stride per vertex in the text pipeline.
// Layout per vertex:
//
//	position (vec2<f32>) = 8 bytes (location 0)
//	uv       (vec2<f32>) = 8 bytes (location 1)
//
// Total = 16 bytes per vertex.
const glyphVertexStride = 16

// glyphInstanceStride is the byte stride per instance in the text
// pipeline. Layout per instance:
//
//	position_offset (vec2<f32>) = 8 bytes (location 2)
//	uv_offset       (vec2<f32>) = 8 bytes (location 3)
//
// Total = 16 bytes per instance.
const glyphInstanceStride = 16

// Text pipeline errors.
var (
	// ErrNilAtlas is returned when a glyph batch references no atlas.
	ErrNilAtlas = errors.New("gpu: nil atlas")

	// ErrEmptyAtlas is returned when the atlas has zero dimensions.
	ErrEmptyAtlas = errors.New("gpu: empty atlas")
)

// TextPipeline renders glyph quads: one shared quad of baked
// position/UV extents, instanced once per glyph with per-glyph position
// and UV offsets. The fragment stage samples coverage from the atlas
// alpha channel and mixes the background and foreground colors by it.
type TextPipeline struct {
	device hal.Device
	queue  hal.Queue
	config PipelineConfig

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
}

// NewTextPipeline creates the pipeline wrapper. GPU objects are created
// lazily on first use.
func NewTextPipeline(device hal.Device, queue hal.Queue, config *PipelineConfig) *TextPipeline {
	cfg := DefaultPipelineConfig()
	if config != nil {
		cfg = *config
		cfg.applyDefaults()
	}
	return &TextPipeline{
		device: device,
		queue:  queue,
		config: cfg,
	}
}

// Destroy releases all GPU resources held by the pipeline. Safe to call
// multiple times.
func (p *TextPipeline) Destroy() {
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

func (p *TextPipeline) ensurePipeline() error {
	if p.pipeline != nil {
		return nil
	}
	if textShaderSource == "" {
		return ErrEmptyShaderSource
	}

	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "quill_text_shader",
		Source: hal.ShaderSource{WGSL: textShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile text shader: %w", err)
	}
	p.shader = shader

	// Bind group layout:
	//   Binding 0: model_view (uniform, vertex)
	//   Binding 1: projection (uniform, vertex)
	//   Binding 2: fg_color (uniform, fragment)
	//   Binding 3: bg_color (uniform, fragment)
	//   Binding 4: atlas texture (texture_2d, fragment)
	//   Binding 5: sampler (fragment)
	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "quill_text_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			uniformEntry(0),
			uniformEntry(1),
			uniformEntry(2),
			uniformEntry(3),
			{
				Binding:    4,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    5,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create text bind layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "quill_text_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create text pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	blend := sourceOverBlend()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "quill_text_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    glyphVertexLayout(),
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
		return fmt.Errorf("create text pipeline: %w", err)
	}
	p.pipeline = pipeline

	slogger().Debug("created text pipeline",
		"format", p.config.ColorFormat, "samples", p.config.SampleCount)
	return nil
}

// glyphVertexLayout returns the two vertex buffer layouts of the text
// pipeline: slot 0 steps per vertex, slot 1 per instance. Matches
// VertexInput and InstanceInput in text.wgsl.
func glyphVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: glyphVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // uv
			},
		},
		{
			ArrayStride: glyphInstanceStride,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 2}, // position_offset
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 3}, // uv_offset
			},
		},
	}
}

// EncodeGlyphVertices encodes the shared quad corners into vertex
// buffer bytes.
func EncodeGlyphVertices(verts [4]quill.GlyphVertex) []byte {
	buf := make([]byte, len(verts)*glyphVertexStride)
	off := 0
	for _, v := range verts {
		putFloat32(buf[off:], v.Position[0])
		putFloat32(buf[off+4:], v.Position[1])
		putFloat32(buf[off+8:], v.UV[0])
		putFloat32(buf[off+12:], v.UV[1])
		off += glyphVertexStride
	}
	return buf
}

// EncodeGlyphInstances encodes per-glyph offsets into instance buffer
// bytes.
func EncodeGlyphInstances(instances []quill.GlyphInstance) []byte {
	buf := make([]byte, len(instances)*glyphInstanceStride)
	off := 0
	for _, inst := range instances {
		putFloat32(buf[off:], float32(inst.PositionOffset.X))
		putFloat32(buf[off+4:], float32(inst.PositionOffset.Y))
		putFloat32(buf[off+8:], float32(inst.UVOffset.X))
		putFloat32(buf[off+12:], float32(inst.UVOffset.Y))
		off += glyphInstanceStride
	}
	return buf
}

// glyphIndexData returns the index buffer bytes for the shared quad:
// two triangles, 0-1-2 and 2-3-0.
func glyphIndexData() []byte {
	data := make([]byte, len(quill.GlyphQuadIndices)*2)
	for i, idx := range quill.GlyphQuadIndices {
		binary.LittleEndian.PutUint16(data[i*2:], idx)
	}
	return data
}

// atlasToRGBA expands single-channel coverage to RGBA8 texels with the
// coverage in alpha and white RGB. The fragment shader reads only the
// alpha channel.
func atlasToRGBA(atlas *quill.Atlas) []byte {
	rgba := make([]byte, len(atlas.Data)*4)
	for i, a := range atlas.Data {
		off := i * 4
		rgba[off+0] = 0xFF
		rgba[off+1] = 0xFF
		rgba[off+2] = 0xFF
		rgba[off+3] = a
	}
	return rgba
}

// samplerDescriptor translates a sampler spec into a hal descriptor.
// Minification always filters linearly so that downscaled text stays
// smooth; the configured filter controls magnification.
func samplerDescriptor(s quill.Sampler) *hal.SamplerDescriptor {
	magFilter := gputypes.FilterModeNearest
	if s.Filter == quill.FilterBilinear {
		magFilter = gputypes.FilterModeLinear
	}
	address := gputypes.AddressModeClampToEdge
	if s.Address == quill.AddressRepeat {
		address = gputypes.AddressModeRepeat
	}
	return &hal.SamplerDescriptor{
		Label:        "quill_text_sampler",
		AddressModeU: address,
		AddressModeV: address,
		AddressModeW: address,
		MagFilter:    magFilter,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeNearest,
	}
}

// GlyphBatch holds the per-draw GPU resources of one glyph draw: the
// shared quad vertex and index buffers, the instance buffer, the four
// uniforms, the atlas texture, and the sampler.
type GlyphBatch struct {
	vertBuf     hal.Buffer
	idxBuf      hal.Buffer
	instanceBuf hal.Buffer

	modelViewBuf hal.Buffer
	projBuf      hal.Buffer
	fgBuf        hal.Buffer
	bgBuf        hal.Buffer

	atlasTex  hal.Texture
	atlasView hal.TextureView
	sampler   hal.Sampler

	bindGroup     hal.BindGroup
	instanceCount uint32
}

// CreateBatch uploads the glyph draw data and creates the per-draw
// resources: buffers, the atlas texture, the sampler, and the bind
// group.
func (p *TextPipeline) CreateBatch(draw quill.GlyphDraw) (*GlyphBatch, error) {
	if draw.Atlas == nil {
		return nil, ErrNilAtlas
	}
	if draw.Atlas.Width <= 0 || draw.Atlas.Height <= 0 {
		return nil, ErrEmptyAtlas
	}
	if len(draw.Instances) == 0 {
		return nil, ErrNoInstances
	}
	if err := p.ensurePipeline(); err != nil {
		return nil, err
	}

	b := &GlyphBatch{instanceCount: uint32(len(draw.Instances))}
	fail := func(err error) (*GlyphBatch, error) {
		b.Destroy(p.device)
		return nil, err
	}

	var err error
	b.vertBuf, err = createAndUploadBuffer(p.device, p.queue, "quill_glyph_verts",
		EncodeGlyphVertices(draw.Vertices), gputypes.BufferUsageVertex)
	if err != nil {
		return fail(err)
	}
	b.idxBuf, err = createAndUploadBuffer(p.device, p.queue, "quill_glyph_indices",
		glyphIndexData(), gputypes.BufferUsageIndex)
	if err != nil {
		return fail(err)
	}
	b.instanceBuf, err = createAndUploadBuffer(p.device, p.queue, "quill_glyph_instances",
		EncodeGlyphInstances(draw.Instances), gputypes.BufferUsageVertex)
	if err != nil {
		return fail(err)
	}

	b.modelViewBuf, err = createAndUploadBuffer(p.device, p.queue, "quill_glyph_model_view",
		mat4Bytes(draw.Params.ModelView), gputypes.BufferUsageUniform)
	if err != nil {
		return fail(err)
	}
	b.projBuf, err = createAndUploadBuffer(p.device, p.queue, "quill_glyph_proj",
		mat4Bytes(draw.Params.Projection), gputypes.BufferUsageUniform)
	if err != nil {
		return fail(err)
	}
	b.fgBuf, err = createAndUploadBuffer(p.device, p.queue, "quill_glyph_fg",
		vec4Bytes(draw.Params.Foreground.Vec4()), gputypes.BufferUsageUniform)
	if err != nil {
		return fail(err)
	}
	b.bgBuf, err = createAndUploadBuffer(p.device, p.queue, "quill_glyph_bg",
		vec4Bytes(draw.Params.Background.Vec4()), gputypes.BufferUsageUniform)
	if err != nil {
		return fail(err)
	}

	if err := p.uploadAtlas(b, draw.Atlas); err != nil {
		return fail(err)
	}

	b.sampler, err = p.device.CreateSampler(samplerDescriptor(draw.Sampler))
	if err != nil {
		return fail(fmt.Errorf("create text sampler: %w", err))
	}

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "quill_text_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: b.modelViewBuf.NativeHandle(), Offset: 0, Size: rectMat4Size,
			}},
			{Binding: 1, Resource: gputypes.BufferBinding{
				Buffer: b.projBuf.NativeHandle(), Offset: 0, Size: rectMat4Size,
			}},
			{Binding: 2, Resource: gputypes.BufferBinding{
				Buffer: b.fgBuf.NativeHandle(), Offset: 0, Size: rectVec4Size,
			}},
			{Binding: 3, Resource: gputypes.BufferBinding{
				Buffer: b.bgBuf.NativeHandle(), Offset: 0, Size: rectVec4Size,
			}},
			{Binding: 4, Resource: gputypes.TextureViewBinding{
				TextureView: b.atlasView.NativeHandle(),
			}},
			{Binding: 5, Resource: gputypes.SamplerBinding{
				Sampler: b.sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return fail(fmt.Errorf("create text bind group: %w", err))
	}
	b.bindGroup = bindGroup

	return b, nil
}

// uploadAtlas creates the atlas texture and view and writes the
// coverage texels.
func (p *TextPipeline) uploadAtlas(b *GlyphBatch, atlas *quill.Atlas) error {
	w := uint32(atlas.Width)
	h := uint32(atlas.Height)

	tex, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "quill_glyph_atlas",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create atlas texture: %w", err)
	}
	b.atlasTex = tex

	view, err := p.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "quill_glyph_atlas_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return fmt.Errorf("create atlas texture view: %w", err)
	}
	b.atlasView = view

	p.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
		},
		atlasToRGBA(atlas),
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  w * 4,
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)

	return nil
}

// SetParams rewrites the uniform buffers from fresh draw parameters.
func (b *GlyphBatch) SetParams(queue hal.Queue, params quill.TextParams) {
	queue.WriteBuffer(b.modelViewBuf, 0, mat4Bytes(params.ModelView))
	queue.WriteBuffer(b.projBuf, 0, mat4Bytes(params.Projection))
	queue.WriteBuffer(b.fgBuf, 0, vec4Bytes(params.Foreground.Vec4()))
	queue.WriteBuffer(b.bgBuf, 0, vec4Bytes(params.Background.Vec4()))
}

// RecordDraws records the batch into an open render pass: one indexed
// draw of six indices across all glyph instances.
func (p *TextPipeline) RecordDraws(rp hal.RenderPassEncoder, batch *GlyphBatch) {
	if batch == nil || batch.instanceCount == 0 {
		return
	}
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, batch.bindGroup, nil)
	rp.SetVertexBuffer(0, batch.vertBuf, 0)
	rp.SetVertexBuffer(1, batch.instanceBuf, 0)
	rp.SetIndexBuffer(batch.idxBuf, gputypes.IndexFormatUint16, 0)
	rp.DrawIndexed(uint32(len(quill.GlyphQuadIndices)), batch.instanceCount, 0, 0, 0)
}

// Destroy releases the batch's GPU resources in reverse creation order.
func (b *GlyphBatch) Destroy(device hal.Device) {
	if b.bindGroup != nil {
		device.DestroyBindGroup(b.bindGroup)
		b.bindGroup = nil
	}
	if b.sampler != nil {
		device.DestroySampler(b.sampler)
		b.sampler = nil
	}
	if b.atlasView != nil {
		device.DestroyTextureView(b.atlasView)
		b.atlasView = nil
	}
	if b.atlasTex != nil {
		device.DestroyTexture(b.atlasTex)
		b.atlasTex = nil
	}
	for _, buf := range []*hal.Buffer{&b.bgBuf, &b.fgBuf, &b.projBuf, &b.modelViewBuf, &b.instanceBuf, &b.idxBuf, &b.vertBuf} {
		if *buf != nil {
			device.DestroyBuffer(*buf)
			*buf = nil
		}
	}
	b.instanceCount = 0
}
