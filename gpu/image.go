package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/quill"
)

// ErrNilImage is returned when an image draw is created without pixels.
var ErrNilImage = errors.New("gpu: nil or empty image")

// ImagePipeline renders a textured unit quad per draw. Placement works
// like the bordered rectangle pipeline: one shared model-view and
// projection in uniforms, vertex positions from the unit quad table
// indexed by vertex_index, so the pipeline binds no vertex buffers. The
// fragment stage emits the sampled texel unchanged.
type ImagePipeline struct {
	device hal.Device
	queue  hal.Queue
	config PipelineConfig

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
}

// NewImagePipeline creates the pipeline wrapper. GPU objects are
// created lazily on first use.
func NewImagePipeline(device hal.Device, queue hal.Queue, config *PipelineConfig) *ImagePipeline {
	cfg := DefaultPipelineConfig()
	if config != nil {
		cfg = *config
		cfg.applyDefaults()
	}
	return &ImagePipeline{
		device: device,
		queue:  queue,
		config: cfg,
	}
}

// Destroy releases all GPU resources held by the pipeline. Safe to call
// multiple times.
func (p *ImagePipeline) Destroy() {
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

func (p *ImagePipeline) ensurePipeline() error {
	if p.pipeline != nil {
		return nil
	}
	if imageShaderSource == "" {
		return ErrEmptyShaderSource
	}

	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "quill_image_shader",
		Source: hal.ShaderSource{WGSL: imageShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile image shader: %w", err)
	}
	p.shader = shader

	// Bind group layout:
	//   Binding 0: model_view (uniform, vertex)
	//   Binding 1: projection (uniform, vertex)
	//   Binding 2: image texture (texture_2d, fragment)
	//   Binding 3: sampler (fragment)
	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "quill_image_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			uniformEntry(0),
			uniformEntry(1),
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    3,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create image bind layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "quill_image_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create image pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	blend := sourceOverBlend()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "quill_image_pipeline",
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
		return fmt.Errorf("create image pipeline: %w", err)
	}
	p.pipeline = pipeline

	slogger().Debug("created image pipeline",
		"format", p.config.ColorFormat, "samples", p.config.SampleCount)
	return nil
}

// imageSamplerDescriptor translates a sampler configuration into a hal
// descriptor. Same filter policy as glyphs: the configured filter
// drives magnification, minification always filters linearly.
func imageSamplerDescriptor(s quill.Sampler) *hal.SamplerDescriptor {
	magFilter := gputypes.FilterModeNearest
	if s.Filter == quill.FilterBilinear {
		magFilter = gputypes.FilterModeLinear
	}
	address := gputypes.AddressModeClampToEdge
	if s.Address == quill.AddressRepeat {
		address = gputypes.AddressModeRepeat
	}
	return &hal.SamplerDescriptor{
		Label:        "quill_image_sampler",
		AddressModeU: address,
		AddressModeV: address,
		AddressModeW: address,
		MagFilter:    magFilter,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	}
}

// ImageElement holds the per-draw GPU resources of one image quad: two
// uniform buffers, the texture with its view and sampler, and the bind
// group tying them to the pipeline. Placement can be rewritten between
// frames via the Set methods.
type ImageElement struct {
	modelViewBuf hal.Buffer
	projBuf      hal.Buffer

	texture hal.Texture
	view    hal.TextureView
	sampler hal.Sampler

	bindGroup hal.BindGroup
}

// CreateImage uploads an image and creates the per-draw resources.
// Placement starts as identity; call SetModelView and SetProjection
// before drawing.
func (p *ImagePipeline) CreateImage(img *quill.Image, sampler quill.Sampler) (*ImageElement, error) {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return nil, ErrNilImage
	}
	if err := p.ensurePipeline(); err != nil {
		return nil, err
	}

	e := &ImageElement{}
	fail := func(err error) (*ImageElement, error) {
		e.Destroy(p.device)
		return nil, err
	}

	var err error
	e.modelViewBuf, err = createAndUploadBuffer(p.device, p.queue, "quill_image_model_view",
		mat4Bytes(quill.Mat4Identity()), gputypes.BufferUsageUniform)
	if err != nil {
		return fail(err)
	}
	e.projBuf, err = createAndUploadBuffer(p.device, p.queue, "quill_image_proj",
		mat4Bytes(quill.Mat4Identity()), gputypes.BufferUsageUniform)
	if err != nil {
		return fail(err)
	}

	if err := p.uploadImage(e, img); err != nil {
		return fail(err)
	}

	e.sampler, err = p.device.CreateSampler(imageSamplerDescriptor(sampler))
	if err != nil {
		return fail(fmt.Errorf("create image sampler: %w", err))
	}

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "quill_image_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: e.modelViewBuf.NativeHandle(), Offset: 0, Size: rectMat4Size,
			}},
			{Binding: 1, Resource: gputypes.BufferBinding{
				Buffer: e.projBuf.NativeHandle(), Offset: 0, Size: rectMat4Size,
			}},
			{Binding: 2, Resource: gputypes.TextureViewBinding{
				TextureView: e.view.NativeHandle(),
			}},
			{Binding: 3, Resource: gputypes.SamplerBinding{
				Sampler: e.sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return fail(fmt.Errorf("create image bind group: %w", err))
	}
	e.bindGroup = bindGroup

	return e, nil
}

// uploadImage creates the texture and view and writes the RGBA texels.
func (p *ImagePipeline) uploadImage(e *ImageElement, img *quill.Image) error {
	w := uint32(img.Width)
	h := uint32(img.Height)

	tex, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "quill_image_texture",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create image texture: %w", err)
	}
	e.texture = tex

	view, err := p.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "quill_image_texture_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return fmt.Errorf("create image texture view: %w", err)
	}
	e.view = view

	p.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
		},
		img.Pix,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  w * 4,
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)

	return nil
}

// SetModelView writes the shared placement uniform.
func (e *ImageElement) SetModelView(queue hal.Queue, m quill.Mat4) {
	queue.WriteBuffer(e.modelViewBuf, 0, mat4Bytes(m))
}

// SetProjection writes the projection uniform.
func (e *ImageElement) SetProjection(queue hal.Queue, m quill.Mat4) {
	queue.WriteBuffer(e.projBuf, 0, mat4Bytes(m))
}

// SetBounds places the quad at origin (x, y) with extent (w, h), a
// convenience over SetModelView.
func (e *ImageElement) SetBounds(queue hal.Queue, x, y, w, h float64) {
	e.SetModelView(queue, quill.Mat4FromMatrix(quill.RectTransform(x, y, w, h)))
}

// RecordDraws records the element into an open render pass: one quad,
// six vertices.
func (p *ImagePipeline) RecordDraws(rp hal.RenderPassEncoder, e *ImageElement) {
	if e == nil || e.bindGroup == nil {
		return
	}
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, e.bindGroup, nil)
	rp.Draw(6, 1, 0, 0)
}

// Destroy releases the element's GPU resources in reverse creation
// order.
func (e *ImageElement) Destroy(device hal.Device) {
	if e.bindGroup != nil {
		device.DestroyBindGroup(e.bindGroup)
		e.bindGroup = nil
	}
	if e.sampler != nil {
		device.DestroySampler(e.sampler)
		e.sampler = nil
	}
	if e.view != nil {
		device.DestroyTextureView(e.view)
		e.view = nil
	}
	if e.texture != nil {
		device.DestroyTexture(e.texture)
		e.texture = nil
	}
	for _, buf := range []*hal.Buffer{&e.projBuf, &e.modelViewBuf} {
		if *buf != nil {
			device.DestroyBuffer(*buf)
			*buf = nil
		}
	}
}
