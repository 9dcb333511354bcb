package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// Provider errors.
var (
	// ErrNilProvider is returned when a nil DeviceProvider is passed.
	ErrNilProvider = errors.New("gpu: nil DeviceProvider")

	// ErrNoHALAccess is returned when a provider does not expose HAL
	// device and queue handles.
	ErrNoHALAccess = errors.New("gpu: provider does not expose HAL types")
)

// halFromProvider extracts the hal.Device and hal.Queue from a device
// provider. The provider must implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func halFromProvider(provider gpucontext.DeviceProvider) (hal.Device, hal.Queue, error) {
	if provider == nil {
		return nil, nil, ErrNilProvider
	}
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, ErrNoHALAccess
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALAccess)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALAccess)
	}
	return device, queue, nil
}

// Pipelines bundles the four render pipelines over one shared device.
// The device and queue come from the windowing layer's device provider;
// Pipelines does not own them.
type Pipelines struct {
	InstancedRect *InstancedRectPipeline
	BorderedRect  *BorderedRectPipeline
	Text          *TextPipeline
	Image         *ImagePipeline
}

// NewPipelines creates the four pipelines over a shared device
// provider. GPU objects are created lazily when each pipeline first
// draws.
func NewPipelines(provider gpucontext.DeviceProvider, config *PipelineConfig) (*Pipelines, error) {
	device, queue, err := halFromProvider(provider)
	if err != nil {
		return nil, err
	}
	return &Pipelines{
		InstancedRect: NewInstancedRectPipeline(device, queue, config),
		BorderedRect:  NewBorderedRectPipeline(device, queue, config),
		Text:          NewTextPipeline(device, queue, config),
		Image:         NewImagePipeline(device, queue, config),
	}, nil
}

// Destroy releases all pipeline resources. The shared device and queue
// stay with their provider.
func (p *Pipelines) Destroy() {
	if p.Image != nil {
		p.Image.Destroy()
		p.Image = nil
	}
	if p.Text != nil {
		p.Text.Destroy()
		p.Text = nil
	}
	if p.BorderedRect != nil {
		p.BorderedRect.Destroy()
		p.BorderedRect = nil
	}
	if p.InstancedRect != nil {
		p.InstancedRect.Destroy()
		p.InstancedRect = nil
	}
}
