package gpu

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/gogpu/naga"
)

// Embedded WGSL shader sources, compiled into the binary at build time.

//go:embed shaders/instanced_rect.wgsl
var instancedRectShaderSource string

//go:embed shaders/rect.wgsl
var rectShaderSource string

//go:embed shaders/text.wgsl
var textShaderSource string

//go:embed shaders/image.wgsl
var imageShaderSource string

// ErrEmptyShaderSource is returned when an embedded shader source is
// missing, which indicates a build problem.
var ErrEmptyShaderSource = errors.New("gpu: embedded shader source is empty")

// InstancedRectShaderSource returns the WGSL source of the transformed
// rectangle pipeline.
func InstancedRectShaderSource() string {
	return instancedRectShaderSource
}

// RectShaderSource returns the WGSL source of the axis-aligned rectangle
// pipeline.
func RectShaderSource() string {
	return rectShaderSource
}

// TextShaderSource returns the WGSL source of the glyph pipeline.
func TextShaderSource() string {
	return textShaderSource
}

// ImageShaderSource returns the WGSL source of the textured quad
// pipeline.
func ImageShaderSource() string {
	return imageShaderSource
}

// CompileToSPIRV compiles WGSL source to a SPIR-V word slice. Backends
// that consume SPIR-V instead of WGSL use this; it also serves as a
// validity check for the embedded sources.
func CompileToSPIRV(wgslSource string) ([]uint32, error) {
	if wgslSource == "" {
		return nil, ErrEmptyShaderSource
	}
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
