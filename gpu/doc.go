// Package gpu executes the quill rendering core on a WebGPU device.
//
// It owns the four render pipelines (instanced rectangles, axis-aligned
// rectangles, glyphs, textured images), their WGSL shader modules, and the bit-exact
// instance and uniform buffer layouts the shaders consume. Device and
// queue creation, surface management, and frame scheduling belong to the
// host; the package only records draws into render passes the host
// opens.
package gpu
