// Package quill is the quad and glyph rendering core of a GPU-accelerated
// 2D drawing layer for GUI toolkits.
//
// The core turns small per-draw instances into rasterized pixels through a
// vertex-then-fragment pipeline with four variants:
//
//   - Transformed rectangles: a unit quad expanded through a per-instance
//     2D affine model-view transform, filled and outlined per pixel using
//     quad-local coordinates.
//   - Axis-aligned rectangles: the same fill/border decision driven by a
//     single shared transform and per-draw uniform colors and widths.
//   - Text glyphs: pre-shaped quads sampling a coverage atlas, blending
//     foreground and background color by the sampled alpha.
//   - Images: a single shared-transform quad textured by an RGBA image,
//     composited source-over.
//
// The per-pixel contract is implemented twice: as WGSL shaders executed
// through the gpu package, and as an equivalent software rasterizer
// (Renderer) used for testing and CPU fallback. Both consume the instance
// and uniform layouts defined in this package.
//
// Window and surface setup, buffer upload scheduling, font rasterization
// into the atlas, and the scene graph that decides what to draw are host
// responsibilities; quill only defines the interface those collaborators
// must honor and the per-pixel algorithm itself.
package quill
