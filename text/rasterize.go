package text

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/quill"
)

// Rasterization errors.
var (
	// ErrNilFace is returned when no font face is supplied.
	ErrNilFace = errors.New("text: nil font face")

	// ErrBadRange is returned for an empty or out-of-range rune range.
	ErrBadRange = errors.New("text: bad rune range")
)

// BuildAtlas rasterizes the rune range [first, last) of a monospace
// face into a coverage atlas grid with glyphsPerLine cells per row. The
// cell size comes from the face metrics: the advance of first's glyph
// for the width, ascent plus descent for the height. Glyphs wider than
// the cell bleed into their neighbors, so the face should be monospace.
//
// The grid font model addresses cells by byte value, so the range must
// fit in [0, 255].
func BuildAtlas(face font.Face, first, last rune, glyphsPerLine int) (*quill.Atlas, FontMeta, error) {
	if face == nil {
		return nil, FontMeta{}, ErrNilFace
	}
	if first < 0 || last > 255 || last <= first {
		return nil, FontMeta{}, fmt.Errorf("%w: [%d, %d)", ErrBadRange, first, last)
	}
	if glyphsPerLine <= 0 {
		return nil, FontMeta{}, fmt.Errorf("%w: %d glyphs per line", ErrBadRange, glyphsPerLine)
	}

	metrics := face.Metrics()
	glyphHeight := (metrics.Ascent + metrics.Descent).Ceil()

	advance, ok := face.GlyphAdvance(first)
	if !ok || advance <= 0 {
		return nil, FontMeta{}, fmt.Errorf("text: face has no glyph for %q", first)
	}
	glyphWidth := advance.Ceil()

	n := int(last - first)
	lines := (n + glyphsPerLine - 1) / glyphsPerLine
	atlasWidth := glyphsPerLine * glyphWidth
	atlasHeight := lines * glyphHeight

	mask := image.NewAlpha(image.Rect(0, 0, atlasWidth, atlasHeight))
	drawer := &font.Drawer{
		Dst:  mask,
		Src:  image.White,
		Face: face,
	}
	for i := 0; i < n; i++ {
		r := first + rune(i)
		col := i % glyphsPerLine
		row := i / glyphsPerLine
		drawer.Dot = fixed.P(col*glyphWidth, row*glyphHeight+metrics.Ascent.Ceil())
		drawer.DrawString(string(r))
	}

	meta := FontMeta{
		AtlasWidth:    uint32(atlasWidth),
		AtlasHeight:   uint32(atlasHeight),
		GlyphWidth:    uint32(glyphWidth),
		GlyphHeight:   uint32(glyphHeight),
		PresentStart:  uint8(first),
		PresentEnd:    uint8(last),
		GlyphsPerLine: uint32(glyphsPerLine),
	}
	return quill.AtlasFromAlpha(mask), meta, nil
}

// BuildFont rasterizes a face into an atlas grid and wraps it in a
// Font. Convenience over BuildAtlas + NewFont.
func BuildFont(face font.Face, first, last rune, glyphsPerLine int) (*Font, error) {
	atlas, meta, err := BuildAtlas(face, first, last, glyphsPerLine)
	if err != nil {
		return nil, err
	}
	return NewFont(meta, atlas)
}
