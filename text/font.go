package text

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/gogpu/quill"
)

// Font errors.
var (
	// ErrNilAtlas is returned when a font is created without atlas data.
	ErrNilAtlas = errors.New("text: nil atlas")

	// ErrBadMeta is returned when font metadata is inconsistent.
	ErrBadMeta = errors.New("text: bad font metadata")

	// ErrAtlasMismatch is returned when the atlas dimensions disagree
	// with the metadata.
	ErrAtlasMismatch = errors.New("text: atlas size does not match metadata")
)

// FontMeta is the JSON descriptor of a grid font atlas. Path points to
// the atlas image file, relative to the descriptor's directory. The
// present range [PresentStart, PresentEnd) names the contiguous runes
// the grid covers, laid out row by row with GlyphsPerLine cells per
// row.
type FontMeta struct {
	Path          string `json:"path"`
	AtlasWidth    uint32 `json:"atlas_width"`
	AtlasHeight   uint32 `json:"atlas_height"`
	GlyphWidth    uint32 `json:"glyph_width"`
	GlyphHeight   uint32 `json:"glyph_height"`
	PresentStart  uint8  `json:"present_start"`
	PresentEnd    uint8  `json:"present_end"`
	GlyphsPerLine uint32 `json:"glyphs_per_line"`
}

func (m FontMeta) validate() error {
	if m.GlyphWidth == 0 || m.GlyphHeight == 0 {
		return fmt.Errorf("%w: zero glyph size", ErrBadMeta)
	}
	if m.GlyphsPerLine == 0 {
		return fmt.Errorf("%w: zero glyphs per line", ErrBadMeta)
	}
	if m.PresentEnd <= m.PresentStart {
		return fmt.Errorf("%w: empty present range [%d, %d)", ErrBadMeta, m.PresentStart, m.PresentEnd)
	}
	return nil
}

// UVBounds is a glyph's atlas sub-rectangle in normalized UV space.
type UVBounds struct {
	Origin quill.Point
	Width  float64
	Height float64
}

// Font is a fixed-grid glyph atlas: equally sized glyph cells covering
// a contiguous rune range, addressed by index into the grid. Immutable
// after creation.
type Font struct {
	presentStart  uint8
	presentEnd    uint8
	glyphsPerLine uint32

	glyphWidth  uint32
	glyphHeight uint32

	glyphUVWidth  float64
	glyphUVHeight float64

	atlas *quill.Atlas
}

// NewFont creates a font over an existing coverage atlas. The atlas
// dimensions must match the metadata.
func NewFont(meta FontMeta, atlas *quill.Atlas) (*Font, error) {
	if atlas == nil {
		return nil, ErrNilAtlas
	}
	if err := meta.validate(); err != nil {
		return nil, err
	}
	if atlas.Width != int(meta.AtlasWidth) || atlas.Height != int(meta.AtlasHeight) {
		return nil, fmt.Errorf("%w: atlas %dx%d, metadata %dx%d",
			ErrAtlasMismatch, atlas.Width, atlas.Height, meta.AtlasWidth, meta.AtlasHeight)
	}
	return &Font{
		presentStart:  meta.PresentStart,
		presentEnd:    meta.PresentEnd,
		glyphsPerLine: meta.GlyphsPerLine,
		glyphWidth:    meta.GlyphWidth,
		glyphHeight:   meta.GlyphHeight,
		glyphUVWidth:  float64(meta.GlyphWidth) / float64(meta.AtlasWidth),
		glyphUVHeight: float64(meta.GlyphHeight) / float64(meta.AtlasHeight),
		atlas:         atlas,
	}, nil
}

// LoadFont reads a JSON font descriptor and the atlas image it points
// to. The image's alpha channel becomes the coverage atlas.
func LoadFont(metaPath string) (*Font, error) {
	raw, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, fmt.Errorf("text: read font metadata: %w", err)
	}
	var meta FontMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("text: parse font metadata: %w", err)
	}

	imgPath := filepath.Join(filepath.Dir(metaPath), meta.Path)
	f, err := os.Open(imgPath)
	if err != nil {
		return nil, fmt.Errorf("text: open atlas image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("text: decode atlas image: %w", err)
	}

	return NewFont(meta, atlasFromImage(img))
}

// atlasFromImage extracts the alpha channel of an image as coverage.
func atlasFromImage(img image.Image) *quill.Atlas {
	b := img.Bounds()
	a := &quill.Atlas{
		Width:  b.Dx(),
		Height: b.Dy(),
		Data:   make([]uint8, b.Dx()*b.Dy()),
	}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, alpha := img.At(x, y).RGBA()
			a.Data[i] = uint8(alpha >> 8)
			i++
		}
	}
	return a
}

// Atlas returns the font's coverage atlas.
func (f *Font) Atlas() *quill.Atlas {
	return f.atlas
}

// HasGlyph reports whether the grid has a cell for the rune.
func (f *Font) HasGlyph(r rune) bool {
	return r >= rune(f.presentStart) && r < rune(f.presentEnd)
}

// PresentRange returns the half-open rune range [first, last) the grid
// covers.
func (f *Font) PresentRange() (first, last rune) {
	return rune(f.presentStart), rune(f.presentEnd)
}

// UVBoundsForRune returns the rune's atlas sub-rectangle in UV space.
// ok is false for runes outside the present range.
func (f *Font) UVBoundsForRune(r rune) (bounds UVBounds, ok bool) {
	if !f.HasGlyph(r) {
		return UVBounds{}, false
	}
	i := uint32(r) - uint32(f.presentStart)
	return UVBounds{
		Origin: quill.Point{
			X: float64(i%f.glyphsPerLine) * f.glyphUVWidth,
			Y: float64(i/f.glyphsPerLine) * f.glyphUVHeight,
		},
		Width:  f.glyphUVWidth,
		Height: f.glyphUVHeight,
	}, true
}

// GlyphRelativeWidth is the glyph cell width when the cell height is 1.
// Text laid out with this font occupies GlyphRelativeWidth units per
// column and one unit per row in model space.
func (f *Font) GlyphRelativeWidth() float64 {
	return float64(f.glyphWidth) / float64(f.glyphHeight)
}

// GlyphSize returns the glyph cell size in atlas texels.
func (f *Font) GlyphSize() (width, height int) {
	return int(f.glyphWidth), int(f.glyphHeight)
}

// GlyphSizeUV returns the glyph cell size in normalized UV units.
func (f *Font) GlyphSizeUV() (width, height float64) {
	return f.glyphUVWidth, f.glyphUVHeight
}

// GlyphQuad returns the shared glyph quad: four corners with the cell's
// model-space extent in position and the cell's UV extent in texture
// coordinates, wound counter-clockwise from the top-left. Per-glyph
// instances translate it by their position and UV offsets. Index order
// is quill.GlyphQuadIndices.
func (f *Font) GlyphQuad() [4]quill.GlyphVertex {
	w := float32(f.GlyphRelativeWidth())
	u := float32(f.glyphUVWidth)
	v := float32(f.glyphUVHeight)
	return [4]quill.GlyphVertex{
		{Position: [2]float32{0, 0}, UV: [2]float32{0, 0}},
		{Position: [2]float32{w, 0}, UV: [2]float32{u, 0}},
		{Position: [2]float32{w, 1}, UV: [2]float32{u, v}},
		{Position: [2]float32{0, 1}, UV: [2]float32{0, v}},
	}
}
