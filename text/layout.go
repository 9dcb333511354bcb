package text

import (
	"golang.org/x/text/width"

	"github.com/gogpu/quill"
)

// Layout turns a string into glyph instances for the text pipeline, one
// per drawable rune. Columns advance left to right, '\n' starts the
// next row, '\r' returns to column zero of the current row, and runes
// outside the font's present range are skipped without advancing. East
// Asian wide and fullwidth runes advance two columns.
//
// Instance position offsets are in glyph cells: one row is one unit of
// height, one column is GlyphRelativeWidth units. Scaling to a font
// size in world units is the model-view transform's job.
func Layout(f *Font, s string) []quill.GlyphInstance {
	instances := make([]quill.GlyphInstance, 0, len(s))
	relWidth := f.GlyphRelativeWidth()

	var row, column int
	for _, r := range s {
		switch r {
		case '\n':
			column = 0
			row++
			continue
		case '\r':
			column = 0
			continue
		}
		bounds, ok := f.UVBoundsForRune(r)
		if !ok {
			continue
		}
		instances = append(instances, quill.GlyphInstance{
			PositionOffset: quill.Point{
				X: float64(column) * relWidth,
				Y: float64(row),
			},
			UVOffset: bounds.Origin,
		})
		column += runeColumns(r)
	}
	return instances
}

// Measure returns the column and row extent of a string laid out with
// this font: the widest row in columns and the number of rows.
func Measure(s string) (columns, rows int) {
	rows = 1
	var cur int
	for _, r := range s {
		switch r {
		case '\n':
			rows++
			cur = 0
		case '\r':
			cur = 0
		default:
			cur += runeColumns(r)
			if cur > columns {
				columns = cur
			}
		}
	}
	return columns, rows
}

// runeColumns returns how many grid columns a rune occupies.
func runeColumns(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}
