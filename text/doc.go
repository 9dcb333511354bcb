// Package text implements a fixed-grid glyph atlas font for the quill
// rendering core. A Font describes a monospace atlas laid out as a grid
// of equally sized glyph cells covering a contiguous rune range, and
// turns strings into per-glyph instances for the text pipeline. The
// atlas can be loaded from a JSON descriptor plus image file, or built
// at runtime from any golang.org/x/image/font.Face.
//
// The model has no shaping: one rune maps to one grid cell, columns
// advance left to right, and East Asian wide runes occupy two columns.
package text
