package cursor

import (
	"errors"
	"strings"
)

// ErrInvalidStyle indicates a style whose metrics cannot produce a layout.
var ErrInvalidStyle = errors.New("cursor: style requires positive character advance and line height")

// Point is a pixel coordinate in the editor's visible coordinate space.
type Point struct {
	X float64
	Y float64
}

// TextStyle carries the layout properties a measurer needs. Pixel-accurate
// text layout depends on metrics only a rendering engine resolves; whatever
// renders the editor must mirror these values property by property, and the
// scroll offsets change continuously, so styles are rebuilt per measurement
// rather than cached.
type TextStyle struct {
	CharAdvance float64
	LineHeight  float64
	WrapWidth   float64
	ScrollX     float64
	ScrollY     float64
}

// Measurer resolves a character offset within styled text to a pixel
// position. A DOM-backed implementation uses the hidden mirror technique;
// GridMeasurer is the deterministic fixed-metrics implementation.
type Measurer interface {
	Measure(text string, style TextStyle, offset int) (Point, error)
}

// GridMeasurer lays text out on a fixed-advance grid reproducing pre-wrap
// plus break-word semantics: newlines hard-break, lines wrap at the last
// word boundary, and a word wider than the wrap width breaks mid-word.
type GridMeasurer struct{}

// Measure returns the position of the given rune offset. The offset is
// clamped into the text; scroll offsets shift the result into the visible
// coordinate space.
func (GridMeasurer) Measure(text string, style TextStyle, offset int) (Point, error) {
	if style.CharAdvance <= 0 || style.LineHeight <= 0 {
		return Point{}, ErrInvalidStyle
	}

	runes := []rune(text)
	if offset < 0 {
		offset = 0
	}
	if offset > len(runes) {
		offset = len(runes)
	}

	maxCols := 0
	if style.WrapWidth > 0 {
		maxCols = int(style.WrapWidth / style.CharAdvance)
	}

	line, col := layoutPrefix(runes[:offset], maxCols)
	return Point{
		X: float64(col)*style.CharAdvance - style.ScrollX,
		Y: float64(line)*style.LineHeight - style.ScrollY,
	}, nil
}

// layoutPrefix walks the runes and returns the (line, column) the next
// character would occupy. Like the mirror technique, it lays out only the
// prefix before the cursor, accepting the same truncation inaccuracy.
func layoutPrefix(runes []rune, maxCols int) (line, col int) {
	wordStart := -1 // column where the word being laid out began
	for _, r := range runes {
		if r == '\n' {
			line++
			col = 0
			wordStart = -1
			continue
		}
		if maxCols > 0 && col >= maxCols {
			switch {
			case r == ' ':
				line++
				col = 0
				wordStart = -1
				continue // the wrapped space collapses at the break
			case wordStart > 0:
				// Move the in-progress word down whole.
				wordLen := col - wordStart
				line++
				col = wordLen
				wordStart = 0
			default:
				// The word fills the line; break mid-word.
				line++
				col = 0
				wordStart = 0
			}
		}
		if r == ' ' {
			wordStart = -1
		} else if wordStart < 0 {
			wordStart = col
		}
		col++
	}
	return line, col
}

var mirrorReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\n", "<br/>",
	" ", "&nbsp;",
)

// MirrorText prepares raw note content for a markup-backed mirror element:
// markup-significant characters are escaped and whitespace is converted to
// its layout-preserving equivalent. DOM-backed measurers feed the result,
// followed by a zero-width marker node, into the hidden mirror.
func MirrorText(s string) string {
	return mirrorReplacer.Replace(s)
}
