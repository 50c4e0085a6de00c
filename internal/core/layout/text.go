package layout

import (
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// Synthetic geometry for text-only pages, in units of YTolerance: each line
// is 0.8 tall on a pitch of 1, a blank line pushes the next one down by 3
// more. Consecutive lines merge, blank-line separated paragraphs do not.
const (
	flatLineHeight = 0.8
	flatBlankSkip  = 3.0
)

// LinesFromText is the fallback for pages that come without word positions:
// one line per non-blank text line, in reading order.
func (e *Extractor) LinesFromText(text string) []entity.Line {
	pitch := e.cfg.YTolerance
	var lines []entity.Line
	y := 0.0
	for _, raw := range strings.Split(text, "\n") {
		t := strings.Join(strings.Fields(raw), " ")
		if t == "" {
			y += flatBlankSkip * pitch
			continue
		}
		top := y
		bottom := y + flatLineHeight*pitch
		lines = append(lines, entity.Line{
			Text:   t,
			X0:     0,
			X1:     float64(len(t)),
			Top:    top,
			Bottom: bottom,
			Words: []entity.PositionedWord{{
				Text: t, X0: 0, X1: float64(len(t)), Top: top, Bottom: bottom,
			}},
		})
		y += pitch
	}
	return lines
}

// BlocksFromText segments a text-only page into paragraph blocks.
func (e *Extractor) BlocksFromText(text string) []entity.LayoutBlock {
	_, kept := e.PageFromText(text)
	return kept
}

// PageFromText is Page for text-only pages.
func (e *Extractor) PageFromText(text string) ([]entity.Line, []entity.LayoutBlock) {
	lines := e.LinesFromText(text)
	kept, _ := e.mergeLines(lines)
	return lines, kept
}

// LineTexts flattens lines into their text.
func LineTexts(lines []entity.Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}
