package entity

import (
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

// PositionedWord is a recognized token with its bounding box on a page.
// Coordinates grow rightwards (x) and downwards (top/bottom).
type PositionedWord struct {
	Text   string  `json:"text"`
	X0     float64 `json:"x0"`
	X1     float64 `json:"x1"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Line is a visual line: words sorted by X0 and joined with single spaces.
type Line struct {
	Text   string           `json:"text"`
	X0     float64          `json:"x0"`
	X1     float64          `json:"x1"`
	Top    float64          `json:"top"`
	Bottom float64          `json:"bottom"`
	Words  []PositionedWord `json:"words,omitempty"`
}

// LayoutBlock is a geometrically contiguous group of lines. Type is empty and
// Confidence nil until the block has been classified.
type LayoutBlock struct {
	ID         int                 `json:"id"`
	Text       string              `json:"text"`
	X0         float64             `json:"x0"`
	X1         float64             `json:"x1"`
	Top        float64             `json:"top"`
	Bottom     float64             `json:"bottom"`
	Lines      []Line              `json:"lines"`
	Type       constants.BlockType `json:"block_type,omitempty"`
	Confidence *float64            `json:"confidence"`
}

// Classified reports whether a classifier has labelled the block.
func (b LayoutBlock) Classified() bool {
	return b.Type != "" && b.Confidence != nil
}

// LineTexts returns the text of each line in order.
func (b LayoutBlock) LineTexts() []string {
	out := make([]string, len(b.Lines))
	for i, l := range b.Lines {
		out[i] = l.Text
	}
	return out
}

// WithClassification returns a copy of b carrying the given label.
func (b LayoutBlock) WithClassification(t constants.BlockType, confidence float64) LayoutBlock {
	c := confidence
	b.Type = t
	b.Confidence = &c
	return b
}

// UpperText is the block text upper-cased, the form every vocabulary match uses.
func (b LayoutBlock) UpperText() string {
	return strings.ToUpper(b.Text)
}
