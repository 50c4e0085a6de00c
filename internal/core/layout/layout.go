// Package layout groups positioned words into visual lines and lines into
// geometric blocks. It knows nothing about what the blocks mean.
package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

const (
	DefaultYTolerance = 6.0
	DefaultMinLines   = 2
)

// Config tunes the segmentation. Zero values fall back to the defaults.
type Config struct {
	YTolerance float64 // max |top - line mean top| for a word to join a line
	MinLines   int     // blocks with fewer lines are dropped as noise
}

// Extractor is the layout block extractor. It is stateless and safe for
// concurrent use.
type Extractor struct {
	cfg Config
}

func NewExtractor(cfg Config) *Extractor {
	if cfg.YTolerance <= 0 {
		cfg.YTolerance = DefaultYTolerance
	}
	if cfg.MinLines <= 0 {
		cfg.MinLines = DefaultMinLines
	}
	return &Extractor{cfg: cfg}
}

// Config returns the effective configuration.
func (e *Extractor) Config() Config { return e.cfg }

// ExtractBlocks clusters words into lines and merges lines into blocks.
// Blocks with fewer than MinLines lines are silently discarded.
func (e *Extractor) ExtractBlocks(words []entity.PositionedWord) []entity.LayoutBlock {
	kept, _ := e.Segment(words)
	return kept
}

// Segment is ExtractBlocks that also returns the blocks dropped by the noise
// filter. Together kept and dropped hold every input word exactly once.
func (e *Extractor) Segment(words []entity.PositionedWord) (kept, dropped []entity.LayoutBlock) {
	return e.mergeLines(e.ClusterLines(words))
}

// Page returns the page's lines together with its kept blocks, for callers
// that need both without clustering twice.
func (e *Extractor) Page(words []entity.PositionedWord) ([]entity.Line, []entity.LayoutBlock) {
	lines := e.ClusterLines(words)
	kept, _ := e.mergeLines(lines)
	return lines, kept
}

// ClusterLines sorts words by top and sweeps them once: a word starts a new
// line when its top is further than YTolerance from the running mean top of
// the current line. The sweep is order sensitive.
func (e *Extractor) ClusterLines(words []entity.PositionedWord) []entity.Line {
	if len(words) == 0 {
		return nil
	}
	sorted := make([]entity.PositionedWord, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Top < sorted[j].Top })

	var lines []entity.Line
	var cur []entity.PositionedWord
	var meanTop float64
	for _, w := range sorted {
		if len(cur) > 0 && math.Abs(w.Top-meanTop) > e.cfg.YTolerance {
			lines = append(lines, buildLine(cur))
			cur = nil
		}
		cur = append(cur, w)
		meanTop += (w.Top - meanTop) / float64(len(cur))
	}
	if len(cur) > 0 {
		lines = append(lines, buildLine(cur))
	}
	return lines
}

// mergeLines folds consecutive lines into a block while the vertical gap to
// the block is at most 2*YTolerance and the horizontal spans overlap.
func (e *Extractor) mergeLines(lines []entity.Line) (kept, dropped []entity.LayoutBlock) {
	maxGap := 2 * e.cfg.YTolerance
	var cur []entity.Line
	var box bounds

	closeBlock := func() {
		if len(cur) == 0 {
			return
		}
		if len(cur) >= e.cfg.MinLines {
			kept = append(kept, buildBlock(len(kept), cur))
		} else {
			dropped = append(dropped, buildBlock(-1, cur))
		}
		cur = nil
	}

	for _, ln := range lines {
		if len(cur) > 0 {
			gap := ln.Top - box.bottom
			overlap := math.Min(box.x1, ln.X1) - math.Max(box.x0, ln.X0)
			if gap <= maxGap && overlap >= 0 {
				cur = append(cur, ln)
				box = box.union(ln.X0, ln.X1, ln.Top, ln.Bottom)
				continue
			}
			closeBlock()
		}
		cur = []entity.Line{ln}
		box = bounds{x0: ln.X0, x1: ln.X1, top: ln.Top, bottom: ln.Bottom}
	}
	closeBlock()
	return kept, dropped
}

type bounds struct {
	x0, x1, top, bottom float64
}

func (b bounds) union(x0, x1, top, bottom float64) bounds {
	return bounds{
		x0:     math.Min(b.x0, x0),
		x1:     math.Max(b.x1, x1),
		top:    math.Min(b.top, top),
		bottom: math.Max(b.bottom, bottom),
	}
}

func buildLine(words []entity.PositionedWord) entity.Line {
	ws := make([]entity.PositionedWord, len(words))
	copy(ws, words)
	sort.SliceStable(ws, func(i, j int) bool { return ws[i].X0 < ws[j].X0 })

	texts := make([]string, len(ws))
	b := bounds{x0: ws[0].X0, x1: ws[0].X1, top: ws[0].Top, bottom: ws[0].Bottom}
	for i, w := range ws {
		texts[i] = w.Text
		b = b.union(w.X0, w.X1, w.Top, w.Bottom)
	}
	return entity.Line{
		Text:   strings.Join(texts, " "),
		X0:     b.x0,
		X1:     b.x1,
		Top:    b.top,
		Bottom: b.bottom,
		Words:  ws,
	}
}

func buildBlock(id int, lines []entity.Line) entity.LayoutBlock {
	ls := make([]entity.Line, len(lines))
	copy(ls, lines)

	texts := make([]string, len(ls))
	b := bounds{x0: ls[0].X0, x1: ls[0].X1, top: ls[0].Top, bottom: ls[0].Bottom}
	for i, l := range ls {
		texts[i] = l.Text
		b = b.union(l.X0, l.X1, l.Top, l.Bottom)
	}
	return entity.LayoutBlock{
		ID:     id,
		Text:   strings.Join(texts, "\n"),
		X0:     b.x0,
		X1:     b.x1,
		Top:    b.top,
		Bottom: b.bottom,
		Lines:  ls,
	}
}
