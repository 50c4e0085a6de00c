package fields

import (
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// Input is what a LineSource selects lines from.
type Input struct {
	Blocks []entity.LayoutBlock // classified blocks
	Lines  []string             // every line of the page, in reading order
}

// LineSource picks the lines an extractor should look at. ok is false when
// the source has nothing to offer and the next source should be tried.
type LineSource interface {
	Name() string
	Select(in Input) (lines []string, ok bool)
}

// Chain tries its sources in order and returns the first non-empty selection.
type Chain []LineSource

// Select returns the winning source's lines and its name. Both are empty
// when no source produced anything.
func (c Chain) Select(in Input) ([]string, string) {
	for _, s := range c {
		if lines, ok := s.Select(in); ok && len(lines) > 0 {
			return lines, s.Name()
		}
	}
	return nil, ""
}

type blockSource struct {
	minConfidence float64
	types         []constants.BlockType
}

// ClassifiedBlocks selects the lines of blocks labelled with one of types at
// or above minConfidence.
func ClassifiedBlocks(minConfidence float64, types ...constants.BlockType) LineSource {
	return blockSource{minConfidence: minConfidence, types: types}
}

func (s blockSource) Name() string { return "blocks" }

func (s blockSource) Select(in Input) ([]string, bool) {
	var out []string
	for _, b := range in.Blocks {
		if !b.Classified() || *b.Confidence < s.minConfidence {
			continue
		}
		for _, t := range s.types {
			if b.Type == t {
				out = append(out, b.LineTexts()...)
				break
			}
		}
	}
	return out, len(out) > 0
}

type keywordSource struct {
	include []string
	exclude []string
}

// KeywordLines selects flat lines. With a non-empty include list a line
// must contain one of its keywords; a line containing an exclude keyword is
// always dropped.
func KeywordLines(include, exclude []string) LineSource {
	return keywordSource{include: include, exclude: exclude}
}

func (s keywordSource) Name() string { return "lines" }

func (s keywordSource) Select(in Input) ([]string, bool) {
	var out []string
	for _, l := range in.Lines {
		u := strings.ToUpper(l)
		if len(s.include) > 0 && !containsAny(u, s.include) {
			continue
		}
		if containsAny(u, s.exclude) {
			continue
		}
		out = append(out, l)
	}
	return out, len(out) > 0
}

// AllLines selects every line of the page.
func AllLines() LineSource { return keywordSource{} }

func containsAny(upper string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(upper, k) {
			return true
		}
	}
	return false
}
