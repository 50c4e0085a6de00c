// Package classify labels layout blocks with a semantic type and a confidence.
package classify

import (
	"regexp"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

const (
	UnknownConfidence = 0.3

	// DefaultVendorTopLimit is the page top band, in points, where a vendor
	// header is expected.
	DefaultVendorTopLimit = 200.0
)

var decimalAmount = regexp.MustCompile(`\d+\.\d{2}`)

// Rule is one entry of the decision list.
type Rule struct {
	Name       string
	Type       constants.BlockType
	Confidence float64
	Match      func(b entity.LayoutBlock, upper string) bool
}

// Classifier evaluates its rules top to bottom; the first match wins. A block
// no rule matches is UNKNOWN with UnknownConfidence.
type Classifier struct {
	rules []Rule
}

// NewClassifier builds a classifier over the given rules, or DefaultRules
// when none are given.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules(DefaultVocabulary(), DefaultVendorTopLimit)
	}
	rs := make([]Rule, len(rules))
	copy(rs, rules)
	return &Classifier{rules: rs}
}

// Rules returns a copy of the decision list.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify returns the type and confidence for b.
func (c *Classifier) Classify(b entity.LayoutBlock) (constants.BlockType, float64) {
	upper := b.UpperText()
	for _, r := range c.rules {
		if r.Match(b, upper) {
			return r.Type, r.Confidence
		}
	}
	return constants.BlockUnknown, UnknownConfidence
}

// ClassifyAll returns labelled copies of blocks; the input is left untouched.
func (c *Classifier) ClassifyAll(blocks []entity.LayoutBlock) []entity.LayoutBlock {
	out := make([]entity.LayoutBlock, len(blocks))
	for i, b := range blocks {
		t, conf := c.Classify(b)
		out[i] = b.WithClassification(t, conf)
	}
	return out
}

// DefaultRules is the decision list in priority order. Keyword signals come
// before the structural table test, which comes before position.
func DefaultRules(v Vocabulary, vendorTopLimit float64) []Rule {
	keyword := func(t constants.BlockType) func(entity.LayoutBlock, string) bool {
		return func(_ entity.LayoutBlock, upper string) bool { return v.Has(t, upper) }
	}
	return []Rule{
		{Name: "declaration", Type: constants.BlockDeclaration, Confidence: 0.95, Match: keyword(constants.BlockDeclaration)},
		{Name: "bank", Type: constants.BlockBank, Confidence: 0.95, Match: keyword(constants.BlockBank)},
		{Name: "item-table", Type: constants.BlockItemTable, Confidence: 0.9, Match: func(b entity.LayoutBlock, _ string) bool {
			return LooksLikeItemTable(b)
		}},
		{Name: "totals", Type: constants.BlockTotals, Confidence: 0.9, Match: keyword(constants.BlockTotals)},
		{Name: "invoice-meta", Type: constants.BlockInvoiceMeta, Confidence: 0.85, Match: keyword(constants.BlockInvoiceMeta)},
		{Name: "vendor", Type: constants.BlockVendor, Confidence: 0.7, Match: func(b entity.LayoutBlock, upper string) bool {
			return b.Top < vendorTopLimit && v.Has(constants.BlockVendor, upper)
		}},
		{Name: "buyer", Type: constants.BlockBuyer, Confidence: 0.8, Match: keyword(constants.BlockBuyer)},
	}
}

// LooksLikeItemTable holds for blocks of at least 3 lines where 2 or more
// lines carry a decimal amount.
func LooksLikeItemTable(b entity.LayoutBlock) bool {
	if len(b.Lines) < 3 {
		return false
	}
	n := 0
	for _, l := range b.Lines {
		if decimalAmount.MatchString(l.Text) {
			n++
		}
	}
	return n >= 2
}
