// Package fields turns classified layout blocks and flat page lines into
// line items, cross-validated financials, parties, bank details and
// labelled invoice metadata.
//
// Nothing here fails on missing data: fields that cannot be read with
// confidence come back nil. The only error is an empty page.
package fields

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

const DefaultBlockConfidence = 0.8

// Config holds the engine's thresholds. Zero values fall back to defaults.
type Config struct {
	BlockConfidence float64
	AmountTolerance float64
	VendorScanLines int
	BuyerScanLines  int
	MaxLabelValue   int
	DefaultCurrency string
}

// ConfigFrom maps the application configuration onto the engine.
func ConfigFrom(c common.ExtractionConfig) Config {
	return Config{
		BlockConfidence: c.BlockConfidence,
		AmountTolerance: c.AmountTolerance,
		VendorScanLines: c.VendorScanLines,
		BuyerScanLines:  c.BuyerScanLines,
		MaxLabelValue:   c.MaxLabelValue,
		DefaultCurrency: c.DefaultCurrency,
	}
}

// Page is one page ready for field extraction.
type Page struct {
	File   string
	Number int
	Text   string
	Lines  []entity.Line        // all lines in reading order
	Blocks []entity.LayoutBlock // classified blocks
}

// Fields is everything the engine could read from a page.
type Fields struct {
	Invoice    entity.InvoiceMeta
	Vendor     entity.Party
	Buyer      entity.Party
	Bank       entity.BankDetails
	Items      []entity.LineItem
	Financials entity.Financials
}

// Annotator is an optional named-entity hook. When the vocabulary finds no
// vendor, the first organization it reports that passes the name filter is
// used instead.
type Annotator interface {
	Organizations(text string) []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithVocabulary replaces the keyword tables.
func WithVocabulary(v Vocabulary) Option {
	return func(e *Engine) { e.vocab = v }
}

// WithAnnotator installs an entity annotator.
func WithAnnotator(a Annotator) Option {
	return func(e *Engine) { e.annotator = a }
}

// Engine is the field extraction engine. It holds no per-page state.
type Engine struct {
	cfg       Config
	vocab     Vocabulary
	annotator Annotator
	logger    *slog.Logger

	items      Chain
	financials Chain
	bank       Chain
}

func NewEngine(cfg Config, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BlockConfidence <= 0 {
		cfg.BlockConfidence = DefaultBlockConfidence
	}
	if cfg.AmountTolerance <= 0 {
		cfg.AmountTolerance = DefaultAmountTolerance
	}
	if cfg.VendorScanLines <= 0 {
		cfg.VendorScanLines = DefaultVendorScanLines
	}
	if cfg.BuyerScanLines <= 0 {
		cfg.BuyerScanLines = DefaultBuyerScanLines
	}
	if cfg.MaxLabelValue <= 0 {
		cfg.MaxLabelValue = DefaultMaxLabelValue
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "INR"
	}
	e := &Engine{cfg: cfg, vocab: DefaultVocabulary(), logger: logger}
	for _, o := range opts {
		o(e)
	}

	v := e.vocab
	e.items = Chain{
		ClassifiedBlocks(cfg.BlockConfidence, constants.BlockItemTable),
		KeywordLines(nil, v.itemReject()),
	}
	e.financials = Chain{
		ClassifiedBlocks(cfg.BlockConfidence, constants.BlockTotals, constants.BlockSummary),
		KeywordLines(v.Totals, v.bankOrDeclaration()),
	}
	e.bank = Chain{
		ClassifiedBlocks(cfg.BlockConfidence, constants.BlockBank),
		AllLines(),
	}
	return e
}

// Extract reads every field from the page. An empty page is an EmptyTextError.
func (e *Engine) Extract(page Page) (Fields, error) {
	lines := pageLines(page)
	if len(lines) == 0 {
		return Fields{}, common.NewEmptyTextError(page.File, page.Number)
	}
	in := Input{Blocks: page.Blocks, Lines: lines}

	f := Fields{
		Invoice:    e.vocab.invoiceMeta(lines, e.cfg.MaxLabelValue, e.cfg.DefaultCurrency),
		Items:      e.extractItems(in),
		Financials: e.extractFinancials(in),
	}
	f.Vendor, f.Buyer = e.vocab.parties(lines, e.cfg.VendorScanLines, e.cfg.BuyerScanLines, e.cfg.MaxLabelValue)
	if f.Vendor.Name == nil && e.annotator != nil {
		for _, org := range e.annotator.Organizations(strings.Join(lines, "\n")) {
			if e.vocab.validName(org) {
				f.Vendor.Name = entity.Str(cleanName(org))
				break
			}
		}
	}
	bankLines, _ := e.bank.Select(in)
	f.Bank = e.vocab.bankDetails(bankLines, e.cfg.MaxLabelValue)

	e.logger.Debug("fields.extracted",
		"file", page.File,
		"page", page.Number,
		"items", len(f.Items),
		"cgst_valid", f.Financials.CGST.Valid(),
		"sgst_valid", f.Financials.SGST.Valid(),
		"vendor", entity.Deref(f.Vendor.Name),
	)
	return f, nil
}

// ExtractItems runs the line item machine over the preferred item source.
func (e *Engine) ExtractItems(blocks []entity.LayoutBlock, lines []string) []entity.LineItem {
	return e.extractItems(Input{Blocks: blocks, Lines: lines})
}

// ExtractFinancials reads totals and tax entries from the preferred source.
func (e *Engine) ExtractFinancials(blocks []entity.LayoutBlock, lines []string) entity.Financials {
	return e.extractFinancials(Input{Blocks: blocks, Lines: lines})
}

func (e *Engine) extractItems(in Input) []entity.LineItem {
	lines, source := e.items.Select(in)
	items := parseItems(e.vocab, lines)
	e.logger.Debug("fields.items", "source", source, "lines", len(lines), "items", len(items))
	return items
}

func (e *Engine) extractFinancials(in Input) entity.Financials {
	lines, source := e.financials.Select(in)
	e.logger.Debug("fields.financials", "source", source, "lines", len(lines))
	return parseFinancials(lines, e.cfg.AmountTolerance)
}

func pageLines(page Page) []string {
	var out []string
	if len(page.Lines) > 0 {
		for _, l := range page.Lines {
			if t := strings.TrimSpace(l.Text); t != "" {
				out = append(out, t)
			}
		}
		return out
	}
	for _, l := range strings.Split(page.Text, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			out = append(out, t)
		}
	}
	return out
}
