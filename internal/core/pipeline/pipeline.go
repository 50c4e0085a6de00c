// Package pipeline runs a batch of documents through acquisition, layout,
// classification and field extraction.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/async"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/classify"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/fields"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/layout"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

const DefaultMinTextChars = 50

// Processor is the batch orchestrator. A failing document is recorded in
// the batch errors and the batch moves on.
type Processor struct {
	logger     *slog.Logger
	acquirer   extract.PageAcquirer
	layout     *layout.Extractor
	classifier *classify.Classifier
	engine     *fields.Engine

	minTextChars int
	workers      int
	timeout      time.Duration
	keepRawText  bool
	keepBlocks   bool

	now   func() time.Time
	newID func() uuid.UUID
}

type Option func(*Processor)

func WithLayout(l *layout.Extractor) Option { return func(p *Processor) { p.layout = l } }

func WithClassifier(c *classify.Classifier) Option { return func(p *Processor) { p.classifier = c } }

// WithMinTextChars sets the native text length below which a page is OCRed.
func WithMinTextChars(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.minTextChars = n
		}
	}
}

// WithWorkers processes up to n documents at once. Output order does not
// depend on n.
func WithWorkers(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithDocumentTimeout bounds the time spent on one document.
func WithDocumentTimeout(d time.Duration) Option {
	return func(p *Processor) { p.timeout = d }
}

// WithAudit controls whether records carry the raw text and layout blocks.
func WithAudit(rawText, blocks bool) Option {
	return func(p *Processor) {
		p.keepRawText = rawText
		p.keepBlocks = blocks
	}
}

// WithClock replaces the scan timestamp and batch id sources.
func WithClock(now func() time.Time, newID func() uuid.UUID) Option {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
		if newID != nil {
			p.newID = newID
		}
	}
}

func NewProcessor(logger *slog.Logger, acquirer extract.PageAcquirer, engine *fields.Engine, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if engine == nil {
		engine = fields.NewEngine(fields.Config{}, logger)
	}
	p := &Processor{
		logger:       logger,
		acquirer:     acquirer,
		layout:       layout.NewExtractor(layout.Config{}),
		classifier:   classify.NewClassifier(),
		engine:       engine,
		minTextChars: DefaultMinTextChars,
		workers:      1,
		keepRawText:  true,
		keepBlocks:   true,
		now:          time.Now,
		newID:        uuid.New,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

type documentResult struct {
	records []entity.InvoiceRecord
	err     error
}

// ProcessBatch processes docs in order and returns the assembled result.
// Records and errors follow the input order even when documents run
// concurrently.
func (p *Processor) ProcessBatch(ctx context.Context, docs []entity.Document) entity.BatchResult {
	start := time.Now()
	res := entity.BatchResult{
		BatchID:   p.newID(),
		ScannedAt: p.now().UTC(),
		Invoices:  []entity.InvoiceRecord{},
		Errors:    []entity.BatchError{},
	}
	ctx = common.WithBatchID(ctx, res.BatchID.String())
	p.logger.Info("pipeline.batch.start", "batch_id", res.BatchID, "documents", len(docs), "workers", p.workers)

	run := func(ctx context.Context, _ int, doc entity.Document) documentResult {
		recs, err := p.processDocument(ctx, res.BatchID, doc)
		return documentResult{records: recs, err: err}
	}

	var results []documentResult
	if p.workers <= 1 {
		results = make([]documentResult, len(docs))
		for i, doc := range docs {
			dctx, cancel := p.documentContext(ctx)
			results[i] = run(dctx, i, doc)
			cancel()
		}
	} else {
		q := async.NewQueue(p.logger, async.WithWorkers(p.workers), async.WithProcessTimeout(p.timeout))
		results = async.Map(ctx, q, docs, run)
	}

	for i, r := range results {
		if r.err != nil {
			res.Errors = append(res.Errors, entity.BatchError{File: docs[i].Name, Error: r.err.Error()})
			continue
		}
		res.Invoices = append(res.Invoices, r.records...)
	}
	res.InvoiceCount = len(res.Invoices)

	p.logger.Info("pipeline.batch.done",
		"batch_id", res.BatchID,
		"invoices", res.InvoiceCount,
		"errors", len(res.Errors),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res
}

func (p *Processor) documentContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout > 0 {
		return context.WithTimeout(ctx, p.timeout)
	}
	return context.WithCancel(ctx)
}

// processDocument returns the records of every page, or the first error.
// Records of a failing document are discarded with it.
func (p *Processor) processDocument(ctx context.Context, batchID uuid.UUID, doc entity.Document) ([]entity.InvoiceRecord, error) {
	name := doc.Name
	if name == "" {
		name = filepath.Base(doc.Path)
	}
	log := p.logger.With("batch_id", batchID, "file", name)

	if doc.IngestError != "" {
		log.Error("pipeline.document.failed", "stage", "ingest", "error", doc.IngestError)
		return nil, common.NewAcquisitionError(name, errors.New(doc.IngestError))
	}

	pages, err := p.acquirer.Pages(ctx, doc.Path)
	if err != nil {
		log.Error("pipeline.document.failed", "stage", "acquire", "error", err)
		return nil, common.NewAcquisitionError(name, err)
	}
	if len(pages) == 0 {
		log.Error("pipeline.document.failed", "stage", "acquire", "error", "no pages")
		return nil, common.NewEmptyTextError(name, 1)
	}

	records := make([]entity.InvoiceRecord, 0, len(pages))
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, common.NewAcquisitionError(name, err)
		}
		rec, err := p.processPage(ctx, log, batchID, doc, name, page)
		if err != nil {
			log.Error("pipeline.document.failed", "page", page.Number, "error", err)
			return nil, err
		}
		records = append(records, rec)
	}
	log.Info("pipeline.document.ok", "pages", len(records))
	return records, nil
}

// PageLayout is a page after acquisition, segmentation and classification.
type PageLayout struct {
	Number int                     `json:"page"`
	Status constants.PageStatus    `json:"status"`
	Method string                  `json:"method"`
	Text   string                  `json:"-"`
	Words  []entity.PositionedWord `json:"-"`
	Lines  []entity.Line           `json:"-"`
	Blocks []entity.LayoutBlock    `json:"blocks"`
}

// Layout acquires and segments every page of doc without extracting fields.
func (p *Processor) Layout(ctx context.Context, doc entity.Document) ([]PageLayout, error) {
	name := doc.Name
	if name == "" {
		name = filepath.Base(doc.Path)
	}
	log := p.logger.With("file", name)

	pages, err := p.acquirer.Pages(ctx, doc.Path)
	if err != nil {
		return nil, common.NewAcquisitionError(name, err)
	}
	out := make([]PageLayout, 0, len(pages))
	for _, page := range pages {
		pl, err := p.layoutPage(ctx, log, doc.Path, name, page)
		if err != nil {
			return nil, err
		}
		out = append(out, pl)
	}
	return out, nil
}

// layoutPage applies the OCR fallback to a short page, then segments and
// classifies it.
func (p *Processor) layoutPage(ctx context.Context, log *slog.Logger, path, name string, page extract.PageText) (PageLayout, error) {
	status := constants.PageStatusProcessed
	if textLen(page.Text) < p.minTextChars {
		ocrPage, err := p.acquirer.OCRPage(ctx, path, page.Number)
		switch {
		case errors.Is(err, extract.ErrOCRUnavailable):
			log.Debug("pipeline.page.no_ocr", "page", page.Number, "chars", textLen(page.Text))
		case err != nil:
			return PageLayout{}, common.NewAcquisitionError(name, err)
		default:
			log.Info("pipeline.page.ocr_fallback", "page", page.Number, "native_chars", textLen(page.Text), "ocr_chars", textLen(ocrPage.Text))
			ocrPage.Number = page.Number
			page = ocrPage
			status = constants.PageStatusOCRProcessed
		}
	}
	if textLen(page.Text) == 0 && len(page.Words) == 0 {
		return PageLayout{}, common.NewEmptyTextError(name, page.Number)
	}

	pl := PageLayout{Number: page.Number, Status: status, Method: page.Method, Text: page.Text, Words: page.Words}
	if len(page.Words) > 0 {
		pl.Lines, pl.Blocks = p.layout.Page(page.Words)
	} else {
		pl.Lines, pl.Blocks = p.layout.PageFromText(page.Text)
	}
	pl.Blocks = p.classifier.ClassifyAll(pl.Blocks)
	return pl, nil
}

func (p *Processor) processPage(ctx context.Context, log *slog.Logger, batchID uuid.UUID, doc entity.Document, name string, page extract.PageText) (entity.InvoiceRecord, error) {
	pl, err := p.layoutPage(ctx, log, doc.Path, name, page)
	if err != nil {
		return entity.InvoiceRecord{}, err
	}

	f, err := p.engine.Extract(fields.Page{
		File:   name,
		Number: pl.Number,
		Text:   pl.Text,
		Lines:  pl.Lines,
		Blocks: pl.Blocks,
	})
	if err != nil {
		return entity.InvoiceRecord{}, err
	}

	rec := entity.InvoiceRecord{
		BatchID:    batchID,
		Invoice:    f.Invoice,
		Vendor:     f.Vendor,
		Buyer:      f.Buyer,
		Bank:       f.Bank,
		LineItems:  f.Items,
		Financials: f.Financials,
		SourceFiles: entity.SourceFile{
			Filename:    name,
			Path:        doc.Path,
			Page:        pl.Number,
			Status:      pl.Status,
			Method:      pl.Method,
			ContentHash: doc.ContentHash,
		},
	}
	if rec.LineItems == nil {
		rec.LineItems = []entity.LineItem{}
	}
	if p.keepRawText {
		rec.RawText = pl.Text
	}
	if p.keepBlocks {
		rec.LayoutBlocks = pl.Blocks
	}
	log.Info("pipeline.page.ok",
		"page", pl.Number,
		"status", pl.Status,
		"method", pl.Method,
		"blocks", len(pl.Blocks),
		"items", len(rec.LineItems),
	)
	return rec, nil
}

func textLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
