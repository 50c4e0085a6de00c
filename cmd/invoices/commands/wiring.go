package commands

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/classify"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/fields"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/layout"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/ocr"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/pipeline"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

// newAcquirer routes PDFs and images through the OCR extractor and text
// files and word dumps through the text acquirer.
func newAcquirer(c *common.Config, l *slog.Logger) extract.PageAcquirer {
	ocrx := ocr.NewExtractor(ocr.Config{
		Pdftoppm:      c.OCR.Pdftoppm,
		Tesseract:     c.OCR.Tesseract,
		TesseractLang: c.OCR.TesseractLang,
		TessdataDir:   c.OCR.TessdataDir,
		DPI:           c.OCR.DPI,
		MaxPages:      c.OCR.MaxPages,
		PSM:           c.OCR.PSM,
	}, l)
	return extract.NewRouter(extract.NewOCRAdapter(ocrx, l), extract.NewTextAcquirer())
}

func newProcessor(c *common.Config, l *slog.Logger) *pipeline.Processor {
	ex := c.Extraction
	return pipeline.NewProcessor(l, newAcquirer(c, l), fields.NewEngine(fields.ConfigFrom(ex), l),
		pipeline.WithLayout(layout.NewExtractor(layout.Config{YTolerance: ex.YTolerance, MinLines: ex.MinBlockLines})),
		pipeline.WithClassifier(classify.NewClassifier(classify.DefaultRules(classify.DefaultVocabulary(), ex.VendorTopLimit)...)),
		pipeline.WithMinTextChars(ex.MinTextChars),
		pipeline.WithWorkers(c.Batch.Workers),
		pipeline.WithDocumentTimeout(c.Batch.DocumentTimeout),
		pipeline.WithAudit(ex.KeepRawText, ex.KeepBlocks),
	)
}

// openStore returns nil when no store is configured.
func openStore(ctx context.Context, c *common.Config, l *slog.Logger) (*repository.Store, error) {
	if c.Store.Driver == "" || c.Store.Driver == repository.DriverNone {
		return nil, nil
	}
	return repository.Open(ctx, repository.ConfigFrom(c.Store), l)
}
