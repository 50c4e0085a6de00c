package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// PointsPerInch is the PDF user space unit. OCR boxes are scaled into it so
// native and OCR pages share the same geometric tolerances.
const PointsPerInch = 72.0

type Config struct {
	Pdftoppm      string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string
	DPI           int // rasterization DPI, default 300
	MaxPages      int // 0 = no limit
	PSM           int // tesseract page segmentation mode, default 6
}

// Page is the text acquired for one page, with word boxes in points when
// the source had them.
type Page struct {
	Number     int
	Text       string
	Words      []entity.PositionedWord
	Method     string
	Confidence float64 // OCR mean word confidence in 0..1, 0 for native text
	Duration   time.Duration
	Warnings   []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRunner replaces the command runner.
func WithRunner(r Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Pages returns the native text of every page. Images have no text layer
// and come back as a single empty page, which sends them through OCR.
func (e *Extractor) Pages(ctx context.Context, path string) ([]Page, error) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		start := time.Now()
		pages, err := e.pdfPages(ctx, path)
		if err != nil {
			e.logger.Error("ocr.pdf_text.failed", "path", path, "error", err)
			return nil, err
		}
		e.logger.Debug("ocr.pdf_text.ok", "path", path, "pages", len(pages), "duration_ms", time.Since(start).Milliseconds())
		return pages, nil
	case constants.IMAGE:
		return []Page{{Number: 1, Method: constants.MethodImageOCR}}, nil
	default:
		e.logger.Error("unsupported ocr extension", "extension", ext)
		return nil, fmt.Errorf("unsupported extension: %q", ext)
	}
}

// OCRPage rasterizes (for PDFs) and recognizes a single page.
func (e *Extractor) OCRPage(ctx context.Context, path string, number int) (Page, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))

	var (
		page Page
		err  error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		page, err = e.pdfOCRPage(ctx, path, number)
	case constants.IMAGE:
		page, err = e.recognize(ctx, path, number, path)
		page.Method = constants.MethodImageOCR
	default:
		return Page{}, fmt.Errorf("unsupported extension: %q", ext)
	}
	page.Number = number
	page.Duration = time.Since(start)
	if err != nil {
		e.logger.Error("ocr.page.failed", "path", path, "page", number, "error", err)
		return page, err
	}
	e.logger.Info("ocr.page.ok",
		"path", path,
		"page", number,
		"words", len(page.Words),
		"chars", len(page.Text),
		"duration_ms", page.Duration.Milliseconds(),
	)
	return page, nil
}

// scale converts OCR pixels at the configured DPI into points.
func (e *Extractor) scale() float64 {
	return PointsPerInch / float64(e.cfg.DPI)
}
