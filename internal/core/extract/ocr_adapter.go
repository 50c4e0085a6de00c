package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/invoice-extractor/internal/core/ocr"
)

// OCRAdapter exposes the ocr.Extractor as a PageAcquirer for PDFs and images.
type OCRAdapter struct {
	extractor *ocr.Extractor
	logger    *slog.Logger
}

func NewOCRAdapter(e *ocr.Extractor, l *slog.Logger) *OCRAdapter {
	if l == nil {
		l = slog.Default()
	}
	return &OCRAdapter{
		extractor: e,
		logger:    l,
	}
}

func (a *OCRAdapter) Pages(ctx context.Context, path string) ([]PageText, error) {
	pages, err := a.extractor.Pages(ctx, path)
	if err != nil {
		return nil, err
	}
	out := make([]PageText, len(pages))
	for i, p := range pages {
		out[i] = fromOCR(p)
	}
	return out, nil
}

func (a *OCRAdapter) OCRPage(ctx context.Context, path string, number int) (PageText, error) {
	p, err := a.extractor.OCRPage(ctx, path, number)
	if err != nil {
		return PageText{Number: number, Warnings: p.Warnings}, err
	}
	return fromOCR(p), nil
}

func fromOCR(p ocr.Page) PageText {
	return PageText{
		Number:     p.Number,
		Text:       p.Text,
		Words:      p.Words,
		Method:     p.Method,
		Confidence: p.Confidence,
		Warnings:   p.Warnings,
	}
}
