package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

// pdfOCRPage renders one page with pdftoppm and runs tesseract on it.
func (e *Extractor) pdfOCRPage(ctx context.Context, path string, number int) (Page, error) {
	tmpDir, err := os.MkdirTemp("", "inv-pp-*")
	if err != nil {
		return Page{}, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	n := strconv.Itoa(number)
	// pdftoppm -r 300 -f N -l N -png <in.pdf> <tmp/page>
	_, err = e.runner.Run(ctx, Command{
		Step:   StepRender,
		Tool:   e.cfg.Pdftoppm,
		Args:   []string{"-r", strconv.Itoa(e.cfg.DPI), "-f", n, "-l", n, "-png", path, prefix},
		Source: path,
		Page:   number,
	})
	if err != nil {
		return Page{Warnings: warnings(err)}, err
	}

	// page-1.png, page-01.png, ... depending on the page count
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return Page{Warnings: []string{"pdftoppm produced no images"}}, fmt.Errorf("no image rendered for page %d", number)
	}

	page, err := e.recognize(ctx, path, number, matches[0])
	page.Method = constants.MethodPDFOCR
	return page, err
}

// recognize runs tesseract in hOCR mode on img and turns its word boxes into
// a page. source and number identify the invoice page img was taken from.
func (e *Extractor) recognize(ctx context.Context, source string, number int, img string) (Page, error) {
	args := []string{img, "stdout", "-l", e.cfg.TesseractLang, "--psm", strconv.Itoa(e.cfg.PSM)}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, "hocr")

	// tesseract <img> stdout -l <lang> --psm 6 hocr
	out, err := e.runner.Run(ctx, Command{
		Step:   StepRecognize,
		Tool:   e.cfg.Tesseract,
		Args:   args,
		Source: source,
		Page:   number,
	})
	if err != nil {
		return Page{Warnings: warnings(err)}, err
	}
	doc, err := ParseHOCR(out, e.scale())
	if err != nil {
		return Page{}, fmt.Errorf("parse hocr: %w", err)
	}
	return Page{Text: doc.Text, Words: doc.Words, Confidence: doc.Confidence, Warnings: doc.Warnings}, nil
}
