package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

const sampleHOCR = `<?xml version="1.0" encoding="UTF-8"?>
<html><body>
<div class="ocr_page" id="page_1" title="image &quot;page-1.png&quot;; bbox 0 0 2480 3508; ppageno 0">
 <div class="ocr_carea" id="block_1_1">
  <p class="ocr_par" id="par_1_1">
   <span class="ocr_line" id="line_1_1" title="bbox 100 100 900 150; baseline 0 -8">
    <span class="ocrx_word" id="word_1_1" title="bbox 100 100 400 150; x_wconf 96">TAX</span>
    <span class="ocrx_word" id="word_1_2" title="bbox 450 100 900 150; x_wconf 90">INVOICE</span>
   </span>
   <span class="ocr_line" id="line_1_2" title="bbox 100 200 700 250">
    <span class="ocrx_word" id="word_1_3" title="bbox 100 200 300 250; x_wconf 80">Total</span>
    <span class="ocrx_word" id="word_1_4" title="bbox 350 200 700 250; x_wconf 70">₹1,180.00</span>
    <span class="ocrx_word" id="word_1_5" title="bbox 710 200 720 250; x_wconf 10"> </span>
   </span>
  </p>
 </div>
</div>
</body></html>`

func TestParseHOCR(t *testing.T) {
	page, err := ParseHOCR([]byte(sampleHOCR), PointsPerInch/300)
	require.NoError(t, err)

	assert.Equal(t, "TAX INVOICE\nTotal INR 1,180.00", page.Text)
	require.Len(t, page.Words, 4)
	w := page.Words[0]
	assert.Equal(t, "TAX", w.Text)
	assert.InDelta(t, 24.0, w.X0, 1e-9)
	assert.InDelta(t, 96.0, w.X1, 1e-9)
	assert.InDelta(t, 24.0, w.Top, 1e-9)
	assert.InDelta(t, 36.0, w.Bottom, 1e-9)
	assert.Equal(t, "INR 1,180.00", page.Words[3].Text)
	assert.InDelta(t, 0.84, page.Confidence, 1e-9)
}

func TestNormalize(t *testing.T) {
	in := "Grand Total:\tRs. 1,180.00\r\n\r\n\r\n\r\n-----\nPaid ₹500   only   \nWorking Hours 9-5"
	assert.Equal(t, "Grand Total: INR 1,180.00\n\nPaid INR 500 only\nWorking Hours 9-5", Normalize(in))
	assert.Equal(t, "", Normalize(""))
}

func TestNormalizeCurrency(t *testing.T) {
	assert.Equal(t, "INR 250.00", NormalizeCurrency("Rs 250.00"))
	assert.Equal(t, "INR 250.00", NormalizeCurrency("Rs.250.00"))
	assert.Equal(t, "INR 250.00", NormalizeCurrency("₹250.00"))
	assert.Equal(t, "Hours", NormalizeCurrency("Hours"))
}

func TestGlyphsToWords(t *testing.T) {
	glyph := func(s string, x, y float64) pdf.Text {
		return pdf.Text{S: s, X: x, Y: y, W: 5, FontSize: 10}
	}
	texts := []pdf.Text{
		glyph("N", 45, 700), glyph("o", 50, 700), glyph(":", 55, 700), glyph("7", 70, 700),
		glyph("I", 20, 700), glyph("n", 25, 700), glyph("v", 30, 700),
		glyph("₹", 20, 680), glyph(" ", 25, 680), glyph("9", 30, 680), glyph("9", 35, 680),
	}
	words, text := glyphsToWords(texts, 800)

	require.Len(t, words, 5)
	assert.Equal(t, "Inv", words[0].Text)
	assert.Equal(t, "No:", words[1].Text)
	assert.Equal(t, "7", words[2].Text)
	assert.Equal(t, 20.0, words[0].X0)
	assert.Equal(t, 35.0, words[0].X1)
	assert.Equal(t, 90.0, words[0].Top)
	assert.Equal(t, 100.0, words[0].Bottom)
	assert.Equal(t, "INR", words[3].Text)
	assert.Equal(t, "99", words[4].Text)
	assert.Equal(t, "Inv No: 7\nINR 99", text)
}

// fakeRunner renders a placeholder png for pdftoppm and answers tesseract
// with canned hOCR.
type fakeRunner struct {
	hocr  string
	fail  Step
	calls []Command
}

func (f *fakeRunner) Run(_ context.Context, c Command) ([]byte, error) {
	f.calls = append(f.calls, c)
	if c.Step == f.fail {
		return nil, &ToolError{Command: c, Stderr: "boom", Err: errors.New("exit status 1")}
	}
	switch c.Step {
	case StepRender:
		prefix := c.Args[len(c.Args)-1]
		return nil, os.WriteFile(prefix+"-1.png", []byte("png"), 0o600)
	case StepRecognize:
		return []byte(f.hocr), nil
	}
	return nil, nil
}

func TestOCRPage_PDF(t *testing.T) {
	r := &fakeRunner{hocr: sampleHOCR}
	e := NewExtractor(Config{}, nil, WithRunner(r))

	page, err := e.OCRPage(context.Background(), filepath.Join(t.TempDir(), "scan.pdf"), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, constants.MethodPDFOCR, page.Method)
	assert.Equal(t, "TAX INVOICE\nTotal INR 1,180.00", page.Text)

	require.Len(t, r.calls, 2)
	render, recognize := r.calls[0], r.calls[1]
	assert.Equal(t, "pdftoppm", render.Tool)
	assert.Equal(t, []string{"-r", "300", "-f", "1", "-l", "1", "-png"}, render.Args[:7])
	assert.Equal(t, "tesseract", recognize.Tool)
	assert.Equal(t, "hocr", recognize.Args[len(recognize.Args)-1])
	for _, c := range r.calls {
		assert.Equal(t, 1, c.Page)
		assert.Equal(t, "scan.pdf", filepath.Base(c.Source))
	}
}

func TestOCRPage_Image(t *testing.T) {
	r := &fakeRunner{hocr: sampleHOCR}
	e := NewExtractor(Config{TessdataDir: "/opt/tessdata"}, nil, WithRunner(r))

	page, err := e.OCRPage(context.Background(), "photo.JPG", 1)
	require.NoError(t, err)
	assert.Equal(t, constants.MethodImageOCR, page.Method)
	require.Len(t, r.calls, 1)
	assert.Equal(t, StepRecognize, r.calls[0].Step)
	assert.Equal(t, "photo.JPG", r.calls[0].Source)
	assert.Contains(t, r.calls[0].Args, "--tessdata-dir")
}

func TestOCRPage_TesseractFailure(t *testing.T) {
	r := &fakeRunner{fail: StepRecognize}
	e := NewExtractor(Config{}, nil, WithRunner(r))
	page, err := e.OCRPage(context.Background(), "photo.png", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recognize page 2: tesseract")

	var te *ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "photo.png", te.Command.Source)
	assert.Equal(t, []string{"boom"}, page.Warnings)
}

func TestOCRPage_RenderFailure(t *testing.T) {
	r := &fakeRunner{fail: StepRender}
	e := NewExtractor(Config{}, nil, WithRunner(r))
	page, err := e.OCRPage(context.Background(), "scan.pdf", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render page 3: pdftoppm")
	assert.Equal(t, []string{"boom"}, page.Warnings)
	assert.Len(t, r.calls, 1)
}

func TestToolError(t *testing.T) {
	cause := errors.New("exit status 2")
	err := &ToolError{Command: Command{Step: StepRender, Tool: "pdftoppm", Page: 4}, Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, warnings(err))
	assert.Nil(t, warnings(cause))
}

func TestPages_ImageHasNoTextLayer(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	pages, err := e.Pages(context.Background(), "photo.png")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Empty(t, pages[0].Text)
}

func TestPages_UnsupportedExtension(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	_, err := e.Pages(context.Background(), "notes.docx")
	require.Error(t, err)
}
