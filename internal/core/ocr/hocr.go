package ocr

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

var (
	reBBox  = regexp.MustCompile(`bbox (\d+) (\d+) (\d+) (\d+)`)
	reWConf = regexp.MustCompile(`x_wconf (\d+)`)
)

// hocrLines are the tesseract line-level classes.
const hocrLines = ".ocr_line, .ocr_header, .ocr_caption, .ocr_textfloat"

// HOCRPage is the parsed content of one hOCR page.
type HOCRPage struct {
	Text       string
	Words      []entity.PositionedWord
	Confidence float64 // mean word confidence in 0..1, 0 when unknown
	Warnings   []string
}

// ParseHOCR reads tesseract hOCR output. Word boxes are multiplied by scale,
// which converts pixels into the caller's unit.
func ParseHOCR(data []byte, scale float64) (HOCRPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return HOCRPage{}, err
	}
	if scale <= 0 {
		scale = 1
	}

	var (
		page    HOCRPage
		lines   []string
		confSum float64
		confN   int
		badBox  int
	)
	doc.Find(hocrLines).Each(func(_ int, line *goquery.Selection) {
		var texts []string
		line.Find(".ocrx_word").Each(func(_ int, w *goquery.Selection) {
			text := strings.TrimSpace(NormalizeCurrency(w.Text()))
			if text == "" {
				return
			}
			title, _ := w.Attr("title")
			m := reBBox.FindStringSubmatch(title)
			if m == nil {
				badBox++
				return
			}
			x0, _ := strconv.ParseFloat(m[1], 64)
			y0, _ := strconv.ParseFloat(m[2], 64)
			x1, _ := strconv.ParseFloat(m[3], 64)
			y1, _ := strconv.ParseFloat(m[4], 64)
			page.Words = append(page.Words, entity.PositionedWord{
				Text:   text,
				X0:     x0 * scale,
				X1:     x1 * scale,
				Top:    y0 * scale,
				Bottom: y1 * scale,
			})
			texts = append(texts, text)
			if c := reWConf.FindStringSubmatch(title); c != nil {
				if v, err := strconv.ParseFloat(c[1], 64); err == nil {
					confSum += v
					confN++
				}
			}
		})
		if len(texts) > 0 {
			lines = append(lines, strings.Join(texts, " "))
		}
	})

	page.Text = Normalize(strings.Join(lines, "\n"))
	if confN > 0 {
		page.Confidence = confSum / float64(confN) / 100
	}
	if badBox > 0 {
		page.Warnings = append(page.Warnings, strconv.Itoa(badBox)+" words without bbox skipped")
	}
	return page, nil
}
