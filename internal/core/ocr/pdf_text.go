package ocr

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// wordGapFactor splits characters into words when the horizontal gap
// exceeds this fraction of the font size.
const wordGapFactor = 0.3

func (e *Extractor) pdfPages(ctx context.Context, path string) ([]Page, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	n := r.NumPage()
	if e.cfg.MaxPages > 0 && n > e.cfg.MaxPages {
		n = e.cfg.MaxPages
	}
	pages := make([]Page, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		page := Page{Number: i, Method: constants.MethodPDFText}
		if !p.V.IsNull() {
			page.Words, page.Text = pageWords(p)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// pageWords merges the page's glyph runs into words. PDF y grows upwards;
// it is flipped against the media box so top grows downwards.
func pageWords(p pdf.Page) ([]entity.PositionedWord, string) {
	texts := p.Content().Text
	if len(texts) == 0 {
		return nil, ""
	}
	height := p.V.Key("MediaBox").Index(3).Float64()
	if height <= 0 {
		for _, t := range texts {
			height = math.Max(height, t.Y+t.FontSize)
		}
	}
	return glyphsToWords(texts, height)
}

func glyphsToWords(texts []pdf.Text, height float64) ([]entity.PositionedWord, string) {
	rows := groupGlyphRows(texts)

	var words []entity.PositionedWord
	var lines []string
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

		var rowWords []string
		var cur *entity.PositionedWord
		var curSize float64
		flush := func() {
			if cur != nil {
				cur.Text = strings.TrimSpace(NormalizeCurrency(cur.Text))
				if cur.Text != "" {
					words = append(words, *cur)
					rowWords = append(rowWords, cur.Text)
				}
			}
			cur = nil
		}
		for _, t := range row {
			if strings.TrimSpace(t.S) == "" {
				flush()
				continue
			}
			top := height - (t.Y + t.FontSize)
			bottom := height - t.Y
			if cur != nil && t.X-cur.X1 > wordGapFactor*math.Max(curSize, 1) {
				flush()
			}
			if cur == nil {
				cur = &entity.PositionedWord{Text: t.S, X0: t.X, X1: t.X + t.W, Top: top, Bottom: bottom}
				curSize = t.FontSize
				continue
			}
			cur.Text += t.S
			cur.X1 = math.Max(cur.X1, t.X+t.W)
			cur.Top = math.Min(cur.Top, top)
			cur.Bottom = math.Max(cur.Bottom, bottom)
		}
		flush()
		if len(rowWords) > 0 {
			lines = append(lines, strings.Join(rowWords, " "))
		}
	}
	return words, Normalize(strings.Join(lines, "\n"))
}

// groupGlyphRows buckets glyphs sharing a baseline, top of page first.
func groupGlyphRows(texts []pdf.Text) [][]pdf.Text {
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var rows [][]pdf.Text
	var baseline float64
	for _, t := range sorted {
		tol := math.Max(t.FontSize*0.5, 1)
		if len(rows) == 0 || math.Abs(t.Y-baseline) > tol {
			rows = append(rows, []pdf.Text{t})
			baseline = t.Y
			continue
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], t)
	}
	return rows
}
