package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/ocr"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// WordDump is the on-disk form of pre-acquired pages (.json). It is also
// what `invoices blocks --words` writes.
type WordDump struct {
	File  string         `json:"file,omitempty"`
	Pages []WordDumpPage `json:"pages"`
}

type WordDumpPage struct {
	Page  int                     `json:"page"`
	Text  string                  `json:"text,omitempty"`
	Words []entity.PositionedWord `json:"words,omitempty"`
}

// TextAcquirer reads text files (pages separated by form feeds) and word
// dumps. It has no OCR fallback.
type TextAcquirer struct{}

func NewTextAcquirer() *TextAcquirer { return &TextAcquirer{} }

func (TextAcquirer) Pages(ctx context.Context, path string) ([]PageText, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch constants.MapExtToFormat(filepath.Ext(path)) {
	case constants.TXT:
		return textPages(string(data)), nil
	case constants.WORDJSON:
		return dumpPages(data)
	default:
		return nil, fmt.Errorf("unsupported extension: %q", filepath.Ext(path))
	}
}

func (TextAcquirer) OCRPage(context.Context, string, int) (PageText, error) {
	return PageText{}, ErrOCRUnavailable
}

func textPages(s string) []PageText {
	parts := strings.Split(s, "\f")
	pages := make([]PageText, 0, len(parts))
	for i, p := range parts {
		// a trailing form feed does not start a page
		if i == len(parts)-1 && i > 0 && strings.TrimSpace(p) == "" {
			break
		}
		pages = append(pages, PageText{Number: i + 1, Text: ocr.Normalize(p), Method: constants.MethodText})
	}
	return pages
}

func dumpPages(data []byte) ([]PageText, error) {
	var dump WordDump
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("decode word dump: %w", err)
	}
	pages := make([]PageText, 0, len(dump.Pages))
	for i, p := range dump.Pages {
		n := p.Page
		if n <= 0 {
			n = i + 1
		}
		text := p.Text
		if text == "" && len(p.Words) > 0 {
			ws := make([]string, len(p.Words))
			for j, w := range p.Words {
				ws[j] = w.Text
			}
			text = strings.Join(ws, " ")
		}
		pages = append(pages, PageText{Number: n, Text: ocr.NormalizeCurrency(text), Words: p.Words, Method: constants.MethodWordDump})
	}
	return pages, nil
}
