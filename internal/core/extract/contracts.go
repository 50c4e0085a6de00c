package extract

import (
	"context"
	"errors"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// ErrOCRUnavailable is returned by acquirers whose sources cannot be
// rasterized, such as plain text files.
var ErrOCRUnavailable = errors.New("ocr not available for this source")

// PageText is the acquisition result for one page. Words is nil when the
// source only had text.
type PageText struct {
	Number     int
	Text       string
	Words      []entity.PositionedWord
	Method     string // constants.Method*
	Confidence float64
	Warnings   []string
}

// PageAcquirer supplies page text for the pipeline. Pages returns what the
// source carries natively; OCRPage is the fallback for pages whose native
// text is too short.
type PageAcquirer interface {
	Pages(ctx context.Context, path string) ([]PageText, error)
	OCRPage(ctx context.Context, path string, number int) (PageText, error)
}
