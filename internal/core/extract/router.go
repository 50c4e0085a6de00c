package extract

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

// Router picks the acquirer for a file by its format.
type Router struct {
	routes map[string]PageAcquirer
}

// NewRouter sends PDFs and images to docs and text/word dumps to text.
// Either may be nil to leave those formats unsupported.
func NewRouter(docs, text PageAcquirer) *Router {
	r := &Router{routes: map[string]PageAcquirer{}}
	if docs != nil {
		r.routes[constants.PDF] = docs
		r.routes[constants.IMAGE] = docs
	}
	if text != nil {
		r.routes[constants.TXT] = text
		r.routes[constants.WORDJSON] = text
	}
	return r
}

func (r *Router) Pages(ctx context.Context, path string) ([]PageText, error) {
	a, err := r.route(path)
	if err != nil {
		return nil, err
	}
	return a.Pages(ctx, path)
}

func (r *Router) OCRPage(ctx context.Context, path string, number int) (PageText, error) {
	a, err := r.route(path)
	if err != nil {
		return PageText{}, err
	}
	return a.OCRPage(ctx, path, number)
}

func (r *Router) route(path string) (PageAcquirer, error) {
	format := constants.MapExtToFormat(filepath.Ext(path))
	if a, ok := r.routes[format]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("no acquirer for %q", filepath.Ext(path))
}
