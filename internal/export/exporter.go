// Package export writes batch results as XLSX workbooks or schema-checked
// JSON documents.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// Output formats.
const (
	FormatXLSX = "xlsx"
	FormatJSON = "json"
)

// Exporter renders a BatchResult. It never modifies the result.
type Exporter struct {
	logger *slog.Logger
}

func NewExporter(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

// JSON returns the indented batch document after checking it against
// BatchSchema.
func (e *Exporter) JSON(res entity.BatchResult) ([]byte, error) {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, common.NewAppError(common.CodeExport, "marshal batch", fmt.Errorf("%w: %w", common.ErrExport, err))
	}
	if err := ValidateBatchJSON(b); err != nil {
		return nil, common.NewAppError(common.CodeExport, "validate batch", fmt.Errorf("%w: %w", common.ErrExport, err))
	}
	return b, nil
}

// FormatFor picks the output format from the file extension, xlsx by default.
func FormatFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatXLSX
}

// WriteFile renders res in the format implied by path and writes it next to
// path without overwriting an existing file. It returns the path written.
func (e *Exporter) WriteFile(res entity.BatchResult, path string) (string, error) {
	start := time.Now()
	format := FormatFor(path)

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = e.JSON(res)
	default:
		data, err = e.XLSX(res)
	}
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", common.NewAppError(common.CodeExport, "create output dir", fmt.Errorf("%w: %w", common.ErrExport, err))
		}
	}
	out, err := UniquePath(path)
	if err != nil {
		return "", common.NewAppError(common.CodeExport, "resolve output path", fmt.Errorf("%w: %w", common.ErrExport, err))
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return "", common.NewAppError(common.CodeExport, "write "+out, fmt.Errorf("%w: %w", common.ErrExport, err))
	}

	e.logger.Info("export."+format+".ok",
		"batch_id", res.BatchID.String(),
		"path", out,
		"invoices", len(res.Invoices),
		"errors", len(res.Errors),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// UniquePath returns path, or name_1.ext, name_2.ext, ... for the first
// candidate that does not exist yet.
func UniquePath(path string) (string, error) {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	candidate := path
	for i := 1; ; i++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
	}
}
