// Package ingest turns directories and file arguments into the ordered
// document list of a batch.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// Result is the per-file ingest outcome.
type Result struct {
	Document    entity.Document
	Duplicate   bool
	DuplicateOf string
	Err         string
}

// DirStats summarizes an ingest run.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Scanner fingerprints input files and skips content duplicates within one
// run. It is not safe for concurrent use.
type Scanner struct {
	logger      *slog.Logger
	allowedExts map[string]struct{}
	skipHidden  bool
	seen        map[string]string // hash -> first path
}

type Option func(*Scanner)

// WithExtensions restricts ingestion to exts (with or without the dot).
func WithExtensions(exts ...string) Option {
	return func(s *Scanner) {
		if len(exts) == 0 {
			return
		}
		s.allowedExts = make(map[string]struct{}, len(exts))
		for _, e := range exts {
			if e = constants.NormalizeExt(strings.TrimSpace(e)); e != "" {
				s.allowedExts[e] = struct{}{}
			}
		}
	}
}

func WithSkipHidden(skip bool) Option {
	return func(s *Scanner) { s.skipHidden = skip }
}

func NewScanner(logger *slog.Logger, opts ...Option) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scanner{
		logger:      logger,
		allowedExts: constants.AllowedExtensions,
		skipHidden:  true,
		seen:        map[string]string{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Allowed reports whether path has an accepted extension.
func (s *Scanner) Allowed(path string) bool {
	_, ok := s.allowedExts[constants.NormalizeExt(filepath.Ext(path))]
	return ok
}

// IngestPath fingerprints a single file. A file whose content was already
// seen in this run comes back with Duplicate set.
func (s *Scanner) IngestPath(ctx context.Context, path string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Result{}, fmt.Errorf("abs path: %w", err)
	}
	if !s.Allowed(abs) {
		return Result{}, fmt.Errorf("unsupported or missing extension: %q", filepath.Ext(abs))
	}

	sum, size, err := fingerprint(abs)
	if err != nil {
		return Result{}, err
	}

	out := Result{Document: entity.Document{
		Path:        abs,
		Name:        filepath.Base(abs),
		ContentHash: sum,
		Size:        size,
	}}
	if first, ok := s.seen[sum]; ok {
		out.Duplicate = true
		out.DuplicateOf = first
		s.logger.Info("ingest.duplicate", "path", abs, "duplicate_of", first)
		return out, nil
	}
	s.seen[sum] = abs
	return out, nil
}

// IngestDirectory walks root in lexical order and ingests every allowed file.
func (s *Scanner) IngestDirectory(ctx context.Context, root string) ([]Result, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var results []Result
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, Result{Document: entity.Document{Path: path, Name: filepath.Base(path)}, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if s.skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !s.Allowed(path) {
			return nil
		}
		stats.Matched++
		s.add(ctx, path, &results, &stats)
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	s.logger.Info("ingest.directory.ok",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)
	return results, stats, nil
}

func (s *Scanner) add(ctx context.Context, path string, results *[]Result, stats *DirStats) {
	r, err := s.IngestPath(ctx, path)
	if err != nil {
		s.logger.Warn("ingest.file.failed", "path", path, "error", err)
		*results = append(*results, Result{Document: entity.Document{Path: path, Name: filepath.Base(path)}, Err: err.Error()})
		stats.Failed++
		return
	}
	*results = append(*results, r)
	stats.Succeeded++
	if r.Duplicate {
		stats.Deduplicated++
	}
}

// Collect resolves a mix of directories and files into the batch's
// documents, in input order. Duplicates are dropped; unreadable inputs are
// kept with IngestError set so the batch reports them where they occurred.
func (s *Scanner) Collect(ctx context.Context, inputs []string) ([]entity.Document, DirStats, error) {
	var (
		results []Result
		total   DirStats
	)
	for _, in := range inputs {
		info, err := os.Stat(in)
		switch {
		case err != nil:
			results = append(results, Result{Document: entity.Document{Path: in, Name: filepath.Base(in)}, Err: err.Error()})
			total.Scanned++
			total.Failed++
		case info.IsDir():
			rs, st, err := s.IngestDirectory(ctx, in)
			if err != nil {
				return nil, total, err
			}
			results = append(results, rs...)
			total.add(st)
		default:
			total.Scanned++
			total.Matched++
			s.add(ctx, in, &results, &total)
		}
	}

	docs := make([]entity.Document, 0, len(results))
	for _, r := range results {
		switch {
		case r.Err != "":
			doc := r.Document
			doc.IngestError = r.Err
			docs = append(docs, doc)
		case !r.Duplicate:
			docs = append(docs, r.Document)
		}
	}
	return docs, total, nil
}

func (d *DirStats) add(o DirStats) {
	d.Scanned += o.Scanned
	d.Matched += o.Matched
	d.Succeeded += o.Succeeded
	d.Deduplicated += o.Deduplicated
	d.Failed += o.Failed
}

func fingerprint(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hash: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
