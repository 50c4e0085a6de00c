// Package repository persists batch runs through ent's SQL layer on SQLite
// or Postgres.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

const (
	tableBatches  = "batches"
	tableInvoices = "invoices"
	tableErrors   = "batch_errors"
)

// BatchRepository is the behavior the CLI depends on.
type BatchRepository interface {
	SaveBatch(ctx context.Context, res entity.BatchResult) (int, error)
	ListBatches(ctx context.Context) ([]BatchSummary, error)
	ListInvoices(ctx context.Context, batchID uuid.UUID) ([]entity.InvoiceRecord, error)
	ListErrors(ctx context.Context, batchID uuid.UUID) ([]entity.BatchError, error)
}

// BatchSummary is one row of the batches table.
type BatchSummary struct {
	ID           uuid.UUID
	ScannedAt    time.Time
	InvoiceCount int
	ErrorCount   int
}

// Store is the run store. Records are written once per batch and never
// updated.
type Store struct {
	drv    *entsql.Driver
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ BatchRepository = (*Store)(nil)

// Migrate creates the tables when missing.
func (s *Store) Migrate(ctx context.Context) error {
	floatType := "REAL"
	if s.drv.Dialect() == dialect.Postgres {
		floatType = "DOUBLE PRECISION"
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + tableBatches + ` (
			id TEXT PRIMARY KEY,
			scanned_at TEXT NOT NULL,
			invoice_count INTEGER NOT NULL,
			error_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tableInvoices + ` (
			batch_id TEXT NOT NULL REFERENCES ` + tableBatches + `(id),
			seq INTEGER NOT NULL,
			source_key TEXT NOT NULL,
			filename TEXT NOT NULL,
			page INTEGER NOT NULL,
			status TEXT NOT NULL,
			invoice_number TEXT,
			invoice_date TEXT,
			vendor_name TEXT,
			vendor_gstin TEXT,
			buyer_name TEXT,
			total_before_tax ` + floatType + `,
			total_after_tax ` + floatType + `,
			record TEXT NOT NULL,
			PRIMARY KEY (batch_id, seq),
			UNIQUE (batch_id, source_key, page)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tableErrors + ` (
			batch_id TEXT NOT NULL REFERENCES ` + tableBatches + `(id),
			seq INTEGER NOT NULL,
			file TEXT NOT NULL,
			error TEXT NOT NULL,
			PRIMARY KEY (batch_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS invoices_vendor_gstin ON ` + tableInvoices + ` (vendor_gstin)`,
	}
	for _, q := range stmts {
		if err := s.drv.Exec(ctx, q, []any{}, nil); err != nil {
			return storeErr("migrate", err)
		}
	}
	return nil
}

// sourceKey identifies a page's source within a batch: the content hash
// when the file was fingerprinted, its path otherwise.
func sourceKey(src entity.SourceFile) string {
	if src.ContentHash != "" {
		return "sha256:" + src.ContentHash
	}
	return "path:" + src.Path
}

// SaveBatch writes the batch with its records and errors in one
// transaction. A second record for the same (batch, source, page) is
// skipped. It returns the number of records written.
func (s *Store) SaveBatch(ctx context.Context, res entity.BatchResult) (int, error) {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return 0, storeErr("begin", err)
	}
	written, err := s.saveBatch(ctx, tx, res)
	if err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			s.logger.Error("store.rollback.failed", "error", rerr)
		}
		s.logger.Error("store.save.failed", "batch_id", res.BatchID, "error", err)
		return 0, storeErr("save batch", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, storeErr("commit", err)
	}
	s.logger.Info("store.save.ok", "batch_id", res.BatchID, "invoices", written, "errors", len(res.Errors))
	return written, nil
}

func (s *Store) saveBatch(ctx context.Context, tx dialect.Tx, res entity.BatchResult) (int, error) {
	d := s.drv.Dialect()

	q, args := entsql.Dialect(d).Insert(tableBatches).
		Columns("id", "scanned_at", "invoice_count", "error_count").
		Values(res.BatchID.String(), res.ScannedAt.UTC().Format(time.RFC3339Nano), len(res.Invoices), len(res.Errors)).
		Query()
	if err := tx.Exec(ctx, q, args, nil); err != nil {
		return 0, fmt.Errorf("insert batch: %w", err)
	}

	written := 0
	for i, rec := range res.Invoices {
		payload, err := json.Marshal(rec)
		if err != nil {
			return 0, fmt.Errorf("marshal record %d: %w", i, err)
		}
		q, args := entsql.Dialect(d).Insert(tableInvoices).
			Columns("batch_id", "seq", "source_key", "filename", "page", "status",
				"invoice_number", "invoice_date", "vendor_name", "vendor_gstin", "buyer_name",
				"total_before_tax", "total_after_tax", "record").
			Values(res.BatchID.String(), i, sourceKey(rec.SourceFiles), rec.SourceFiles.Filename, rec.SourceFiles.Page,
				string(rec.SourceFiles.Status),
				nullString(rec.Invoice.InvoiceNumber), nullString(rec.Invoice.InvoiceDate),
				nullString(rec.Vendor.Name), nullString(rec.Vendor.GSTIN), nullString(rec.Buyer.Name),
				nullFloat(rec.Financials.TotalBeforeTax), nullFloat(rec.Financials.TotalAfterTax),
				string(payload)).
			OnConflict(entsql.ConflictColumns("batch_id", "source_key", "page"), entsql.DoNothing()).
			Query()
		var r sql.Result
		if err := tx.Exec(ctx, q, args, &r); err != nil {
			return 0, fmt.Errorf("insert record %d: %w", i, err)
		}
		if n, err := r.RowsAffected(); err == nil && n > 0 {
			written++
		} else if err == nil {
			s.logger.Info("store.record.duplicate", "batch_id", res.BatchID, "file", rec.SourceFiles.Filename, "page", rec.SourceFiles.Page)
		}
	}

	for i, be := range res.Errors {
		q, args := entsql.Dialect(d).Insert(tableErrors).
			Columns("batch_id", "seq", "file", "error").
			Values(res.BatchID.String(), i, be.File, be.Error).
			Query()
		if err := tx.Exec(ctx, q, args, nil); err != nil {
			return 0, fmt.Errorf("insert error %d: %w", i, err)
		}
	}
	return written, nil
}

// ListBatches returns all batches, most recent first.
func (s *Store) ListBatches(ctx context.Context) ([]BatchSummary, error) {
	q, args := entsql.Dialect(s.drv.Dialect()).
		Select("id", "scanned_at", "invoice_count", "error_count").
		From(entsql.Table(tableBatches)).
		OrderBy(entsql.Desc("scanned_at")).
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, storeErr("list batches", err)
	}
	defer rows.Close()

	var out []BatchSummary
	for rows.Next() {
		var (
			id, scanned string
			b           BatchSummary
		)
		if err := rows.Scan(&id, &scanned, &b.InvoiceCount, &b.ErrorCount); err != nil {
			return nil, storeErr("scan batch", err)
		}
		var err error
		if b.ID, err = uuid.Parse(id); err != nil {
			return nil, storeErr("parse batch id", err)
		}
		if b.ScannedAt, err = time.Parse(time.RFC3339Nano, scanned); err != nil {
			return nil, storeErr("parse scanned_at", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list batches", err)
	}
	return out, nil
}

// ListInvoices returns a batch's records in their original order.
func (s *Store) ListInvoices(ctx context.Context, batchID uuid.UUID) ([]entity.InvoiceRecord, error) {
	q, args := entsql.Dialect(s.drv.Dialect()).
		Select("record").
		From(entsql.Table(tableInvoices)).
		Where(entsql.EQ("batch_id", batchID.String())).
		OrderBy("seq").
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, storeErr("list invoices", err)
	}
	defer rows.Close()

	out := []entity.InvoiceRecord{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, storeErr("scan invoice", err)
		}
		var rec entity.InvoiceRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, storeErr("decode invoice", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list invoices", err)
	}
	return out, nil
}

// ListErrors returns a batch's document errors in their original order.
func (s *Store) ListErrors(ctx context.Context, batchID uuid.UUID) ([]entity.BatchError, error) {
	q, args := entsql.Dialect(s.drv.Dialect()).
		Select("file", "error").
		From(entsql.Table(tableErrors)).
		Where(entsql.EQ("batch_id", batchID.String())).
		OrderBy("seq").
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, storeErr("list errors", err)
	}
	defer rows.Close()

	out := []entity.BatchError{}
	for rows.Next() {
		var be entity.BatchError
		if err := rows.Scan(&be.File, &be.Error); err != nil {
			return nil, storeErr("scan error", err)
		}
		out = append(out, be)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list errors", err)
	}
	return out, nil
}

// InvoiceCountByVendor counts stored records per vendor GSTIN.
func (s *Store) InvoiceCountByVendor(ctx context.Context, gstin string) (int, error) {
	q, args := entsql.Dialect(s.drv.Dialect()).
		Select(entsql.Count("*")).
		From(entsql.Table(tableInvoices)).
		Where(entsql.EQ("vendor_gstin", gstin)).
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return 0, storeErr("count invoices", err)
	}
	defer rows.Close()

	n, err := entsql.ScanInt(rows)
	if err != nil {
		return 0, storeErr("count invoices", err)
	}
	return n, nil
}

func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
