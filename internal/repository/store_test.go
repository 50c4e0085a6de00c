package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func record(batch uuid.UUID, file, hash string, page int) entity.InvoiceRecord {
	return entity.InvoiceRecord{
		BatchID: batch,
		Invoice: entity.InvoiceMeta{InvoiceNumber: entity.Str("INV-" + file), Currency: "INR"},
		Vendor:  entity.Party{Name: entity.Str("ACME"), GSTIN: entity.Str("27ABCDE1234F1Z5")},
		LineItems: []entity.LineItem{
			{SrNo: entity.Str("1"), Qty: 1, Unit: "NOS", TotalAmount: entity.Float(100)},
		},
		Financials: entity.Financials{TotalAfterTax: entity.Float(118)},
		SourceFiles: entity.SourceFile{
			Filename:    file,
			Path:        "/in/" + file,
			Page:        page,
			Status:      constants.PageStatusProcessed,
			ContentHash: hash,
		},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	require.NoError(t, s.HealthCheck(ctx, time.Second))

	id := uuid.New()
	res := entity.BatchResult{
		BatchID:   id,
		ScannedAt: time.Date(2024, 4, 5, 10, 0, 0, 0, time.UTC),
		Invoices: []entity.InvoiceRecord{
			record(id, "a.pdf", "aa", 1),
			record(id, "a.pdf", "aa", 2),
			record(id, "b.pdf", "", 1),
		},
		Errors: []entity.BatchError{{File: "c.pdf", Error: "ACQUISITION_ERROR: c.pdf"}},
	}
	res.InvoiceCount = len(res.Invoices)

	n, err := s.SaveBatch(ctx, res)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := s.ListInvoices(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, res.Invoices, got)

	errs, err := s.ListErrors(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, res.Errors, errs)

	batches, err := s.ListBatches(ctx)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, id, batches[0].ID)
	assert.Equal(t, res.ScannedAt, batches[0].ScannedAt)
	assert.Equal(t, 3, batches[0].InvoiceCount)
	assert.Equal(t, 1, batches[0].ErrorCount)

	count, err := s.InvoiceCountByVendor(ctx, "27ABCDE1234F1Z5")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestStore_DuplicatePageSkipped(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	id := uuid.New()
	res := entity.BatchResult{
		BatchID:   id,
		ScannedAt: time.Now().UTC(),
		Invoices: []entity.InvoiceRecord{
			record(id, "a.pdf", "aa", 1),
			record(id, "copy.pdf", "aa", 1),
		},
	}
	n, err := s.SaveBatch(ctx, res)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.ListInvoices(ctx, id)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a.pdf", got[0].SourceFiles.Filename)
}

func TestStore_SameBatchTwiceFails(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	id := uuid.New()
	res := entity.BatchResult{BatchID: id, ScannedAt: time.Now().UTC(), Invoices: []entity.InvoiceRecord{record(id, "a.pdf", "aa", 1)}}
	_, err := s.SaveBatch(ctx, res)
	require.NoError(t, err)

	_, err = s.SaveBatch(ctx, res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrStore))
	assert.Equal(t, common.CodeStore, common.CodeOf(err))

	got, err := s.ListInvoices(ctx, id)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStore_UnknownBatch(t *testing.T) {
	s := openMemory(t)
	got, err := s.ListInvoices(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mysql"}, nil)
	require.Error(t, err)
	assert.Equal(t, common.CodeStore, common.CodeOf(err))
}

func TestSourceKey(t *testing.T) {
	assert.Equal(t, "sha256:ab", sourceKey(entity.SourceFile{ContentHash: "ab", Path: "/x"}))
	assert.Equal(t, "path:/x", sourceKey(entity.SourceFile{Path: "/x"}))
}
