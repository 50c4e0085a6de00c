package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

func sampleBatch() entity.BatchResult {
	id := uuid.MustParse("7a0c1f7e-58c4-4a4b-9d2e-1f0a3b1c2d3e")
	rec := entity.InvoiceRecord{
		BatchID: id,
		Invoice: entity.InvoiceMeta{
			InvoiceNumber: entity.Str("AE-118"),
			InvoiceDate:   entity.Str("05/04/2024"),
			Currency:      "INR",
		},
		Vendor: entity.Party{Name: entity.Str("=HYPERLINK(\"http://x\")"), GSTIN: entity.Str("27ABCDE1234F1Z5")},
		LineItems: []entity.LineItem{
			{SrNo: entity.Str("1"), Description: entity.Str("MOTOR STOOL"), Qty: 2, Unit: "NOS", Price: entity.Float(500), TotalAmount: entity.Float(1000)},
			{SrNo: entity.Str("2"), Description: entity.Str("BRACKET"), Qty: 1, Unit: "NOS", TotalAmount: entity.Float(80)},
		},
		Financials: entity.Financials{
			TotalBeforeTax: entity.Float(1080),
			TotalAfterTax:  entity.Float(1274.4),
			CGST:           entity.TaxEntry{Rate: entity.Float(9), Amount: entity.Float(97.2)},
		},
		SourceFiles: entity.SourceFile{Filename: "acme.pdf", Path: "/in/acme.pdf", Page: 1, Status: constants.PageStatusProcessed, Method: constants.MethodPDFText},
	}
	return entity.BatchResult{
		BatchID:      id,
		ScannedAt:    time.Date(2024, 4, 5, 10, 0, 0, 0, time.UTC),
		InvoiceCount: 1,
		Invoices:     []entity.InvoiceRecord{rec},
		Errors:       []entity.BatchError{{File: "broken.pdf", Error: "ACQUISITION_ERROR: broken.pdf"}},
	}
}

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"":          "",
		"=SUM(A1)":  "'=SUM(A1)",
		"+91 99":    "'+91 99",
		"-x":        "'-x",
		"@cmd":      "'@cmd",
		"ACME LTD":  "ACME LTD",
		"a=b":       "a=b",
	}
	for in, want := range cases {
		assert.Equal(t, want, Sanitize(in), in)
	}
}

func TestXLSX(t *testing.T) {
	b, err := NewExporter(nil).XLSX(sampleBatch())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetInvoices, SheetLineItems, SheetErrors}, f.GetSheetList())

	rows, err := f.GetRows(SheetInvoices)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, invoiceHeaders[0], rows[0][0])
	assert.Equal(t, "acme.pdf", rows[1][2])
	assert.Equal(t, "AE-118", rows[1][7])

	vendor, err := f.GetCellValue(SheetInvoices, "N2")
	require.NoError(t, err)
	assert.Equal(t, `'=HYPERLINK("http://x")`, vendor)

	total, err := f.GetCellValue(SheetInvoices, "AI2")
	require.NoError(t, err)
	assert.Equal(t, "1274.4", total)

	items, err := f.GetRows(SheetLineItems)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "BRACKET", items[2][4])

	errs, err := f.GetRows(SheetErrors)
	require.NoError(t, err)
	require.Len(t, errs, 2)
	assert.Equal(t, "broken.pdf", errs[1][0])
}

func TestJSON_ValidatesAgainstSchema(t *testing.T) {
	b, err := NewExporter(nil).JSON(sampleBatch())
	require.NoError(t, err)
	require.NoError(t, ValidateBatchJSON(b))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, float64(1), doc["invoice_count"])
	inv := doc["invoices"].([]any)[0].(map[string]any)
	assert.Nil(t, inv["vendor"].(map[string]any)["address"])
	assert.Nil(t, inv["financials"].(map[string]any)["sgst"].(map[string]any)["rate"])
}

func TestValidateBatchJSON_Rejects(t *testing.T) {
	bad := sampleBatch()
	bad.Invoices[0].SourceFiles.Page = 0
	b, err := json.Marshal(bad)
	require.NoError(t, err)
	assert.Error(t, ValidateBatchJSON(b))

	assert.Error(t, ValidateBatchJSON([]byte(`{"batch_id": 1}`)))
	assert.Error(t, ValidateBatchJSON([]byte(`not json`)))
}

func TestJSON_InvalidRecordIsExportError(t *testing.T) {
	bad := sampleBatch()
	bad.Invoices[0].LineItems[0].Unit = ""
	_, err := NewExporter(nil).JSON(bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrExport))
	assert.Equal(t, common.CodeExport, common.CodeOf(err))
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out.xlsx")

	got, err := UniquePath(p)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "out_1.xlsx"), []byte("x"), 0o644))
	got, err = UniquePath(p)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out_2.xlsx"), got)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(nil)

	first, err := e.WriteFile(sampleBatch(), filepath.Join(dir, "run", "batch.json"))
	require.NoError(t, err)
	second, err := e.WriteFile(sampleBatch(), filepath.Join(dir, "run", "batch.json"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "run", "batch_1.json"), second)

	b, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.NoError(t, ValidateBatchJSON(b))

	x, err := e.WriteFile(sampleBatch(), filepath.Join(dir, "batch.xlsx"))
	require.NoError(t, err)
	f, err := excelize.OpenFile(x)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), SheetErrors)
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFor("x.JSON"))
	assert.Equal(t, FormatXLSX, FormatFor("x.xlsx"))
	assert.Equal(t, FormatXLSX, FormatFor("x"))
}
