package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// Sheet names of the exported workbook.
const (
	SheetInvoices  = "Invoices"
	SheetLineItems = "LineItems"
	SheetErrors    = "Errors"
)

var invoiceHeaders = []string{
	"Batch ID", "Scanned At", "File", "Page", "Status", "Method",
	"Invoice Type", "Invoice No", "Invoice Date", "Due Date", "PO No", "Place of Supply", "Currency",
	"Vendor", "Vendor GSTIN", "Vendor PAN", "Vendor Address", "Vendor Email",
	"Buyer", "Buyer GSTIN", "Buyer Address",
	"Bank", "Account Name", "Account No", "IFSC", "Branch",
	"Taxable Value", "CGST Rate", "CGST Amount", "SGST Rate", "SGST Amount", "IGST Rate", "IGST Amount",
	"Total Tax", "Grand Total", "Amount in Words", "Line Items",
}

var lineItemHeaders = []string{
	"File", "Page", "Invoice No", "Sr No", "Description", "Item Code", "DRG No", "HSN/SAC",
	"Qty", "Unit", "Price", "Total",
}

var errorHeaders = []string{"File", "Error"}

// XLSX returns the workbook bytes: one Invoices row per record, one
// LineItems row per item and one Errors row per failed document.
func (e *Exporter) XLSX(res entity.BatchResult) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetInvoices); err != nil {
		return nil, exportErr("init workbook", err)
	}
	for _, s := range []string{SheetLineItems, SheetErrors} {
		if _, err := f.NewSheet(s); err != nil {
			return nil, exportErr("init workbook", err)
		}
	}

	scanned := res.ScannedAt.UTC().Format("2006-01-02T15:04:05Z")
	batchID := res.BatchID.String()

	invRows := make([][]any, 0, len(res.Invoices))
	var itemRows [][]any
	for _, r := range res.Invoices {
		invRows = append(invRows, invoiceRow(batchID, scanned, r))
		for _, it := range r.LineItems {
			itemRows = append(itemRows, []any{
				text(r.SourceFiles.Filename), r.SourceFiles.Page, str(r.Invoice.InvoiceNumber),
				str(it.SrNo), str(it.Description), str(it.ItemCode), str(it.DrgNumber), str(it.HSNSAC),
				it.Qty, text(it.Unit), num(it.Price), num(it.TotalAmount),
			})
		}
	}
	errRows := make([][]any, 0, len(res.Errors))
	for _, be := range res.Errors {
		errRows = append(errRows, []any{text(be.File), text(be.Error)})
	}

	if err := writeSheet(f, SheetInvoices, invoiceHeaders, invRows); err != nil {
		return nil, err
	}
	if err := writeSheet(f, SheetLineItems, lineItemHeaders, itemRows); err != nil {
		return nil, err
	}
	if err := writeSheet(f, SheetErrors, errorHeaders, errRows); err != nil {
		return nil, err
	}

	_ = f.SetColWidth(SheetInvoices, "A", "B", 22)
	_ = f.SetColWidth(SheetInvoices, "C", "C", 28)
	_ = f.SetColWidth(SheetInvoices, "N", "N", 32)
	_ = f.SetColWidth(SheetInvoices, "Q", "Q", 48)
	_ = f.SetColWidth(SheetLineItems, "E", "E", 48)
	_ = f.SetColWidth(SheetErrors, "A", "A", 28)
	_ = f.SetColWidth(SheetErrors, "B", "B", 80)

	idx, _ := f.GetSheetIndex(SheetInvoices)
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, exportErr("xlsx write", err)
	}
	return buf.Bytes(), nil
}

func invoiceRow(batchID, scanned string, r entity.InvoiceRecord) []any {
	fin := r.Financials
	return []any{
		batchID, scanned, text(r.SourceFiles.Filename), r.SourceFiles.Page,
		string(r.SourceFiles.Status), text(r.SourceFiles.Method),
		str(r.Invoice.InvoiceType), str(r.Invoice.InvoiceNumber), str(r.Invoice.InvoiceDate),
		str(r.Invoice.DueDate), str(r.Invoice.PONumber), str(r.Invoice.PlaceOfSupply), text(r.Invoice.Currency),
		str(r.Vendor.Name), str(r.Vendor.GSTIN), str(r.Vendor.PAN), str(r.Vendor.Address), str(r.Vendor.Email),
		str(r.Buyer.Name), str(r.Buyer.GSTIN), str(r.Buyer.Address),
		str(r.Bank.BankName), str(r.Bank.AccountName), str(r.Bank.AccountNumber), str(r.Bank.IFSC), str(r.Bank.Branch),
		num(fin.TotalBeforeTax),
		num(fin.CGST.Rate), num(fin.CGST.Amount),
		num(fin.SGST.Rate), num(fin.SGST.Amount),
		num(fin.IGST.Rate), num(fin.IGST.Amount),
		num(fin.TotalTax), num(fin.TotalAfterTax),
		str(r.Invoice.AmountInWords), len(r.LineItems),
	}
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	head := make([]any, len(headers))
	for i, h := range headers {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return exportErr("write "+sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return exportErr("write "+sheet, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return exportErr("write "+sheet, err)
		}
	}
	if len(headers) > 0 {
		_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	}
	return nil
}

// Sanitize neutralizes values a spreadsheet would evaluate as a formula.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@':
		return "'" + s
	}
	return s
}

func text(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return Sanitize(s)
}

func str(p *string) any {
	if p == nil {
		return nil
	}
	return text(*p)
}

func num(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func exportErr(msg string, err error) error {
	return common.NewAppError(common.CodeExport, msg, fmt.Errorf("%w: %w", common.ErrExport, err))
}
