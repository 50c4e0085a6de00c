package entity

import (
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

// LineItem is one row of the invoice's item table. Qty and Unit default to
// 1.0 and "NOS" when the source does not state them.
type LineItem struct {
	SrNo        *string  `json:"srno"`
	Description *string  `json:"description"`
	ItemCode    *string  `json:"item_code"`
	DrgNumber   *string  `json:"drg_number"`
	HSNSAC      *string  `json:"hsn_sac_code"`
	Qty         float64  `json:"qty"`
	Unit        string   `json:"unit"`
	Price       *float64 `json:"price"`
	TotalAmount *float64 `json:"total_amount"`
}

// TaxEntry holds a cross-validated (rate, amount) pair. Both are nil when the
// pair was missing or failed validation.
type TaxEntry struct {
	Rate   *float64 `json:"rate"`
	Amount *float64 `json:"amount"`
}

// Valid reports whether both rate and amount were accepted.
func (t TaxEntry) Valid() bool { return t.Rate != nil && t.Amount != nil }

// Financials are the invoice totals.
type Financials struct {
	TotalBeforeTax *float64 `json:"total_before_tax"`
	TotalAfterTax  *float64 `json:"total_after_tax"`
	CGST           TaxEntry `json:"cgst"`
	SGST           TaxEntry `json:"sgst"`
	IGST           TaxEntry `json:"igst"`
	TotalTax       *float64 `json:"total_tax"`
}

// InvoiceMeta are the labelled header fields of an invoice.
type InvoiceMeta struct {
	InvoiceType   *string `json:"invoice_type"`
	InvoiceNumber *string `json:"invoice_number"`
	InvoiceDate   *string `json:"invoice_date"`
	DueDate       *string `json:"due_date"`
	PONumber      *string `json:"po_number"`
	PlaceOfSupply *string `json:"place_of_supply"`
	Currency      string  `json:"currency"`
	AmountInWords *string `json:"amount_in_words"`
}

// Party identifies the vendor or the buyer.
type Party struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	GSTIN   *string `json:"gstin"`
	PAN     *string `json:"pan,omitempty"`
	Email   *string `json:"email,omitempty"`
}

// BankDetails are the vendor's remittance details.
type BankDetails struct {
	BankName      *string `json:"bank_name"`
	AccountName   *string `json:"account_name"`
	AccountNumber *string `json:"account_number"`
	IFSC          *string `json:"ifsc"`
	Branch        *string `json:"branch"`
}

// SourceFile describes where a record came from.
type SourceFile struct {
	Filename    string               `json:"filename"`
	Path        string               `json:"path"`
	Page        int                  `json:"page"`
	Status      constants.PageStatus `json:"status"`
	Method      string               `json:"method"`
	ContentHash string               `json:"content_hash,omitempty"`
}

// InvoiceRecord is the assembled result for a single page. Records are built
// once by the orchestrator and never mutated afterwards.
type InvoiceRecord struct {
	BatchID      uuid.UUID     `json:"batch_id"`
	Invoice      InvoiceMeta   `json:"invoice"`
	Vendor       Party         `json:"vendor"`
	Buyer        Party         `json:"buyer"`
	Bank         BankDetails   `json:"bank_details"`
	LineItems    []LineItem    `json:"line_items"`
	Financials   Financials    `json:"financials"`
	SourceFiles  SourceFile    `json:"source_files"`
	RawText      string        `json:"raw_text,omitempty"`
	LayoutBlocks []LayoutBlock `json:"layout_blocks,omitempty"`
}

// Str returns a pointer to the trimmed s, or nil when s is blank.
func Str(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Deref returns *p or "" for nil.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
