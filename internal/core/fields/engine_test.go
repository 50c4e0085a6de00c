package fields

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

const sampleInvoice = `ACME ENGINEERS PVT LTD
Plot 7, MIDC Bhosari
Pune Maharashtra 411026
GSTIN: 27ABCDE1234F1Z5
Email: accounts@acme-eng.in
TAX INVOICE
Invoice No: AE/24-25/118
Invoice Date: 05/04/2024
PO No: 4500012345
Place of Supply: Maharashtra
Bill To:
Globex Pumps Pvt Ltd
Survey 12 Chinchwad
GSTIN: 27AABCG9876K1Z2
1 MOTOR STOOL 2 NOS 500.00 1,000.00
HSN: 73089090
Taxable Value 1,000.00
CGST 9% 90.00
SGST 9% 90.00
Grand Total 1,180.00
Amount in Words: Rupees One Thousand One Hundred Eighty Only
Bank Name: State Bank of India
A/C No: 112233445566
IFSC: SBIN0001234
Branch: Bhosari`

func TestEngineExtract_FlatText(t *testing.T) {
	e := NewEngine(Config{}, nil)
	f, err := e.Extract(Page{File: "acme.pdf", Number: 1, Text: sampleInvoice})
	require.NoError(t, err)

	assert.Equal(t, "TAX INVOICE", entity.Deref(f.Invoice.InvoiceType))
	assert.Equal(t, "AE/24-25/118", entity.Deref(f.Invoice.InvoiceNumber))
	assert.Equal(t, "05/04/2024", entity.Deref(f.Invoice.InvoiceDate))
	assert.Equal(t, "4500012345", entity.Deref(f.Invoice.PONumber))
	assert.Equal(t, "Maharashtra", entity.Deref(f.Invoice.PlaceOfSupply))
	assert.Equal(t, "INR", f.Invoice.Currency)
	assert.Equal(t, "Rupees One Thousand One Hundred Eighty Only", entity.Deref(f.Invoice.AmountInWords))

	assert.Equal(t, "ACME ENGINEERS PVT LTD", entity.Deref(f.Vendor.Name))
	assert.Equal(t, "Plot 7, MIDC Bhosari, Pune Maharashtra 411026", entity.Deref(f.Vendor.Address))
	assert.Equal(t, "27ABCDE1234F1Z5", entity.Deref(f.Vendor.GSTIN))
	assert.Equal(t, "ABCDE1234F", entity.Deref(f.Vendor.PAN))
	assert.Equal(t, "accounts@acme-eng.in", entity.Deref(f.Vendor.Email))

	assert.Equal(t, "Globex Pumps Pvt Ltd", entity.Deref(f.Buyer.Name))
	assert.Equal(t, "Survey 12 Chinchwad", entity.Deref(f.Buyer.Address))
	assert.Equal(t, "27AABCG9876K1Z2", entity.Deref(f.Buyer.GSTIN))

	require.Len(t, f.Items, 1)
	assert.Equal(t, "73089090", entity.Deref(f.Items[0].HSNSAC))
	assert.Equal(t, 2.0, f.Items[0].Qty)
	assert.Equal(t, 1000.0, *f.Items[0].TotalAmount)

	assert.Equal(t, 1000.0, *f.Financials.TotalBeforeTax)
	assert.Equal(t, 1180.0, *f.Financials.TotalAfterTax)
	assert.True(t, f.Financials.CGST.Valid())
	assert.True(t, f.Financials.SGST.Valid())
	assert.Equal(t, 180.0, *f.Financials.TotalTax)

	assert.Equal(t, "State Bank of India", entity.Deref(f.Bank.BankName))
	assert.Equal(t, "112233445566", entity.Deref(f.Bank.AccountNumber))
	assert.Equal(t, "SBIN0001234", entity.Deref(f.Bank.IFSC))
	assert.Equal(t, "Bhosari", entity.Deref(f.Bank.Branch))
	assert.Nil(t, f.Bank.AccountName)
}

func TestEngineExtract_EmptyPage(t *testing.T) {
	e := NewEngine(Config{}, nil)
	_, err := e.Extract(Page{File: "blank.pdf", Number: 2, Text: " \n\t\n"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrEmptyText))
	assert.Equal(t, common.CodeEmptyText, common.CodeOf(err))
	assert.Contains(t, err.Error(), "blank.pdf page 2")
}

func TestEngineExtract_PrefersLinesOverText(t *testing.T) {
	e := NewEngine(Config{}, nil)
	f, err := e.Extract(Page{
		Text:  "ignored",
		Lines: []entity.Line{{Text: "ACME WORKS"}, {Text: "Invoice No: 7"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "7", entity.Deref(f.Invoice.InvoiceNumber))
	assert.Equal(t, "ACME WORKS", entity.Deref(f.Vendor.Name))
}

type fakeAnnotator struct{ orgs []string }

func (f fakeAnnotator) Organizations(string) []string { return f.orgs }

func TestEngineExtract_AnnotatorFallback(t *testing.T) {
	e := NewEngine(Config{}, nil, WithAnnotator(fakeAnnotator{orgs: []string{"GSTIN 27ABCDE1234F1Z5", "Initech Tooling"}}))
	f, err := e.Extract(Page{Text: "Invoice No: 9\nsome text"})
	require.NoError(t, err)
	assert.Equal(t, "Initech Tooling", entity.Deref(f.Vendor.Name))
}

func TestEngineExtract_UnknownIsNil(t *testing.T) {
	e := NewEngine(Config{}, nil)
	f, err := e.Extract(Page{Text: "hello world\nnothing to see"})
	require.NoError(t, err)
	assert.Nil(t, f.Invoice.InvoiceNumber)
	assert.Nil(t, f.Vendor.Name)
	assert.Nil(t, f.Buyer.Name)
	assert.Nil(t, f.Financials.TotalBeforeTax)
	assert.False(t, f.Financials.CGST.Valid())
	assert.Empty(t, f.Items)
}

func TestVendorAndBuyerName(t *testing.T) {
	lines := []string{
		"Phone: 020 1234 5678",
		"ACME INDUSTRIES, Pune, 411026",
		"Sharma Engineering Works",
		"Invoice To",
		"GSTIN 27AABCG9876K1Z2",
		"Initech Ltd",
	}
	assert.Equal(t, "Sharma Engineering Works", VendorName(lines, 10))
	assert.Equal(t, "", VendorName(lines, 2))
	assert.Equal(t, "Initech Ltd", BuyerName(lines, 5))
	assert.Equal(t, "", BuyerName(lines, 1))
	assert.Equal(t, "Globex", BuyerName([]string{"Buyer: Globex"}, 5))
}

func TestInvoiceMeta_DueDateIsNotInvoiceDate(t *testing.T) {
	v := DefaultVocabulary()

	meta := v.invoiceMeta([]string{"Due Date: 15/02/2024", "Dt 01/01/2024"}, 0, "INR")
	assert.Equal(t, "01/01/2024", entity.Deref(meta.InvoiceDate))
	assert.Equal(t, "15/02/2024", entity.Deref(meta.DueDate))

	meta = v.invoiceMeta([]string{"Due Date: 15/02/2024"}, 0, "INR")
	assert.Nil(t, meta.InvoiceDate)
	assert.Equal(t, "15/02/2024", entity.Deref(meta.DueDate))

	meta = v.invoiceMeta([]string{"Due Date: 15/02/2024", "Date: 10/01/2024"}, 0, "INR")
	assert.Equal(t, "10/01/2024", entity.Deref(meta.InvoiceDate))
}
