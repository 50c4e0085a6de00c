package fields

// Vocabulary holds the keyword tables the extractors match against. Every
// keyword is upper-case and matched as a substring of the upper-cased line.
type Vocabulary struct {
	Totals          []string // totals/tax section markers, also the item hard stop
	Bank            []string
	Declaration     []string
	CompanySuffixes []string
	Contact         []string
	GST             []string
	BuyerAnchors    []string
	InvoiceTypes    []string
	Units           []string
	Labels          Labels
}

// Labels lists the synonyms tried, in order, for each labelled field.
type Labels struct {
	InvoiceNumber []string
	InvoiceDate   []string
	DueDate       []string
	PONumber      []string
	PlaceOfSupply []string
	AmountInWords []string
	Email         []string
	PAN           []string
	BankName      []string
	AccountName   []string
	Branch        []string
	Address       []string
}

// All returns every label synonym. Used by the cross-contamination guard.
func (l Labels) All() []string {
	var out []string
	for _, group := range [][]string{
		l.InvoiceNumber, l.InvoiceDate, l.DueDate, l.PONumber, l.PlaceOfSupply,
		l.AmountInWords, l.Email, l.PAN, l.BankName, l.AccountName, l.Branch, l.Address,
		{"GSTIN", "IFSC", "STATE CODE", "PHONE", "MOBILE", "HSN"},
	} {
		out = append(out, group...)
	}
	return out
}

// DefaultVocabulary is tuned on Indian GST invoices.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Totals:          []string{"TOTAL", "TAXABLE", "CGST", "SGST", "IGST", "GRAND", "ROUND OFF", "IN WORDS"},
		Bank:            []string{"BANK", "IFSC", "A/C", "ACCOUNT", "BRANCH"},
		Declaration:     []string{"DECLARE", "CERTIFIED", "JURISDICTION"},
		CompanySuffixes: []string{"PVT", "PRIVATE", "LTD", "LIMITED", "LLP", "ENGINEERS", "ENGINEERING", "WORKS", "INDUSTRIES", "ENTERPRISES", "TRADERS", "CORPORATION", "COMPANY", "SOLUTIONS"},
		Contact:         []string{"PHONE", "PH.", "PH:", "TEL:", "TEL.", "MOBILE", "MOB:", "MOB.", "FAX", "EMAIL", "E-MAIL", "@", "WWW", "HTTP"},
		GST:             []string{"GST", "PAN:", "PAN NO", "STATE CODE", "CIN:"},
		BuyerAnchors:    []string{"BILL TO", "BILLED TO", "INVOICE TO", "BUYER"},
		InvoiceTypes:    []string{"TAX INVOICE", "PROFORMA INVOICE", "COMMERCIAL INVOICE", "CREDIT NOTE", "DEBIT NOTE", "DELIVERY CHALLAN"},
		Units:           []string{"NOS", "NO", "PCS", "KGS", "KG", "SET", "SETS", "MTR", "LTR", "EA", "BOX"},
		Labels: Labels{
			InvoiceNumber: []string{"Invoice No", "Invoice Number", "Inv No", "Bill No"},
			InvoiceDate:   []string{"Invoice Date", "Dated", "Date"},
			DueDate:       []string{"Due Date"},
			PONumber:      []string{"PO No", "P.O. No", "PO Number", "Order No", "W.O. No"},
			PlaceOfSupply: []string{"Place of Supply"},
			AmountInWords: []string{"Amount in Words", "Amount Chargeable (in words)"},
			Email:         []string{"Email", "E-mail"},
			PAN:           []string{"PAN No", "PAN"},
			BankName:      []string{"Bank Name", "Bank"},
			AccountName:   []string{"Account Name", "A/C Name"},
			Branch:        []string{"Branch"},
			Address:       []string{"Address"},
		},
	}
}

// itemReject is the hard-reject list for the flat item fallback.
func (v Vocabulary) itemReject() []string {
	out := make([]string, 0, len(v.Bank)+len(v.Declaration)+len(v.Totals))
	out = append(out, v.Bank...)
	out = append(out, v.Declaration...)
	return append(out, v.Totals...)
}

func (v Vocabulary) bankOrDeclaration() []string {
	out := make([]string, 0, len(v.Bank)+len(v.Declaration))
	out = append(out, v.Bank...)
	return append(out, v.Declaration...)
}
