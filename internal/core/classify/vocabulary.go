package classify

import (
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

// Vocabulary maps a block type to the keywords that signal it. Keywords are
// matched as upper-case substrings of the block text.
type Vocabulary map[constants.BlockType][]string

// DefaultVocabulary is the keyword table tuned on Indian GST invoices.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		constants.BlockDeclaration: {"DECLARE", "CERTIFIED", "JURISDICTION"},
		constants.BlockBank:        {"BANK", "IFSC", "A/C", "ACCOUNT", "BRANCH"},
		constants.BlockTotals:      {"TOTAL", "CGST", "SGST", "IGST", "TAXABLE", "GRAND"},
		constants.BlockInvoiceMeta: {"INVOICE", "DATE", "PO NO", "ORDER NO", "CHALLAN"},
		constants.BlockVendor:      {"GST", "PVT", "LTD", "LIMITED", "ENGINEERS", "WORKS", "INDUSTRIES", "ENTERPRISES", "TRADERS", "CORPORATION", "COMPANY", "LLP"},
		constants.BlockBuyer:       {"BILL TO", "BUYER"},
	}
}

// Has reports whether upper contains any keyword listed for t.
func (v Vocabulary) Has(t constants.BlockType, upper string) bool {
	return ContainsAny(upper, v[t])
}

// ContainsAny reports whether s contains any of the keywords.
func ContainsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
