package fields

import (
	"math"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

const DefaultAmountTolerance = 2.0

// taxLine is the first (rate, amount) reading found for one tax name.
type taxLine struct {
	rate, amount       float64
	hasRate, hasAmount bool
}

func findTax(lines []string, name string) taxLine {
	var t taxLine
	for _, l := range lines {
		if !strings.Contains(strings.ToUpper(l), name) {
			continue
		}
		if !t.hasRate {
			if r, ok := percent(l); ok {
				t.rate, t.hasRate = r, true
			}
		}
		if !t.hasAmount {
			if as := amounts(l); len(as) > 0 {
				t.amount, t.hasAmount = as[len(as)-1], true
			}
		}
		if t.hasAmount {
			return t
		}
	}
	return t
}

// validateTax accepts (rate, amount) only when amount is base*rate/100
// within tol. Anything else is reported as unknown.
func validateTax(base *float64, rate, amount, tol float64) entity.TaxEntry {
	if base == nil {
		return entity.TaxEntry{}
	}
	expected := *base * rate / 100
	if math.Abs(amount-expected) > tol {
		return entity.TaxEntry{}
	}
	return entity.TaxEntry{Rate: entity.Float(rate), Amount: entity.Float(amount)}
}

func firstAmountOn(lines []string, keyword string) *float64 {
	for _, l := range lines {
		if !strings.Contains(strings.ToUpper(l), keyword) {
			continue
		}
		if as := amounts(l); len(as) > 0 {
			return entity.Float(as[0])
		}
	}
	return nil
}

// parseFinancials reads totals and cross-validated tax entries from lines.
func parseFinancials(lines []string, tol float64) entity.Financials {
	var f entity.Financials
	f.TotalBeforeTax = firstAmountOn(lines, "TAXABLE")
	f.TotalAfterTax = firstAmountOn(lines, "GRAND TOTAL")

	cgst := findTax(lines, "CGST")
	if cgst.hasRate && cgst.hasAmount {
		f.CGST = validateTax(f.TotalBeforeTax, cgst.rate, cgst.amount, tol)
	}

	sgst := findTax(lines, "SGST")
	switch {
	case sgst.hasRate && sgst.hasAmount:
		f.SGST = validateTax(f.TotalBeforeTax, sgst.rate, sgst.amount, tol)
	case sgst.hasAmount && f.CGST.Valid():
		// SGST mirrors CGST; table OCR often loses the second rate column
		f.SGST = validateTax(f.TotalBeforeTax, *f.CGST.Rate, sgst.amount, tol)
	}

	igst := findTax(lines, "IGST")
	if igst.hasRate && igst.hasAmount {
		f.IGST = validateTax(f.TotalBeforeTax, igst.rate, igst.amount, tol)
	}

	var sum float64
	var found bool
	for _, t := range []entity.TaxEntry{f.CGST, f.SGST, f.IGST} {
		if t.Valid() {
			sum += *t.Amount
			found = true
		}
	}
	if found {
		f.TotalTax = entity.Float(math.Round(sum*100) / 100)
	}
	return f
}
