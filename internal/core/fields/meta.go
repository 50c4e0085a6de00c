package fields

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

func (v Vocabulary) invoiceMeta(lines []string, maxLabel int, currency string) entity.InvoiceMeta {
	known := v.Labels.All()
	meta := entity.InvoiceMeta{
		InvoiceNumber: entity.Str(findLabelValue(lines, v.Labels.InvoiceNumber, known, maxLabel)),
		DueDate:       entity.Str(findLabelValue(lines, v.Labels.DueDate, known, maxLabel)),
		PONumber:      entity.Str(findLabelValue(lines, v.Labels.PONumber, known, maxLabel)),
		PlaceOfSupply: entity.Str(findLabelValue(lines, v.Labels.PlaceOfSupply, known, maxLabel)),
		Currency:      detectCurrency(lines, currency),
	}

	for _, l := range lines {
		u := strings.ToUpper(l)
		for _, t := range v.InvoiceTypes {
			if strings.Contains(u, t) {
				meta.InvoiceType = entity.Str(t)
				break
			}
		}
		if meta.InvoiceType != nil {
			break
		}
	}

	// label first, then the first date anywhere on the page; due date lines
	// never feed the invoice date
	issued := withoutDueDates(lines)
	date := findLabelValue(issued, v.Labels.InvoiceDate, known, maxLabel)
	if d := firstDate(date); d != "" {
		date = d
	}
	if date == "" {
		for _, l := range issued {
			if d := firstDate(l); d != "" {
				date = d
				break
			}
		}
	}
	meta.InvoiceDate = entity.Str(date)
	if d := firstDate(entity.Deref(meta.DueDate)); d != "" {
		meta.DueDate = entity.Str(d)
	}

	meta.AmountInWords = entity.Str(amountInWords(lines, v.Labels.AmountInWords))
	return meta
}

func withoutDueDates(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if !strings.Contains(strings.ToUpper(l), "DUE DATE") {
			out = append(out, l)
		}
	}
	return out
}

// amountInWords is not length-limited; spelled-out totals are long.
func amountInWords(lines, labels []string) string {
	for _, label := range labels {
		re := labelRe(label)
		for _, l := range lines {
			if m := re.FindStringSubmatch(l); m != nil {
				if v := strings.Trim(m[1], valueTrim); v != "" {
					return v
				}
			}
		}
	}
	for _, l := range lines {
		u := strings.ToUpper(l)
		if strings.Contains(u, "ONLY") && (strings.Contains(u, "RUPEES") || strings.Contains(u, "INR")) {
			return strings.TrimSpace(l)
		}
	}
	return ""
}

var currencyRe = regexp.MustCompile(`\b(INR|USD|EUR|GBP)\b`)

func detectCurrency(lines []string, fallback string) string {
	if fallback == "" {
		fallback = "INR"
	}
	for _, l := range lines {
		if m := currencyRe.FindString(strings.ToUpper(l)); m != "" {
			return m
		}
	}
	return fallback
}

func (v Vocabulary) bankDetails(lines []string, maxLabel int) entity.BankDetails {
	known := v.Labels.All()
	b := entity.BankDetails{
		BankName:    entity.Str(findLabelValue(lines, v.Labels.BankName, known, maxLabel)),
		AccountName: entity.Str(findLabelValue(lines, v.Labels.AccountName, known, maxLabel)),
		Branch:      entity.Str(findLabelValue(lines, v.Labels.Branch, known, maxLabel)),
	}
	upper := upperLines(lines)
	for _, u := range upper {
		if strings.Contains(u, "IFSC") {
			if b.IFSC = entity.Str(ifscRe.FindString(u)); b.IFSC != nil {
				break
			}
		}
	}
	for _, u := range upper {
		if b.IFSC != nil {
			break
		}
		b.IFSC = entity.Str(ifscRe.FindString(u))
	}
	// account numbers only on account lines, then anywhere in the selection
	for _, u := range upper {
		if containsAny(u, []string{"A/C", "ACCOUNT", "AC NO"}) {
			if m := accountRe.FindString(u); m != "" {
				b.AccountNumber = entity.Str(m)
				break
			}
		}
	}
	if b.AccountNumber == nil {
		for _, u := range upper {
			if gstinRe.MatchString(u) {
				continue
			}
			if m := accountRe.FindString(u); m != "" {
				b.AccountNumber = entity.Str(m)
				break
			}
		}
	}
	return b
}
