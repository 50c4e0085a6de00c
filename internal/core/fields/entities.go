package fields

import (
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

const (
	DefaultVendorScanLines = 10
	DefaultBuyerScanLines  = 5
	maxAddressLines        = 4
)

// VendorName returns the first of the first scan lines that carries a company
// suffix and passes the name filter.
func VendorName(lines []string, scan int) string {
	return DefaultVocabulary().vendorName(lines, scan)
}

// BuyerName returns the first valid name within scan lines after a buyer
// anchor ("BILL TO", "INVOICE TO", "BUYER").
func BuyerName(lines []string, scan int) string {
	name, _ := DefaultVocabulary().buyerName(lines, scan)
	return name
}

func (v Vocabulary) vendorName(lines []string, scan int) string {
	i := v.vendorIndex(lines, scan)
	if i < 0 {
		return ""
	}
	return cleanName(lines[i])
}

func (v Vocabulary) vendorIndex(lines []string, scan int) int {
	if scan <= 0 {
		scan = DefaultVendorScanLines
	}
	for i := 0; i < len(lines) && i < scan; i++ {
		if containsAny(strings.ToUpper(lines[i]), v.CompanySuffixes) && v.validName(lines[i]) {
			return i
		}
	}
	return -1
}

// buyerName also returns the index of the line the name came from.
func (v Vocabulary) buyerName(lines []string, scan int) (string, int) {
	if scan <= 0 {
		scan = DefaultBuyerScanLines
	}
	anchor := v.buyerAnchor(lines)
	if anchor < 0 {
		return "", -1
	}
	// "Bill To: Globex Corp" carries the name on the anchor line itself
	if rest := afterAnchor(lines[anchor], v.BuyerAnchors); rest != "" && v.validName(rest) {
		return cleanName(rest), anchor
	}
	for i := anchor + 1; i < len(lines) && i <= anchor+scan; i++ {
		if v.validName(lines[i]) {
			return cleanName(lines[i]), i
		}
	}
	return "", -1
}

func (v Vocabulary) buyerAnchor(lines []string) int {
	for i, l := range lines {
		if containsAny(strings.ToUpper(l), v.BuyerAnchors) {
			return i
		}
	}
	return -1
}

func afterAnchor(line string, anchors []string) string {
	u := strings.ToUpper(line)
	for _, a := range anchors {
		if i := strings.Index(u, a); i >= 0 {
			return strings.Trim(line[i+len(a):], " \t:-|,")
		}
	}
	return ""
}

// validName rejects contact, GST and bank lines, pincodes and comma-heavy
// address fragments, and requires a run of at least three letters.
func (v Vocabulary) validName(line string) bool {
	u := strings.ToUpper(line)
	switch {
	case containsAny(u, v.Contact), containsAny(u, v.GST), containsAny(u, v.Bank):
		return false
	case pincodeRe.MatchString(line):
		return false
	case strings.Count(line, ",") >= 2:
		return false
	}
	return alphaRunRe.MatchString(line)
}

func cleanName(s string) string {
	return strings.Trim(spacesRe.ReplaceAllString(s, " "), " \t:-|,")
}

// address collects up to four lines after the name line, stopping at a GST,
// contact, bank or labelled line.
func (v Vocabulary) address(lines []string, nameAt int) string {
	if nameAt < 0 {
		return ""
	}
	var parts []string
	for i := nameAt + 1; i < len(lines) && len(parts) < maxAddressLines; i++ {
		u := strings.ToUpper(lines[i])
		if containsAny(u, v.GST) || containsAny(u, v.Contact) || containsAny(u, v.Bank) ||
			containsAny(u, v.BuyerAnchors) || containsAny(u, v.InvoiceTypes) ||
			gstinRe.MatchString(u) || isLabelled(lines[i], v.Labels.All()) {
			break
		}
		if p := cleanName(lines[i]); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func isLabelled(line string, labels []string) bool {
	for _, l := range labels {
		if labelRe(l).MatchString(line) {
			return true
		}
	}
	return false
}

// parties extracts vendor and buyer identification from the page lines.
func (v Vocabulary) parties(lines []string, vendorScan, buyerScan, maxLabel int) (vendor, buyer entity.Party) {
	upper := upperLines(lines)

	vi := v.vendorIndex(lines, vendorScan)
	if vi >= 0 {
		vendor.Name = entity.Str(cleanName(lines[vi]))
		vendor.Address = entity.Str(v.address(lines, vi))
	}

	name, bi := v.buyerName(lines, buyerScan)
	buyer.Name = entity.Str(name)
	if bi >= 0 {
		buyer.Address = entity.Str(v.address(lines, bi))
	}
	if a := findLabelValue(lines, v.Labels.Address, v.Labels.All(), maxLabel); a != "" && vendor.Address == nil {
		vendor.Address = entity.Str(a)
	}

	vendorGSTIN, buyerGSTIN := v.gstins(upper)
	vendor.GSTIN = entity.Str(vendorGSTIN)
	buyer.GSTIN = entity.Str(buyerGSTIN)

	if pan := findLabelValue(lines, v.Labels.PAN, v.Labels.All(), maxLabel); pan != "" {
		if m := panRe.FindString(strings.ToUpper(pan)); m != "" {
			vendor.PAN = entity.Str(m)
		}
	}
	if vendor.PAN == nil && vendorGSTIN != "" {
		// characters 3-12 of a GSTIN are the holder's PAN
		vendor.PAN = entity.Str(vendorGSTIN[2:12])
	}

	for _, l := range lines {
		if m := emailRe.FindString(l); m != "" {
			vendor.Email = entity.Str(m)
			break
		}
	}
	return vendor, buyer
}

// gstins returns the first GSTIN on the page as the vendor's and the first
// different GSTIN after the buyer anchor (else the second distinct one) as
// the buyer's.
func (v Vocabulary) gstins(upper []string) (vendor, buyer string) {
	var all []string
	seen := map[string]bool{}
	anchor := v.buyerAnchor(upper)
	for i, l := range upper {
		for _, g := range gstinRe.FindAllString(l, -1) {
			if vendor == "" {
				vendor = g
			}
			if anchor >= 0 && i >= anchor && buyer == "" && g != vendor {
				buyer = g
			}
			if !seen[g] {
				seen[g] = true
				all = append(all, g)
			}
		}
	}
	if buyer == "" && len(all) > 1 {
		buyer = all[1]
	}
	return vendor, buyer
}
