package fields

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// amountRe matches comma-grouped or plain amounts with two decimals.
	// The plain branch keeps "1000.00" whole instead of matching "000.00".
	amountRe  = regexp.MustCompile(`\b(?:\d{1,3}(?:,\d{3})+|\d+)\.\d{2}\b`)
	percentRe = regexp.MustCompile(`(\d{1,2}(?:\.\d{1,2})?)\s*%`)

	gstinRe   = regexp.MustCompile(`\d{2}[A-Z]{5}\d{4}[A-Z][1-9A-Z]Z[0-9A-Z]`)
	panRe     = regexp.MustCompile(`[A-Z]{5}[0-9]{4}[A-Z]`)
	ifscRe    = regexp.MustCompile(`[A-Z]{4}0[A-Z0-9]{6}`)
	accountRe = regexp.MustCompile(`\b\d{9,18}\b`)
	emailRe   = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	dateRes   = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{2}[/-]\d{2}[/-]\d{4}\b`),
		regexp.MustCompile(`\b\d{1,2}[- ][A-Za-z]{3}[- ]\d{2,4}\b`),
	}
	pincodeRe  = regexp.MustCompile(`\b\d{6}\b`)
	alphaRunRe = regexp.MustCompile(`[A-Za-z]{3,}`)
)

// amounts returns every amount token on the line as floats, in order.
func amounts(line string) []float64 {
	var out []float64
	for _, m := range amountRe.FindAllString(line, -1) {
		if v, ok := parseAmount(m); ok {
			out = append(out, v)
		}
	}
	return out
}

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func percent(line string) (float64, bool) {
	m := percentRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// firstDate returns the first date-looking token in s.
func firstDate(s string) string {
	best, at := "", -1
	for _, re := range dateRes {
		if loc := re.FindStringIndex(s); loc != nil && (at < 0 || loc[0] < at) {
			best, at = s[loc[0]:loc[1]], loc[0]
		}
	}
	return best
}

func upperLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.ToUpper(l)
	}
	return out
}
