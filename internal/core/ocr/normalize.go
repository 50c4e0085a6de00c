package ocr

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reBoxNoise   = regexp.MustCompile(`(?m)^\s*[_\-=|]{3,}\s*$`)

	// rupee sign, its mojibake, and "Rs"/"Rs." as a standalone token
	reRupee = regexp.MustCompile(`₹|â‚¹|\bRs\b\.?`)
)

// Normalize collapses noisy whitespace, drops ruler lines and rewrites
// rupee notations to "INR". Line breaks are kept; runs of blank lines
// collapse into one.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = NormalizeCurrency(s)
	s = reTabs.ReplaceAllString(s, " ")
	s = reBoxNoise.ReplaceAllString(s, "")
	s = reMultiSpace.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	s = strings.Join(lines, "\n")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// NormalizeCurrency rewrites ₹, Rs and Rs. to "INR ".
func NormalizeCurrency(s string) string {
	if !strings.Contains(s, "Rs") && !strings.Contains(s, "₹") && !strings.Contains(s, "â‚") {
		return s
	}
	s = reRupee.ReplaceAllString(s, "INR ")
	return reMultiSpace.ReplaceAllString(s, " ")
}
