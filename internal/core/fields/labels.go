package fields

import (
	"regexp"
	"strings"
	"sync"
	"unicode"
)

const DefaultMaxLabelValue = 60

var (
	labelReCache sync.Map // label -> *regexp.Regexp
	valueTrim    = " \t|,;:-"
)

func labelRe(label string) *regexp.Regexp {
	if re, ok := labelReCache.Load(label); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?i)(?:^|[^A-Za-z])` + regexp.QuoteMeta(label) + `\.?\s*[:\-]\s*(.*)$`)
	labelReCache.Store(label, re)
	return re
}

// FindLabelValue returns the value following the first label synonym that
// has an acceptable `Label: value` or `Label - value` match on a single line.
// It never looks past the end of the line and returns "" when nothing is
// accepted.
func FindLabelValue(lines []string, labels []string, maxLen int) string {
	return findLabelValue(lines, labels, DefaultVocabulary().Labels.All(), maxLen)
}

func findLabelValue(lines, labels, known []string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLabelValue
	}
	others := otherLabels(known, labels)
	for _, label := range labels {
		re := labelRe(label)
		for _, line := range lines {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			v := strings.Trim(m[1], valueTrim)
			if acceptLabelValue(v, others, maxLen) {
				return v
			}
		}
	}
	return ""
}

func acceptLabelValue(v string, others []string, maxLen int) bool {
	if v == "" || len(v) > maxLen {
		return false
	}
	if strings.Count(v, "|")+strings.Count(v, "=") >= 2 {
		return false
	}
	if !strings.ContainsFunc(v, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) {
		return false
	}
	for _, o := range others {
		if labelRe(o).MatchString(v) {
			return false
		}
	}
	return true
}

// otherLabels is known minus the synonyms being looked up, and minus any
// known label that is a substring of one of them.
func otherLabels(known, labels []string) []string {
	var out []string
	for _, k := range known {
		ku := strings.ToUpper(k)
		skip := false
		for _, l := range labels {
			if strings.Contains(strings.ToUpper(l), ku) {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, k)
		}
	}
	return out
}
