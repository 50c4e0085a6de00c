package fields

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

const (
	DefaultQty  = 1.0
	DefaultUnit = "NOS"
)

var (
	triggerRe  = regexp.MustCompile(`^\s*(\d{1,2})[.)]?\s+`)
	hsnLabelRe = regexp.MustCompile(`(?i)\bHSN(?:\s*/\s*SAC)?(?:\s*CODE)?\s*[:\-]?\s*(\d{4,8})\b`)
	hsnBareRe  = regexp.MustCompile(`\b(\d{8}|\d{6})\b`)
	drgRe      = regexp.MustCompile(`(?i)\bDRG\.?\s*(?:NO\.?)?\s*[:\-]?\s*([A-Z0-9][A-Z0-9\-/.]*[A-Z0-9])`)
	codeRe     = regexp.MustCompile(`(?i)\b(?:ITEM\s*CODE|PART\s*NO\.?|ITEM\s*NO\.?)\s*[:\-]\s*([A-Z0-9][A-Z0-9\-/]{2,})`)
	spacesRe   = regexp.MustCompile(`\s+`)
)

type itemState int

const (
	noOpenItem itemState = iota
	itemOpen
)

// itemParser is the two-state line item machine. A trigger line always opens
// an item and emits the previous one. While an item is open, a totals line
// closes it and any other line extends it.
type itemParser struct {
	vocab Vocabulary
	units *regexp.Regexp

	state itemState
	cur   entity.LineItem
	desc  []string
	items []entity.LineItem
}

func newItemParser(v Vocabulary) *itemParser {
	return &itemParser{vocab: v, units: unitRe(v.Units)}
}

func unitRe(units []string) *regexp.Regexp {
	quoted := make([]string, len(units))
	for i, u := range units {
		quoted[i] = regexp.QuoteMeta(u)
	}
	return regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(` + strings.Join(quoted, "|") + `)\b`)
}

func (p *itemParser) feed(line string) {
	upper := strings.ToUpper(line)
	switch {
	case triggerRe.MatchString(line):
		p.close()
		p.open(line)
	case p.state == itemOpen && containsAny(upper, p.vocab.Totals):
		// continuation never crosses into the totals section
		p.close()
	case p.state == itemOpen:
		p.extend(line)
	}
}

func (p *itemParser) finish() []entity.LineItem {
	p.close()
	return p.items
}

func (p *itemParser) open(line string) {
	m := triggerRe.FindStringSubmatchIndex(line)
	srno := line[m[2]:m[3]]
	rest := line[m[1]:]

	item := entity.LineItem{SrNo: entity.Str(srno), Qty: DefaultQty, Unit: DefaultUnit}

	locs := amountRe.FindAllStringIndex(rest, -1)
	switch {
	case len(locs) >= 2:
		price, _ := parseAmount(rest[locs[len(locs)-2][0]:locs[len(locs)-2][1]])
		total, _ := parseAmount(rest[locs[len(locs)-1][0]:locs[len(locs)-1][1]])
		item.Price = entity.Float(price)
		item.TotalAmount = entity.Float(total)
	case len(locs) == 1:
		total, _ := parseAmount(rest[locs[0][0]:locs[0][1]])
		item.TotalAmount = entity.Float(total)
	}

	descText := rest
	if n := len(locs); n > 0 {
		last := locs[n-1]
		descText = rest[:last[0]] + rest[last[1]:]
	}

	// qty and unit only from the non-amount part of the line
	withoutAmounts := amountRe.ReplaceAllString(rest, " ")
	if um := p.units.FindStringSubmatch(withoutAmounts); um != nil {
		if q, err := strconv.ParseFloat(um[1], 64); err == nil && q > 0 {
			item.Qty = q
			item.Unit = strings.ToUpper(um[2])
		}
	}

	p.cur = item
	p.desc = nil
	p.appendDesc(descText)
	p.backfill(withoutAmounts)
	p.state = itemOpen
}

func (p *itemParser) extend(line string) {
	p.appendDesc(line)
	p.backfill(line)
}

func (p *itemParser) appendDesc(s string) {
	s = strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
	if s != "" {
		p.desc = append(p.desc, s)
	}
}

func (p *itemParser) backfill(line string) {
	if p.cur.DrgNumber == nil {
		if m := drgRe.FindStringSubmatch(line); m != nil {
			p.cur.DrgNumber = entity.Str(m[1])
		}
	}
	if p.cur.HSNSAC == nil {
		if m := hsnLabelRe.FindStringSubmatch(line); m != nil {
			p.cur.HSNSAC = entity.Str(m[1])
		} else if m := hsnBareRe.FindStringSubmatch(line); m != nil {
			p.cur.HSNSAC = entity.Str(m[1])
		}
	}
	if p.cur.ItemCode == nil {
		if m := codeRe.FindStringSubmatch(line); m != nil {
			p.cur.ItemCode = entity.Str(m[1])
		}
	}
}

func (p *itemParser) close() {
	if p.state != itemOpen {
		return
	}
	p.cur.Description = entity.Str(strings.Join(p.desc, " "))
	p.items = append(p.items, p.cur)
	p.cur = entity.LineItem{}
	p.desc = nil
	p.state = noOpenItem
}

// parseItems runs the item machine over lines.
func parseItems(v Vocabulary, lines []string) []entity.LineItem {
	p := newItemParser(v)
	for _, l := range lines {
		p.feed(l)
	}
	return p.finish()
}
