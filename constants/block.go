package constants

import "strings"

// BlockType is the semantic label assigned to a layout block.
type BlockType string

const (
	BlockBank        BlockType = "BANK"
	BlockDeclaration BlockType = "DECLARATION"
	BlockItemTable   BlockType = "ITEM_TABLE"
	BlockTotals      BlockType = "TOTALS"
	BlockInvoiceMeta BlockType = "INVOICE_META"
	BlockVendor      BlockType = "VENDOR"
	BlockBuyer       BlockType = "BUYER"
	BlockUnknown     BlockType = "UNKNOWN"

	// BlockSummary is accepted as an alias of TOTALS by the financial
	// extractor; the default rule set never emits it.
	BlockSummary BlockType = "SUMMARY"
)

var allBlockTypes = []BlockType{
	BlockBank,
	BlockDeclaration,
	BlockItemTable,
	BlockTotals,
	BlockInvoiceMeta,
	BlockVendor,
	BlockBuyer,
	BlockUnknown,
}

// BlockTypes returns the closed set of classifier outcomes.
func BlockTypes() []BlockType {
	out := make([]BlockType, len(allBlockTypes))
	copy(out, allBlockTypes)
	return out
}

// ParseBlockType maps a label back to a BlockType, UNKNOWN when it is not recognized.
func ParseBlockType(s string) (BlockType, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == string(BlockSummary) {
		return BlockSummary, true
	}
	for _, bt := range allBlockTypes {
		if s == string(bt) {
			return bt, true
		}
	}
	return BlockUnknown, false
}
