package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

func TestExtractItems_StateMachine(t *testing.T) {
	e := NewEngine(Config{}, nil)
	items := e.ExtractItems(nil, []string{
		"1. Widget A 10.00 20.00",
		"extra note",
		"2. Widget B 5.00 15.00",
	})

	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "1", entity.Deref(first.SrNo))
	assert.Contains(t, entity.Deref(first.Description), "Widget A")
	assert.Contains(t, entity.Deref(first.Description), "extra note")
	require.NotNil(t, first.Price)
	require.NotNil(t, first.TotalAmount)
	assert.Equal(t, 10.0, *first.Price)
	assert.Equal(t, 20.0, *first.TotalAmount)
	assert.Equal(t, DefaultQty, first.Qty)
	assert.Equal(t, DefaultUnit, first.Unit)

	second := items[1]
	assert.Equal(t, "2", entity.Deref(second.SrNo))
	assert.Equal(t, "Widget B 5.00", entity.Deref(second.Description))
	assert.NotContains(t, entity.Deref(second.Description), "extra note")
	assert.Equal(t, 5.0, *second.Price)
	assert.Equal(t, 15.0, *second.TotalAmount)
}

func TestExtractItems_TotalsLineStopsContinuation(t *testing.T) {
	items := parseItems(DefaultVocabulary(), []string{
		"1 MOTOR STOOL 2 NOS 1,250.00 2,500.00",
		"DRG NO: MS-104 HSN: 73089090",
		"Taxable Value 2,500.00",
		"for ACME ENGINEERS",
	})
	require.Len(t, items, 1)
	it := items[0]
	assert.Equal(t, "MOTOR STOOL 2 NOS 1,250.00 DRG NO: MS-104 HSN: 73089090", entity.Deref(it.Description))
	assert.Equal(t, "MS-104", entity.Deref(it.DrgNumber))
	assert.Equal(t, "73089090", entity.Deref(it.HSNSAC))
	assert.Equal(t, 2.0, it.Qty)
	assert.Equal(t, "NOS", it.Unit)
	assert.Equal(t, 1250.0, *it.Price)
	assert.Equal(t, 2500.0, *it.TotalAmount)
}

func TestExtractItems_SingleAmountIsTotal(t *testing.T) {
	items := parseItems(DefaultVocabulary(), []string{"3) Freight charges 350.00"})
	require.Len(t, items, 1)
	assert.Nil(t, items[0].Price)
	require.NotNil(t, items[0].TotalAmount)
	assert.Equal(t, 350.0, *items[0].TotalAmount)
	assert.Equal(t, "Freight charges", entity.Deref(items[0].Description))
}

func TestExtractItems_NoTriggerNoItems(t *testing.T) {
	items := parseItems(DefaultVocabulary(), []string{"Description Qty Rate Amount", "note only"})
	assert.Empty(t, items)
}

func TestExtractItems_PrefersConfidentItemTable(t *testing.T) {
	e := NewEngine(Config{}, nil)
	table := entity.LayoutBlock{Lines: []entity.Line{
		{Text: "1 Bolt M8 10.00 100.00"},
		{Text: "2 Nut M8 5.00 50.00"},
	}}.WithClassification(constants.BlockItemTable, 0.9)
	weak := entity.LayoutBlock{Lines: []entity.Line{
		{Text: "9 Ghost row 1.00 1.00"},
	}}.WithClassification(constants.BlockItemTable, 0.5)

	items := e.ExtractItems([]entity.LayoutBlock{table, weak}, []string{
		"1 Bolt M8 10.00 100.00",
		"2 Nut M8 5.00 50.00",
		"9 Ghost row 1.00 1.00",
	})
	require.Len(t, items, 2)
	assert.Equal(t, "Bolt M8 10.00", entity.Deref(items[0].Description))
	assert.Equal(t, "Nut M8 5.00", entity.Deref(items[1].Description))
}

func TestExtractItems_FallbackRejectsBankAndTaxLines(t *testing.T) {
	e := NewEngine(Config{}, nil)
	items := e.ExtractItems(nil, []string{
		"1 Bolt M8 10.00 100.00",
		"12 CGST 9% 9.00",
		"11 Bank A/C 123456789012",
		"2 Nut M8 5.00 50.00",
	})
	require.Len(t, items, 2)
	assert.Equal(t, "1", entity.Deref(items[0].SrNo))
	assert.Equal(t, "2", entity.Deref(items[1].SrNo))
}

func TestExtractItems_TriggerWithTotalsWordOpensItem(t *testing.T) {
	e := NewEngine(Config{}, nil)
	table := entity.LayoutBlock{Lines: []entity.Line{
		{Text: "1. Flow Totalizer FT-20 10.00 20.00"},
		{Text: "2. Widget B 5.00 15.00"},
		{Text: "3. Grandstand bracket 5.00 15.00"},
	}}.WithClassification(constants.BlockItemTable, 0.9)

	items := e.ExtractItems([]entity.LayoutBlock{table}, nil)
	require.Len(t, items, 3)
	assert.Equal(t, "1", entity.Deref(items[0].SrNo))
	assert.Equal(t, "Flow Totalizer FT-20 10.00", entity.Deref(items[0].Description))
	assert.Equal(t, "2", entity.Deref(items[1].SrNo))
	assert.Equal(t, "3", entity.Deref(items[2].SrNo))
	assert.Equal(t, "Grandstand bracket 5.00", entity.Deref(items[2].Description))
}
