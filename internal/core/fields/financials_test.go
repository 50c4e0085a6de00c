package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

func TestExtractFinancials_GSTCrossValidation(t *testing.T) {
	e := NewEngine(Config{}, nil)

	rejected := e.ExtractFinancials(nil, []string{"Taxable Value 1000.00", "CGST 9% 95.00"})
	require.NotNil(t, rejected.TotalBeforeTax)
	assert.Equal(t, 1000.0, *rejected.TotalBeforeTax)
	assert.Nil(t, rejected.CGST.Rate)
	assert.Nil(t, rejected.CGST.Amount)

	accepted := e.ExtractFinancials(nil, []string{"Taxable Value 1000.00", "CGST 9% 90.00"})
	require.True(t, accepted.CGST.Valid())
	assert.Equal(t, 9.0, *accepted.CGST.Rate)
	assert.Equal(t, 90.0, *accepted.CGST.Amount)
}

func TestExtractFinancials_FullTotals(t *testing.T) {
	e := NewEngine(Config{}, nil)
	f := e.ExtractFinancials(nil, []string{
		"Bank: State Bank of India Total",
		"Taxable Amount 1,000.00",
		"CGST @ 9% 90.00",
		"SGST @ 9% 91.50",
		"Grand Total 1,181.50",
	})
	require.NotNil(t, f.TotalAfterTax)
	assert.Equal(t, 1181.5, *f.TotalAfterTax)
	assert.True(t, f.CGST.Valid())
	// 91.50 is within 2.00 of 90.00
	require.True(t, f.SGST.Valid())
	assert.Equal(t, 91.5, *f.SGST.Amount)
	require.NotNil(t, f.TotalTax)
	assert.Equal(t, 181.5, *f.TotalTax)
	assert.False(t, f.IGST.Valid())
}

func TestExtractFinancials_NoBaseMeansUnknown(t *testing.T) {
	e := NewEngine(Config{}, nil)
	f := e.ExtractFinancials(nil, []string{"CGST 9% 90.00", "Grand Total 1180.00"})
	assert.Nil(t, f.TotalBeforeTax)
	assert.False(t, f.CGST.Valid())
	assert.Nil(t, f.TotalTax)
	require.NotNil(t, f.TotalAfterTax)
	assert.Equal(t, 1180.0, *f.TotalAfterTax)
}

func TestExtractFinancials_SGSTRateBackfill(t *testing.T) {
	e := NewEngine(Config{}, nil)
	f := e.ExtractFinancials(nil, []string{
		"Taxable 2000.00",
		"CGST 6% 120.00",
		"SGST 120.00",
	})
	require.True(t, f.SGST.Valid())
	assert.Equal(t, 6.0, *f.SGST.Rate)
}

func TestExtractFinancials_IGST(t *testing.T) {
	e := NewEngine(Config{}, nil)
	f := e.ExtractFinancials(nil, []string{"Taxable 500.00", "IGST 18% 90.00"})
	require.True(t, f.IGST.Valid())
	assert.Equal(t, 18.0, *f.IGST.Rate)
	assert.Equal(t, 90.0, *f.TotalTax)
}

func TestExtractFinancials_CustomTolerance(t *testing.T) {
	e := NewEngine(Config{AmountTolerance: 10}, nil)
	f := e.ExtractFinancials(nil, []string{"Taxable Value 1000.00", "CGST 9% 95.00"})
	assert.True(t, f.CGST.Valid())
}

func TestExtractFinancials_PrefersTotalsBlock(t *testing.T) {
	e := NewEngine(Config{}, nil)
	totals := entity.LayoutBlock{Lines: []entity.Line{
		{Text: "Taxable 1000.00"},
		{Text: "CGST 9% 90.00"},
	}}.WithClassification(constants.BlockTotals, 0.9)

	f := e.ExtractFinancials([]entity.LayoutBlock{totals}, []string{
		"Taxable 5000.00",
		"Taxable 1000.00",
		"CGST 9% 90.00",
	})
	require.NotNil(t, f.TotalBeforeTax)
	assert.Equal(t, 1000.0, *f.TotalBeforeTax)
	assert.True(t, f.CGST.Valid())
}
