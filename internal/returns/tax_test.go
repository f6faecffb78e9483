package returns

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestComputeBreakdownTwelvePercent(t *testing.T) {
	line := LedgerLine{
		AmountWithTax: decimal.NewFromInt(112),
		TaxRate:       decimal.NewFromInt(12),
	}
	b := ComputeBreakdown(line)
	require.Equal(t, "100.00", b.TaxableAmount.StringFixed(2))
	require.Equal(t, "12.00", b.TotalTax.StringFixed(2))
	require.Equal(t, "6.00", b.CGSTAmount.StringFixed(2))
	require.Equal(t, "6.00", b.SGSTAmount.StringFixed(2))
	require.Equal(t, "6", b.CGSTRate.String())
	require.Equal(t, "6", b.SGSTRate.String())
	require.True(t, b.IGSTAmount.IsZero())
	require.True(t, b.IGSTRate.IsZero())
}

func TestComputeBreakdownThreePercent(t *testing.T) {
	line := LedgerLine{
		AmountWithTax: decimal.NewFromInt(206),
		TaxRate:       decimal.NewFromInt(3),
	}
	b := ComputeBreakdown(line)
	require.Equal(t, "200.00", b.TaxableAmount.StringFixed(2))
	require.Equal(t, "6.00", b.TotalTax.StringFixed(2))
	require.Equal(t, "3.00", b.CGSTAmount.StringFixed(2))
	require.Equal(t, "3.00", b.SGSTAmount.StringFixed(2))
}

func TestComputeBreakdownZeroAmount(t *testing.T) {
	b := ComputeBreakdown(LedgerLine{AmountWithTax: decimal.Zero, TaxRate: decimal.NewFromInt(18)})
	require.True(t, b.TaxableAmount.IsZero())
	require.True(t, b.TotalTax.IsZero())
}
