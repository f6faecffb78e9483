package returns

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func summaryFixture() []PurchaseOrderGroup {
	lines := []LedgerLine{
		{
			LedgerID:        1,
			PurchaseOrderID: 7,
			ReturnQuantity:  1,
			AmountWithTax:   decimal.NewFromInt(112),
			TaxRate:         decimal.NewFromInt(12),
			TotalRoundOff:   decimal.NewFromInt(112),
			WalletAmount:    decimal.NewFromInt(10),
		},
		{
			LedgerID:        2,
			PurchaseOrderID: 7,
			ReturnQuantity:  2,
			AmountWithTax:   decimal.NewFromInt(206),
			TaxRate:         decimal.NewFromInt(3),
			TotalRoundOff:   decimal.NewFromInt(206),
			WalletAmount:    decimal.NewFromInt(5),
		},
	}
	return GroupByOrder(lines)
}

func TestSummarizeGroup(t *testing.T) {
	groups := summaryFixture()
	require.Len(t, groups, 1)

	s := Summarize(groups[0])
	require.Equal(t, int64(7), s.PurchaseOrderID)
	require.Equal(t, 2, s.LineCount)
	require.Equal(t, int64(3), s.TotalReturnQuantity)
	require.Equal(t, "15", s.TotalWalletAmount.String())
	require.Equal(t, "318", s.TotalReturnAmount.String())
}

func TestSummarizeTaxesBucketsByRate(t *testing.T) {
	groups := summaryFixture()
	buckets := SummarizeTaxes(groups)
	require.Len(t, buckets, 2)

	require.Equal(t, "12", buckets[0].TaxRate.String())
	require.Equal(t, "100.00", buckets[0].TaxableAmount.StringFixed(2))
	require.Equal(t, "12.00", buckets[0].TotalTax.StringFixed(2))
	require.Equal(t, "6.00", buckets[0].CGSTAmount.StringFixed(2))
	require.Equal(t, "6.00", buckets[0].SGSTAmount.StringFixed(2))

	require.Equal(t, "3", buckets[1].TaxRate.String())
	require.Equal(t, "200.00", buckets[1].TaxableAmount.StringFixed(2))
	require.Equal(t, "6.00", buckets[1].TotalTax.StringFixed(2))
}

func TestSummarizeTaxesMergesEqualRates(t *testing.T) {
	groups := GroupByOrder([]LedgerLine{
		{LedgerID: 1, PurchaseOrderID: 1, AmountWithTax: decimal.NewFromInt(112), TaxRate: decimal.NewFromInt(12)},
		{LedgerID: 2, PurchaseOrderID: 2, AmountWithTax: decimal.NewFromInt(224), TaxRate: decimal.NewFromInt(12)},
	})
	buckets := SummarizeTaxes(groups)
	require.Len(t, buckets, 1)
	require.Equal(t, "300.00", buckets[0].TaxableAmount.StringFixed(2))
	require.Equal(t, "36.00", buckets[0].TotalTax.StringFixed(2))
}

func TestSummarizeAll(t *testing.T) {
	groups := summaryFixture()
	all := SummarizeAll(groups)

	require.Len(t, all.Groups, 1)
	require.Len(t, all.TaxRates, 2)
	require.Equal(t, "318", all.ReturnAmount.String())
	require.Equal(t, "18.00", all.GrandTotalTax.StringFixed(2))
	require.Equal(t, "300.00", all.Subtotal.StringFixed(2))
}
