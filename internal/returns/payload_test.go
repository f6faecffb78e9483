package returns

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestBuildPayloadResolvesReasons(t *testing.T) {
	group := PurchaseOrderGroup{
		PurchaseOrderID: 7,
		Lines: []LedgerLine{
			{
				LedgerID:       1,
				SupplierID:     3,
				ProductID:      55,
				ProductName:    "Amoxicillin 250mg",
				BatchNo:        "B-44",
				ExpiryDate:     time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC),
				ReturnQuantity: 4,
				AmountWithTax:  decimal.NewFromInt(112),
				TaxRate:        decimal.NewFromInt(12),
				ReasonID:       2,
				Status:         LedgerStatusNew,
			},
			{LedgerID: 2, ReasonID: 999, ExpiryDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)},
		},
	}
	resolver := func(id int64) (string, bool) {
		if id == 2 {
			return "Damaged in transit", true
		}
		return "", false
	}
	at := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)

	payload, err := BuildPayload(group, resolver, at)
	require.NoError(t, err)
	require.Equal(t, int64(7), payload.PurchaseOrderID)
	require.Len(t, payload.Ledgers, 2)

	first := payload.Ledgers[0]
	require.Equal(t, "Damaged in transit", first.Reason)
	require.Equal(t, "2027-06-30", first.ExpiryDate)
	require.Equal(t, at, first.CreatedAt)

	second := payload.Ledgers[1]
	require.Equal(t, "Reason 999", second.Reason)
	require.Equal(t, "2026-01-15", second.ExpiryDate)
}

func TestBuildPayloadNilResolverFallsBack(t *testing.T) {
	group := PurchaseOrderGroup{PurchaseOrderID: 1, Lines: []LedgerLine{{LedgerID: 1, ReasonID: 5}}}
	payload, err := BuildPayload(group, nil, time.Now())
	require.NoError(t, err)
	require.Equal(t, "Reason 5", payload.Ledgers[0].Reason)
}

func TestBuildPayloadEmptyGroup(t *testing.T) {
	_, err := BuildPayload(PurchaseOrderGroup{PurchaseOrderID: 1}, nil, time.Now())
	require.ErrorIs(t, err, ErrEmptyGroup)
}
