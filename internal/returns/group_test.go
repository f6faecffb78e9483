package returns

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroupByOrderFirstAppearanceOrder(t *testing.T) {
	lines := []LedgerLine{
		{LedgerID: 1, PurchaseOrderID: 20},
		{LedgerID: 2, PurchaseOrderID: 10},
		{LedgerID: 3, PurchaseOrderID: 20},
		{LedgerID: 4, PurchaseOrderID: 10},
	}
	groups := GroupByOrder(lines)
	require.Len(t, groups, 2)
	require.Equal(t, int64(20), groups[0].PurchaseOrderID)
	require.Equal(t, int64(10), groups[1].PurchaseOrderID)
	require.Len(t, groups[0].Lines, 2)
	require.Len(t, groups[1].Lines, 2)
	require.Equal(t, int64(1), groups[0].Lines[0].LedgerID)
	require.Equal(t, int64(3), groups[0].Lines[1].LedgerID)
}

func TestGroupByOrderNumbersFlattenedOutput(t *testing.T) {
	lines := []LedgerLine{
		{LedgerID: 1, PurchaseOrderID: 20},
		{LedgerID: 2, PurchaseOrderID: 10},
		{LedgerID: 3, PurchaseOrderID: 20},
	}
	groups := GroupByOrder(lines)

	// Numbering runs over the grouped output, not the input order: both
	// lines of order 20 come first.
	require.Equal(t, 1, groups[0].Lines[0].SN)
	require.Equal(t, 2, groups[0].Lines[1].SN)
	require.Equal(t, 3, groups[1].Lines[0].SN)

	flat := FlattenGroups(groups)
	require.Len(t, flat, 3)
	for i, line := range flat {
		require.Equal(t, i+1, line.SN)
	}
}

func TestGroupByOrderEmptyInput(t *testing.T) {
	groups := GroupByOrder(nil)
	require.Empty(t, groups)
	require.Empty(t, FlattenGroups(groups))
}
