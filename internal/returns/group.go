package returns

// GroupByOrder buckets normalized lines by purchase order. Group order is the
// order of first appearance of each purchase order id, line order within a
// group is input order. Sequence numbers are assigned over the flattened
// group output and continue over group boundaries; the running count is
// threaded through the fold rather than captured as shared state.
func GroupByOrder(lines []LedgerLine) []PurchaseOrderGroup {
	groups := make([]PurchaseOrderGroup, 0)
	index := make(map[int64]int)
	for _, line := range lines {
		pos, ok := index[line.PurchaseOrderID]
		if !ok {
			index[line.PurchaseOrderID] = len(groups)
			groups = append(groups, PurchaseOrderGroup{PurchaseOrderID: line.PurchaseOrderID})
			pos = len(groups) - 1
		}
		groups[pos].Lines = append(groups[pos].Lines, line)
	}
	sn := 0
	for gi := range groups {
		sn = numberLines(groups[gi].Lines, sn)
	}
	return groups
}

// numberLines stamps sequence numbers starting after prev and returns the new
// running count.
func numberLines(lines []LedgerLine, prev int) int {
	for i := range lines {
		prev++
		lines[i].SN = prev
	}
	return prev
}

// FlattenGroups restores the numbered lines in group emission order.
func FlattenGroups(groups []PurchaseOrderGroup) []LedgerLine {
	var lines []LedgerLine
	for _, g := range groups {
		lines = append(lines, g.Lines...)
	}
	return lines
}
