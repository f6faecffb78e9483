package returns

import "github.com/shopspring/decimal"

// GroupSummary carries per-purchase-order roll-ups. TotalReturnAmount sums
// the system-provided rounded figure, not the recomputed tax-inclusive
// amount; the rounded amount is authoritative for settlement.
type GroupSummary struct {
	PurchaseOrderID     int64
	LineCount           int
	TotalReturnQuantity int64
	TotalWalletAmount   decimal.Decimal
	TotalReturnAmount   decimal.Decimal
}

// TaxRateSummary accumulates breakdown figures for one tax rate across all
// groups.
type TaxRateSummary struct {
	TaxRate       decimal.Decimal
	TaxableAmount decimal.Decimal
	TotalTax      decimal.Decimal
	CGSTAmount    decimal.Decimal
	SGSTAmount    decimal.Decimal
	IGSTAmount    decimal.Decimal
}

// ReturnSummary is the cross-group aggregate served to the dashboard.
type ReturnSummary struct {
	Groups        []GroupSummary
	TaxRates      []TaxRateSummary
	GrandTotalTax decimal.Decimal
	ReturnAmount  decimal.Decimal
	Subtotal      decimal.Decimal
}

// Summarize rolls one group's lines up.
func Summarize(group PurchaseOrderGroup) GroupSummary {
	s := GroupSummary{
		PurchaseOrderID:   group.PurchaseOrderID,
		LineCount:         len(group.Lines),
		TotalWalletAmount: decimal.Zero,
		TotalReturnAmount: decimal.Zero,
	}
	for _, line := range group.Lines {
		s.TotalReturnQuantity += line.ReturnQuantity
		s.TotalWalletAmount = s.TotalWalletAmount.Add(line.WalletAmount)
		s.TotalReturnAmount = s.TotalReturnAmount.Add(line.TotalRoundOff)
	}
	return s
}

// SummarizeTaxes buckets every line by tax rate, regardless of group. Bucket
// order is the insertion order of the first-seen rate.
func SummarizeTaxes(groups []PurchaseOrderGroup) []TaxRateSummary {
	buckets := make([]TaxRateSummary, 0)
	index := make(map[string]int)
	for _, g := range groups {
		for _, line := range g.Lines {
			b := ComputeBreakdown(line)
			key := line.TaxRate.String()
			pos, ok := index[key]
			if !ok {
				index[key] = len(buckets)
				buckets = append(buckets, TaxRateSummary{
					TaxRate:       line.TaxRate,
					TaxableAmount: decimal.Zero,
					TotalTax:      decimal.Zero,
					CGSTAmount:    decimal.Zero,
					SGSTAmount:    decimal.Zero,
					IGSTAmount:    decimal.Zero,
				})
				pos = len(buckets) - 1
			}
			buckets[pos].TaxableAmount = buckets[pos].TaxableAmount.Add(b.TaxableAmount)
			buckets[pos].TotalTax = buckets[pos].TotalTax.Add(b.TotalTax)
			buckets[pos].CGSTAmount = buckets[pos].CGSTAmount.Add(b.CGSTAmount)
			buckets[pos].SGSTAmount = buckets[pos].SGSTAmount.Add(b.SGSTAmount)
		}
	}
	return buckets
}

// SummarizeAll combines the per-group and per-rate views. Subtotal is derived
// from the authoritative rounded return amount and the computed grand total
// tax; the two sides are not required to reconcile exactly because the round
// off is applied upstream per line.
func SummarizeAll(groups []PurchaseOrderGroup) ReturnSummary {
	summary := ReturnSummary{
		GrandTotalTax: decimal.Zero,
		ReturnAmount:  decimal.Zero,
	}
	for _, g := range groups {
		gs := Summarize(g)
		summary.Groups = append(summary.Groups, gs)
		summary.ReturnAmount = summary.ReturnAmount.Add(gs.TotalReturnAmount)
	}
	summary.TaxRates = SummarizeTaxes(groups)
	for _, bucket := range summary.TaxRates {
		summary.GrandTotalTax = summary.GrandTotalTax.Add(bucket.TotalTax)
	}
	summary.Subtotal = summary.ReturnAmount.Sub(summary.GrandTotalTax)
	return summary
}
