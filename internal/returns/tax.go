package returns

import "github.com/shopspring/decimal"

var (
	one     = decimal.NewFromInt(1)
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
)

// TaxBreakdown splits a tax-inclusive ledger amount into its taxable base and
// the intrastate CGST/SGST halves. IGST stays zero; interstate returns are
// not modeled.
type TaxBreakdown struct {
	TaxableAmount decimal.Decimal
	TotalTax      decimal.Decimal
	CGSTRate      decimal.Decimal
	CGSTAmount    decimal.Decimal
	SGSTRate      decimal.Decimal
	SGSTAmount    decimal.Decimal
	IGSTRate      decimal.Decimal
	IGSTAmount    decimal.Decimal
}

// ComputeBreakdown derives the tax split for one line. Amounts keep full
// precision; callers round at the presentation edge only.
func ComputeBreakdown(line LedgerLine) TaxBreakdown {
	divisor := one.Add(line.TaxRate.Div(hundred))
	taxable := line.AmountWithTax.Div(divisor)
	totalTax := line.AmountWithTax.Sub(taxable)
	halfRate := line.TaxRate.Div(two)
	halfTax := totalTax.Div(two)
	return TaxBreakdown{
		TaxableAmount: taxable,
		TotalTax:      totalTax,
		CGSTRate:      halfRate,
		CGSTAmount:    halfTax,
		SGSTRate:      halfRate,
		SGSTAmount:    halfTax,
		IGSTRate:      decimal.Zero,
		IGSTAmount:    decimal.Zero,
	}
}
