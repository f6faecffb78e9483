package returns

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RawAmount accepts a monetary field that the upstream delivers either as a
// JSON number or as a formatted string ("1,23,456.50").
type RawAmount string

// UnmarshalJSON keeps the textual form for later validation in Normalize.
func (a *RawAmount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if data[0] == '"' && data[len(data)-1] == '"' && len(data) >= 2 {
		data = data[1 : len(data)-1]
	}
	*a = RawAmount(data)
	return nil
}

// LineError flags a single rejected input line without failing the batch.
type LineError struct {
	Index    int
	LedgerID int64
	Field    string
	Err      error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d (ledger %d): %s: %v", e.Index, e.LedgerID, e.Field, e.Err)
}

func (e LineError) Unwrap() error { return e.Err }

// Indian digit grouping for the dashboard's amount column.
var displayPrinter = message.NewPrinter(language.MustParse("en-IN"))

// Normalize converts raw ledger records into returnable lines. Lines whose
// monetary fields cannot be parsed are rejected individually and reported in
// the second return value; the rest of the batch proceeds. Input order is
// preserved.
func Normalize(raw []RawLedgerLine) ([]LedgerLine, []LineError) {
	lines := make([]LedgerLine, 0, len(raw))
	var rejects []LineError
	for i, r := range raw {
		amount, err := parseAmount(r.AmountWithTax)
		if err != nil {
			rejects = append(rejects, LineError{Index: i, LedgerID: r.LedgerID, Field: "amount_with_tax", Err: err})
			continue
		}
		wallet, err := parseAmount(r.WalletAmount)
		if err != nil {
			rejects = append(rejects, LineError{Index: i, LedgerID: r.LedgerID, Field: "wallet_amount", Err: err})
			continue
		}
		roundOff, err := parseAmount(r.TotalRoundOff)
		if err != nil {
			rejects = append(rejects, LineError{Index: i, LedgerID: r.LedgerID, Field: "total_round_off_amt", Err: err})
			continue
		}
		rate := decimal.NewFromFloat(r.TaxRate)
		if rate.IsZero() {
			rate = decimal.NewFromInt(DefaultTaxRate)
		}
		lines = append(lines, LedgerLine{
			LedgerID:        r.LedgerID,
			PurchaseOrderID: r.PurchaseOrderID,
			SupplierID:      r.SupplierID,
			ProductID:       r.ProductID,
			ProductName:     r.ProductName,
			BatchNo:         r.BatchNo,
			ExpiryDate:      r.ExpiryDate,
			CreatedDate:     r.CreatedDate,
			ReturnQuantity:  r.ReturnQuantity,
			AmountWithTax:   amount,
			WalletAmount:    wallet,
			TaxRate:         rate,
			TotalRoundOff:   roundOff,
			ReasonID:        r.ReasonID,
			Status:          defaultStatus(r.Status),
			DisplayAmount:   formatDisplayAmount(amount),
		})
	}
	return lines, rejects
}

// parseAmount strips thousands separators and parses the remainder as a
// decimal. An empty field counts as zero; anything else non-numeric fails.
func parseAmount(raw RawAmount) (decimal.Decimal, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return decimal.Zero, nil
	}
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrMalformedAmount, string(raw))
	}
	return d, nil
}

func formatDisplayAmount(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return displayPrinter.Sprintf("%.2f", f)
}

func defaultStatus(status LedgerStatus) LedgerStatus {
	if status == "" {
		return LedgerStatusNew
	}
	return status
}
