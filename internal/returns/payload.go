package returns

import (
	"fmt"
	"time"
)

// Wire date layout expected by the upstream return-note endpoint.
const wireDateLayout = "2006-01-02"

// ReasonResolver maps a purchase-return reason id to its label. The second
// return reports whether the id is known.
type ReasonResolver func(id int64) (string, bool)

// BuildPayload assembles the submission payload for one purchase order group.
// Unknown reason ids degrade to a placeholder instead of failing the build;
// CreatedAt is the build instant supplied by the caller, not the ledger's
// original created date. The group must carry at least one line.
func BuildPayload(group PurchaseOrderGroup, resolver ReasonResolver, at time.Time) (ReturnNotePayload, error) {
	if len(group.Lines) == 0 {
		return ReturnNotePayload{}, ErrEmptyGroup
	}
	payload := ReturnNotePayload{
		PurchaseOrderID: group.PurchaseOrderID,
		Ledgers:         make([]PayloadLine, 0, len(group.Lines)),
	}
	for _, line := range group.Lines {
		payload.Ledgers = append(payload.Ledgers, PayloadLine{
			LedgerID:        line.LedgerID,
			SupplierID:      line.SupplierID,
			ProductID:       line.ProductID,
			ProductName:     line.ProductName,
			BatchNo:         line.BatchNo,
			ExpiryDate:      line.ExpiryDate.Format(wireDateLayout),
			TaxRate:         line.TaxRate,
			ReturnQuantity:  line.ReturnQuantity,
			WalletAmount:    line.WalletAmount,
			Reason:          resolveReason(resolver, line.ReasonID),
			ReasonID:        line.ReasonID,
			PurchaseOrderID: line.PurchaseOrderID,
			Status:          line.Status,
			AmountWithTax:   line.AmountWithTax,
			TotalRoundOff:   line.TotalRoundOff,
			CreatedAt:       at,
		})
	}
	return payload, nil
}

func resolveReason(resolver ReasonResolver, id int64) string {
	if resolver != nil {
		if label, ok := resolver(id); ok {
			return label
		}
	}
	return fmt.Sprintf("Reason %d", id)
}
