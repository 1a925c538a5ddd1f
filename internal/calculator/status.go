// Package calculator holds the billing arithmetic: payment aggregation into a
// bill status, and energy charges from readings and rates.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/wattcount/internal/models"
)

// BillSummary is the payment state of one bill.
type BillSummary struct {
	TotalPaid decimal.Decimal
	Remaining decimal.Decimal // Negative when overpaid
	Status    models.BillStatus
}

// SummarizeBill aggregates payments against a bill total.
//
// Algorithm:
// - totalPaid = sum of payment amounts
// - remaining = total - totalPaid
// - paid if totalPaid >= total, partial if 0 < totalPaid < total, unpaid otherwise
func SummarizeBill(total decimal.Decimal, payments []models.Payment) BillSummary {
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	return BillSummary{
		TotalPaid: paid,
		Remaining: total.Sub(paid),
		Status:    Status(total, paid),
	}
}

// Status derives a bill status from the amount paid so far. A zero-total
// bill is paid.
func Status(total, paid decimal.Decimal) models.BillStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return models.StatusPaid
	case paid.IsPositive():
		return models.StatusPartial
	default:
		return models.StatusUnpaid
	}
}
