package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is an append-only payment against a bill.
type Payment struct {
	ID     string          `json:"id"`
	BillID string          `json:"bill_id"`
	Amount decimal.Decimal `json:"amount"`

	// Method is free text, e.g. "cash" or "transfer".
	Method string `json:"payment_method,omitempty"`
	Notes  string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
