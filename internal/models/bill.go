package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillStatus is derived from the payments recorded against a bill.
type BillStatus string

const (
	StatusUnpaid  BillStatus = "unpaid"
	StatusPartial BillStatus = "partial"
	StatusPaid    BillStatus = "paid"
)

// Bill is an amount owed by a user for one billing cycle.
type Bill struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	// BillingCycle labels the period, e.g. "2024-05".
	BillingCycle string `json:"billing_cycle"`

	// ConsumptionRecordID references the reading the bill was computed from.
	ConsumptionRecordID string `json:"consumption_record_id,omitempty"`

	// ConsumptionKWh is the bill's own copy of the consumed energy, used when
	// the referenced reading is missing.
	ConsumptionKWh decimal.Decimal `json:"consumption_kwh"`

	TotalAmount decimal.Decimal `json:"total_amount"`

	// Status is set to unpaid at creation. The authoritative value is the one
	// computed by the billing aggregator from payments.
	Status BillStatus `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BillView is a bill joined with its owner, reading and payments.
type BillView struct {
	Bill

	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Role     Role   `json:"role,omitempty"`

	ReadingDate     *Date            `json:"reading_date,omitempty"`
	CurrentReading  *decimal.Decimal `json:"current_reading,omitempty"`
	PreviousReading *decimal.Decimal `json:"previous_reading,omitempty"`

	// ConsumptionKWh comes from the referenced reading when it exists and
	// falls back to the bill's stored figure.
	ConsumptionKWh decimal.Decimal `json:"consumption_kwh"`

	TotalPaid       decimal.Decimal `json:"total_paid"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Status          BillStatus      `json:"status"`
	Payments        []Payment       `json:"payments"`
}

// BillUpdate is a partial update; nil fields are left unchanged. Status is
// not updatable.
type BillUpdate struct {
	BillingCycle        *string
	ConsumptionRecordID *string
	ConsumptionKWh      *decimal.Decimal
	TotalAmount         *decimal.Decimal
}
