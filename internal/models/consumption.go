package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConsumptionRecord is one meter reading.
type ConsumptionRecord struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	ReadingDate     Date            `json:"reading_date"`
	PreviousReading decimal.Decimal `json:"previous_reading"`
	CurrentReading  decimal.Decimal `json:"current_reading"`

	// ConsumptionKWh is CurrentReading minus PreviousReading.
	ConsumptionKWh decimal.Decimal `json:"consumption_kwh"`

	Notes string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConsumptionView is a record joined with its owner's display fields.
// The name fields are empty when the owner no longer exists.
type ConsumptionView struct {
	ConsumptionRecord
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// ConsumptionUpdate is a partial update; nil fields are left unchanged.
type ConsumptionUpdate struct {
	ReadingDate     *Date
	PreviousReading *decimal.Decimal
	CurrentReading  *decimal.Decimal
	Notes           *string
}
