package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rate is a tariff. At most one rate is active at a time.
type Rate struct {
	ID string `json:"id"`

	PricePerKWh decimal.Decimal `json:"price_per_kwh"`

	EffectiveFrom Date  `json:"effective_from"`
	EffectiveTo   *Date `json:"effective_to,omitempty"`

	Active bool `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
}

// AppliesOn reports whether the rate is active and its window covers day.
// Both ends of the window are inclusive.
func (r *Rate) AppliesOn(day Date) bool {
	if !r.Active || r.EffectiveFrom.IsZero() || r.EffectiveFrom.After(day) {
		return false
	}
	return r.EffectiveTo == nil || r.EffectiveTo.IsZero() || !r.EffectiveTo.Before(day)
}
