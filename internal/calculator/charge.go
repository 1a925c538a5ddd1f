package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/wattcount/internal/models"
)

// Consumption returns current - previous. A meter never runs backwards, so a
// current reading below the previous one is rejected.
func Consumption(previous, current decimal.Decimal) (decimal.Decimal, error) {
	if current.LessThan(previous) {
		return decimal.Zero, models.ErrNegativeReading
	}
	return current.Sub(previous), nil
}

// EnergyCharge prices kwh at pricePerKWh, rounded half away from zero to cents.
func EnergyCharge(kwh, pricePerKWh decimal.Decimal) decimal.Decimal {
	return kwh.Mul(pricePerKWh).Round(2)
}
