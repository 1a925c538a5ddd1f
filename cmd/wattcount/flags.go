package main

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/wattcount/internal/models"
)

func parseDecimal(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: --%s %q is not a number", models.ErrValidation, name, s)
	}
	return d, nil
}

// parseOptionalDecimal returns nil for an empty flag.
func parseOptionalDecimal(name, s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := parseDecimal(name, s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// parseOptionalDate returns the zero Date for an empty flag.
func parseOptionalDate(name, s string) (models.Date, error) {
	if s == "" {
		return models.Date{}, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return models.Date{}, fmt.Errorf("%w: --%s %q is not a YYYY-MM-DD date", models.ErrValidation, name, s)
	}
	return d, nil
}
