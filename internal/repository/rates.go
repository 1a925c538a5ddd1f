package repository

import (
	"context"
	"fmt"

	"github.com/mmynk/wattcount/internal/models"
	"github.com/mmynk/wattcount/internal/storage"
)

// RateRepository manages tariffs. Creating a rate deactivates every other.
type RateRepository struct {
	*base
}

// Create stores rate as the only active rate. A missing effective-from date
// defaults to today.
func (r *RateRepository) Create(ctx context.Context, rate models.Rate) (*models.Rate, error) {
	if rate.PricePerKWh.IsNegative() {
		return nil, fmt.Errorf("%w: price per kWh cannot be negative", models.ErrValidation)
	}

	now := r.now()
	if rate.EffectiveFrom.IsZero() {
		rate.EffectiveFrom = models.DateOf(now)
	}
	if rate.EffectiveTo != nil && !rate.EffectiveTo.IsZero() && rate.EffectiveTo.Before(rate.EffectiveFrom) {
		return nil, fmt.Errorf("%w: effective_to is before effective_from", models.ErrValidation)
	}

	rates, err := r.rates(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rates {
		rates[i].Active = false
	}

	rate.ID = r.ids.NewID()
	rate.Active = true
	rate.CreatedAt = now

	rates = append(rates, rate)
	if err := storage.Write(ctx, r.store, storage.Rates, rates); err != nil {
		return nil, err
	}
	return &rate, nil
}

// GetCurrent returns the active rate whose window covers today, preferring
// the latest effective-from date. Returns nil, nil when none applies.
func (r *RateRepository) GetCurrent(ctx context.Context) (*models.Rate, error) {
	rates, err := r.rates(ctx)
	if err != nil {
		return nil, err
	}
	today := models.DateOf(r.now())
	var current *models.Rate
	for i := range rates {
		rate := &rates[i]
		if !rate.AppliesOn(today) {
			continue
		}
		if current == nil || rate.EffectiveFrom.After(current.EffectiveFrom) {
			current = rate
		}
	}
	return current, nil
}

// GetAll returns every rate in storage order.
func (r *RateRepository) GetAll(ctx context.Context) ([]models.Rate, error) {
	return r.rates(ctx)
}
