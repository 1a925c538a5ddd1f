package repository

import (
	"context"
	"fmt"

	"github.com/mmynk/wattcount/internal/models"
	"github.com/mmynk/wattcount/internal/storage"
)

// PaymentRepository manages the append-only payments collection.
type PaymentRepository struct {
	*base
}

// Create records a payment. The amount must be positive; the bill is not
// required to exist.
func (r *PaymentRepository) Create(ctx context.Context, p models.Payment) (*models.Payment, error) {
	if p.BillID == "" {
		return nil, fmt.Errorf("%w: bill_id is required", models.ErrValidation)
	}
	if !p.Amount.IsPositive() {
		return nil, models.ErrInvalidAmount
	}

	payments, err := r.payments(ctx)
	if err != nil {
		return nil, err
	}
	p.ID = r.ids.NewID()
	p.CreatedAt = r.now()

	payments = append(payments, p)
	if err := storage.Write(ctx, r.store, storage.Payments, payments); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetAll returns every payment in storage order.
func (r *PaymentRepository) GetAll(ctx context.Context) ([]models.Payment, error) {
	return r.payments(ctx)
}

// GetByID returns the payment with the given ID or ErrPaymentNotFound.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	payments, err := r.payments(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(payments, func(p *models.Payment) bool { return p.ID == id })
	if i < 0 {
		return nil, models.ErrPaymentNotFound
	}
	return &payments[i], nil
}

// GetByBill returns the payments against billID in storage order.
func (r *PaymentRepository) GetByBill(ctx context.Context, billID string) ([]models.Payment, error) {
	payments, err := r.payments(ctx)
	if err != nil {
		return nil, err
	}
	matched := []models.Payment{}
	for _, p := range payments {
		if p.BillID == billID {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// GetMy returns the payments against bills owned by userID.
func (r *PaymentRepository) GetMy(ctx context.Context, userID string) ([]models.Payment, error) {
	bills, err := r.bills(ctx)
	if err != nil {
		return nil, err
	}
	own := make(map[string]bool)
	for _, b := range bills {
		if b.UserID == userID {
			own[b.ID] = true
		}
	}

	payments, err := r.payments(ctx)
	if err != nil {
		return nil, err
	}
	matched := []models.Payment{}
	for _, p := range payments {
		if own[p.BillID] {
			matched = append(matched, p)
		}
	}
	return matched, nil
}
