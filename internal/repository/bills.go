package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/mmynk/wattcount/internal/models"
	"github.com/mmynk/wattcount/internal/storage"
)

// BillRepository manages bills and joins them with users, readings and
// payments into BillViews.
type BillRepository struct {
	*base
}

// Create stores a new unpaid bill.
func (r *BillRepository) Create(ctx context.Context, bill models.Bill) (*models.Bill, error) {
	if bill.UserID == "" {
		return nil, fmt.Errorf("%w: user_id is required", models.ErrValidation)
	}
	if bill.TotalAmount.IsNegative() {
		return nil, fmt.Errorf("%w: total amount cannot be negative", models.ErrValidation)
	}

	bills, err := r.bills(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now()
	bill.ID = r.ids.NewID()
	bill.Status = models.StatusUnpaid
	bill.CreatedAt = now
	bill.UpdatedAt = now

	bills = append(bills, bill)
	if err := storage.Write(ctx, r.store, storage.Bills, bills); err != nil {
		return nil, err
	}
	return &bill, nil
}

// Update applies the non-nil fields of update.
func (r *BillRepository) Update(ctx context.Context, id string, update models.BillUpdate) (*models.Bill, error) {
	bills, err := r.bills(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(bills, func(b *models.Bill) bool { return b.ID == id })
	if i < 0 {
		return nil, models.ErrBillNotFound
	}

	bill := bills[i]
	if update.BillingCycle != nil {
		bill.BillingCycle = *update.BillingCycle
	}
	if update.ConsumptionRecordID != nil {
		bill.ConsumptionRecordID = *update.ConsumptionRecordID
	}
	if update.ConsumptionKWh != nil {
		bill.ConsumptionKWh = *update.ConsumptionKWh
	}
	if update.TotalAmount != nil {
		if update.TotalAmount.IsNegative() {
			return nil, fmt.Errorf("%w: total amount cannot be negative", models.ErrValidation)
		}
		bill.TotalAmount = *update.TotalAmount
	}
	bill.UpdatedAt = r.now()

	bills[i] = bill
	if err := storage.Write(ctx, r.store, storage.Bills, bills); err != nil {
		return nil, err
	}
	return &bill, nil
}

// Delete removes the bill and every payment referencing it. Payments pointing
// at id are removed even when the bill itself is already gone.
func (r *BillRepository) Delete(ctx context.Context, id string) error {
	bills, err := r.bills(ctx)
	if err != nil {
		return err
	}
	payments, err := r.payments(ctx)
	if err != nil {
		return err
	}

	keptBills := make([]models.Bill, 0, len(bills))
	for _, b := range bills {
		if b.ID != id {
			keptBills = append(keptBills, b)
		}
	}
	keptPayments := make([]models.Payment, 0, len(payments))
	for _, p := range payments {
		if p.BillID != id {
			keptPayments = append(keptPayments, p)
		}
	}

	if len(keptBills) != len(bills) {
		if err := storage.Write(ctx, r.store, storage.Bills, keptBills); err != nil {
			return err
		}
	}
	if len(keptPayments) != len(payments) {
		if err := storage.Write(ctx, r.store, storage.Payments, keptPayments); err != nil {
			return err
		}
		r.logger.Debug("Removed payments of deleted bill", "bill_id", id, "count", len(payments)-len(keptPayments))
	}
	return nil
}

// GetByID returns the aggregated view of one bill.
func (r *BillRepository) GetByID(ctx context.Context, id string) (*models.BillView, error) {
	bills, err := r.bills(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(bills, func(b *models.Bill) bool { return b.ID == id })
	if i < 0 {
		return nil, models.ErrBillNotFound
	}
	snap, err := r.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	v := snap.view(bills[i])
	return &v, nil
}

// GetAll returns aggregated bill views, newest first. With a non-empty
// primaryID only bills of the primary and its group members are returned.
func (r *BillRepository) GetAll(ctx context.Context, primaryID string) ([]models.BillView, error) {
	bills, err := r.bills(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := r.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var visible map[string]bool
	if primaryID != "" {
		codes, err := r.codes(ctx)
		if err != nil {
			return nil, err
		}
		visible = visibleSet(snap.userList, codes, primaryID)
	}

	views := make([]models.BillView, 0, len(bills))
	for _, b := range bills {
		if visible != nil && !visible[b.UserID] {
			continue
		}
		views = append(views, snap.view(b))
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
	return views, nil
}

// GetByCycle returns the views of GetAll whose billing cycle equals cycle.
func (r *BillRepository) GetByCycle(ctx context.Context, cycle, primaryID string) ([]models.BillView, error) {
	views, err := r.GetAll(ctx, primaryID)
	if err != nil {
		return nil, err
	}
	matched := []models.BillView{}
	for _, v := range views {
		if v.BillingCycle == cycle {
			matched = append(matched, v)
		}
	}
	return matched, nil
}

// GetMy returns the bills userID may see, newest first.
//
// A member sees every bill of its group. A primary sees only its own bills;
// the group-wide listing is GetAll with the primary's ID. A member whose
// code no longer resolves sees only its own bills.
func (r *BillRepository) GetMy(ctx context.Context, userID string, limit int) ([]models.BillView, error) {
	users, err := r.users(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(users, func(u *models.User) bool { return u.ID == userID })
	if i < 0 {
		return nil, models.ErrUserNotFound
	}

	if m, ok := users[i].Membership().(models.Member); ok {
		codes, err := r.codes(ctx)
		if err != nil {
			return nil, err
		}
		if owner, found := ownerOf(codes, m.JoinedCode); found {
			views, err := r.GetAll(ctx, owner)
			if err != nil {
				return nil, err
			}
			return truncate(views, limit), nil
		}
		r.logger.Debug("Member code no longer resolves", "user_id", userID, "code", m.JoinedCode)
	}

	views, err := r.GetAll(ctx, "")
	if err != nil {
		return nil, err
	}
	own := []models.BillView{}
	for _, v := range views {
		if v.UserID == userID {
			own = append(own, v)
		}
	}
	return truncate(own, limit), nil
}
