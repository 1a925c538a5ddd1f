package repository

import (
	"context"

	"github.com/mmynk/wattcount/internal/calculator"
	"github.com/mmynk/wattcount/internal/models"
)

// billSnapshot holds the collections a BillView is joined from.
type billSnapshot struct {
	userList []models.User
	users    map[string]*models.User
	readings map[string]*models.ConsumptionRecord
	payments map[string][]models.Payment
}

func (r *BillRepository) snapshot(ctx context.Context) (*billSnapshot, error) {
	users, err := r.users(ctx)
	if err != nil {
		return nil, err
	}
	readings, err := r.readings(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := r.payments(ctx)
	if err != nil {
		return nil, err
	}

	snap := &billSnapshot{
		userList: users,
		users:    make(map[string]*models.User, len(users)),
		readings: make(map[string]*models.ConsumptionRecord, len(readings)),
		payments: make(map[string][]models.Payment),
	}
	for i := range users {
		if _, dup := snap.users[users[i].ID]; !dup {
			snap.users[users[i].ID] = &users[i]
		}
	}
	for i := range readings {
		if _, dup := snap.readings[readings[i].ID]; !dup {
			snap.readings[readings[i].ID] = &readings[i]
		}
	}
	for _, p := range payments {
		snap.payments[p.BillID] = append(snap.payments[p.BillID], p)
	}
	return snap, nil
}

// view joins b with its owner, reading and payments. Missing references
// leave the joined fields empty.
func (s *billSnapshot) view(b models.Bill) models.BillView {
	payments := s.payments[b.ID]
	if payments == nil {
		payments = []models.Payment{}
	}

	v := models.BillView{
		Bill:           b,
		ConsumptionKWh: b.ConsumptionKWh,
		Payments:       payments,
	}
	if u := s.users[b.UserID]; u != nil {
		v.Username = u.Username
		v.FullName = u.FullName
		v.Role = u.Role
	}
	if b.ConsumptionRecordID != "" {
		if c := s.readings[b.ConsumptionRecordID]; c != nil {
			date, current, previous := c.ReadingDate, c.CurrentReading, c.PreviousReading
			v.ReadingDate = &date
			v.CurrentReading = &current
			v.PreviousReading = &previous
			if !c.ConsumptionKWh.IsZero() {
				v.ConsumptionKWh = c.ConsumptionKWh
			}
		}
	}

	summary := calculator.SummarizeBill(b.TotalAmount, payments)
	v.TotalPaid = summary.TotalPaid
	v.RemainingAmount = summary.Remaining
	v.Status = summary.Status
	return v
}
