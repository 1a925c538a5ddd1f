package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/wattcount/internal/calculator"
	"github.com/mmynk/wattcount/internal/models"
	"github.com/mmynk/wattcount/internal/repository"
)

// cycleLayout formats the default billing cycle of a reading date.
const cycleLayout = "2006-01"

// Reading is a meter reading to bill.
type Reading struct {
	UserID string

	// BillingCycle defaults to the year and month of ReadingDate.
	BillingCycle string

	// ReadingDate defaults to today.
	ReadingDate models.Date

	// PreviousReading defaults to the current reading of the user's latest
	// stored reading, or zero for the first one.
	PreviousReading *decimal.Decimal
	CurrentReading  decimal.Decimal

	Notes string
}

// BillingService turns readings into bills and records payments.
type BillingService struct {
	repos  *repository.Repositories
	logger *slog.Logger
}

// NewBillingService creates a new BillingService.
func NewBillingService(repos *repository.Repositories, logger *slog.Logger) *BillingService {
	return &BillingService{repos: repos, logger: logger}
}

// CreateFromReading stores the reading and a bill for it priced at the
// current rate.
func (s *BillingService) CreateFromReading(ctx context.Context, in Reading) (*models.BillView, error) {
	s.logger.Info("CreateFromReading request received", "user_id", in.UserID, "cycle", in.BillingCycle)

	if _, err := s.repos.Users.GetByID(ctx, in.UserID); err != nil {
		return nil, err
	}
	rate, err := s.repos.Rates.GetCurrent(ctx)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, models.ErrNoActiveRate
	}

	previous := decimal.Zero
	if in.PreviousReading != nil {
		previous = *in.PreviousReading
	} else {
		latest, err := s.repos.Consumption.GetLatestByUser(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			previous = latest.CurrentReading
		}
	}

	rec, err := s.repos.Consumption.Create(ctx, models.ConsumptionRecord{
		UserID:          in.UserID,
		ReadingDate:     in.ReadingDate,
		PreviousReading: previous,
		CurrentReading:  in.CurrentReading,
		Notes:           in.Notes,
	})
	if err != nil {
		s.logger.Error("Failed to store reading", "user_id", in.UserID, "error", err)
		return nil, err
	}

	cycle := in.BillingCycle
	if cycle == "" {
		cycle = rec.ReadingDate.Time().Format(cycleLayout)
	}
	bill, err := s.repos.Bills.Create(ctx, models.Bill{
		UserID:              in.UserID,
		BillingCycle:        cycle,
		ConsumptionRecordID: rec.ID,
		ConsumptionKWh:      rec.ConsumptionKWh,
		TotalAmount:         calculator.EnergyCharge(rec.ConsumptionKWh, rate.PricePerKWh),
	})
	if err != nil {
		s.logger.Error("Failed to store bill", "user_id", in.UserID, "reading_id", rec.ID, "error", err)
		return nil, err
	}

	s.logger.Info("Bill created", "bill_id", bill.ID, "kwh", rec.ConsumptionKWh, "total", bill.TotalAmount)
	return s.repos.Bills.GetByID(ctx, bill.ID)
}

// Pay records a payment against an existing bill and returns the bill's
// updated view.
func (s *BillingService) Pay(ctx context.Context, billID string, amount decimal.Decimal, method, notes string) (*models.BillView, error) {
	s.logger.Info("Pay request received", "bill_id", billID, "amount", amount)

	if !amount.IsPositive() {
		return nil, models.ErrInvalidAmount
	}
	if _, err := s.repos.Bills.GetByID(ctx, billID); err != nil {
		return nil, err
	}
	p, err := s.repos.Payments.Create(ctx, models.Payment{
		BillID: billID,
		Amount: amount,
		Method: method,
		Notes:  notes,
	})
	if err != nil {
		s.logger.Error("Failed to record payment", "bill_id", billID, "error", err)
		return nil, err
	}

	s.logger.Info("Payment recorded", "payment_id", p.ID, "bill_id", billID)
	return s.repos.Bills.GetByID(ctx, billID)
}
