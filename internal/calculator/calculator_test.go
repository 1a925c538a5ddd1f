package calculator

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/wattcount/internal/models"
)

func payments(amounts ...string) []models.Payment {
	out := make([]models.Payment, len(amounts))
	for i, a := range amounts {
		out[i] = models.Payment{Amount: decimal.RequireFromString(a)}
	}
	return out
}

func TestSummarizeBill(t *testing.T) {
	tests := []struct {
		name          string
		total         string
		payments      []models.Payment
		wantPaid      string
		wantRemaining string
		wantStatus    models.BillStatus
	}{
		{"no payments", "100", nil, "0", "100", models.StatusUnpaid},
		{"partial", "100", payments("50", "30"), "80", "20", models.StatusPartial},
		{"exactly paid", "80", payments("50", "30"), "80", "0", models.StatusPaid},
		{"overpaid", "70", payments("50", "30"), "80", "-10", models.StatusPaid},
		{"cents add up exactly", "0.3", payments("0.1", "0.2"), "0.3", "0", models.StatusPaid},
		{"zero total", "0", nil, "0", "0", models.StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SummarizeBill(decimal.RequireFromString(tt.total), tt.payments)
			if !got.TotalPaid.Equal(decimal.RequireFromString(tt.wantPaid)) {
				t.Errorf("TotalPaid = %s, want %s", got.TotalPaid, tt.wantPaid)
			}
			if !got.Remaining.Equal(decimal.RequireFromString(tt.wantRemaining)) {
				t.Errorf("Remaining = %s, want %s", got.Remaining, tt.wantRemaining)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", got.Status, tt.wantStatus)
			}
		})
	}
}

func TestConsumption(t *testing.T) {
	got, err := Consumption(decimal.RequireFromString("1200.5"), decimal.RequireFromString("1350"))
	if err != nil {
		t.Fatalf("Consumption failed: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("149.5")) {
		t.Errorf("Consumption = %s, want 149.5", got)
	}

	_, err = Consumption(decimal.NewFromInt(10), decimal.NewFromInt(9))
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected validation error for backwards meter, got %v", err)
	}
}

func TestEnergyCharge(t *testing.T) {
	tests := []struct {
		kwh, price, want string
	}{
		{"150", "0.25", "37.5"},
		{"123.4", "0.1234", "15.23"},
		{"0", "0.3", "0"},
		{"1", "0.125", "0.13"},
	}

	for _, tt := range tests {
		t.Run(tt.kwh+"x"+tt.price, func(t *testing.T) {
			got := EnergyCharge(decimal.RequireFromString(tt.kwh), decimal.RequireFromString(tt.price))
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("EnergyCharge = %s, want %s", got, tt.want)
			}
		})
	}
}
