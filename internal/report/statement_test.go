package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mmynk/wattcount/internal/models"
)

func TestWriteBillStatement(t *testing.T) {
	date := models.NewDate(2024, 5, 1)
	prev, cur := decimal.NewFromInt(1000), decimal.NewFromInt(1200)
	bills := []models.BillView{
		{
			Bill:            models.Bill{ID: "b1", BillingCycle: "2024-05", TotalAmount: decimal.RequireFromString("50.5"), CreatedAt: time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)},
			FullName:        "Alice",
			ReadingDate:     &date,
			PreviousReading: &prev,
			CurrentReading:  &cur,
			ConsumptionKWh:  decimal.NewFromInt(200),
			TotalPaid:       decimal.NewFromInt(20),
			RemainingAmount: decimal.RequireFromString("30.5"),
			Status:          models.StatusPartial,
		},
		{
			Bill:            models.Bill{ID: "b2", BillingCycle: "2024-04", TotalAmount: decimal.NewFromInt(10)},
			Username:        "bob",
			TotalPaid:       decimal.NewFromInt(10),
			RemainingAmount: decimal.Zero,
			Status:          models.StatusPaid,
		},
	}

	var buf bytes.Buffer
	if err := WriteBillStatement(&buf, bills); err != nil {
		t.Fatalf("WriteBillStatement failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != StatementSheet {
		t.Fatalf("sheets = %v, want [%s]", sheets, StatementSheet)
	}
	rows, err := f.GetRows(StatementSheet)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want header + 2 bills + totals", len(rows))
	}
	if rows[0][0] != "Billing Cycle" || rows[0][len(StatementHeader)-1] != "Created" {
		t.Errorf("header = %v", rows[0])
	}

	tests := []struct {
		row  int
		col  int
		want string
	}{
		{1, 0, "2024-05"},
		{1, 1, "Alice"},
		{1, 2, "2024-05-01"},
		{1, 4, "1200"},
		{1, 6, "50.5"},
		{1, 9, "partial"},
		{1, 10, "2024-05-02 09:30"},
		{2, 1, "bob"},
		{2, 9, "paid"},
		{3, 0, "Total"},
		{3, 6, "60.5"},
		{3, 7, "30"},
		{3, 8, "30.5"},
	}
	for _, tt := range tests {
		if got := rows[tt.row][tt.col]; got != tt.want {
			t.Errorf("cell (%d,%d) = %q, want %q", tt.row, tt.col, got, tt.want)
		}
	}
}
