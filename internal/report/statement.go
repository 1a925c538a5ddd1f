// Package report renders bill statements as XLSX workbooks.
package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mmynk/wattcount/internal/models"
)

// StatementSheet is the name of the worksheet holding the statement.
const StatementSheet = "Statement"

// StatementHeader lists the statement columns in order.
var StatementHeader = []string{
	"Billing Cycle",
	"User",
	"Reading Date",
	"Previous Reading",
	"Current Reading",
	"Consumption (kWh)",
	"Total",
	"Paid",
	"Remaining",
	"Status",
	"Created",
}

var columnWidths = []float64{14, 20, 14, 17, 17, 18, 12, 12, 12, 10, 20}

// WriteBillStatement writes one row per bill followed by a totals row.
func WriteBillStatement(w io.Writer, bills []models.BillView) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(StatementSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]any, len(StatementHeader))
	for i, h := range StatementHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(StatementSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(StatementHeader), 1)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetCellStyle(StatementSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}
	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(StatementSheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	total, paid, remaining := decimal.Zero, decimal.Zero, decimal.Zero
	for i, b := range bills {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		row := billRow(b)
		if err := f.SetSheetRow(StatementSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write bill %s: %w", b.ID, err)
		}
		total = total.Add(b.TotalAmount)
		paid = paid.Add(b.TotalPaid)
		remaining = remaining.Add(b.RemainingAmount)
	}

	totalsCell, err := excelize.CoordinatesToCellName(1, len(bills)+2)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	totals := []any{"Total", "", "", "", "", "", total.InexactFloat64(), paid.InexactFloat64(), remaining.InexactFloat64()}
	if err := f.SetSheetRow(StatementSheet, totalsCell, &totals); err != nil {
		return fmt.Errorf("failed to write totals: %w", err)
	}

	if err := f.SetPanes(StatementSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func billRow(b models.BillView) []any {
	user := b.FullName
	if user == "" {
		user = b.Username
	}
	var readingDate, previous, current any = "", "", ""
	if b.ReadingDate != nil {
		readingDate = b.ReadingDate.String()
	}
	if b.PreviousReading != nil {
		previous = b.PreviousReading.InexactFloat64()
	}
	if b.CurrentReading != nil {
		current = b.CurrentReading.InexactFloat64()
	}
	return []any{
		b.BillingCycle,
		user,
		readingDate,
		previous,
		current,
		b.ConsumptionKWh.InexactFloat64(),
		b.TotalAmount.InexactFloat64(),
		b.TotalPaid.InexactFloat64(),
		b.RemainingAmount.InexactFloat64(),
		string(b.Status),
		b.CreatedAt.UTC().Format("2006-01-02 15:04"),
	}
}
