package admin

import (
	"fmt"
	"io"
	"time"

	"carcare/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	bookingsSheet = "Bookings"
	summarySheet  = "Summary"
)

var exportColumns = []string{
	"Booking", "Created", "Customer", "Email", "Phone", "Service", "Vehicle Type",
	"Vehicle", "Vehicle Number", "Mode", "Address", "Preferred Slot", "Amount", "Status", "Payment",
}

// ExportBookingsXLSX writes the view as a workbook with a bookings sheet
// and a per-status summary.
func ExportBookingsXLSX(w io.Writer, view BookingView, generatedAt time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(bookingsSheet)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(bookingsSheet, "A1", fmt.Sprintf("Bookings export %s", generatedAt.Format("02 Jan 2006 15:04")))
	lastCol, _ := excelize.ColumnNumberToName(len(exportColumns))
	_ = f.MergeCell(bookingsSheet, "A1", lastCol+"1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(bookingsSheet, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, title := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(bookingsSheet, cell, title)
		_ = f.SetCellStyle(bookingsSheet, cell, cell, headerStyle)
	}

	for r, b := range view.Items {
		row := []interface{}{
			b.ID,
			b.CreatedAt.Format("2006-01-02 15:04"),
			b.UserName,
			b.UserEmail,
			b.UserPhone,
			b.ServiceName,
			string(b.VehicleType),
			b.VehicleMakeModel,
			b.VehicleNumber,
			string(b.ServiceMode),
			b.Address,
			b.PreferredDateTime,
			models.AmountLabel(b.TotalAmount),
			models.StatusLabel(b.Status),
			models.PaymentLabel(b.Status),
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+3)
		if err := f.SetSheetRow(bookingsSheet, cell, &row); err != nil {
			return fmt.Errorf("error writing row %d: %w", r+3, err)
		}
	}
	_ = f.SetColWidth(bookingsSheet, "A", lastCol, 20)
	_ = f.SetColWidth(bookingsSheet, "K", "K", 40)

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	summary := [][]interface{}{
		{"Status", "Bookings"},
		{"All", view.Counts.Total},
		{"Pending", view.Counts.Pending},
		{"Confirmed", view.Counts.Confirmed},
		{"Completed", view.Counts.Completed},
		{"Rescheduled", view.Counts.Rescheduled},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("error writing summary: %w", err)
		}
	}
	_ = f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)

	_ = f.DeleteSheet("Sheet1")

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

// ExportFileName names an export generated at t.
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("bookings_%s.xlsx", t.Format("2006-01-02_1504"))
}
