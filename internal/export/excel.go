// Package export renders a date's reservations as an Excel day sheet
// for front-of-house staff.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"quicktable/internal/models"
)

var daySheetColumns = []string{
	"Time", "Table", "Customer", "Email", "Phone", "Guests", "Status", "Notes",
}

// WriteDaySheet writes an xlsx workbook with one sheet listing the
// reservations of a date, ordered as given.
func WriteDaySheet(w io.Writer, date string, reservations []models.Reservation) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := date
	// Excel caps sheet names at 31 chars.
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	f.SetSheetName("Sheet1", sheet)

	for i, col := range daySheetColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}

	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(daySheetColumns), 1)
		_ = f.SetCellStyle(sheet, startCell, endCell, style)
	}

	for rowIdx, r := range reservations {
		values := []any{
			r.ReservationHour,
			r.TableNumber,
			r.CustomerName,
			r.CustomerEmail,
			r.CustomerPhone,
			r.Guests,
			r.Status,
			r.Notes,
		}
		for colIdx, val := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return fmt.Errorf("write row %d: %w", rowIdx+1, err)
			}
		}
	}

	return f.Write(w)
}
