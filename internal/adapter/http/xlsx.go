package http

import (
	"fmt"
	"io"

	"github.com/couchcryptid/flood-dashboard/internal/domain"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Floods"

// writeWorkbook writes records as a single-sheet spreadsheet in the dataset's
// column order. Absent durations are left blank.
func writeWorkbook(w io.Writer, records []domain.FloodRecord, withDetails bool) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, 0, len(domain.RequiredColumns)+1)
	for _, col := range domain.RequiredColumns {
		header = append(header, col)
	}
	if withDetails {
		header = append(header, domain.ColDetails)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range records {
		rec := &records[i]
		var duration any
		if rec.HasDuration() {
			duration = rec.Duration
		}
		row := []any{
			rec.Year,
			rec.Location,
			rec.Latitude,
			rec.Longitude,
			rec.MainCause,
			duration,
			rec.HumanFatality,
			rec.HumanInjured,
			rec.AnimalFatality,
		}
		if withDetails {
			row = append(row, rec.Details)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(exportSheet, "B", "B", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(exportSheet, "E", "E", 18); err != nil {
		return err
	}
	return f.Write(w)
}
