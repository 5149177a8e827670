package domain

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteCSV writes records in the dataset column layout, header first. The
// Details column is written only when withDetails is set. NaN durations are
// written as empty cells.
func WriteCSV(w io.Writer, records []FloodRecord, withDetails bool) error {
	cw := csv.NewWriter(w)
	header := append([]string(nil), RequiredColumns...)
	if withDetails {
		header = append(header, ColDetails)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := range records {
		if err := cw.Write(encodeRow(&records[i], withDetails)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func encodeRow(r *FloodRecord, withDetails bool) []string {
	duration := ""
	if r.HasDuration() {
		duration = strconv.FormatFloat(r.Duration, 'f', -1, 64)
	}
	row := []string{
		strconv.Itoa(r.Year),
		r.Location,
		strconv.FormatFloat(r.Latitude, 'f', -1, 64),
		strconv.FormatFloat(r.Longitude, 'f', -1, 64),
		r.MainCause,
		duration,
		strconv.FormatInt(r.HumanFatality, 10),
		strconv.FormatInt(r.HumanInjured, 10),
		strconv.FormatInt(r.AnimalFatality, 10),
	}
	if withDetails {
		row = append(row, r.Details)
	}
	return row
}
