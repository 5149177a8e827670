package domain

import (
	"context"
	"encoding/json"
	"math"
	"time"
)

// Dataset column names as they appear in the source header.
const (
	ColYear           = "Year"
	ColLocation       = "Location"
	ColLatitude       = "Latitude"
	ColLongitude      = "Longitude"
	ColMainCause      = "Main Cause"
	ColDuration       = "Duration"
	ColHumanFatality  = "Human fatality"
	ColHumanInjured   = "Human injured"
	ColAnimalFatality = "Animal Fatality"
	ColDetails        = "Details"
)

// RequiredColumns lists the columns every dataset must carry, in canonical order.
var RequiredColumns = []string{
	ColYear,
	ColLocation,
	ColLatitude,
	ColLongitude,
	ColMainCause,
	ColDuration,
	ColHumanFatality,
	ColHumanInjured,
	ColAnimalFatality,
}

// FloodRecord is one row of the flood event dataset.
type FloodRecord struct {
	ID             string  `json:"id"`
	Year           int     `json:"year"`
	Location       string  `json:"location,omitempty"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	MainCause      string  `json:"main_cause"`
	Duration       float64 `json:"-"`
	HumanFatality  int64   `json:"human_fatality"`
	HumanInjured   int64   `json:"human_injured"`
	AnimalFatality int64   `json:"animal_fatality"`
	Details        string  `json:"details,omitempty"`

	// Place is the reverse-geocoded address, set only when geocoding is enabled.
	Place string `json:"place,omitempty"`
}

// HasDuration reports whether the Duration cell held a value.
func (r FloodRecord) HasDuration() bool {
	return !math.IsNaN(r.Duration)
}

// DurationValue returns Duration as a pointer for JSON encoding, nil when absent.
func (r FloodRecord) DurationValue() *float64 {
	if !r.HasDuration() {
		return nil
	}
	d := r.Duration
	return &d
}

// MarshalJSON encodes Duration as a number, or null when the cell was empty.
func (r FloodRecord) MarshalJSON() ([]byte, error) {
	type alias FloodRecord
	return json.Marshal(struct {
		alias
		Duration *float64 `json:"duration"`
	}{alias: alias(r), Duration: r.DurationValue()})
}

// UnmarshalJSON is the inverse of MarshalJSON; a null duration decodes to NaN.
func (r *FloodRecord) UnmarshalJSON(data []byte) error {
	type alias FloodRecord
	aux := struct {
		*alias
		Duration *float64 `json:"duration"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Duration = math.NaN()
	if aux.Duration != nil {
		r.Duration = *aux.Duration
	}
	return nil
}

// Dataset is the immutable, in-memory flood event table.
type Dataset struct {
	Records    []FloodRecord
	HasDetails bool
	Source     string
	LoadedAt   time.Time
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Causes returns the distinct MainCause values in first-seen order.
func (d *Dataset) Causes() []string {
	if d == nil {
		return nil
	}
	seen := make(map[string]struct{})
	causes := make([]string, 0)
	for i := range d.Records {
		c := d.Records[i].MainCause
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		causes = append(causes, c)
	}
	return causes
}

// YearBounds returns the smallest and largest Year. Both are 0 for an empty dataset.
func (d *Dataset) YearBounds() (minYear, maxYear int) {
	if d.Len() == 0 {
		return 0, 0
	}
	minYear, maxYear = d.Records[0].Year, d.Records[0].Year
	for i := range d.Records[1:] {
		y := d.Records[i+1].Year
		if y < minYear {
			minYear = y
		}
		if y > maxYear {
			maxYear = y
		}
	}
	return minYear, maxYear
}

// DatasetLoader produces a Dataset from some backing store.
type DatasetLoader interface {
	Load(ctx context.Context) (*Dataset, error)
}
