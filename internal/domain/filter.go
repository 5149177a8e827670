package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// FilterCriteria holds the selections that narrow the dataset for one render.
type FilterCriteria struct {
	StartYear int      `json:"start_year"`
	EndYear   int      `json:"end_year"`
	Location  string   `json:"location,omitempty"`
	Causes    []string `json:"causes"`
}

// DefaultCriteria selects every record: full year range, no location, all observed causes.
func DefaultCriteria(ds *Dataset) FilterCriteria {
	minYear, maxYear := ds.YearBounds()
	return FilterCriteria{
		StartYear: minYear,
		EndYear:   maxYear,
		Causes:    ds.Causes(),
	}
}

// FilteredView is the subsequence of a Dataset passing a FilterCriteria.
// A nil *FilteredView means "not computed"; a view with no records is a valid empty result.
type FilteredView struct {
	Records    []FloodRecord
	HasDetails bool
	Criteria   FilterCriteria
}

// Len returns the number of records in the view.
func (v *FilteredView) Len() int {
	if v == nil {
		return 0
	}
	return len(v.Records)
}

// Empty reports whether the view holds no records. A nil view is empty.
func (v *FilteredView) Empty() bool {
	return v.Len() == 0
}

// Filter returns the records of ds satisfying all of c's predicates, in source order.
// The dataset is never modified and the result never aliases its backing array.
func Filter(ds *Dataset, c FilterCriteria) *FilteredView {
	view := &FilteredView{
		Records:  make([]FloodRecord, 0),
		Criteria: c,
	}
	if ds == nil {
		return view
	}
	view.HasDetails = ds.HasDetails

	causes := make(map[string]struct{}, len(c.Causes))
	for _, cause := range c.Causes {
		causes[cause] = struct{}{}
	}
	if len(causes) == 0 {
		return view
	}

	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(c.Location))

	for i := range ds.Records {
		rec := &ds.Records[i]
		if rec.Year < c.StartYear || rec.Year > c.EndYear {
			continue
		}
		if _, ok := causes[rec.MainCause]; !ok {
			continue
		}
		if needle != "" {
			if rec.Location == "" || !strings.Contains(fold.String(rec.Location), needle) {
				continue
			}
		}
		view.Records = append(view.Records, *rec)
	}
	return view
}
