package main

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/couchcryptid/flood-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGeocoder struct {
	results map[string]domain.GeocodingResult
	calls   map[string]int
}

func (g *stubGeocoder) ForwardGeocode(_ context.Context, location string) (domain.GeocodingResult, error) {
	g.calls[location]++
	res, ok := g.results[location]
	if !ok {
		return domain.GeocodingResult{}, errors.New("not found")
	}
	return res, nil
}

func (g *stubGeocoder) ReverseGeocode(context.Context, float64, float64) (domain.GeocodingResult, error) {
	return domain.GeocodingResult{}, nil
}

func dataset(records ...domain.FloodRecord) *domain.Dataset {
	return &domain.Dataset{Records: records}
}

func record(location string, lat, lon float64) domain.FloodRecord {
	return domain.FloodRecord{
		Year:      2015,
		Location:  location,
		Latitude:  lat,
		Longitude: lon,
		MainCause: "Heavy Rain",
		Duration:  3,
	}
}

func TestValidateRanges(t *testing.T) {
	bad := record("Nowhere", 95, 80)
	bad.HumanInjured = -1
	noDuration := record("Patna", 25.59, 85.13)
	noDuration.Duration = math.NaN()

	p := validateRanges(dataset(record("Chennai", 13.08, 80.27), bad, noDuration))

	assert.False(t, p.passed())
	require.Len(t, p.errors, 1)
	assert.Contains(t, p.errors[0], "record 2 (Nowhere, 2015)")
	assert.Contains(t, p.errors[0], "latitude 95")
	assert.Contains(t, p.errors[0], "human injured -1")
}

func TestValidateRanges_AllValid(t *testing.T) {
	p := validateRanges(dataset(record("Chennai", 13.08, 80.27), record("", 19.07, 72.87)))
	assert.True(t, p.passed())
}

func TestValidateLocations(t *testing.T) {
	geo := &stubGeocoder{
		results: map[string]domain.GeocodingResult{
			"Chennai": {Lat: 13.0827, Lon: 80.2707, FormattedAddress: "Chennai, Tamil Nadu, India"},
			"Mumbai":  {Lat: 19.0760, Lon: 72.8777, FormattedAddress: "Mumbai, Maharashtra, India"},
		},
		calls: map[string]int{},
	}
	ds := dataset(
		record("Chennai", 13.10, 80.25),
		record("Chennai", 13.05, 80.30),
		record("Mumbai", 13.08, 80.27), // Chennai's coordinates
		record("Atlantis", 0, 0),
		record("", 10, 10),
	)

	p := validateLocations(context.Background(), ds, geo, 250)

	require.Len(t, p.errors, 2)
	assert.Contains(t, p.errors[0], `record 3: "Mumbai"`)
	assert.Contains(t, p.errors[0], "Mumbai, Maharashtra, India")
	assert.Contains(t, p.errors[1], `record 4: geocode "Atlantis"`)
	assert.Equal(t, 1, geo.calls["Chennai"], "distinct locations are geocoded once")
	assert.Zero(t, geo.calls[""])
}

func TestValidateLocations_EmptyResultIsSkipped(t *testing.T) {
	geo := &stubGeocoder{
		results: map[string]domain.GeocodingResult{"Somewhere": {}},
		calls:   map[string]int{},
	}
	p := validateLocations(context.Background(), dataset(record("Somewhere", 40, 40)), geo, 10)
	assert.True(t, p.passed())
}

func TestSummarize(t *testing.T) {
	a := record("Chennai", 13.08, 80.27)
	a.HumanFatality, a.HumanInjured, a.AnimalFatality = 5, 10, 2
	b := record("", 19.07, 72.87)
	b.Year = 2012
	b.MainCause = "Cyclone"
	b.Duration = math.NaN()
	b.HumanFatality = 1

	s := summarize(dataset(a, b))

	assert.Equal(t, domain.Counters{HumanFatalities: 6, HumanInjuries: 10, AnimalFatalities: 2}, s.totals)
	assert.Equal(t, []domain.YearCount{{Year: 2012, Count: 1}, {Year: 2015, Count: 1}}, s.years)
	assert.Len(t, s.causes, 2)
	assert.Equal(t, 1, s.missingDuration)
	assert.Equal(t, 1, s.missingLocation)
}

func TestPhaseReport(t *testing.T) {
	ok := &phase{name: "ok"}
	failed := &phase{name: "failed"}
	failed.errorf("record %d: %s", 1, "bad")

	assert.True(t, report([]*phase{ok}))
	assert.False(t, report([]*phase{ok, failed}))
	assert.Equal(t, []string{"record 1: bad"}, failed.errors)
}
