// Command validate checks the integrity of a flood dataset before it is
// served: required columns and cell parsing, value ranges, and optionally
// whether each Location geocodes near its recorded coordinates. It prints a
// per-cause and per-year summary and exits non-zero on any failure.
//
// Usage:
//
//	go run ./cmd/validate -dataset data/flooddata.csv
//	MAPBOX_TOKEN=pk... go run ./cmd/validate -dataset data/flooddata.csv -geocode -max-km 150
//
// Without -dataset the source configured by DATASET_* environment variables is used.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/flood-dashboard/internal/adapter/mapbox"
	"github.com/couchcryptid/flood-dashboard/internal/adapter/source"
	"github.com/couchcryptid/flood-dashboard/internal/config"
	"github.com/couchcryptid/flood-dashboard/internal/domain"
	"github.com/couchcryptid/flood-dashboard/internal/observability"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataset := flag.String("dataset", "", "path to a flood CSV file (default: configured source)")
	geocode := flag.Bool("geocode", false, "check each location against its coordinates with Mapbox (needs MAPBOX_TOKEN)")
	maxKm := flag.Float64("max-km", 250, "maximum distance between a geocoded location and its coordinates")
	flag.Parse()

	os.Exit(run(*dataset, *geocode, *maxKm))
}

func run(datasetPath string, geocode bool, maxKm float64) int {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		return 1
	}
	if datasetPath != "" {
		cfg.DatasetDriver = config.DriverFile
		cfg.DatasetPath = datasetPath
	}

	fmt.Println("=== Flood Dataset Integrity Validation ===")
	fmt.Println()
	fmt.Printf("Source: %s\n", cfg.DatasetSource())

	// ── Load ──
	load := &phase{name: "Parse dataset"}
	ds, err := loadDataset(ctx, cfg)
	if err != nil {
		load.errorf("%v", err)
		report([]*phase{load})
		return 1
	}

	// ── Run validation phases ──
	phases := []*phase{load, validateRanges(ds)}
	if geocode {
		if cfg.MapboxToken == "" {
			fmt.Fprintln(os.Stderr, "FATAL: -geocode requires MAPBOX_TOKEN")
			return 1
		}
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		metrics := observability.NewMetrics()
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder := mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		phases = append(phases, validateLocations(ctx, ds, geocoder, maxKm))
	}

	printSummary(ds)
	if report(phases) {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadDataset(ctx context.Context, cfg *config.Config) (*domain.Dataset, error) {
	loader, err := source.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer loader.Close() //nolint:errcheck // read-only source
	return loader.Load(ctx)
}

// report prints the phase table and detailed errors. It returns true when every phase passed.
func report(phases []*phase) bool {
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}
	return allPassed
}

// ── Phases ──

func validateRanges(ds *domain.Dataset) *phase {
	p := &phase{name: "Record value ranges"}
	for i := range ds.Records {
		if err := ds.Records[i].Validate(); err != nil {
			p.errorf("record %d (%s, %d): %v", i+1, locationName(ds.Records[i]), ds.Records[i].Year, err)
		}
	}
	return p
}

// validateLocations forward-geocodes each distinct Location and flags records
// whose coordinates are more than maxKm away from the geocoded point.
func validateLocations(ctx context.Context, ds *domain.Dataset, geocoder domain.Geocoder, maxKm float64) *phase {
	p := &phase{name: "Location plausibility"}
	resolved := make(map[string]domain.GeocodingResult)

	for i := range ds.Records {
		rec := &ds.Records[i]
		if rec.Location == "" {
			continue
		}
		res, ok := resolved[rec.Location]
		if !ok {
			var err error
			res, err = geocoder.ForwardGeocode(ctx, rec.Location)
			if err != nil {
				p.errorf("record %d: geocode %q: %v", i+1, rec.Location, err)
				continue
			}
			resolved[rec.Location] = res
		}
		if res.FormattedAddress == "" && res.Lat == 0 && res.Lon == 0 {
			continue
		}
		if d := domain.DistanceKm(rec.Latitude, rec.Longitude, res.Lat, res.Lon); d > maxKm {
			p.errorf("record %d: %q is %.0f km from (%.4f, %.4f), geocoded to %s",
				i+1, rec.Location, d, rec.Latitude, rec.Longitude, res.FormattedAddress)
		}
	}
	return p
}

// ── Summary ──

type summary struct {
	causes []domain.CauseCount
	years  []domain.YearCount
	totals domain.Counters

	missingDuration int
	missingLocation int
}

func summarize(ds *domain.Dataset) summary {
	view := domain.Filter(ds, domain.DefaultCriteria(ds))
	s := summary{
		causes: domain.BuildCauseDistribution(view),
		years:  domain.BuildTimeSeries(view),
		totals: domain.BuildCounters(view),
	}
	for i := range ds.Records {
		if !ds.Records[i].HasDuration() {
			s.missingDuration++
		}
		if ds.Records[i].Location == "" {
			s.missingLocation++
		}
	}
	return s
}

func printSummary(ds *domain.Dataset) {
	s := summarize(ds)
	minYear, maxYear := ds.YearBounds()

	fmt.Printf("Records: %d (%d-%d), details column: %t\n", ds.Len(), minYear, maxYear, ds.HasDetails)
	fmt.Printf("Missing duration: %d, missing location: %d\n", s.missingDuration, s.missingLocation)
	fmt.Printf("Casualties: %d human fatalities, %d injured, %d animal fatalities\n",
		s.totals.HumanFatalities, s.totals.HumanInjuries, s.totals.AnimalFatalities)

	fmt.Println("\nBy main cause:")
	for _, c := range s.causes {
		fmt.Printf("  %-30s %6d\n", c.Cause, c.Count)
	}

	fmt.Println("\nBy year:")
	for _, y := range s.years {
		fmt.Printf("  %d %6d\n", y.Year, y.Count)
	}
}

func locationName(r domain.FloodRecord) string {
	if r.Location == "" {
		return "unknown location"
	}
	return r.Location
}
