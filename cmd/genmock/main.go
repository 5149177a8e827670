// Command genmock generates a deterministic synthetic flood dataset for local
// runs and demos. Output uses the same column layout the dashboard reads, so
// the file can be served directly with DATASET_PATH.
//
// Usage:
//
//	go run ./cmd/genmock -out data/flooddata.csv -n 500
//	go run ./cmd/genmock -out data/flooddata.csv -json-out data/mock/floods.json -seed 7
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/flood-dashboard/internal/domain"
	"github.com/jonboulle/clockwork"
)

// generatedAt fixes the latest year generated so repeated runs produce identical files.
var generatedAt = time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)

type site struct {
	name     string
	lat, lon float64
}

var sites = []site{
	{"Mumbai", 19.0760, 72.8777},
	{"Chennai", 13.0827, 80.2707},
	{"Kolkata", 22.5726, 88.3639},
	{"Patna", 25.5941, 85.1376},
	{"Guwahati", 26.1445, 91.7362},
	{"Kochi", 9.9312, 76.2673},
	{"Srinagar", 34.0837, 74.7973},
	{"Bhubaneswar", 20.2961, 85.8245},
	{"Surat", 21.1702, 72.8311},
	{"Hyderabad", 17.3850, 78.4867},
	{"Dehradun", 30.3165, 78.0322},
	{"Silchar", 24.8333, 92.7789},
}

var causes = []string{
	"Heavy Rain",
	"Cyclone",
	"Monsoon",
	"Dam Release",
	"Cloudburst",
	"Glacial Lake Outburst",
}

var detailPhrases = map[string][]string{
	"Heavy Rain":            {"heavy rainfall submerged low lying areas", "waterlogging disrupted traffic", "rivers swelled after continuous rain"},
	"Cyclone":               {"cyclone made landfall with strong winds", "storm surge flooded coastal villages", "fishermen were warned not to venture out"},
	"Monsoon":               {"monsoon rains caused rivers to overflow", "villages were cut off for days", "relief camps were opened"},
	"Dam Release":           {"water released from the dam inundated downstream villages", "embankments breached near the river"},
	"Cloudburst":            {"sudden cloudburst triggered flash floods", "landslides blocked the highway"},
	"Glacial Lake Outburst": {"glacial lake burst sending debris downstream", "bridges were washed away"},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/flooddata.csv", "output path for the CSV dataset")
	jsonOut := flag.String("json-out", "", "optional output path for a JSON fixture of the same records")
	n := flag.Int("n", 250, "number of records to generate")
	seed := flag.Int64("seed", 42, "random seed")
	noDetails := flag.Bool("no-details", false, "omit the Details column")
	flag.Parse()

	if *n <= 0 {
		return fmt.Errorf("-n must be positive, got %d", *n)
	}

	domain.SetClock(clockwork.NewFakeClockAt(generatedAt))
	defer domain.SetClock(nil)

	records := generate(rand.New(rand.NewSource(*seed)), *n, domain.Now().Year()) //nolint:gosec // reproducible fixtures

	if err := writeCSV(*out, records, !*noDetails); err != nil {
		return err
	}
	log.Printf("wrote %d records to %s", len(records), *out)

	if *jsonOut != "" {
		if err := writeJSON(*jsonOut, records); err != nil {
			return err
		}
		log.Printf("wrote %s", *jsonOut)
	}
	return nil
}

// generate builds n records spread over the 30 years ending at lastYear.
// Roughly one in eight records has no duration.
func generate(rng *rand.Rand, n, lastYear int) []domain.FloodRecord {
	records := make([]domain.FloodRecord, 0, n)
	for range n {
		s := sites[rng.Intn(len(sites))]
		cause := causes[rng.Intn(len(causes))]

		rec := domain.FloodRecord{
			Year:      lastYear - rng.Intn(30),
			Location:  s.name,
			Latitude:  round4(s.lat + rng.NormFloat64()*0.15),
			Longitude: round4(s.lon + rng.NormFloat64()*0.15),
			MainCause: cause,
			Duration:  math.NaN(),
		}
		if rng.Intn(8) != 0 {
			rec.Duration = float64(1 + rng.Intn(20))
		}
		rec.HumanFatality = int64(rng.ExpFloat64() * 25)
		rec.HumanInjured = int64(rng.ExpFloat64() * 60)
		rec.AnimalFatality = int64(rng.ExpFloat64() * 150)
		rec.Details = details(rng, s.name, cause)
		rec.ID = domain.GenerateID(rec)

		records = append(records, rec)
	}
	return records
}

func details(rng *rand.Rand, location, cause string) string {
	phrases := detailPhrases[cause]
	parts := []string{fmt.Sprintf("Floods in %s", location)}
	for range 1 + rng.Intn(2) {
		parts = append(parts, phrases[rng.Intn(len(phrases))])
	}
	return strings.Join(parts, "; ") + "."
}

func round4(f float64) float64 {
	return math.Round(f*1e4) / 1e4
}

func writeCSV(path string, records []domain.FloodRecord, withDetails bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := domain.WriteCSV(f, records, withDetails); err != nil {
		f.Close() //nolint:errcheck,gosec // write error takes precedence
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeJSON(path string, records []domain.FloodRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}
