// Command export publishes a filtered view of the flood dataset to Kafka, one
// JSON message per record. Dataset and broker settings come from the same
// environment variables as flodd.
//
// Usage:
//
//	go run ./cmd/export -start-year 2010 -end-year 2020 -cause "Heavy Rain" -cause Cyclone
//	go run ./cmd/export -location chennai -dry-run > chennai.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	kafkaadapter "github.com/couchcryptid/flood-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/flood-dashboard/internal/adapter/source"
	"github.com/couchcryptid/flood-dashboard/internal/config"
	"github.com/couchcryptid/flood-dashboard/internal/domain"
	"github.com/couchcryptid/flood-dashboard/internal/observability"
	"github.com/couchcryptid/flood-dashboard/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		q      pipeline.Query
		causes []string
	)
	startYear := flag.Int("start-year", 0, "first year to include (default: dataset minimum)")
	endYear := flag.Int("end-year", 0, "last year to include (default: dataset maximum)")
	flag.StringVar(&q.Location, "location", "", "case-insensitive location substring")
	flag.Func("cause", "main cause to include (repeatable, default: all)", func(s string) error {
		causes = append(causes, s)
		return nil
	})
	dryRun := flag.Bool("dry-run", false, "write the filtered records as CSV to stdout instead of publishing")
	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "start-year":
			q.StartYear = startYear
		case "end-year":
			q.EndYear = endYear
		}
	})
	q.Causes = causes

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader, err := source.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open dataset source: %w", err)
	}
	defer loader.Close() //nolint:errcheck // process exit

	handle := pipeline.NewDatasetHandle(loader, nil, logger, metrics)
	p := pipeline.New(handle, pipeline.Options{}, logger, metrics)

	view, err := p.Filter(ctx, q)
	if err != nil {
		return err
	}
	logger.Info("records selected",
		"start_year", view.Criteria.StartYear,
		"end_year", view.Criteria.EndYear,
		"location", view.Criteria.Location,
		"records", view.Len(),
	)

	if *dryRun {
		return domain.WriteCSV(os.Stdout, view.Records, view.HasDetails)
	}

	writer := kafkaadapter.NewWriter(cfg, logger, metrics)
	defer writer.Close() //nolint:errcheck // process exit

	exp, err := writer.Export(ctx, view.Records)
	if err != nil {
		return err
	}
	fmt.Printf("exported %d records to %s (export id %s)\n", exp.Records, exp.Topic, exp.ID)
	return nil
}
