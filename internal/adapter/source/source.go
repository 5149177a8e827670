// Package source loads the flood dataset from a file, an S3 object or a SQL table.
package source

import (
	"context"
	"fmt"
	"io"

	"github.com/couchcryptid/flood-dashboard/internal/config"
	"github.com/couchcryptid/flood-dashboard/internal/domain"
)

// Loader is a domain.DatasetLoader holding resources that must be released.
type Loader interface {
	domain.DatasetLoader
	Close() error
}

// Opener yields the raw bytes of a delimited dataset.
type Opener interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	// Name identifies the source in errors and logs.
	Name() string
}

// CSVLoader parses a delimited dataset read through an Opener.
type CSVLoader struct {
	opener Opener
}

// NewCSVLoader creates a loader over opener.
func NewCSVLoader(opener Opener) *CSVLoader {
	return &CSVLoader{opener: opener}
}

// Load opens the source and parses it. Every failure is a *domain.DataLoadError.
func (l *CSVLoader) Load(ctx context.Context) (*domain.Dataset, error) {
	rc, err := l.opener.Open(ctx)
	if err != nil {
		return nil, &domain.DataLoadError{Source: l.opener.Name(), Err: err}
	}
	defer rc.Close()

	return domain.ParseCSV(l.opener.Name(), rc)
}

// Close is a no-op; each Load closes what it opens.
func (l *CSVLoader) Close() error { return nil }

// New builds the loader selected by cfg.DatasetDriver.
func New(ctx context.Context, cfg *config.Config) (Loader, error) {
	switch cfg.DatasetDriver {
	case config.DriverFile:
		return NewCSVLoader(File{Path: cfg.DatasetPath}), nil
	case config.DriverS3:
		obj, err := NewS3Object(ctx, S3Config{
			Region:    cfg.DatasetS3Region,
			Bucket:    cfg.DatasetS3Bucket,
			Key:       cfg.DatasetS3Key,
			Endpoint:  cfg.DatasetS3Endpoint,
			PathStyle: cfg.DatasetS3PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return NewCSVLoader(obj), nil
	case config.DriverSQLite, config.DriverPostgres:
		return OpenSQL(cfg.DatasetDriver, cfg.DatasetDSN, cfg.DatasetTable)
	default:
		return nil, fmt.Errorf("unknown dataset driver %q", cfg.DatasetDriver)
	}
}
