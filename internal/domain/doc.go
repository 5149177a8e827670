// Package domain models the flood event dataset and the pure computations the
// dashboard renders from it.
//
// # Data Source
//
// The dataset is a delimited text file (or an S3 object / SQL table with the
// same columns) with one flood event per row. It is read once per process and
// never written back.
//
// Required columns:
//
//	Year, Location, Latitude, Longitude, Main Cause, Duration,
//	Human fatality, Human injured, Animal Fatality
//
// Optional columns:
//
//	Details   free text describing what happened; source of the word cloud
//
// Header names are matched exactly after trimming surrounding whitespace.
// Unknown columns are ignored.
//
// # Cell Conventions
//
//	Year          integer; "2010" and "2010.0" are both accepted
//	Latitude/Lon  decimal degrees, assumed present and valid
//	Duration      days, decimal; an empty cell is recorded as NaN and skipped
//	              by the histogram, scatter and correlation blocks
//	Counts        Human fatality, Human injured, Animal Fatality; an empty
//	              cell counts as 0, fractional values are truncated
//	Location      an empty cell means the location is unknown
//
// # Filtering
//
// [Filter] applies the conjunction of three predicates (inclusive year range,
// case-insensitive location substring, cause membership) and keeps the
// source order of surviving records. An empty cause set selects nothing;
// callers wanting "no cause filter" pass every observed cause, which
// [DefaultCriteria] does.
//
// # Blocks
//
// Each Build* function is a pure function of a [FilteredView]. An empty view
// yields an empty artifact, never an error. [BuildWordCloud] is the only block
// that reports a recoverable error ([MissingColumnError]) when the dataset
// carries no Details column.
//
// # ID Generation
//
// Record IDs are the first 8 bytes of a SHA-256 over year, location,
// coordinates and cause, hex encoded. They are stable across reloads and are
// used as message keys by the export command.
package domain
