package domain

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ParseCSV reads a header-first delimited stream into a Dataset. Rows may have
// fewer cells than the header; missing trailing cells read as empty.
func ParseCSV(source string, r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &DataLoadError{Source: source, Err: errors.New("empty file: no header row")}
	}
	if err != nil {
		return nil, &DataLoadError{Source: source, Err: fmt.Errorf("read header: %w", err)}
	}

	var (
		rows  [][]string
		lines []int
	)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &DataLoadError{Source: source, Line: pe.Line, Err: pe.Err}
			}
			return nil, &DataLoadError{Source: source, Err: err}
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}

	return parseTable(source, header, rows, lines)
}

// ParseTable converts a header and string rows into a Dataset. Line numbers in
// errors assume the header is line 1.
func ParseTable(source string, header []string, rows [][]string) (*Dataset, error) {
	return parseTable(source, header, rows, nil)
}

// parseTable reports errors at lines[i] for row i when lines is set, so rows
// with quoted multi-line cells keep their physical line numbers.
func parseTable(source string, header []string, rows [][]string, lines []int) (*Dataset, error) {
	idx := indexHeader(header)
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, &DataLoadError{Source: source, Err: &MissingColumnError{Column: col}}
		}
	}
	_, hasDetails := idx[ColDetails]

	records := make([]FloodRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := parseRow(row, idx)
		if err != nil {
			line := i + 2
			if i < len(lines) {
				line = lines[i]
			}
			var ce *cellError
			if errors.As(err, &ce) {
				return nil, &DataLoadError{Source: source, Line: line, Column: ce.column, Err: ce.err}
			}
			return nil, &DataLoadError{Source: source, Line: line, Err: err}
		}
		records = append(records, rec)
	}

	return &Dataset{
		Records:    records,
		HasDetails: hasDetails,
		Source:     source,
		LoadedAt:   clock.Now(),
	}, nil
}

type cellError struct {
	column string
	err    error
}

func (e *cellError) Error() string { return fmt.Sprintf("column %q: %v", e.column, e.err) }

func indexHeader(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	return idx
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseRow(row []string, idx map[string]int) (FloodRecord, error) {
	year, err := parseYear(get(row, idx, ColYear))
	if err != nil {
		return FloodRecord{}, &cellError{column: ColYear, err: err}
	}
	lat, err := parseRequiredFloat(get(row, idx, ColLatitude))
	if err != nil {
		return FloodRecord{}, &cellError{column: ColLatitude, err: err}
	}
	lon, err := parseRequiredFloat(get(row, idx, ColLongitude))
	if err != nil {
		return FloodRecord{}, &cellError{column: ColLongitude, err: err}
	}
	duration, err := parseOptionalFloat(get(row, idx, ColDuration))
	if err != nil {
		return FloodRecord{}, &cellError{column: ColDuration, err: err}
	}

	counts := [3]int64{}
	for i, col := range []string{ColHumanFatality, ColHumanInjured, ColAnimalFatality} {
		n, err := parseCount(get(row, idx, col))
		if err != nil {
			return FloodRecord{}, &cellError{column: col, err: err}
		}
		counts[i] = n
	}

	rec := FloodRecord{
		Year:           year,
		Location:       get(row, idx, ColLocation),
		Latitude:       lat,
		Longitude:      lon,
		MainCause:      get(row, idx, ColMainCause),
		Duration:       duration,
		HumanFatality:  counts[0],
		HumanInjured:   counts[1],
		AnimalFatality: counts[2],
		Details:        get(row, idx, ColDetails),
	}
	rec.ID = GenerateID(rec)
	return rec, nil
}

// parseYear accepts integral values, including float spellings such as "2010.0".
func parseYear(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty year")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return int(f), nil
}

func parseRequiredFloat(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return f, nil
}

// parseOptionalFloat returns NaN for an empty cell. Infinities are rejected.
func parseOptionalFloat(s string) (float64, error) {
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return f, nil
}

// maxCount is 2^63, the first float64 beyond the int64 range.
const maxCount = float64(1 << 63)

// parseCount returns 0 for an empty cell and truncates fractional values.
// Values outside the int64 range are rejected.
func parseCount(s string) (int64, error) {
	if s == "" || strings.EqualFold(s, "nan") {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid count %q", s)
	}
	if f >= maxCount || f < -maxCount {
		return 0, fmt.Errorf("count %q out of range", s)
	}
	return int64(f), nil
}

// GenerateID produces a deterministic record ID from its identifying fields.
func GenerateID(r FloodRecord) string {
	input := fmt.Sprintf("%d|%s|%.4f|%.4f|%s", r.Year, strings.ToLower(r.Location), r.Latitude, r.Longitude, r.MainCause)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:8])
}
