package source

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"github.com/couchcryptid/flood-dashboard/internal/domain"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SQLLoader reads the dataset from a table whose column names match the CSV header.
type SQLLoader struct {
	db     *sql.DB
	table  string
	source string
}

// OpenSQL opens a database for the sqlite or postgres driver.
func OpenSQL(driver, dsn, table string) (*SQLLoader, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	var driverName string
	switch driver {
	case "sqlite":
		driverName = "sqlite"
	case "postgres":
		driverName = "pgx"
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return NewSQLLoader(db, driver, table), nil
}

// NewSQLLoader wraps an open database. table must be a plain identifier.
func NewSQLLoader(db *sql.DB, driver, table string) *SQLLoader {
	return &SQLLoader{db: db, table: table, source: driver + ":" + table}
}

// Load selects every row of the table in storage order.
func (l *SQLLoader) Load(ctx context.Context) (*domain.Dataset, error) {
	rows, err := l.db.QueryContext(ctx, "SELECT * FROM "+l.table) //nolint:gosec // table validated as identifier
	if err != nil {
		return nil, &domain.DataLoadError{Source: l.source, Err: fmt.Errorf("query: %w", err)}
	}
	defer func() { _ = rows.Close() }()

	header, err := rows.Columns()
	if err != nil {
		return nil, &domain.DataLoadError{Source: l.source, Err: fmt.Errorf("columns: %w", err)}
	}

	var table [][]string
	values := make([]any, len(header))
	ptrs := make([]any, len(header))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &domain.DataLoadError{Source: l.source, Line: len(table) + 2, Err: fmt.Errorf("scan: %w", err)}
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = cellString(v)
		}
		table = append(table, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.DataLoadError{Source: l.source, Err: err}
	}

	return domain.ParseTable(l.source, header, table)
}

// Close releases the database handle.
func (l *SQLLoader) Close() error {
	return l.db.Close()
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
