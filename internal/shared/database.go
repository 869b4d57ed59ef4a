package shared

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "github.com/mattn/go-sqlite3"    // registers "sqlite3"
	_ "modernc.org/sqlite"             // registers "sqlite"
)

// Supported database/sql driver names.
const (
	DriverSQLite3  = "sqlite3"
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// MemoryPath opens a private in-memory SQLite database.
const MemoryPath = ":memory:"

// Dialect identifies the SQL flavour spoken by a driver.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DialectFor maps a driver name to its [Dialect].
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverSQLite3, DriverSQLite:
		return DialectSQLite, nil
	case DriverPostgres:
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// Rebind rewrites "?" placeholders into the dialect's bind syntax.
//
// Queries must not contain literal question marks.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Collation returns the byte-wise collation name used for name tie-breaks.
func (d Dialect) Collation() string {
	if d == DialectPostgres {
		return `"C"`
	}
	return "BINARY"
}

// NewDatabase opens a connection using the given driver.
//
// For the SQLite drivers source is a file path (or ":memory:"); for pgx it is a DSN.
// Foreign keys are enforced on SQLite. In-memory databases are pinned to a single
// connection so every statement sees the same database.
func NewDatabase(driver, source string) (*sql.DB, error) {
	if _, err := DialectFor(driver); err != nil {
		return nil, err
	}
	if source == "" {
		return nil, fmt.Errorf("%w: empty data source for driver %s", ErrInvalidConfig, driver)
	}

	db, err := sql.Open(driver, dataSource(driver, source))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if source == MemoryPath {
		ConfigureDatabase(db, 1, 1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// ConfigureDatabase sets connection pool settings for the database.
// Recommended for production use to limit connections and improve performance.
func ConfigureDatabase(db *sql.DB, maxOpenConns, maxIdleConns int) {
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
}

func dataSource(driver, source string) string {
	switch driver {
	case DriverSQLite3:
		return withParams(source, "_foreign_keys=on&_busy_timeout=5000")
	case DriverSQLite:
		if !strings.HasPrefix(source, "file:") {
			source = "file:" + source
		}
		return withParams(source, "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	default:
		return source
	}
}

func withParams(source, params string) string {
	if strings.Contains(source, "?") {
		return source + "&" + params
	}
	return source + "?" + params
}
