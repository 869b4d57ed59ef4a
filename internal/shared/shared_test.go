package shared

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestDialect(t *testing.T) {
	t.Run("Rebind", func(t *testing.T) {
		tc := []struct {
			name    string
			dialect Dialect
			query   string
			want    string
		}{
			{
				name:    "sqlite keeps placeholders",
				dialect: DialectSQLite,
				query:   "SELECT id FROM songs WHERE artist_id = ? AND title = ?",
				want:    "SELECT id FROM songs WHERE artist_id = ? AND title = ?",
			},
			{
				name:    "postgres numbers placeholders",
				dialect: DialectPostgres,
				query:   "SELECT id FROM songs WHERE artist_id = ? AND title = ?",
				want:    "SELECT id FROM songs WHERE artist_id = $1 AND title = $2",
			},
			{
				name:    "no placeholders",
				dialect: DialectPostgres,
				query:   "DELETE FROM ratings",
				want:    "DELETE FROM ratings",
			},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := tt.dialect.Rebind(tt.query); got != tt.want {
					t.Errorf("Rebind() = %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("DialectFor", func(t *testing.T) {
		for driver, want := range map[string]Dialect{
			DriverSQLite3:  DialectSQLite,
			DriverSQLite:   DialectSQLite,
			DriverPostgres: DialectPostgres,
		} {
			got, err := DialectFor(driver)
			if err != nil || got != want {
				t.Errorf("DialectFor(%s) = %v, %v; want %v", driver, got, err, want)
			}
		}

		if _, err := DialectFor("mysql"); !errors.Is(err, ErrUnsupportedDriver) {
			t.Errorf("expected ErrUnsupportedDriver, got %v", err)
		}
	})

	t.Run("Collation", func(t *testing.T) {
		if DialectSQLite.Collation() != "BINARY" {
			t.Errorf("unexpected sqlite collation %s", DialectSQLite.Collation())
		}
		if DialectPostgres.Collation() != `"C"` {
			t.Errorf("unexpected postgres collation %s", DialectPostgres.Collation())
		}
	})
}

func TestNewDatabase(t *testing.T) {
	t.Run("unsupported driver", func(t *testing.T) {
		if _, err := NewDatabase("mysql", "x"); !errors.Is(err, ErrUnsupportedDriver) {
			t.Errorf("expected ErrUnsupportedDriver, got %v", err)
		}
	})

	t.Run("empty source", func(t *testing.T) {
		if _, err := NewDatabase(DriverSQLite3, ""); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("foreign keys enforced", func(t *testing.T) {
		db, err := NewDatabase(DriverSQLite3, MemoryPath)
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		var enabled int
		if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
			t.Fatalf("failed to read pragma: %v", err)
		}
		if enabled != 1 {
			t.Errorf("expected foreign keys on, got %d", enabled)
		}
	})

	t.Run("dataSource", func(t *testing.T) {
		tc := []struct {
			driver, source, want string
		}{
			{DriverSQLite3, "./music.db", "./music.db?_foreign_keys=on&_busy_timeout=5000"},
			{DriverSQLite3, "./music.db?cache=shared", "./music.db?cache=shared&_foreign_keys=on&_busy_timeout=5000"},
			{DriverSQLite, "./music.db", "file:./music.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
			{DriverPostgres, "postgres://localhost/musicdb", "postgres://localhost/musicdb"},
		}
		for _, tt := range tc {
			if got := dataSource(tt.driver, tt.source); got != tt.want {
				t.Errorf("dataSource(%s, %s) = %s, want %s", tt.driver, tt.source, got, tt.want)
			}
		}
	})
}

func TestLogger(t *testing.T) {
	t.Run("SetLogLevelString", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)

		if err := SetLogLevelString(logger, "warn"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		logger.Info("hidden")
		logger.Warn("shown")

		out := buf.String()
		if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
			t.Errorf("unexpected log output: %q", out)
		}

		if err := SetLogLevelString(logger, "loud"); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("GenerateID", func(t *testing.T) {
		a, b := GenerateID(), GenerateID()
		if a == b || len(a) != 36 {
			t.Errorf("unexpected ids %q %q", a, b)
		}
	})
}
