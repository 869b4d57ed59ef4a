package shared

import (
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		for _, dialect := range []Dialect{DialectSQLite, DialectPostgres} {
			migrations, err := loadMigrations(dialect)
			if err != nil {
				t.Fatalf("failed to load %s migrations: %v", dialect, err)
			}

			if len(migrations) == 0 {
				t.Fatalf("expected at least one %s migration", dialect)
			}

			for i := 1; i < len(migrations); i++ {
				if migrations[i].Version <= migrations[i-1].Version {
					t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
				}
			}

			for _, m := range migrations {
				if m.Up == "" {
					t.Errorf("migration version %d missing up SQL", m.Version)
				}
				if m.Down == "" {
					t.Errorf("migration version %d missing down SQL", m.Version)
				}
			}
		}
	})

	t.Run("dialects share versions", func(t *testing.T) {
		lite, _ := loadMigrations(DialectSQLite)
		pg, _ := loadMigrations(DialectPostgres)
		if len(lite) != len(pg) {
			t.Fatalf("sqlite has %d migrations, postgres has %d", len(lite), len(pg))
		}
		for i := range lite {
			if lite[i].Version != pg[i].Version {
				t.Errorf("version mismatch at %d: %d vs %d", i, lite[i].Version, pg[i].Version)
			}
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(DriverSQLite3, MemoryPath)
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db, DialectSQLite); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		var count int
		err = db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
		if err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}
		if count == 0 {
			t.Error("expected at least one migration to be applied")
		}

		for _, table := range []string{"artists", "genres", "albums", "songs", "song_genres", "users", "ratings"} {
			if _, err := db.Exec("SELECT 1 FROM " + table + " LIMIT 1"); err != nil {
				t.Errorf("%s table should exist after migrations: %v", table, err)
			}
		}

		if err := RollbackMigration(db, DialectSQLite); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		var newCount int
		err = db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&newCount)
		if err != nil {
			t.Fatalf("failed to query schema_migrations after rollback: %v", err)
		}
		if newCount >= count {
			t.Errorf("expected migration count to decrease after rollback, got %d (was %d)", newCount, count)
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(DriverSQLite3, MemoryPath)
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db, DialectSQLite); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}

		if err := RunMigrations(db, DialectSQLite); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		var count int
		err = db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
		if err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}

		migrations, _ := loadMigrations(DialectSQLite)
		if count != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), count)
		}
	})

	t.Run("Pure Go Driver", func(t *testing.T) {
		db, err := NewDatabase(DriverSQLite, MemoryPath)
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db, DialectSQLite); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		if _, err := db.Exec("SELECT 1 FROM ratings LIMIT 1"); err != nil {
			t.Errorf("ratings table should exist: %v", err)
		}
	})
}
