package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./musicdb.db" {
			t.Errorf("expected database path ./musicdb.db, got %s", config.Database.Path)
		}

		if config.Database.Driver != DriverSQLite3 {
			t.Errorf("expected driver %s, got %s", DriverSQLite3, config.Database.Driver)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Log.Level != "info" {
			t.Errorf("expected log level info, got %s", config.Log.Level)
		}

		if !config.Metrics.Enabled || config.Metrics.Namespace != "musicdb" {
			t.Errorf("expected metrics enabled under musicdb, got %+v", config.Metrics)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
driver = "sqlite"
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 8080
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Database.Driver != DriverSQLite {
			t.Errorf("expected driver sqlite, got %s", config.Database.Driver)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Log.Level != "info" {
			t.Errorf("missing sections should keep defaults, got log level %q", config.Log.Level)
		}
	})

	t.Run("LoadConfig YAML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.yaml")

		testConfig := `database:
  driver: pgx
  dsn: postgres://db.internal/musicdb
server:
  port: 9090
log:
  level: debug
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Source() != "postgres://db.internal/musicdb" {
			t.Errorf("expected pgx dsn as source, got %s", config.Database.Source())
		}
		if config.Server.Port != 9090 {
			t.Errorf("expected server port 9090, got %d", config.Server.Port)
		}
		if config.Log.Level != "debug" {
			t.Errorf("expected log level debug, got %s", config.Log.Level)
		}
		if config.Server.Host != "127.0.0.1" {
			t.Errorf("expected default host to survive, got %s", config.Server.Host)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv("MUSICDB_DATABASE__PATH", "/from/env.db")
		t.Setenv("MUSICDB_SERVER__PORT", "4242")
		t.Setenv("MUSICDB_DATABASE__MAX_OPEN_CONNS", "3")

		config := DefaultConfig()
		if err := ApplyEnv(config); err != nil {
			t.Fatalf("failed to apply env: %v", err)
		}

		if config.Database.Path != "/from/env.db" {
			t.Errorf("expected env path, got %s", config.Database.Path)
		}
		if config.Server.Port != 4242 {
			t.Errorf("expected env port 4242, got %d", config.Server.Port)
		}
		if config.Database.MaxOpenConns != 3 {
			t.Errorf("expected max_open_conns 3, got %d", config.Database.MaxOpenConns)
		}
		if config.Database.Driver != DriverSQLite3 {
			t.Errorf("untouched keys should keep their value, got driver %s", config.Database.Driver)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name   string
			mutate func(*Config)
		}{
			{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }},
			{name: "empty path", mutate: func(c *Config) { c.Database.Path = "" }},
			{name: "pgx without dsn", mutate: func(c *Config) { c.Database.Driver = DriverPostgres; c.Database.DSN = "" }},
			{name: "port out of range", mutate: func(c *Config) { c.Server.Port = 70000 }},
			{name: "negative rate limit", mutate: func(c *Config) { c.Server.RateLimit = -1 }},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)
				if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})
}
