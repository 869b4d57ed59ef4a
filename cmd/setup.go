package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hx-hudson/Music-datbase/internal/formatter"
	"github.com/hx-hudson/Music-datbase/internal/shared"
)

// Setup creates the config file when it is missing and migrates the database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	if r.configPath != "" {
		if _, err := os.Stat(r.configPath); os.IsNotExist(err) {
			r.logger.Info("config file not found, creating from template", "path", r.configPath)
			if err := shared.CreateConfigFile(r.configPath); err != nil {
				r.logger.Warn("failed to create config file, using defaults", "error", err)
			} else {
				r.logger.Info("config file created", "path", r.configPath)
			}
		}
	}

	if cmd.Bool("rollback") {
		return r.rollback()
	}

	r.logger.Info("initializing database", "driver", r.config.Database.Driver, "source", r.config.Database.Path)
	catalog, err := r.openCatalog()
	if err != nil {
		return err
	}

	stats, err := catalog.Stats(ctx)
	if err != nil {
		return err
	}
	r.logger.Infof("setup complete for database: %v", r.config.Database.Source())
	return r.writePlain("%s %d artists, %d songs, %d ratings\n",
		formatter.Styles().OK("catalog ready:"), stats.Artists, stats.Songs, stats.Ratings)
}

func (r *Runner) rollback() error {
	dialect, err := shared.DialectFor(r.config.Database.Driver)
	if err != nil {
		return err
	}
	db, err := shared.NewDatabase(r.config.Database.Driver, r.config.Database.Source())
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	r.logger.Info("rolling back latest migration")
	if err := shared.RollbackMigration(db, dialect); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return r.writePlain("%s\n", formatter.Styles().Warn("rolled back latest migration"))
}

// Reset deletes every catalog row. It refuses to run without --yes.
func (r *Runner) Reset(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: reset deletes every row, pass --yes to confirm", shared.ErrMissingArgument)
	}

	catalog, err := r.openCatalog()
	if err != nil {
		return err
	}
	if err := catalog.Reset(ctx); err != nil {
		return err
	}
	r.logger.Info("catalog reset")
	return r.writePlain("%s\n", formatter.Styles().OK("catalog reset"))
}

// Stats prints row counts per table.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.openCatalog()
	if err != nil {
		return err
	}
	stats, err := catalog.Stats(ctx)
	if err != nil {
		return err
	}
	return r.render(cmd, formatter.Stats(stats))
}
