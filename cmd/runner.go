package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/hx-hudson/Music-datbase/internal/formatter"
	"github.com/hx-hudson/Music-datbase/internal/metrics"
	"github.com/hx-hudson/Music-datbase/internal/repositories"
	"github.com/hx-hudson/Music-datbase/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	logger      *log.Logger
	output      io.Writer
	catalog     *repositories.Catalog
	ownsCatalog bool
	metrics     *metrics.Manager
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	Catalog    *repositories.Catalog // opened from Config on first use when nil
	Metrics    *metrics.Manager
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		catalog:    opts.Catalog,
		metrics:    opts.Metrics,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, resetCommand, statsCommand, loadCommand, queryCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configure loads the config file named by --config, overlays the environment and sets the log level.
//
// A missing file keeps the current config; setup creates it.
func (r *Runner) configure(_ context.Context, cmd *cli.Command) error {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if r.configPath != "" {
		if _, err := os.Stat(r.configPath); err == nil {
			config, err := shared.LoadConfig(r.configPath)
			if err != nil {
				return fmt.Errorf("%w: %w", shared.ErrInvalidConfig, err)
			}
			r.config = config
		} else if cmd.IsSet("config") {
			r.logger.Warn("config file not found, using defaults", "path", r.configPath)
		}
	}

	if err := shared.ApplyEnv(r.config); err != nil {
		return err
	}
	if level := cmd.String("log-level"); level != "" {
		r.config.Log.Level = level
	}
	if err := shared.SetLogLevelString(r.logger, r.config.Log.Level); err != nil {
		return err
	}
	if err := r.config.Validate(); err != nil {
		return err
	}

	if r.metrics == nil {
		r.metrics = metrics.NewManager(
			metrics.WithNamespace(r.config.Metrics.Namespace),
			metrics.WithMetricsEnabled(r.config.Metrics.Enabled),
		)
	}
	return nil
}

// openCatalog returns the catalog, connecting and migrating on first use.
func (r *Runner) openCatalog() (*repositories.Catalog, error) {
	if r.catalog != nil {
		return r.catalog, nil
	}

	r.logger.Debug("opening catalog", "driver", r.config.Database.Driver)
	catalog, err := repositories.Open(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	r.catalog = catalog
	r.ownsCatalog = true
	return catalog, nil
}

// Close releases a catalog the runner opened itself.
func (r *Runner) Close() error {
	if r.catalog == nil || !r.ownsCatalog {
		return nil
	}
	err := r.catalog.Close()
	r.catalog = nil
	r.ownsCatalog = false
	return err
}

func (r *Runner) recorder() *metrics.Manager {
	if r.metrics == nil {
		r.metrics = metrics.NewManager(metrics.WithMetricsEnabled(false))
	}
	return r.metrics
}

// render writes datasets to --out when given, otherwise to the runner output in --format.
func (r *Runner) render(cmd *cli.Command, sets ...formatter.Dataset) error {
	if out := cmd.String("out"); out != "" {
		if err := formatter.WriteFile(out, sets...); err != nil {
			return err
		}
		r.logger.Info("output written", "path", out)
		return nil
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	return formatter.Write(r.output, format, sets...)
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// wantsText reports whether the command renders human-readable output to the terminal.
func wantsText(cmd *cli.Command) bool {
	format, err := formatter.ParseFormat(cmd.String("format"))
	return err == nil && format == formatter.FormatText && cmd.String("out") == ""
}
