package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/hx-hudson/Music-datbase/internal/server"
)

// Serve runs the analytics API until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.config.Server
	if cmd.IsSet("host") {
		config.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		config.Port = cmd.Int("port")
	}

	engine, err := r.engine()
	if err != nil {
		return err
	}

	opts := server.Options{
		Config:   config,
		Queries:  engine,
		Logger:   r.logger,
		Recorder: r.recorder(),
	}
	if r.config.Metrics.Enabled {
		opts.Metrics = r.recorder().Handler()
	}

	return server.NewServer(opts).Serve(ctx)
}
