package main

import (
	"context"
	"math"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hx-hudson/Music-datbase/internal/formatter"
	"github.com/hx-hudson/Music-datbase/internal/models"
	"github.com/hx-hudson/Music-datbase/internal/queries"
)

func (r *Runner) engine() (*queries.Engine, error) {
	catalog, err := r.openCatalog()
	if err != nil {
		return nil, err
	}
	return queries.NewEngine(catalog, queries.WithLogger(r.logger), queries.WithRecorder(r.recorder())), nil
}

// yearRange reads --from/--to. An unset bound leaves that side open.
func yearRange(cmd *cli.Command) models.YearRange {
	years := models.YearRange{From: math.MinInt32, To: math.MaxInt32}
	if cmd.IsSet("from") {
		years.From = cmd.Int("from")
	}
	if cmd.IsSet("to") {
		years.To = cmd.Int("to")
	}
	return years
}

func (r *Runner) QueryProlific(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.engine()
	if err != nil {
		return err
	}
	rows, err := engine.TopProlificArtists(ctx, cmd.Int("n"), yearRange(cmd))
	if err != nil {
		return err
	}
	return r.render(cmd, formatter.ProlificArtists(rows))
}

func (r *Runner) QueryLastSingle(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.engine()
	if err != nil {
		return err
	}
	names, err := engine.LastSingleYearArtists(ctx, cmd.Int("year"))
	if err != nil {
		return err
	}
	return r.render(cmd, formatter.Artists(formatter.TitleLastSingle, names))
}

func (r *Runner) QueryGenres(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.engine()
	if err != nil {
		return err
	}
	rows, err := engine.TopGenres(ctx, cmd.Int("n"))
	if err != nil {
		return err
	}
	return r.render(cmd, formatter.TopGenres(rows))
}

func (r *Runner) QueryAlbumAndSingle(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.engine()
	if err != nil {
		return err
	}
	names, err := engine.AlbumAndSingleArtists(ctx)
	if err != nil {
		return err
	}
	return r.render(cmd, formatter.Artists(formatter.TitleAlbumAndSingle, names))
}

func (r *Runner) QueryTopRated(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.engine()
	if err != nil {
		return err
	}
	rows, err := engine.TopRatedSongs(ctx, yearRange(cmd), cmd.Int("n"))
	if err != nil {
		return err
	}
	return r.render(cmd, formatter.TopRatedSongs(rows))
}

func (r *Runner) QueryEngaged(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.engine()
	if err != nil {
		return err
	}
	rows, err := engine.MostEngagedUsers(ctx, yearRange(cmd), cmd.Int("n"))
	if err != nil {
		return err
	}
	return r.render(cmd, formatter.EngagedUsers(rows))
}

// QueryReport runs every query. --year defaults to the current year.
func (r *Runner) QueryReport(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.engine()
	if err != nil {
		return err
	}

	year := time.Now().Year()
	if cmd.IsSet("year") {
		year = cmd.Int("year")
	}
	report, err := engine.Report(ctx, models.ReportRequest{N: cmd.Int("n"), Years: yearRange(cmd), Year: year})
	if err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if out := cmd.String("out"); out != "" {
		format = formatter.FormatForPath(out)
	}
	if format == formatter.FormatJSON {
		return r.render(cmd, formatter.ReportDocument(report))
	}
	return r.render(cmd, formatter.Report(report)...)
}
