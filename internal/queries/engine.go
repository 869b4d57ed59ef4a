package queries

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/hx-hudson/Music-datbase/internal/models"
	"github.com/hx-hudson/Music-datbase/internal/repositories"
	"github.com/hx-hudson/Music-datbase/internal/shared"
)

// Query names, used as metric labels and log keys.
const (
	QueryTopProlificArtists    = "top_prolific_artists"
	QueryLastSingleYearArtists = "last_single_year_artists"
	QueryTopGenres             = "top_genres"
	QueryAlbumAndSingleArtists = "album_and_single_artists"
	QueryTopRatedSongs         = "top_rated_songs"
	QueryMostEngagedUsers      = "most_engaged_users"
)

// Recorder receives query timings. [metrics.Manager] implements it.
type Recorder interface {
	RecordQuery(query string, elapsed time.Duration, err error)
}

type noopRecorder struct{}

func (noopRecorder) RecordQuery(string, time.Duration, error) {}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets the logger used for query tracing.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRecorder sets the metrics sink.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// Engine runs read-only queries against a catalog.
type Engine struct {
	db       *sql.DB
	dialect  shared.Dialect
	logger   *log.Logger
	recorder Recorder
}

// NewEngine creates an Engine reading from catalog.
func NewEngine(catalog *repositories.Catalog, opts ...Option) *Engine {
	e := &Engine{
		db:       catalog.DB(),
		dialect:  catalog.Dialect(),
		logger:   shared.NewLogger(io.Discard),
		recorder: noopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// run executes query and hands each row to scan.
func (e *Engine) run(ctx context.Context, name, query string, scan func(*sql.Rows) error, args ...any) (err error) {
	started := time.Now()
	defer func() {
		elapsed := time.Since(started)
		e.recorder.RecordQuery(name, elapsed, err)
		if err != nil {
			e.logger.Error("query failed", "query", name, "err", err)
			return
		}
		e.logger.Debug("query finished", "query", name, "duration", elapsed)
	}()

	rows, err := e.db.QueryContext(ctx, e.dialect.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("%w: failed to run %s: %w", shared.ErrStorage, name, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("%w: failed to scan %s: %w", shared.ErrStorage, name, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: failed to iterate %s: %w", shared.ErrStorage, name, err)
	}
	return nil
}

// yearOf extracts the calendar year from an ISO date column.
func yearOf(column string) string {
	return "CAST(substr(" + column + ", 1, 4) AS INTEGER)"
}

// Report runs every query concurrently.
func (e *Engine) Report(ctx context.Context, req models.ReportRequest) (*models.Report, error) {
	report := &models.Report{Request: req}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		report.Prolific, err = e.TopProlificArtists(ctx, req.N, req.Years)
		return err
	})
	g.Go(func() (err error) {
		report.LastSingle, err = e.LastSingleYearArtists(ctx, req.Year)
		return err
	})
	g.Go(func() (err error) {
		report.Genres, err = e.TopGenres(ctx, req.N)
		return err
	})
	g.Go(func() (err error) {
		report.AlbumAndSingle, err = e.AlbumAndSingleArtists(ctx)
		return err
	})
	g.Go(func() (err error) {
		report.TopRated, err = e.TopRatedSongs(ctx, req.Years, req.N)
		return err
	})
	g.Go(func() (err error) {
		report.Engaged, err = e.MostEngagedUsers(ctx, req.Years, req.N)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}
