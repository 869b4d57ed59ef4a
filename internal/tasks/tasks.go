// package tasks implements the catalog batch loaders.
package tasks

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hx-hudson/Music-datbase/internal/models"
	"github.com/hx-hudson/Music-datbase/internal/repositories"
	"github.com/hx-hudson/Music-datbase/internal/shared"
)

// Recorder receives per-batch metrics. [metrics.Manager] implements it.
type Recorder interface {
	RecordBatch(loader string, records, accepted, skipped int, elapsed time.Duration, err error)
	RecordRejection(loader string, reason models.Reason)
}

type noopRecorder struct{}

func (noopRecorder) RecordBatch(string, int, int, int, time.Duration, error) {}

func (noopRecorder) RecordRejection(string, models.Reason) {}

// LoaderOpts configures a [Loader]. Only Catalog is required.
type LoaderOpts struct {
	Catalog  *repositories.Catalog
	Logger   *log.Logger
	Recorder Recorder
	Progress chan<- ProgressUpdate
}

// Loader applies input batches to a catalog.
type Loader struct {
	catalog  *repositories.Catalog
	logger   *log.Logger
	recorder Recorder
	progress chan<- ProgressUpdate
}

// NewLoader creates a Loader from opts.
func NewLoader(opts LoaderOpts) *Loader {
	l := &Loader{
		catalog:  opts.Catalog,
		logger:   opts.Logger,
		recorder: opts.Recorder,
		progress: opts.Progress,
	}
	if l.logger == nil {
		l.logger = shared.NewLogger(io.Discard)
	}
	if l.recorder == nil {
		l.recorder = noopRecorder{}
	}
	return l
}

// batch is the transient scratch state of one loader call.
type batch struct {
	id       string
	phase    Phase
	records  int
	accepted int
	skipped  int
	started  time.Time
}

// run executes fn as one catalog batch and reports the outcome.
func (l *Loader) run(ctx context.Context, phase Phase, records int, fn func(*repositories.CatalogTx, *batch) error) error {
	b := &batch{id: shared.GenerateID(), phase: phase, records: records, started: time.Now()}
	logger := shared.WithLogger(l.logger, "loader", phase.String(), "batch", b.id)
	logger.Debug("batch started", "records", records)

	err := l.catalog.Batch(ctx, func(tx *repositories.CatalogTx) error {
		return fn(tx, b)
	})

	elapsed := time.Since(b.started)
	l.recorder.RecordBatch(phase.String(), records, b.accepted, b.skipped, elapsed, err)

	if err != nil {
		logger.Error("batch rolled back", "records", records, "duration", elapsed, "err", err)
		return err
	}

	logger.Info("batch committed",
		"records", records,
		"accepted", b.accepted,
		"rejected", records-b.accepted,
		"skipped_tracks", b.skipped,
		"duration", elapsed,
	)
	return nil
}

// step reports progress for the record at index i without blocking.
func (l *Loader) step(b *batch, i int, key any) {
	if l.progress == nil {
		return
	}
	select {
	case l.progress <- recordUpdate(b, i+1, key):
	default:
	}
}

func recordRejections[K comparable](r Recorder, phase Phase, rejected models.Rejections[K]) {
	for _, reason := range rejected {
		r.RecordRejection(phase.String(), reason)
	}
}
