package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hx-hudson/Music-datbase/internal/formatter"
	"github.com/hx-hudson/Music-datbase/internal/ingest"
	"github.com/hx-hudson/Music-datbase/internal/shared"
	"github.com/hx-hudson/Music-datbase/internal/tasks"
)

// LoadFile applies a batch file, optionally restricted to one section by --only.
func (r *Runner) LoadFile(ctx context.Context, cmd *cli.Command) error {
	b, err := readBatchArg(cmd, "path")
	if err != nil {
		return err
	}
	if only := cmd.String("only"); only != "" {
		if b, err = b.Only(only); err != nil {
			return err
		}
	}
	return r.apply(ctx, cmd, b)
}

// LoadSection returns an action applying only the named section of a batch file.
func (r *Runner) LoadSection(section string) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		b, err := readBatchArg(cmd, "path")
		if err != nil {
			return err
		}
		if b, err = b.Only(section); err != nil {
			return err
		}
		return r.apply(ctx, cmd, b)
	}
}

// LoadTags scans a directory of MP3 files and loads the tagged ones as singles.
func (r *Runner) LoadTags(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.StringArg("dir")
	if dir == "" {
		return fmt.Errorf("%w: directory is required", shared.ErrMissingArgument)
	}

	scan, err := ingest.ScanTags(dir)
	if err != nil {
		return err
	}
	r.logger.Info("tags scanned", "dir", dir, "singles", len(scan.Records), "issues", len(scan.Issues))

	var issues []formatter.Dataset
	if len(scan.Issues) > 0 {
		issues = append(issues, formatter.TagIssues(scan.Issues))
	}
	if cmd.Bool("dry-run") || len(scan.Records) == 0 {
		if len(issues) > 0 {
			if err := r.render(cmd, issues...); err != nil {
				return err
			}
		}
		if wantsText(cmd) {
			return r.writePlain("%d singles found, nothing loaded\n", len(scan.Records))
		}
		return nil
	}

	return r.apply(ctx, cmd, &ingest.Batch{Singles: scan.Records}, issues...)
}

func readBatchArg(cmd *cli.Command, name string) (*ingest.Batch, error) {
	path := cmd.StringArg(name)
	if path == "" {
		return nil, fmt.Errorf("%w: batch file path is required", shared.ErrMissingArgument)
	}
	return ingest.ReadBatchFile(path)
}

// apply runs the loaders over b and reports rejections after any leading datasets.
// Sections committed before a failure stay committed.
func (r *Runner) apply(ctx context.Context, cmd *cli.Command, b *ingest.Batch, leading ...formatter.Dataset) error {
	catalog, err := r.openCatalog()
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "loader", update.Phase, "batch", update.Batch)
		}
	}()

	loader := tasks.NewLoader(tasks.LoaderOpts{
		Catalog:  catalog,
		Logger:   r.logger,
		Recorder: r.recorder(),
		Progress: progress,
	})
	result, applyErr := ingest.Apply(ctx, loader, b)
	close(progress)
	<-done

	if result != nil {
		if err := r.render(cmd, append(leading, formatter.Rejected(result)...)...); err != nil {
			return err
		}
		if wantsText(cmd) {
			summary := fmt.Sprintf("%d records, %d rejected", b.Len(), result.Rejected())
			if applyErr != nil {
				summary = formatter.Styles().Error("partially applied: ") + summary
			} else {
				summary = formatter.Styles().OK("loaded: ") + summary
			}
			if err := r.writePlain("%s\n", summary); err != nil {
				return err
			}
		}
	}
	return applyErr
}
