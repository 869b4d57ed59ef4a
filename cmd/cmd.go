// submodule cmd contains command definitions
package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/hx-hudson/Music-datbase/internal/ingest"
	"github.com/hx-hudson/Music-datbase/internal/server"
)

// newApp builds the root command around r.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "musicdb",
		Usage:   "Load music catalog batches and query listening analytics",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file (.toml, .yaml or .yml)",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override log.level (debug, info, warn, error)",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, r.configure(ctx, cmd)
		},
		After: func(_ context.Context, _ *cli.Command) error {
			return r.Close()
		},
		Commands: r.register(),
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, json or csv",
			Value:   "text",
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Write output to a file; the format follows its extension",
		},
	}
}

func limitFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "n",
		Usage: "Number of rows to return",
		Value: server.DefaultLimit,
	}
}

func yearRangeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "from", Usage: "First year of the range (inclusive, open when unset)"},
		&cli.IntFlag{Name: "to", Usage: "Last year of the range (inclusive, open when unset)"},
	}
}

func yearFlag(required bool) cli.Flag {
	return &cli.IntFlag{Name: "year", Usage: "Calendar year", Required: required}
}

func flags(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// setupCommand initializes the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file if missing and run database migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent migration instead",
			},
		},
		Action: r.Setup,
	}
}

func resetCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Delete every row from the catalog",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Confirm the reset",
			},
		},
		Action: r.Reset,
	}
}

func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Show row counts per catalog table",
		Flags:  outputFlags(),
		Action: r.Stats,
	}
}

// loadCommand handles batch ingestion.
func loadCommand(r *Runner) *cli.Command {
	sectionCommand := func(section, usage string) *cli.Command {
		return &cli.Command{
			Name:      section,
			Usage:     usage,
			Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
			Flags:     outputFlags(),
			Action:    r.LoadSection(section),
		}
	}

	return &cli.Command{
		Name:  "load",
		Usage: "Apply input batches to the catalog",
		Commands: []*cli.Command{
			{
				Name:      "file",
				Usage:     "Apply every section of a JSON or TOML batch file, in order",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: flags(outputFlags(), []cli.Flag{
					&cli.StringFlag{
						Name:  "only",
						Usage: "Apply a single section: singles, albums, users or ratings",
					},
				}),
				Action: r.LoadFile,
			},
			{
				Name:      "tags",
				Usage:     "Load singles from the ID3 tags of the .mp3 files under a directory",
				Arguments: []cli.Argument{&cli.StringArg{Name: "dir"}},
				Flags: flags(outputFlags(), []cli.Flag{
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Scan and report without loading",
					},
				}),
				Action: r.LoadTags,
			},
			sectionCommand(ingest.SectionSingles, "Load the singles section of a batch file"),
			sectionCommand(ingest.SectionAlbums, "Load the albums section of a batch file"),
			sectionCommand(ingest.SectionUsers, "Load the users section of a batch file"),
			sectionCommand(ingest.SectionRatings, "Load the ratings section of a batch file"),
		},
	}
}

// queryCommand handles the analytics queries.
func queryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "Run catalog analytics",
		Commands: []*cli.Command{
			{
				Name:   "prolific",
				Usage:  "Top artists by singles released within a year range",
				Flags:  flags(outputFlags(), yearRangeFlags(), []cli.Flag{limitFlag()}),
				Action: r.QueryProlific,
			},
			{
				Name:   "last-single",
				Usage:  "Artists whose most recent single came out in a year",
				Flags:  flags(outputFlags(), []cli.Flag{yearFlag(true)}),
				Action: r.QueryLastSingle,
			},
			{
				Name:   "genres",
				Usage:  "Top genres by number of songs",
				Flags:  flags(outputFlags(), []cli.Flag{limitFlag()}),
				Action: r.QueryGenres,
			},
			{
				Name:   "album-single",
				Usage:  "Artists with at least one album and one single",
				Flags:  outputFlags(),
				Action: r.QueryAlbumAndSingle,
			},
			{
				Name:   "top-rated",
				Usage:  "Songs with the most ratings dated within a year range",
				Flags:  flags(outputFlags(), yearRangeFlags(), []cli.Flag{limitFlag()}),
				Action: r.QueryTopRated,
			},
			{
				Name:   "engaged",
				Usage:  "Users with the most ratings dated within a year range",
				Flags:  flags(outputFlags(), yearRangeFlags(), []cli.Flag{limitFlag()}),
				Action: r.QueryEngaged,
			},
			{
				Name:   "report",
				Usage:  "Run every query concurrently",
				Flags:  flags(outputFlags(), yearRangeFlags(), []cli.Flag{limitFlag(), yearFlag(false)}),
				Action: r.QueryReport,
			},
		},
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the analytics API over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Override server.host"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Override server.port"},
		},
		Action: r.Serve,
	}
}
