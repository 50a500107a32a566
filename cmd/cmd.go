// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// pipelineFlags override the [charts] and [output] sections for a single invocation
func pipelineFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		&cli.IntFlag{
			Name:  "days",
			Usage: "Number of past days to fetch (overrides charts.days)",
		},
		&cli.StringSliceFlag{
			Name:  "country",
			Usage: "Country code to fetch, repeatable (overrides charts.countries)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Report destination: path, file:// or s3:// URI (overrides output.path)",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Concurrent snapshot fetches (overrides charts.workers)",
		},
		&cli.BoolFlag{
			Name:  "no-history",
			Usage: "Do not record the run in the history database",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
	}
}

// runCommand executes the pipeline once
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Fetch recent charts, enrich tracks with genres and write the aggregate report",
		Flags:  pipelineFlags(),
		Action: r.Run,
	}
}

// serveCommand exposes the pipeline trigger over HTTP
func serveCommand(r *Runner) *cli.Command {
	flags := append(pipelineFlags(), &cli.StringFlag{
		Name:  "addr",
		Usage: "Listen address (overrides server.host and server.port)",
	})

	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve GET / as a pipeline trigger, plus /healthz and /metrics",
		Flags:  flags,
		Action: r.Serve,
	}
}

// setupCommand initializes local state
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and the run history database",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example config.toml",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Create the history database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}

// classifyCommand maps raw genre tags to their main genre
func classifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Show the main genre for each tag",
		ArgsUsage: "TAG...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "buckets",
				Usage: "List the main genre buckets in priority order",
			},
		},
		Action: r.Classify,
	}
}

// runsCommand inspects run history
func runsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Inspect recorded pipeline runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent runs",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.RunsList,
			},
			{
				Name:  "show",
				Usage: "Show one run and its report rows",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Run ID or sequence number",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of report rows to show (0 for all)",
						Value: 25,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.RunsShow,
			},
		},
	}
}
