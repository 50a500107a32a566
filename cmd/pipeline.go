package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chartx/internal/charts"
	"github.com/desertthunder/chartx/internal/formatter"
	"github.com/desertthunder/chartx/internal/report"
	"github.com/desertthunder/chartx/internal/repositories"
	"github.com/desertthunder/chartx/internal/server"
	"github.com/desertthunder/chartx/internal/services"
	"github.com/desertthunder/chartx/internal/shared"
	"github.com/desertthunder/chartx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// pipelineConfig loads the configuration and applies per-invocation overrides.
func (r *Runner) pipelineConfig(cmd *cli.Command) (*shared.Config, error) {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	level, err := shared.ParseLogLevel(config.Log.Level)
	if err != nil {
		return nil, err
	}
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)
	if cmd.IsSet("days") {
		config.Charts.Days = int(cmd.Int("days"))
	}
	if countries := cmd.StringSlice("country"); len(countries) > 0 {
		config.Charts.Countries = countries
	}
	if output := cmd.String("output"); output != "" {
		config.Output.Path = output
	}
	if cmd.IsSet("workers") {
		config.Charts.Workers = int(cmd.Int("workers"))
	}
	if cmd.Bool("no-history") {
		config.Database.Path = ""
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// buildEngine wires the catalog, fetcher, enricher, sink and optional history store.
//
// The returned close function releases the history database and is always non-nil.
func (r *Runner) buildEngine(config *shared.Config) (*tasks.ChartEngine, func() error, error) {
	noop := func() error { return nil }
	spotify := config.Credentials.Spotify

	tokens, err := services.NewTokenManager(services.TokenManagerOpts{
		ClientID:     spotify.ClientID,
		ClientSecret: spotify.ClientSecret,
		TokenURL:     spotify.TokenURL,
		HTTPClient:   r.httpClient,
		OnRefresh: func(c services.Credential) {
			r.logger.Debug("catalog token issued", "expires_in", c.ExpiresIn)
		},
	})
	if err != nil {
		return nil, noop, err
	}

	catalog := services.NewSpotifyService(tokens, services.SpotifyOpts{
		BaseURL:    spotify.APIURL,
		HTTPClient: r.httpClient,
		Metrics:    r.metrics,
	})

	fetcher := charts.NewFetcher(charts.FetcherOpts{
		URLTemplate: config.Charts.URLTemplate,
		UserAgent:   config.Charts.UserAgent,
		WorkingDir:  config.Charts.WorkingDir,
		Timeout:     config.Charts.Timeout(),
		HTTPClient:  r.httpClient,
	})

	engine := tasks.NewChartEngine(
		fetcher,
		tokens,
		tasks.NewEnricher(catalog, config.Enrichment.Interval(), r.metrics),
		report.NewSink(config.Output.Path),
		tasks.EngineOpts{
			Countries: config.Charts.Countries,
			Days:      config.Charts.Days,
			Workers:   config.Charts.Workers,
			Output:    config.Output.Path,
			Now:       r.now,
		},
	)
	engine.SetLogger(r.logger)
	engine.SetMetrics(r.metrics)

	if config.Database.Path == "" {
		return engine, noop, nil
	}

	db, err := r.openHistory(config)
	if err != nil {
		return nil, noop, err
	}
	engine.SetRunRecorder(repositories.NewRunRepository(db))
	return engine, db.Close, nil
}

// openHistory opens the history database and brings its schema up to date.
func (r *Runner) openHistory(config *shared.Config) (*sql.DB, error) {
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// Run executes the pipeline once and prints a summary of the aggregate.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	config, err := r.pipelineConfig(cmd)
	if err != nil {
		return err
	}

	engine, closeHistory, err := r.buildEngine(config)
	if err != nil {
		return err
	}
	defer closeHistory()

	progress := make(chan tasks.ProgressUpdate, 32)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := engine.Run(ctx, progress)
	close(progress)
	<-done

	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	r.writePlainln("%s", formatter.Title("Run "+result.ID))
	r.writePlain("Tasks: %d (%d failed)\n", result.Tasks, result.TasksFailed)
	r.writePlain("Rows:  %d (%d failed enrichment)\n", result.Rows, result.RowsFailed)
	r.writePlain("Took:  %s\n", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))

	if !result.Written {
		r.writePlain("%s\n", formatter.Warn("No rows collected; no report written"))
		return nil
	}

	r.writePlain("%s %s\n\n", formatter.OK("Report written to"), result.OutputPath)
	r.writePlain("%s\n", formatter.RenderReport(result.Table.Rows(), 10))
	return nil
}

// Serve runs the trigger server until the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.pipelineConfig(cmd)
	if err != nil {
		return err
	}

	engine, closeHistory, err := r.buildEngine(config)
	if err != nil {
		return err
	}
	defer closeHistory()

	addr := cmd.String("addr")
	if addr == "" {
		addr = config.Server.Addr()
	}

	r.logger.Info("serving pipeline trigger",
		"addr", addr, "countries", strings.Join(config.Charts.Countries, ","), "days", config.Charts.Days,
	)
	srv := server.New(addr, server.NewRouter(engine, r.metrics, r.logger))
	return server.ListenAndServe(ctx, srv, r.logger)
}
