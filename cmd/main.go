package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/chartx/internal/metrics"
	"github.com/desertthunder/chartx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{
		Logger:  logger,
		Metrics: metrics.New(),
	})

	app := &cli.Command{
		Name:     "chartx",
		Usage:    "Aggregate daily chart streams by artist genre",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
