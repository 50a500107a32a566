package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/chartx/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", configPath)
	r.writePlain("✓ Configuration written to %s\n", configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set credentials.spotify.client_id and client_secret (or CHARTX_CLIENT_ID / CHARTX_CLIENT_SECRET)\n")
	r.writePlain("2. Run 'chartx setup database' to enable run history\n")
	r.writePlain("3. Run 'chartx run' to produce %s\n", shared.DefaultConfig().Output.Path)
	return nil
}

// SetupDatabase initializes the history database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	if config.Database.Path == "" {
		return fmt.Errorf("%w: database.path is empty", shared.ErrInvalidConfig)
	}

	r.logger.Info("initializing database", "path", config.Database.Path)
	db, err := r.openHistory(config)
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("✓ History database ready at %s\n", config.Database.Path)
	return nil
}
