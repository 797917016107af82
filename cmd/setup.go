package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nvallee/radar/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the history database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("%s\n", r.palette.OK(fmt.Sprintf("Database ready at %s", config.Database.Path)))
	return nil
}

// SetupConfig writes a starter config file from the embedded template.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%w: %s already exists, refusing to overwrite", shared.ErrInvalidArgument, configPath)
	}

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.writePlain("%s\n\n", r.palette.OK(fmt.Sprintf("Wrote %s", configPath)))
	r.writePlain("Next steps:\n")
	r.writePlain("1. Fill in credentials.spotify.client_id and client_secret\n")
	r.writePlain("2. Set playlists.recent_id and playlists.year_id (see `radar playlists`)\n")
	r.writePlain("3. Point sync.roster_path at your artists.json\n")
	r.writePlain("4. Run `radar auth`, then `radar sync --dry-run`\n")

	return nil
}
