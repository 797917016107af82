package main

import (
	"context"

	"github.com/nvallee/radar/internal/formatter"
	"github.com/nvallee/radar/internal/repositories"
	"github.com/urfave/cli/v3"
)

// History shows past sync runs, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := repositories.NewRunRepository(db).List(cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, true)
	}

	r.writePlain("%s", formatter.RenderHistory(runs, r.palette))
	return nil
}
