package main

import (
	"context"
	"fmt"

	"github.com/nvallee/radar/internal/formatter"
	"github.com/nvallee/radar/internal/models"
	"github.com/nvallee/radar/internal/repositories"
	"github.com/nvallee/radar/internal/shared"
	"github.com/nvallee/radar/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Sync updates both playlists with the roster's new releases.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	if rosterPath := cmd.String("roster"); rosterPath != "" {
		config.Sync.RosterPath = rosterPath
	}
	if days := cmd.Int("days"); days > 0 {
		config.Sync.LookbackDays = days
	}

	if err := config.Validate(); err != nil {
		return err
	}

	roster, err := models.LoadRoster(config.Sync.RosterPath)
	if err != nil {
		return err
	}

	svc, err := r.spotifyService(ctx, config)
	if err != nil {
		return err
	}

	opts := tasks.SyncOptions{
		RecentPlaylistID: config.Playlists.RecentID,
		YearPlaylistID:   config.Playlists.YearID,
		LookbackDays:     config.Sync.LookbackDays,
		DryRun:           cmd.Bool("dry-run"),
		PruneYear:        cmd.Bool("prune"),
	}
	useJSON := cmd.Bool("json")

	engineOpts := []tasks.EngineOption{}
	if db, dbErr := r.openDatabase(config); dbErr != nil {
		// A broken history database shouldn't block the sync itself.
		r.logger.Warnf("sync history disabled: %v", dbErr)
	} else {
		defer db.Close()
		engineOpts = append(engineOpts,
			tasks.WithRecorder(repositories.NewRunRepository(db)),
			tasks.WithCacher(repositories.NewTrackRepository(db)),
		)
	}

	engine := tasks.NewPlaylistEngine(svc, engineOpts...)

	r.logger.Info("starting sync",
		"artists", len(roster.Artists),
		"lookback_days", opts.LookbackDays,
		"dry_run", opts.DryRun)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if useJSON {
				continue
			}
			switch update.Phase {
			case tasks.CollectArtists:
				r.writePlain("[%d/%d] %s\n", update.Step, update.Total, update.Message)
			case tasks.FetchPlaylist, tasks.PlanChanges:
				r.writePlain("%s\n", update.Message)
			case tasks.ApplyRemovals, tasks.ApplyAdditions:
				r.writePlain("%s\n", update.Message)
			}
		}
	}()

	result, err := engine.Run(ctx, progressCh, roster, config.Sync.ExcludeAI, opts)
	if err != nil {
		if retry, authErr := r.handleAuthError(ctx, err, cmd); retry {
			if authErr != nil {
				close(progressCh)
				<-done
				return authErr
			}
			result, err = engine.Run(ctx, progressCh, roster, config.Sync.ExcludeAI, opts)
		}
	}
	close(progressCh)
	<-done

	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		report := formatter.NewReport(result)
		data, err := report.JSON()
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		return r.writePlain("%s\n", data)
	}

	r.writePlain("\n")
	if opts.DryRun {
		r.writePlain("%s", formatter.RenderPlan(result.Plan, r.palette))
	}
	r.writePlain("%s", formatter.RenderSummary(result, r.palette))

	return nil
}
