package main

import (
	"context"
	"fmt"

	"github.com/nvallee/radar/internal/formatter"
	"github.com/nvallee/radar/internal/models"
	"github.com/nvallee/radar/internal/shared"
	"github.com/urfave/cli/v3"
)

// rosterPath resolves the roster file from the --roster flag or the config.
func (r *Runner) rosterPath(cmd *cli.Command) string {
	if path := cmd.String("roster"); path != "" {
		return path
	}
	return r.loadConfig(cmd).Sync.RosterPath
}

// RosterList prints the roster, including entries that would be skipped.
func (r *Runner) RosterList(ctx context.Context, cmd *cli.Command) error {
	path := r.rosterPath(cmd)
	if path == "" {
		return fmt.Errorf("%w: no roster file configured", shared.ErrMissingArgument)
	}

	roster, err := models.LoadRoster(path)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(roster, true)
	}

	r.writePlain("%s", formatter.RenderRoster(roster, r.palette))
	return nil
}

// RosterCheck verifies that every roster entry resolves to a real artist.
//
// Each artist's catalog is fetched once, so a typo'd spotify_id shows up here
// instead of as a skipped artist mid-sync.
func (r *Runner) RosterCheck(ctx context.Context, cmd *cli.Command) error {
	path := r.rosterPath(cmd)
	if path == "" {
		return fmt.Errorf("%w: no roster file configured", shared.ErrMissingArgument)
	}

	roster, err := models.LoadRoster(path)
	if err != nil {
		return err
	}

	config := r.loadConfig(cmd)
	svc, err := r.spotifyService(ctx, config)
	if err != nil {
		return err
	}

	r.writePlain("Checking %d artists...\n\n", len(roster.Artists))

	failed := 0
	for _, artist := range roster.Artists {
		if _, err := svc.ArtistAlbums(ctx, artist.SpotifyID); err != nil {
			if retry, authErr := r.handleAuthError(ctx, err, cmd); retry {
				if authErr != nil {
					return authErr
				}
				if _, err = svc.ArtistAlbums(ctx, artist.SpotifyID); err == nil {
					r.writePlain("%s %s\n", r.palette.OK("ok"), artist.Name)
					continue
				}
			}
			failed++
			r.writePlain("%s %s (%s): %v\n", r.palette.Err("fail"), artist.Name, artist.SpotifyID, err)
			continue
		}
		r.writePlain("%s %s\n", r.palette.OK("ok"), artist.Name)
	}

	for _, skipped := range roster.Skipped {
		r.writePlain("%s %s: missing spotify_id\n", r.palette.Warn("skip"), skipped.Name)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d roster entries failed the check", shared.ErrInvalidRoster, failed)
	}

	r.writePlainln("%s", r.palette.OK("Roster looks good."))
	return nil
}
