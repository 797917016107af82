package main

import (
	"context"
	"fmt"

	"github.com/nvallee/radar/internal/formatter"
	"github.com/nvallee/radar/internal/shared"
	"github.com/urfave/cli/v3"
)

// Playlists lists the user's Spotify playlists, flagging the two managed ones.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	config := r.loadConfig(cmd)

	svc, err := r.spotifyService(ctx, config)
	if err != nil {
		return err
	}

	r.logger.Infof("listing playlists with limit %v", limit)

	playlists, err := svc.GetPlaylists(ctx)
	if err != nil {
		if retry, authErr := r.handleAuthError(ctx, err, cmd); retry {
			if authErr != nil {
				return authErr
			}
			if playlists, err = svc.GetPlaylists(ctx); err != nil {
				return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
			}
		} else {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
	}

	if limit > 0 && limit < len(playlists) {
		playlists = playlists[:limit]
	}

	if useJSON {
		return r.writeJSON(playlists, pretty)
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		marker := ""
		switch p.ID {
		case config.Playlists.RecentID:
			marker = r.palette.OK(" [recent releases]")
		case config.Playlists.YearID:
			marker = r.palette.OK(" [this year]")
		}

		r.writePlain("%d. %s%s\n", i+1, p.Name, marker)
		if p.Description != "" {
			r.writePlain("   %s\n", p.Description)
		}
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Tracks: %d (%s)\n", p.TrackCount, shared.VisibilityString(p.Public))
		r.writePlain("   %s\n\n", r.palette.Help(formatter.PlaylistURL(p.ID)))
	}

	return nil
}
