// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// configFlag is shared by every command that reads config.toml.
func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// syncCommand runs the playlist sync.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Update both playlists with new releases from the roster",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "roster",
				Aliases: []string{"r"},
				Usage:   "Path to the artist roster JSON file (overrides config)",
			},
			&cli.IntFlag{
				Name:    "days",
				Aliases: []string{"d"},
				Usage:   "Lookback window in days (overrides config)",
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"n"},
				Usage:   "Show planned changes without touching the playlists",
			},
			&cli.BoolFlag{
				Name:  "prune",
				Usage: "Also remove out-of-scope tracks from the year playlist",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the run report as JSON",
			},
		},
		Action: r.Sync,
	}
}

// authCommand handles Spotify authorization.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize with Spotify and store tokens",
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: r.Auth,
	}
}

// playlistsCommand lists the user's playlists.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "List your Spotify playlists (to find playlist IDs)",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of playlists to show",
				Value: 50,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
		},
		Action: r.Playlists,
	}
}

// rosterCommand inspects the artist roster.
func rosterCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "roster",
		Usage: "Inspect the artist roster",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Show the roster entries and anything that would be skipped",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "roster",
						Aliases: []string{"r"},
						Usage:   "Path to the artist roster JSON file (overrides config)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.RosterList,
			},
			{
				Name:  "check",
				Usage: "Verify every roster entry resolves to a Spotify artist",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "roster",
						Aliases: []string{"r"},
						Usage:   "Path to the artist roster JSON file (overrides config)",
					},
				},
				Action: r.RosterCheck,
			},
		},
	}
}

// historyCommand shows past sync runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show past sync runs",
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
		Action: r.History,
	}
}

// setupCommand handles first-run setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize the history database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write a starter config.toml to fill in",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
		},
	}
}
