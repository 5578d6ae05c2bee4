// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration, database, and migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles credential operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage listener credentials",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize a listener with Spotify using OAuth2",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listener",
						Usage: "Listener ID to store the credential under (default: registered from the account profile)",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "status",
				Usage: "Show the stored credential state for a listener",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "listener"},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// listenerCommand handles listener registry operations
func listenerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "listener",
		Usage: "Manage registered listeners",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Register a listener",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Usage:    "Listener email",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Display name",
					},
					&cli.StringFlag{
						Name:  "country",
						Usage: "Two-letter country code",
					},
				},
				Action: r.ListenerAdd,
			},
			{
				Name:  "list",
				Usage: "List registered listeners",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ListenerList,
			},
		},
	}
}

// recommendCommand runs a recommendation request
func recommendCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "recommend",
		Aliases: []string{"rec"},
		Usage:   "Fetch track recommendations for a listener",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "listener",
				Aliases:  []string{"l"},
				Usage:    "Listener ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "Strategy: general, playlist, or artist",
				Value:   "general",
			},
			&cli.StringFlag{
				Name:  "playlist-id",
				Usage: "Seed playlist ID (playlist mode)",
			},
			&cli.StringFlag{
				Name:  "artist-id",
				Usage: "Seed artist ID (artist mode)",
			},
			&cli.StringFlag{
				Name:  "artist",
				Usage: "Seed artist name (artist mode, resolved by search)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of tracks",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
			&cli.StringFlag{
				Name:  "export",
				Usage: "Export format: csv, markdown, or text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Export file path or directory",
			},
		},
		Action: r.Recommend,
	}
}

// syncCommand refreshes cached listener taste
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Sync listener taste (top tracks and artists) from the catalog",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "listener"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Sync every registered listener",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent sync workers",
				Value: 5,
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Upstream requests per second",
				Value: 5,
			},
		},
		Action: r.Sync,
	}
}

// serveCommand runs the HTTP API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the recommendation API over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default: from config)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for browsing recommendations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "listener",
				Aliases:  []string{"l"},
				Usage:    "Listener ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "Strategy: general, playlist, or artist",
				Value:   "general",
			},
			&cli.StringFlag{
				Name:  "playlist-id",
				Usage: "Seed playlist ID (playlist mode)",
			},
			&cli.StringFlag{
				Name:  "artist-id",
				Usage: "Seed artist ID (artist mode)",
			},
			&cli.StringFlag{
				Name:  "artist",
				Usage: "Seed artist name (artist mode)",
			},
		},
		Action: r.TUI,
	}
}
