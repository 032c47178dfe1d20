// submodule cmd contains command definitions
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesmith/internal/formatter"
	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

func durationFlag(r *Runner) *cli.IntFlag {
	g := r.config.Generation
	return &cli.IntFlag{
		Name:    "duration",
		Aliases: []string{"d"},
		Usage:   fmt.Sprintf("Length in seconds (%d-%d)", g.MinDuration, g.MaxDuration),
		Value:   g.DefaultDuration,
	}
}

func trackFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "save",
			Usage: "Save the result to favorites",
		},
		&cli.BoolFlag{
			Name:  "download",
			Usage: "Download the generated file into the download directory",
		},
	}
}

// generateCommand generates a track from a text prompt
func generateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"gen"},
		Usage:   "Generate music from a text prompt",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "prompt"},
		},
		Flags:  append([]cli.Flag{durationFlag(r)}, trackFlags()...),
		Action: r.Generate,
	}
}

// harmonizeCommand harmonizes a previously generated file
func harmonizeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "harmonize",
		Usage: "Add harmony to a generated file",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "filename"},
		},
		Flags:  append([]cli.Flag{durationFlag(r)}, trackFlags()...),
		Action: r.Harmonize,
	}
}

// reharmonizeCommand reharmonizes a previously generated file
func reharmonizeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "reharmonize",
		Usage: "Replace the harmony of a generated file",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "filename"},
		},
		Flags:  append([]cli.Flag{durationFlag(r)}, trackFlags()...),
		Action: r.Reharmonize,
	}
}

// downloadCommand fetches a generated file
func downloadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "Download a generated file",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "filename"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory",
				Value:   r.config.Generation.DownloadDir,
			},
		},
		Action: r.Download,
	}
}

// favoritesCommand manages saved tracks
func favoritesCommand(r *Runner) *cli.Command {
	formats := make([]string, len(formatter.Formats))
	for i, f := range formatter.Formats {
		formats[i] = string(f)
	}

	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Manage saved tracks",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved tracks, newest first",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.FavoritesList,
			},
			{
				Name:  "add",
				Usage: "Save a track by URL",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "prompt",
						Usage:    "Prompt the track was generated from",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "audio-url",
						Usage:    "Playable audio URL",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "download-url",
						Usage: "Download URL",
					},
					&cli.StringFlag{
						Name:  "filename",
						Usage: "Backend filename",
					},
				},
				Action: r.FavoritesAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove the favorite at a position (1 is the newest)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "position"},
				},
				Action: r.FavoritesRemove,
			},
			{
				Name:   "clear",
				Usage:  "Remove all favorites",
				Action: r.FavoritesClear,
			},
			{
				Name:  "export",
				Usage: "Export favorites to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (" + strings.Join(formats, ", ") + ")",
						Value:   string(formatter.FormatMarkdown),
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.FavoritesExport,
			},
			{
				Name:  "download",
				Usage: "Download every saved file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: tunesmith_downloads_{timestamp})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent downloads (max 10)",
						Value: 3,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Requests per second",
						Value: 5,
					},
				},
				Action: r.FavoritesDownload,
			},
		},
	}
}

// themeCommand reads or changes the persisted theme
func themeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "theme",
		Usage: "Show or change the TUI theme",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the current theme",
				Action: r.ThemeShow,
			},
			{
				Name:   "toggle",
				Usage:  "Switch between light and dark",
				Action: r.ThemeToggle,
			},
			{
				Name:  "set",
				Usage: "Set the theme (light or dark)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Action: r.ThemeSet,
			},
		},
	}
}

// apiCommand handles direct backend calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the generation backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the backend, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// setupCommand handles setup operations for the database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   r.defaultConfigPath(),
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead of migrating up",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write an example config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path to write",
						Value:   r.defaultConfigPath(),
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive generator and player",
		Action:  r.TUI,
	}
}
