package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/tunesmith/internal/formatter"
	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/repositories"
	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/desertthunder/tunesmith/internal/tasks"
	"github.com/urfave/cli/v3"
)

// FavoritesList prints saved tracks, newest first.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	favs, err := r.favorites()
	if err != nil {
		return err
	}

	entries, err := favs.List()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if entries == nil {
			entries = []models.FavoriteEntry{}
		}
		return r.writeJSON(entries, true)
	}

	if len(entries) == 0 {
		return r.writePlain("%s\n", repositories.EmptyFavoritesMessage)
	}

	r.writePlainHeader(fmt.Sprintf("Favorites (%d)", len(entries)))
	for i, f := range entries {
		r.writePlain("%d. %s\n", i+1, shared.EscapeText(f.Prompt))
		r.writePlain("   %s • %s\n", f.Timestamp, f.AudioURL)
	}
	return nil
}

// FavoritesAdd saves a track described by flags.
func (r *Runner) FavoritesAdd(ctx context.Context, cmd *cli.Command) error {
	favs, err := r.favorites()
	if err != nil {
		return err
	}

	entry, err := favs.Add(models.Track{
		Prompt:      cmd.String("prompt"),
		AudioURL:    cmd.String("audio-url"),
		DownloadURL: cmd.String("download-url"),
		Filename:    cmd.String("filename"),
	})
	if err != nil {
		return err
	}

	r.logger.Info("favorite saved", "prompt", entry.Prompt)
	return r.writePlain("✓ Saved %q at %s\n", entry.Prompt, entry.Timestamp)
}

// FavoritesRemove deletes the favorite at a 1-based position.
func (r *Runner) FavoritesRemove(ctx context.Context, cmd *cli.Command) error {
	arg := cmd.StringArg("position")
	if arg == "" {
		return fmt.Errorf("%w: position is required", shared.ErrMissingArgument)
	}
	pos, err := strconv.Atoi(arg)
	if err != nil || pos < 1 {
		return fmt.Errorf("%w: position must be a positive number, got %q", shared.ErrInvalidArgument, arg)
	}

	favs, err := r.favorites()
	if err != nil {
		return err
	}
	if err := favs.Remove(pos - 1); err != nil {
		return err
	}

	return r.writePlain("✓ Removed favorite %d\n", pos)
}

// FavoritesClear removes every favorite.
func (r *Runner) FavoritesClear(ctx context.Context, cmd *cli.Command) error {
	favs, err := r.favorites()
	if err != nil {
		return err
	}
	if err := favs.Clear(); err != nil {
		return err
	}
	return r.writePlain("✓ Favorites cleared\n")
}

// FavoritesExport writes favorites to a file in the requested format.
func (r *Runner) FavoritesExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	favs, err := r.favorites()
	if err != nil {
		return err
	}
	entries, err := favs.List()
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(entries, format, cmd.String("output"), r.config.Backend.URL)
	if err != nil {
		return err
	}

	r.logger.Info("favorites exported", "format", format, "path", path, "count", len(entries))
	return r.writePlain("✓ Exported %d favorites to %s\n", len(entries), path)
}

// FavoritesDownload downloads every saved file concurrently and writes a manifest.
func (r *Runner) FavoritesDownload(ctx context.Context, cmd *cli.Command) error {
	favs, err := r.favorites()
	if err != nil {
		return err
	}
	entries, err := favs.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return r.writePlain("%s\n", repositories.EmptyFavoritesMessage)
	}

	opts := tasks.DownloadOpts{
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	}

	r.logger.Info("starting bulk download", "favorites", len(entries), "workers", opts.NumWorkers)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.QueueDownloads:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.Download:
				r.writePlain("   %s\n", update.Message)
			case tasks.WriteManifest:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()

	result, err := tasks.BulkDownload(ctx, progressCh, r.music, entries, opts)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Download Complete!")
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Succeeded: %d/%d\n", result.Succeeded, result.Total)

	if result.Failed > 0 {
		r.writePlainln("Failed to download %d files:", result.Failed)
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  - %s: %s\n", res.Filename, res.Message)
			}
		}
	}
	return nil
}
