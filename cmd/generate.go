package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/repositories"
	"github.com/desertthunder/tunesmith/internal/services"
	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/desertthunder/tunesmith/internal/tasks"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

// trackOutput is the JSON shape printed by the generation commands.
type trackOutput struct {
	Status      string                 `json:"status"`
	Prompt      string                 `json:"prompt"`
	AudioURL    string                 `json:"audio_url"`
	DownloadURL string                 `json:"download_url,omitempty"`
	Filename    string                 `json:"filename"`
	Duration    int                    `json:"duration"`
	Class       *models.Classification `json:"classification,omitempty"`
	SavedTo     string                 `json:"saved_to,omitempty"`
}

// Generate calls the backend with a text prompt.
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	prompt := cmd.StringArg("prompt")
	if prompt == "" {
		return fmt.Errorf("%w: prompt is required", shared.ErrMissingArgument)
	}
	return r.runTrack(ctx, cmd, tasks.KindGenerate, tasks.Input{Prompt: prompt})
}

// Harmonize adds harmony to a generated file.
func (r *Runner) Harmonize(ctx context.Context, cmd *cli.Command) error {
	return r.runFile(ctx, cmd, tasks.KindHarmonize)
}

// Reharmonize replaces the harmony of a generated file.
func (r *Runner) Reharmonize(ctx context.Context, cmd *cli.Command) error {
	return r.runFile(ctx, cmd, tasks.KindReharmonize)
}

func (r *Runner) runFile(ctx context.Context, cmd *cli.Command, kind tasks.Kind) error {
	filename := cmd.StringArg("filename")
	if filename == "" {
		return fmt.Errorf("%w: filename is required", shared.ErrMissingArgument)
	}
	return r.runTrack(ctx, cmd, kind, tasks.Input{Filename: filename})
}

func (r *Runner) runTrack(ctx context.Context, cmd *cli.Command, kind tasks.Kind, in tasks.Input) error {
	in.Duration = int(cmd.Int("duration"))
	g := r.config.Generation
	if in.Duration < g.MinDuration || in.Duration > g.MaxDuration {
		return fmt.Errorf("%w: duration %d outside %d..%d", shared.ErrInvalidFlag, in.Duration, g.MinDuration, g.MaxDuration)
	}

	orch := tasks.NewOrchestrator(r.music, repositories.NewHistory(), nil, r.logger)

	r.logger.Info("sending request", "kind", kind, "duration", in.Duration)
	res, err := orch.Run(ctx, kind, in)
	status := orch.Status()
	if err != nil {
		if status.Failed {
			return fmt.Errorf("%s: %w", status.Text, err)
		}
		return err
	}

	track := *res.Track
	out := trackOutput{
		Status:      status.Text,
		Prompt:      track.Prompt,
		AudioURL:    services.ResolveURL(r.config.Backend.URL, track.AudioURL),
		DownloadURL: track.DownloadURL,
		Filename:    track.Filename,
		Duration:    res.Request.Duration,
		Class:       track.Classification,
	}
	if out.DownloadURL != "" {
		out.DownloadURL = services.ResolveURL(r.config.Backend.URL, out.DownloadURL)
	}

	if cmd.Bool("save") {
		favs, err := r.favorites()
		if err != nil {
			return err
		}
		if _, err := favs.Add(track); err != nil {
			return fmt.Errorf("failed to save favorite: %w", err)
		}
		r.logger.Info("saved to favorites", "prompt", track.Prompt)
	}

	var size int64
	if cmd.Bool("download") {
		path, n, err := tasks.DownloadTrack(ctx, r.music, track.Filename, g.DownloadDir)
		if err != nil {
			return fmt.Errorf("failed to download %s: %w", track.Filename, err)
		}
		out.SavedTo = path
		size = n
	}

	if cmd.Bool("json") {
		return r.writeJSON(out, true)
	}

	r.writePlain("✓ %s\n\n", out.Status)
	r.writePlain("Prompt:   %s\n", shared.EscapeText(out.Prompt))
	r.writePlain("Duration: %ds\n", out.Duration)
	r.writePlain("Genre:    %s\n", track.Genre())
	r.writePlain("Mood:     %s\n", track.Mood())
	r.writePlain("Tempo:    %s\n", track.Tempo())
	r.writePlain("Audio:    %s\n", out.AudioURL)
	if out.DownloadURL != "" {
		r.writePlain("Download: %s\n", out.DownloadURL)
	}
	r.writePlain("File:     %s\n", out.Filename)
	if out.SavedTo != "" {
		r.writePlain("Saved:    %s (%s)\n", out.SavedTo, humanize.Bytes(uint64(size)))
	}
	return nil
}

// Download saves a generated file into the output directory.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	filename := cmd.StringArg("filename")
	if filename == "" {
		return fmt.Errorf("%w: filename is required", shared.ErrMissingArgument)
	}
	dir := cmd.String("output")

	r.logger.Info("downloading", "filename", filename, "dir", dir)
	path, n, err := tasks.DownloadTrack(ctx, r.music, filename, dir)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Saved %s (%s)\n", path, humanize.Bytes(uint64(n)))
}
