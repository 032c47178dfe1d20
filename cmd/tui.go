package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tunesmith/internal/player"
	"github.com/desertthunder/tunesmith/internal/repositories"
	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/desertthunder/tunesmith/internal/tasks"
	"github.com/desertthunder/tunesmith/internal/ui"
	"github.com/urfave/cli/v3"
)

const playerEventBuffer = 64

// TUI launches the interactive generator and player.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	store, err := r.storage()
	if err != nil {
		return err
	}

	if path := r.config.UI.LogFile; path != "" {
		fileLogger, err := shared.NewFileLogger(path)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		r.SetLogger(fileLogger)
	}

	events, notify := ui.PlayerEvents(playerEventBuffer)

	graph := r.audioGraph()
	manager := player.NewManager(graph, notify, shared.WithLogger(r.logger, "component", "player"))
	defer manager.Close()

	history := repositories.NewHistory()
	orch := tasks.NewOrchestrator(r.music, history, manager, shared.WithLogger(r.logger, "component", "requests"))

	model := ui.NewModel(ctx, ui.Options{
		Orchestrator: orch,
		Player:       manager,
		Events:       events,
		History:      history,
		Favorites:    repositories.NewFavoritesRepository(store),
		Theme:        repositories.NewThemeRepository(store),
		Downloader:   r.music,
		BackendURL:   r.config.Backend.URL,
		Generation:   r.config.Generation,
		UI:           r.config.UI,
		Logger:       r.logger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// audioGraph opens the sound device, falling back to a silent graph when none is available.
func (r *Runner) audioGraph() player.AudioGraph {
	decoder := player.NewFFmpegDecoder(r.config.Player, r.httpClient)
	decoder.BaseURL = r.config.Backend.URL

	graph, err := player.NewOtoGraph(r.config.Player, decoder, shared.WithLogger(r.logger, "component", "audio"))
	if err != nil {
		r.logger.Warn("audio output unavailable, playback disabled", "error", err)
		return player.NullGraph{Reason: err}
	}
	return graph
}
