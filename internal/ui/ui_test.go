package ui

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/player"
	"github.com/desertthunder/tunesmith/internal/repositories"
	"github.com/desertthunder/tunesmith/internal/services"
	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/desertthunder/tunesmith/internal/tasks"
	tu "github.com/desertthunder/tunesmith/internal/testing"
)

var jazzResponse = map[string]any{
	"success":      true,
	"audio_url":    "/a.mp3",
	"download_url": "/d.mp3",
	"filename":     "a.mp3",
}

type harness struct {
	model   *Model
	backend *tu.Backend
	history *repositories.History
	player  *player.Manager
	store   *repositories.MemoryStore
	opened  []string
}

func newHarness(t *testing.T, routes map[string]http.HandlerFunc) *harness {
	t.Helper()

	h := &harness{
		backend: tu.NewBackend(t, routes),
		history: repositories.NewHistory(),
		store:   repositories.NewMemoryStore(),
	}

	logger := shared.NewLogger(io.Discard)
	client := services.NewMusicService(h.backend.URL, nil)
	h.player = player.NewManager(player.NullGraph{}, nil, logger)

	h.model = NewModel(context.Background(), Options{
		Orchestrator: tasks.NewOrchestrator(client, h.history, h.player, logger),
		Player:       h.player,
		History:      h.history,
		Favorites:    repositories.NewFavoritesRepository(h.store),
		Theme:        repositories.NewThemeRepository(h.store),
		Downloader:   client,
		BackendURL:   h.backend.URL,
		Generation: shared.GenerationConfig{
			DefaultDuration: 30, MinDuration: 10, MaxDuration: 120, Step: 5, DownloadDir: t.TempDir(),
		},
		Logger: logger,
		OpenURL: func(url string) error {
			h.opened = append(h.opened, url)
			return nil
		},
		Rand: rand.New(rand.NewSource(1)),
	})
	h.model.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return h
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (h *harness) press(msgs ...tea.KeyMsg) tea.Cmd {
	var cmds []tea.Cmd
	for _, msg := range msgs {
		_, cmd := h.model.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (h *harness) typePrompt(s string) {
	h.press(runes("/"))
	for _, r := range s {
		h.press(runes(string(r)))
	}
}

// drain runs cmd and every batched command it yields, feeding [Msg] results back into the model.
func (h *harness) drain(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			h.drain(c)
		}
	case Msg:
		_, next := h.model.Update(msg)
		h.drain(next)
	}
}

func TestModel(t *testing.T) {
	t.Run("Generate Scenario", func(t *testing.T) {
		h := newHarness(t, map[string]http.HandlerFunc{"/generate": tu.JSON(http.StatusOK, jazzResponse)})

		h.typePrompt("Jazz, moody, slow")
		cmd := h.press(tea.KeyMsg{Type: tea.KeyEnter})

		if v := h.model.input.Value(); v != "" {
			t.Errorf("expected input cleared after submit, got %q", v)
		}
		if st := h.model.opts.Orchestrator.Status(); !st.Busy || st.ControlEnabled {
			t.Errorf("expected busy status while request is pending, got %+v", st)
		}

		h.drain(cmd)

		st := h.model.opts.Orchestrator.Status()
		if st.Text != "Music generated successfully!" || st.Busy || !st.ControlEnabled {
			t.Errorf("unexpected status: %+v", st)
		}

		entries := h.history.Entries()
		if len(entries) != 1 || entries[0].Prompt != "Jazz, moody, slow" || entries[0].Status != tasks.LabelGenerated {
			t.Errorf("unexpected history: %+v", entries)
		}

		track, ok := h.player.Track()
		if !ok || track.AudioURL != "/a.mp3" {
			t.Errorf("expected player bound to /a.mp3, got %+v", track)
		}
		if !h.player.State().Visible {
			t.Error("expected player visible")
		}

		reqs := h.backend.Requests()
		if len(reqs) != 1 || reqs[0].Body["prompt"] != "Jazz, moody, slow" || reqs[0].Body["duration"] != float64(30) {
			t.Errorf("unexpected request: %+v", reqs)
		}
		if !strings.Contains(h.model.View(), "Music generated successfully!") {
			t.Error("expected status in view")
		}
	})

	t.Run("Server Error", func(t *testing.T) {
		h := newHarness(t, map[string]http.HandlerFunc{"/generate": tu.Status(http.StatusInternalServerError)})

		h.typePrompt("anything")
		h.drain(h.press(tea.KeyMsg{Type: tea.KeyEnter}))

		st := h.model.opts.Orchestrator.Status()
		if !st.Failed || !st.ControlEnabled || st.Busy {
			t.Errorf("expected failed idle status, got %+v", st)
		}
		if entries := h.history.Entries(); entries[0].Status != tasks.LabelFailed {
			t.Errorf("expected failed history entry, got %+v", entries[0])
		}
		if h.player.State().Visible {
			t.Error("expected player hidden after failure")
		}
	})

	t.Run("Blank Prompt Ignored", func(t *testing.T) {
		h := newHarness(t, nil)
		h.typePrompt("   ")
		if cmd := h.press(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
			h.drain(cmd)
		}
		if h.history.Len() != 0 || len(h.backend.Requests()) != 0 {
			t.Error("expected blank prompt to be ignored")
		}
	})

	t.Run("Duration Slider", func(t *testing.T) {
		h := newHarness(t, map[string]http.HandlerFunc{"/generate": tu.JSON(http.StatusOK, jazzResponse)})
		h.press(runes("]"), runes("]"))

		h.typePrompt("drums")
		h.drain(h.press(tea.KeyMsg{Type: tea.KeyEnter}))

		reqs := h.backend.Requests()
		if len(reqs) != 1 || reqs[0].Body["duration"] != float64(40) {
			t.Errorf("expected duration 40, got %+v", reqs)
		}
	})

	t.Run("Harmonize Current Track", func(t *testing.T) {
		h := newHarness(t, map[string]http.HandlerFunc{
			"/generate":  tu.JSON(http.StatusOK, jazzResponse),
			"/harmonize": tu.JSON(http.StatusOK, map[string]any{"success": true, "audio_url": "/h.mp3", "filename": "h.mp3"}),
		})

		h.typePrompt("Jazz, moody, slow")
		h.drain(h.press(tea.KeyMsg{Type: tea.KeyEnter}))
		h.press(tea.KeyMsg{Type: tea.KeyEsc})
		h.drain(h.press(runes("h")))

		reqs := h.backend.Requests()
		if len(reqs) != 2 || reqs[1].Path != "/harmonize" || reqs[1].Body["filename"] != "a.mp3" {
			t.Fatalf("unexpected requests: %+v", reqs)
		}
		if track, _ := h.player.Track(); track.AudioURL != "/h.mp3" {
			t.Errorf("expected harmonized track, got %s", track.AudioURL)
		}
		if entries := h.history.Entries(); entries[0].Status != tasks.LabelHarmonized {
			t.Errorf("expected harmonized history label, got %+v", entries[0])
		}
	})

	t.Run("Overlapping Requests Counted", func(t *testing.T) {
		h := newHarness(t, nil)
		orch := h.model.opts.Orchestrator

		if _, err := orch.Begin(tasks.KindGenerate, tasks.Input{Prompt: "first", Duration: 30}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if strings.Contains(ansi.Strip(h.model.renderStatus()), "requests running") {
			t.Error("expected no count for a single request")
		}

		if _, err := orch.Begin(tasks.KindGenerate, tasks.Input{Prompt: "second", Duration: 30}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := ansi.Strip(h.model.renderStatus()); !strings.Contains(got, "(2 requests running)") {
			t.Errorf("expected running count in status, got %q", got)
		}
	})

	t.Run("Harmonize Without Track", func(t *testing.T) {
		h := newHarness(t, nil)
		if cmd := h.press(runes("h")); cmd != nil {
			h.drain(cmd)
		}
		if len(h.backend.Requests()) != 0 {
			t.Error("expected no request without a track")
		}
		if h.model.notice == "" || !h.model.noticeFailed {
			t.Error("expected a failure notice")
		}
	})

	t.Run("Favorites Empty State", func(t *testing.T) {
		h := newHarness(t, nil)
		h.press(runes("3"))

		if !h.model.nav.Visible(SectionFavorites.PanelID()) {
			t.Fatal("expected favorites panel visible")
		}
		if !strings.Contains(h.model.View(), repositories.EmptyFavoritesMessage) {
			t.Error("expected empty favorites message")
		}
	})

	t.Run("Save And Remove Favorite", func(t *testing.T) {
		h := newHarness(t, map[string]http.HandlerFunc{"/generate": tu.JSON(http.StatusOK, jazzResponse)})

		h.typePrompt("Jazz, moody, slow")
		h.drain(h.press(tea.KeyMsg{Type: tea.KeyEnter}))
		h.press(tea.KeyMsg{Type: tea.KeyEsc}, runes("f"), runes("3"))

		if len(h.model.favorites) != 1 || h.model.favorites[0].AudioURL != "/a.mp3" {
			t.Fatalf("expected one favorite, got %+v", h.model.favorites)
		}
		if !strings.Contains(h.model.View(), "Jazz, moody, slow") {
			t.Error("expected favorite prompt in view")
		}

		h.press(runes("x"))
		if len(h.model.favorites) != 0 {
			t.Errorf("expected favorite removed, got %+v", h.model.favorites)
		}
	})

	t.Run("Play Favorite", func(t *testing.T) {
		h := newHarness(t, nil)
		favs := repositories.NewFavoritesRepository(h.store)
		if _, err := favs.Add(models.Track{Prompt: "saved", AudioURL: "/f.mp3", Filename: "f.mp3"}); err != nil {
			t.Fatal(err)
		}

		h.press(runes("3"), tea.KeyMsg{Type: tea.KeyEnter})

		if track, ok := h.player.Track(); !ok || track.AudioURL != "/f.mp3" {
			t.Errorf("expected favorite loaded, got %+v", track)
		}
		if h.model.nav.Active() != SectionDashboard {
			t.Errorf("expected dashboard after playing favorite, got %s", h.model.nav.Active())
		}
	})

	t.Run("Theme Toggle Persists", func(t *testing.T) {
		h := newHarness(t, nil)
		if h.model.theme != repositories.ThemeDark {
			t.Fatalf("expected dark default, got %s", h.model.theme)
		}

		h.press(runes("t"))
		if v, _, _ := h.store.Get(repositories.ThemeKey); v != repositories.ThemeLight || h.model.palette != lightPalette {
			t.Errorf("expected light theme persisted, got %q", v)
		}

		h.press(runes("t"))
		if v, _, _ := h.store.Get(repositories.ThemeKey); v != repositories.ThemeDark || h.model.palette != darkPalette {
			t.Errorf("expected dark theme after two toggles, got %q", v)
		}
	})

	t.Run("Playback Unavailable", func(t *testing.T) {
		h := newHarness(t, map[string]http.HandlerFunc{"/generate": tu.JSON(http.StatusOK, jazzResponse)})

		h.typePrompt("Jazz, moody, slow")
		h.drain(h.press(tea.KeyMsg{Type: tea.KeyEnter}))
		h.press(tea.KeyMsg{Type: tea.KeyEsc}, runes(" "))

		if st := h.model.opts.Orchestrator.Status(); !st.Failed || !strings.HasPrefix(st.Text, "Error:") {
			t.Errorf("expected playback error status, got %+v", st)
		}
	})

	t.Run("Download Current Track", func(t *testing.T) {
		h := newHarness(t, map[string]http.HandlerFunc{
			"/generate": tu.JSON(http.StatusOK, jazzResponse),
			"/download/a.mp3": func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("audio"))
			},
		})

		h.typePrompt("Jazz, moody, slow")
		h.drain(h.press(tea.KeyMsg{Type: tea.KeyEnter}))
		h.drain(h.press(tea.KeyMsg{Type: tea.KeyEsc}, runes("d")))

		if h.model.noticeFailed {
			t.Fatalf("expected download to succeed, got %q", h.model.notice)
		}
		tu.AssertFileExists(t, filepath.Join(h.model.opts.Generation.DownloadDir, "a.mp3"))
	})

	t.Run("Open Download URL", func(t *testing.T) {
		h := newHarness(t, map[string]http.HandlerFunc{"/generate": tu.JSON(http.StatusOK, jazzResponse)})

		h.typePrompt("Jazz, moody, slow")
		h.drain(h.press(tea.KeyMsg{Type: tea.KeyEnter}))
		h.drain(h.press(tea.KeyMsg{Type: tea.KeyEsc}, runes("o")))

		if len(h.opened) != 1 || h.opened[0] != h.backend.URL+"/d.mp3" {
			t.Errorf("expected resolved download URL opened, got %v", h.opened)
		}
	})

	t.Run("Preset Fills Input", func(t *testing.T) {
		h := newHarness(t, nil)
		h.press(runes("2"), runes("p"))

		if h.model.nav.Active() != SectionDashboard {
			t.Errorf("expected dashboard, got %s", h.model.nav.Active())
		}
		if h.model.input.Value() != Presets[0] || !h.model.input.Focused() {
			t.Errorf("expected first preset in focused input, got %q", h.model.input.Value())
		}
	})

	t.Run("Stale Player Events Ignored", func(t *testing.T) {
		h := newHarness(t, nil)
		h.model.Update(playerEventMsg(player.Event{Session: 42, Kind: player.EventError}))
		if st := h.model.opts.Orchestrator.Status(); st.Failed {
			t.Errorf("expected stale error event ignored, got %+v", st)
		}
	})
}

func TestPlayerEvents(t *testing.T) {
	ch, notify := PlayerEvents(1)
	notify(player.Event{Session: 1})
	notify(player.Event{Session: 2})

	if ev := <-ch; ev.Session != 1 {
		t.Errorf("expected first event kept, got %d", ev.Session)
	}
	select {
	case ev := <-ch:
		t.Errorf("expected overflow dropped, got %+v", ev)
	default:
	}
}
