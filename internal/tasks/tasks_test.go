package tasks

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/repositories"
	"github.com/desertthunder/tunesmith/internal/services"
	"github.com/desertthunder/tunesmith/internal/shared"
	tu "github.com/desertthunder/tunesmith/internal/testing"
)

type mockPlayer struct {
	shown   []models.Track
	hides   int
	showErr error
	visible bool
}

func (p *mockPlayer) Show(track models.Track) error {
	if p.showErr != nil {
		return p.showErr
	}
	p.shown = append(p.shown, track)
	p.visible = true
	return nil
}

func (p *mockPlayer) Hide() {
	p.hides++
	p.visible = false
}

// recordingHistory wraps History and keeps every status an entry passed through.
type recordingHistory struct {
	*repositories.History
	transitions map[string][]string
}

func newRecordingHistory() *recordingHistory {
	return &recordingHistory{History: repositories.NewHistory(), transitions: map[string][]string{}}
}

func (h *recordingHistory) Record(prompt, status string) models.HistoryEntry {
	e := h.History.Record(prompt, status)
	h.transitions[e.ID] = append(h.transitions[e.ID], status)
	return e
}

func (h *recordingHistory) Update(id, status string) bool {
	h.transitions[id] = append(h.transitions[id], status)
	return h.History.Update(id, status)
}

var successBody = map[string]any{
	"success":      true,
	"audio_url":    "/a.mp3",
	"download_url": "/d.mp3",
	"filename":     "a.mp3",
}

func newOrchestrator(t *testing.T, routes map[string]http.HandlerFunc) (*Orchestrator, *tu.Backend, *recordingHistory, *mockPlayer) {
	t.Helper()
	backend := tu.NewBackend(t, routes)
	history := newRecordingHistory()
	player := &mockPlayer{}
	o := NewOrchestrator(services.NewMusicService(backend.URL, nil), history, player, shared.NewLogger(io.Discard))
	return o, backend, history, player
}

func TestOrchestrator(t *testing.T) {
	ctx := context.Background()

	t.Run("Generate Success", func(t *testing.T) {
		o, _, history, player := newOrchestrator(t, map[string]http.HandlerFunc{
			"/generate": tu.JSON(http.StatusOK, successBody),
		})

		res, err := o.Run(ctx, KindGenerate, Input{Prompt: "Jazz, moody, slow"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Track == nil || res.Track.AudioURL != "/a.mp3" {
			t.Fatalf("unexpected result %+v", res)
		}

		status := o.Status()
		if status.Text != "Music generated successfully!" {
			t.Errorf("unexpected status %q", status.Text)
		}
		if status.Busy || !status.ControlEnabled || status.Failed {
			t.Errorf("expected idle status, got %+v", status)
		}

		entries := history.Entries()
		if len(entries) != 1 {
			t.Fatalf("expected 1 history entry, got %d", len(entries))
		}
		if entries[0].Prompt != "Jazz, moody, slow" || entries[0].Status != "Generated successfully" {
			t.Errorf("unexpected history entry %+v", entries[0])
		}

		if !player.visible || len(player.shown) != 1 || player.shown[0].AudioURL != "/a.mp3" {
			t.Errorf("expected player bound to /a.mp3, got %+v", player.shown)
		}
	})

	t.Run("Server Error", func(t *testing.T) {
		o, _, history, player := newOrchestrator(t, map[string]http.HandlerFunc{
			"/generate": tu.Status(http.StatusInternalServerError),
		})

		_, err := o.Run(ctx, KindGenerate, Input{Prompt: "Jazz, moody, slow"})
		if !errors.Is(err, shared.ErrHTTPStatus) {
			t.Fatalf("expected ErrHTTPStatus, got %v", err)
		}

		status := o.Status()
		if status.Text != StatusGenericFail || !status.Failed {
			t.Errorf("expected generic failure status, got %+v", status)
		}
		if !status.ControlEnabled || status.Busy {
			t.Errorf("expected control re-enabled, got %+v", status)
		}
		if history.Entries()[0].Status != "Failed" {
			t.Errorf("expected Failed entry, got %+v", history.Entries()[0])
		}
		if player.visible || len(player.shown) != 0 {
			t.Error("expected player to remain hidden")
		}
	})

	t.Run("Application Failure Uses Server Message", func(t *testing.T) {
		o, _, history, _ := newOrchestrator(t, map[string]http.HandlerFunc{
			"/generate": tu.JSON(http.StatusOK, map[string]any{"success": false, "error": "model overloaded"}),
		})

		o.Run(ctx, KindGenerate, Input{Prompt: "ambient"})

		if got := o.Status().Text; got != "Error: model overloaded" {
			t.Errorf("unexpected status %q", got)
		}
		if history.Entries()[0].Status != LabelFailed {
			t.Errorf("expected Failed entry, got %s", history.Entries()[0].Status)
		}
	})

	t.Run("Malformed Body", func(t *testing.T) {
		o, _, _, _ := newOrchestrator(t, map[string]http.HandlerFunc{
			"/generate": func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("<html>")) },
		})

		_, err := o.Run(ctx, KindGenerate, Input{Prompt: "ambient"})
		if !errors.Is(err, shared.ErrDecodeResponse) {
			t.Errorf("expected ErrDecodeResponse, got %v", err)
		}
		if o.Status().Text != StatusGenericFail {
			t.Errorf("unexpected status %q", o.Status().Text)
		}
	})

	t.Run("Success Message Overrides Default", func(t *testing.T) {
		body := map[string]any{"success": true, "audio_url": "/a.mp3", "filename": "a.mp3", "message": "Harmony added"}
		o, backend, _, _ := newOrchestrator(t, map[string]http.HandlerFunc{"/harmonize": tu.JSON(http.StatusOK, body)})

		if _, err := o.Run(ctx, KindHarmonize, Input{Prompt: "piano", Filename: "a.mp3", Duration: 45}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if o.Status().Text != "Harmony added" {
			t.Errorf("unexpected status %q", o.Status().Text)
		}

		reqs := backend.Requests()
		if reqs[0].Body["filename"] != "a.mp3" || reqs[0].Body["duration"] != float64(45) {
			t.Errorf("unexpected request body %v", reqs[0].Body)
		}
	})

	t.Run("Default Duration", func(t *testing.T) {
		o, backend, _, _ := newOrchestrator(t, map[string]http.HandlerFunc{"/generate": tu.JSON(http.StatusOK, successBody)})

		o.Run(ctx, KindGenerate, Input{Prompt: "lofi"})

		if got := backend.Requests()[0].Body["duration"]; got != float64(DefaultDuration) {
			t.Errorf("expected duration %d, got %v", DefaultDuration, got)
		}
	})

	t.Run("Begin Rejects Empty Input", func(t *testing.T) {
		o, backend, history, _ := newOrchestrator(t, nil)

		if _, err := o.Begin(KindGenerate, Input{Prompt: "   "}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if _, err := o.Begin(KindReharmonize, Input{}); !errors.Is(err, shared.ErrNoTrack) {
			t.Errorf("expected ErrNoTrack, got %v", err)
		}
		if history.Len() != 0 || len(backend.Requests()) != 0 || o.InFlight() != 0 {
			t.Error("rejected input must have no effect")
		}
	})

	t.Run("Begin Shows Intermediate State", func(t *testing.T) {
		o, _, history, player := newOrchestrator(t, map[string]http.HandlerFunc{"/generate": tu.JSON(http.StatusOK, successBody)})
		player.visible = true

		req, err := o.Begin(KindGenerate, Input{Prompt: "lofi"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		status := o.Status()
		if status.Text != StatusGenerating || !status.Busy || status.ControlEnabled {
			t.Errorf("unexpected in-flight status %+v", status)
		}
		if player.visible || player.hides != 1 {
			t.Error("expected previous player to be cleared")
		}
		if history.Entries()[0].Status != LabelInProgress {
			t.Errorf("expected in-progress entry, got %s", history.Entries()[0].Status)
		}

		o.Complete(o.Execute(ctx, req))
		if got := history.transitions[req.HistoryID]; len(got) != 2 || got[0] != LabelInProgress || got[1] != LabelGenerated {
			t.Errorf("unexpected transitions %v", got)
		}
	})

	t.Run("One Entry Per Submission", func(t *testing.T) {
		o, _, history, _ := newOrchestrator(t, map[string]http.HandlerFunc{"/generate": tu.JSON(http.StatusOK, successBody)})

		prompts := []string{"a", "b", "c", "d"}
		for _, p := range prompts {
			o.Run(ctx, KindGenerate, Input{Prompt: p})
		}

		entries := history.Entries()
		if len(entries) != len(prompts) {
			t.Fatalf("expected %d entries, got %d", len(prompts), len(entries))
		}
		for i, e := range entries {
			if e.Prompt != prompts[len(prompts)-1-i] {
				t.Errorf("entry %d: expected prompt %s, got %s", i, prompts[len(prompts)-1-i], e.Prompt)
			}
			if got := history.transitions[e.ID]; len(got) != 2 || got[0] != LabelInProgress {
				t.Errorf("entry %d skipped the in-progress state: %v", i, got)
			}
		}
	})

	t.Run("Stale Response Dropped", func(t *testing.T) {
		var mu sync.Mutex
		calls := 0
		o, _, history, player := newOrchestrator(t, map[string]http.HandlerFunc{
			"/generate": func(w http.ResponseWriter, r *http.Request) {
				mu.Lock()
				calls++
				n := calls
				mu.Unlock()
				body := map[string]any{"success": true, "audio_url": "/first.mp3", "filename": "first.mp3"}
				if n == 2 {
					body["audio_url"] = "/second.mp3"
					body["filename"] = "second.mp3"
				}
				tu.JSON(http.StatusOK, body)(w, r)
			},
		})

		first, _ := o.Begin(KindGenerate, Input{Prompt: "first"})
		firstRes := o.Execute(ctx, first)
		second, _ := o.Begin(KindGenerate, Input{Prompt: "second"})
		secondRes := o.Execute(ctx, second)

		if o.Complete(secondRes) != true {
			t.Error("expected latest response to apply")
		}
		if o.Status().Busy != true {
			t.Error("expected busy while a request is still in flight")
		}
		if o.Complete(firstRes) != false {
			t.Error("expected stale response to be dropped")
		}

		if len(player.shown) != 1 || player.shown[0].AudioURL != "/second.mp3" {
			t.Errorf("expected only the latest track shown, got %+v", player.shown)
		}
		if status := o.Status(); status.Busy || !status.ControlEnabled {
			t.Errorf("expected idle after both complete, got %+v", status)
		}

		for _, e := range history.Entries() {
			if e.Status != LabelGenerated {
				t.Errorf("entry %s left at %s", e.Prompt, e.Status)
			}
		}
	})

	t.Run("Player Failure Becomes Status", func(t *testing.T) {
		o, _, history, player := newOrchestrator(t, map[string]http.HandlerFunc{"/generate": tu.JSON(http.StatusOK, successBody)})
		player.showErr = shared.ErrAudioUnavailable

		if _, err := o.Run(ctx, KindGenerate, Input{Prompt: "lofi"}); err != nil {
			t.Fatalf("generation itself succeeded, got %v", err)
		}
		status := o.Status()
		if !status.Failed || !strings.HasPrefix(status.Text, "Error:") {
			t.Errorf("expected playback error status, got %+v", status)
		}
		if history.Entries()[0].Status != LabelGenerated {
			t.Errorf("unexpected history status %s", history.Entries()[0].Status)
		}
	})
}

func TestKind(t *testing.T) {
	tests := []struct {
		kind Kind
		path string
	}{
		{KindGenerate, "/generate"},
		{KindHarmonize, "/harmonize"},
		{KindReharmonize, "/reharmonize"},
	}
	for _, tt := range tests {
		if got := tt.kind.Path(); got != tt.path {
			t.Errorf("%v: expected %s, got %s", tt.kind, tt.path, got)
		}
	}
}

type mockDownloader struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]error
}

func (d *mockDownloader) Download(ctx context.Context, filename string, w io.Writer) (int64, error) {
	d.mu.Lock()
	d.calls[filename]++
	d.mu.Unlock()
	if err := d.fail[filename]; err != nil {
		return 0, err
	}
	n, err := io.WriteString(w, "RIFF"+filename)
	return int64(n), err
}

func TestBulkDownload(t *testing.T) {
	favorites := []models.FavoriteEntry{
		{Prompt: "one", Filename: "one.wav"},
		{Prompt: "two", Filename: "two.wav"},
		{Prompt: "one again", Filename: "one.wav"},
		{Prompt: "broken", Filename: "broken.wav"},
	}

	t.Run("Downloads Unique Files", func(t *testing.T) {
		dir := t.TempDir()
		client := &mockDownloader{calls: map[string]int{}, fail: map[string]error{"broken.wav": shared.ErrAPIRequest}}
		prog := make(chan ProgressUpdate, 32)

		result, err := BulkDownload(context.Background(), prog, client, favorites, DownloadOpts{OutputDir: dir, RateLimit: 100})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Total != 3 || result.Succeeded != 2 || result.Failed != 1 {
			t.Errorf("unexpected counts %+v", result)
		}
		if client.calls["one.wav"] != 1 {
			t.Errorf("expected duplicate filename downloaded once, got %d", client.calls["one.wav"])
		}

		tu.AssertFileExists(t, filepath.Join(dir, "one.wav"))
		tu.AssertFileExists(t, filepath.Join(dir, "two.wav"))
		if _, err := os.Stat(filepath.Join(dir, "broken.wav")); !os.IsNotExist(err) {
			t.Error("expected failed download to leave no file")
		}

		manifest := tu.MustReadFile(t, result.ManifestPath)
		if !strings.Contains(manifest, `"succeeded": 2`) {
			t.Errorf("unexpected manifest %s", manifest)
		}

		close(prog)
		phases := map[Phase]int{}
		for u := range prog {
			phases[u.Phase]++
		}
		if phases[QueueDownloads] != 1 || phases[WriteManifest] != 1 || phases[Download] == 0 {
			t.Errorf("unexpected progress phases %v", phases)
		}
	})

	t.Run("Nil Progress Channel", func(t *testing.T) {
		client := &mockDownloader{calls: map[string]int{}}
		if _, err := BulkDownload(context.Background(), nil, client, favorites[:1], DownloadOpts{OutputDir: t.TempDir(), RateLimit: 100}); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := &mockDownloader{calls: map[string]int{}}
		_, err := BulkDownload(ctx, nil, client, favorites, DownloadOpts{OutputDir: t.TempDir()})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("DownloadTrack Requires Filename", func(t *testing.T) {
		client := &mockDownloader{calls: map[string]int{}}
		if _, _, err := DownloadTrack(context.Background(), client, "", t.TempDir()); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}
