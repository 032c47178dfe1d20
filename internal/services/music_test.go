package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/desertthunder/tunesmith/internal/shared"
	tu "github.com/desertthunder/tunesmith/internal/testing"
)

func TestMusicService(t *testing.T) {
	success := map[string]any{
		"success":      true,
		"audio_url":    "/a.mp3",
		"download_url": "/d.mp3",
		"filename":     "a.mp3",
		"classification": map[string]string{
			"genre": "Jazz", "mood": "Moody", "tempo": "Slow (70 BPM)",
		},
	}

	t.Run("Generate", func(t *testing.T) {
		backend := tu.NewBackend(t, map[string]http.HandlerFunc{"/generate": tu.JSON(http.StatusOK, success)})
		srv := NewMusicService(backend.URL, nil)

		resp, err := srv.Generate(context.Background(), "Jazz, moody, slow", 30)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		track := resp.Track("Jazz, moody, slow")
		if track.AudioURL != "/a.mp3" || track.DownloadURL != "/d.mp3" || track.Filename != "a.mp3" {
			t.Errorf("unexpected track %+v", track)
		}
		if track.Genre() != "Jazz" {
			t.Errorf("expected genre Jazz, got %s", track.Genre())
		}

		reqs := backend.Requests()
		if len(reqs) != 1 {
			t.Fatalf("expected 1 request, got %d", len(reqs))
		}
		if reqs[0].Method != http.MethodPost {
			t.Errorf("expected POST, got %s", reqs[0].Method)
		}
		if reqs[0].Body["prompt"] != "Jazz, moody, slow" {
			t.Errorf("expected prompt in body, got %v", reqs[0].Body)
		}
		if reqs[0].Body["duration"] != float64(30) {
			t.Errorf("expected duration 30, got %v", reqs[0].Body["duration"])
		}
	})

	t.Run("Harmonize And Reharmonize Send Filename", func(t *testing.T) {
		backend := tu.NewBackend(t, map[string]http.HandlerFunc{
			"/harmonize":   tu.JSON(http.StatusOK, success),
			"/reharmonize": tu.JSON(http.StatusOK, success),
		})
		srv := NewMusicService(backend.URL, nil)

		if _, err := srv.Harmonize(context.Background(), "a.mp3", 45); err != nil {
			t.Fatalf("harmonize failed: %v", err)
		}
		if _, err := srv.Reharmonize(context.Background(), "a.mp3", 45); err != nil {
			t.Fatalf("reharmonize failed: %v", err)
		}

		reqs := backend.Requests()
		if len(reqs) != 2 {
			t.Fatalf("expected 2 requests, got %d", len(reqs))
		}
		for i, path := range []string{"/harmonize", "/reharmonize"} {
			if reqs[i].Path != path {
				t.Errorf("expected path %s, got %s", path, reqs[i].Path)
			}
			if reqs[i].Body["filename"] != "a.mp3" || reqs[i].Body["duration"] != float64(45) {
				t.Errorf("unexpected body %v", reqs[i].Body)
			}
		}
	})

	t.Run("Error Classification", func(t *testing.T) {
		tc := []struct {
			name     string
			handler  http.HandlerFunc
			kind     ErrorKind
			sentinel error
			message  string
		}{
			{
				name:     "application failure",
				handler:  tu.JSON(http.StatusOK, map[string]any{"success": false, "error": "model busy"}),
				kind:     KindApplication,
				sentinel: shared.ErrGeneration,
				message:  "model busy",
			},
			{
				name:     "500 without body",
				handler:  tu.Status(http.StatusInternalServerError),
				kind:     KindStatus,
				sentinel: shared.ErrHTTPStatus,
			},
			{
				name:     "400 with error body",
				handler:  tu.JSON(http.StatusBadRequest, map[string]any{"error": "No prompt provided"}),
				kind:     KindStatus,
				sentinel: shared.ErrHTTPStatus,
				message:  "No prompt provided",
			},
			{
				name: "malformed body",
				handler: func(w http.ResponseWriter, r *http.Request) {
					w.Write([]byte("<html>oops</html>"))
				},
				kind:     KindDecode,
				sentinel: shared.ErrDecodeResponse,
			},
			{
				name:     "success without audio",
				handler:  tu.JSON(http.StatusOK, map[string]any{"success": true}),
				kind:     KindDecode,
				sentinel: shared.ErrDecodeResponse,
			},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				backend := tu.NewBackend(t, map[string]http.HandlerFunc{"/generate": tt.handler})
				_, err := NewMusicService(backend.URL, nil).Generate(context.Background(), "x", 30)

				var reqErr *RequestError
				if !errors.As(err, &reqErr) {
					t.Fatalf("expected RequestError, got %v", err)
				}
				if reqErr.Kind != tt.kind {
					t.Errorf("expected kind %s, got %s", tt.kind, reqErr.Kind)
				}
				if !errors.Is(err, tt.sentinel) {
					t.Errorf("expected %v in chain, got %v", tt.sentinel, err)
				}
				if ServerMessage(err) != tt.message {
					t.Errorf("expected message %q, got %q", tt.message, ServerMessage(err))
				}
			})
		}
	})

	t.Run("Transport Failure", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
		_, err := NewMusicService("http://example.com", client).Generate(context.Background(), "x", 30)

		var reqErr *RequestError
		if !errors.As(err, &reqErr) || reqErr.Kind != KindTransport {
			t.Fatalf("expected transport RequestError, got %v", err)
		}
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest in chain, got %v", err)
		}
	})

	t.Run("Download", func(t *testing.T) {
		backend := tu.NewBackend(t, map[string]http.HandlerFunc{
			"/download/a b.wav": func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("pcm")) },
		})

		var buf bytes.Buffer
		n, err := NewMusicService(backend.URL, nil).Download(context.Background(), "a b.wav", &buf)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n != 3 || buf.String() != "pcm" {
			t.Errorf("unexpected download n=%d body=%q", n, buf.String())
		}

		if _, err := NewMusicService(backend.URL, nil).Download(context.Background(), "", &buf); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Bearer Token", func(t *testing.T) {
		backend := tu.NewBackend(t, map[string]http.HandlerFunc{"/generate": tu.JSON(http.StatusOK, success)})
		client := NewHTTPClient(context.Background(), shared.BackendConfig{APIToken: "s3cret"})

		if _, err := NewMusicService(backend.URL, client).Generate(context.Background(), "x", 30); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := backend.Requests()[0].Header.Get("Authorization"); got != "Bearer s3cret" {
			t.Errorf("expected bearer header, got %q", got)
		}
	})
}

func TestResolveURL(t *testing.T) {
	tc := []struct {
		base, ref, want string
	}{
		{"http://127.0.0.1:5000", "/static/generated/a.wav", "http://127.0.0.1:5000/static/generated/a.wav"},
		{"http://host/app/", "audio/a.wav", "http://host/app/audio/a.wav"},
		{"http://host", "https://cdn.example.com/a.wav", "https://cdn.example.com/a.wav"},
	}
	for _, tt := range tc {
		if got := ResolveURL(tt.base, tt.ref); got != tt.want {
			t.Errorf("ResolveURL(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
		}
	}
}

func TestIsGenerationPath(t *testing.T) {
	for _, path := range []string{GeneratePath, HarmonizePath, ReharmonizePath} {
		if !IsGenerationPath(path) {
			t.Errorf("expected %s to be a generation path", path)
		}
	}
	for _, path := range []string{"/health", "/download/a.mp3", "/generate/", ""} {
		if IsGenerationPath(path) {
			t.Errorf("expected %q not to be a generation path", path)
		}
	}
}
