package shared

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEscapeText(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Jazz, moody, slow", want: "Jazz, moody, slow"},
		{name: "ansi color", in: "\x1b[31mred\x1b[0m alert", want: "red alert"},
		{name: "newlines flattened", in: "line one\nline two", want: "line one line two"},
		{name: "bell removed", in: "ding\x07dong", want: "dingdong"},
		{name: "unicode kept", in: "lo-fi ♪ beats", want: "lo-fi ♪ beats"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeText(tt.in); got != tt.want {
				t.Errorf("EscapeText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	tc := []struct {
		in   float64
		want string
	}{
		{0, "0:00"},
		{29.9, "0:29"},
		{61, "1:01"},
		{math.NaN(), "--:--"},
		{math.Inf(1), "--:--"},
	}

	for _, tt := range tc {
		if got := FormatSeconds(tt.in); got != tt.want {
			t.Errorf("FormatSeconds(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique IDs")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid string, got %q", a)
	}
}

func TestOpenBrowser(t *testing.T) {
	t.Run("rejects non-http links", func(t *testing.T) {
		for _, link := range []string{"", "/download/a.mp3", "file:///etc/passwd", "javascript:alert(1)", "http://"} {
			if err := OpenBrowser(link); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("%q: expected ErrInvalidArgument, got %v", link, err)
			}
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		orig := getRuntime
		getRuntime = func() string { return "plan9" }
		defer func() { getRuntime = orig }()

		if err := OpenBrowser("http://localhost:5000/download/a.mp3"); !errors.Is(err, ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented, got %v", err)
		}
	})
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tunesmith.log")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	logger.Info("request failed", "kind", "generate")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected log file, got %v", err)
	}
	if !strings.Contains(string(data), "request failed") || !strings.Contains(string(data), "kind=generate") {
		t.Errorf("expected structured line, got %q", data)
	}
}
