package player

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strconv"
	"strings"

	"github.com/desertthunder/tunesmith/internal/services"
	"github.com/desertthunder/tunesmith/internal/shared"
)

// Decoder turns a track URL into interleaved signed 16-bit little-endian stereo PCM.
type Decoder interface {
	Decode(ctx context.Context, url string) ([]byte, error)
}

// FFmpegDecoder decodes with an ffmpeg binary.
//
// HTTP URLs are fetched with Client and piped to ffmpeg so that backend credentials apply. Relative URLs are
// resolved against BaseURL when it is set. Anything else is passed to ffmpeg as a path.
type FFmpegDecoder struct {
	Path       string
	SampleRate int
	Client     *http.Client
	BaseURL    string
}

// NewFFmpegDecoder creates a decoder from player settings.
func NewFFmpegDecoder(cfg shared.PlayerConfig, client *http.Client) *FFmpegDecoder {
	path := cfg.FFmpegPath
	if path == "" {
		path = "ffmpeg"
	}
	rate := cfg.SampleRate
	if rate <= 0 {
		rate = 48000
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &FFmpegDecoder{Path: path, SampleRate: rate, Client: client}
}

func (d *FFmpegDecoder) args(input string) []string {
	return []string{
		"-i", input,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(d.SampleRate),
		"-ac", "2",
		"-loglevel", "error",
		"pipe:1",
	}
}

// Decode runs ffmpeg to completion and returns frame-aligned PCM.
func (d *FFmpegDecoder) Decode(ctx context.Context, url string) ([]byte, error) {
	if d.BaseURL != "" {
		url = services.ResolveURL(d.BaseURL, url)
	}
	input := url
	var stdin io.Reader

	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrPlayback, err)
		}
		resp, err := d.Client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: fetch %s: %v", shared.ErrPlayback, url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: fetch %s: status %d", shared.ErrHTTPStatus, url, resp.StatusCode)
		}
		input = "pipe:0"
		stdin = resp.Body
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.Path, d.args(input)...)
	cmd.Stdin = stdin
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: ffmpeg decode %s: %v: %s", shared.ErrPlayback, url, err, strings.TrimSpace(stderr.String()))
	}

	// whole stereo frames only
	out = out[:len(out)-len(out)%bytesPerFrame]
	return out, nil
}
