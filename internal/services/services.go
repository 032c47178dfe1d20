// package services defines the typed client for the music generation backend
//
// /generate, /harmonize, /reharmonize and /download
package services

import (
	"context"
	"io"
)

// Generator is the backend surface used by the request orchestrator and the CLI.
type Generator interface {
	// Generate creates a new track from a free-text prompt.
	Generate(ctx context.Context, prompt string, duration int) (*GenerateResponse, error)

	// Harmonize adds harmony to a previously generated file.
	Harmonize(ctx context.Context, filename string, duration int) (*GenerateResponse, error)

	// Reharmonize replaces the harmony of a previously generated file.
	Reharmonize(ctx context.Context, filename string, duration int) (*GenerateResponse, error)

	// Download copies a generated file into w.
	Download(ctx context.Context, filename string, w io.Writer) (int64, error)
}

var _ Generator = (*MusicService)(nil)

// Generation endpoints. All three answer with a [GenerateResponse].
const (
	GeneratePath    = "/generate"
	HarmonizePath   = "/harmonize"
	ReharmonizePath = "/reharmonize"
)

// IsGenerationPath reports whether path is one of the generation endpoints.
func IsGenerationPath(path string) bool {
	switch path {
	case GeneratePath, HarmonizePath, ReharmonizePath:
		return true
	}
	return false
}

// GenerateRequest is the body of POST /generate.
type GenerateRequest struct {
	Prompt   string `json:"prompt"`
	Duration int    `json:"duration"`
}

// HarmonizeRequest is the body of POST /harmonize and POST /reharmonize.
type HarmonizeRequest struct {
	Filename string `json:"filename"`
	Duration int    `json:"duration"`
}
