package player

import (
	"fmt"
	"math"

	"github.com/desertthunder/tunesmith/internal/shared"
)

// NullGraph is used when no audio device is available. Tracks load and display but cannot be played.
type NullGraph struct {
	Reason error
}

func (g NullGraph) Open(url string) (Handle, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty audio url", shared.ErrInvalidInput)
	}
	return &nullHandle{reason: g.err()}, nil
}

func (g NullGraph) Suspended() bool { return false }
func (g NullGraph) Resume() error   { return nil }
func (g NullGraph) Close() error    { return nil }

func (g NullGraph) err() error {
	if g.Reason != nil {
		return fmt.Errorf("%w: %v", shared.ErrAudioUnavailable, g.Reason)
	}
	return shared.ErrAudioUnavailable
}

type nullHandle struct {
	reason error
}

func (h *nullHandle) Play() error                  { return h.reason }
func (h *nullHandle) Pause()                       {}
func (h *nullHandle) Paused() bool                 { return true }
func (h *nullHandle) Duration() float64            { return math.NaN() }
func (h *nullHandle) Position() float64            { return 0 }
func (h *nullHandle) SetPosition(float64)          {}
func (h *nullHandle) Subscribe(func(Event)) func() { return func() {} }
func (h *nullHandle) Tap() (Analyser, error)       { return nil, h.reason }
func (h *nullHandle) Close() error                 { return nil }
