package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/hajimehoshi/oto/v2"
)

const (
	channelCount   = 2
	bytesPerSample = 2
	bytesPerFrame  = channelCount * bytesPerSample
	tickInterval   = 250 * time.Millisecond
	readyTimeout   = 2 * time.Second
)

var errHandleClosed = errors.New("handle closed")

// output is the part of an oto player a handle drives.
type output interface {
	Play()
	Pause()
	IsPlaying() bool
	// Reset drops buffered audio, clears the end-of-stream latch and pauses.
	Reset()
	UnplayedBufferSize() int
	Close() error
}

// device is the part of an oto context the graph drives.
type device interface {
	NewPlayer(r io.Reader) output
	Suspend() error
	Resume() error
}

type otoDevice struct{ ctx *oto.Context }

func (d otoDevice) NewPlayer(r io.Reader) output { return d.ctx.NewPlayer(r) }
func (d otoDevice) Suspend() error               { return d.ctx.Suspend() }
func (d otoDevice) Resume() error                { return d.ctx.Resume() }

// OtoGraph plays decoded tracks through the system audio device.
type OtoGraph struct {
	dev        device
	ready      <-chan struct{}
	decoder    Decoder
	sampleRate int
	fftSize    int
	logger     *log.Logger

	mu        sync.Mutex
	suspended bool
}

// NewOtoGraph opens the audio device for 16-bit stereo output at cfg.SampleRate.
func NewOtoGraph(cfg shared.PlayerConfig, decoder Decoder, logger *log.Logger) (*OtoGraph, error) {
	rate := cfg.SampleRate
	if rate <= 0 {
		rate = 48000
	}

	ctx, ready, err := oto.NewContext(rate, channelCount, oto.FormatSignedInt16LE)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAudioUnavailable, err)
	}
	return newOtoGraph(otoDevice{ctx: ctx}, ready, decoder, rate, cfg.FFTSize, logger), nil
}

func newOtoGraph(dev device, ready <-chan struct{}, decoder Decoder, sampleRate, fftSize int, logger *log.Logger) *OtoGraph {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if fftSize <= 0 {
		fftSize = DefaultFFTSize
	}
	return &OtoGraph{
		dev:        dev,
		ready:      ready,
		decoder:    decoder,
		sampleRate: sampleRate,
		fftSize:    fftSize,
		logger:     logger,
	}
}

// Open starts decoding url in the background and returns its handle immediately.
func (g *OtoGraph) Open(url string) (Handle, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty audio url", shared.ErrInvalidInput)
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &otoHandle{
		graph:     g,
		url:       url,
		cancel:    cancel,
		ring:      newSampleRing(g.fftSize),
		listeners: map[int]func(Event){},
		bps:       float64(g.sampleRate * bytesPerFrame),
	}
	go h.load(ctx)
	return h, nil
}

// Suspended reports whether [OtoGraph.Suspend] was called without a matching resume.
func (g *OtoGraph) Suspended() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.suspended
}

// Suspend pauses the device for every handle.
func (g *OtoGraph) Suspend() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.dev.Suspend(); err != nil {
		return err
	}
	g.suspended = true
	return nil
}

// Resume restarts a suspended device.
func (g *OtoGraph) Resume() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.dev.Resume(); err != nil {
		return err
	}
	g.suspended = false
	return nil
}

// Close suspends the device. oto keeps one context per process, so it is never released.
func (g *OtoGraph) Close() error {
	return g.Suspend()
}

func (g *OtoGraph) waitReady() error {
	if g.ready == nil {
		return nil
	}
	select {
	case <-g.ready:
		return nil
	case <-time.After(readyTimeout):
		return fmt.Errorf("%w: audio device not ready", shared.ErrAudioUnavailable)
	}
}

// otoHandle is one decoded track.
//
// mu guards playback state and listeners; dataMu guards the PCM buffer and read offset, which oto reads from
// its own goroutine.
type otoHandle struct {
	graph  *OtoGraph
	url    string
	cancel context.CancelFunc
	ring   *sampleRing
	bps    float64

	mu           sync.Mutex
	out          output
	loaded       bool
	loadErr      error
	playing      bool
	wantPlay     bool
	closed       bool
	listeners    map[int]func(Event)
	nextListener int

	dataMu sync.Mutex
	pcm    []byte
	offset int
}

func (h *otoHandle) load(ctx context.Context) {
	pcm, err := h.graph.decoder.Decode(ctx, h.url)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	if err != nil {
		h.loadErr = err
		h.mu.Unlock()
		h.emit(Event{Kind: EventError, Duration: math.NaN(), Err: err})
		return
	}

	h.dataMu.Lock()
	h.pcm = pcm
	h.dataMu.Unlock()

	h.loaded = true
	h.out = h.graph.dev.NewPlayer(h)
	autoplay := h.wantPlay
	h.mu.Unlock()

	h.emit(Event{Kind: EventLoadedMetadata, Duration: h.Duration()})
	if autoplay {
		if err := h.Play(); err != nil {
			h.emit(Event{Kind: EventError, Err: err})
		}
	}
	go h.tick(ctx)
}

// tick reports progress while playing and detects the end of the track.
func (h *otoHandle) tick(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		h.mu.Lock()
		if !h.playing {
			h.mu.Unlock()
			continue
		}
		ended := h.drained() && !h.out.IsPlaying()
		if ended {
			h.playing = false
		}
		h.mu.Unlock()

		pos, dur := h.Position(), h.Duration()
		h.emit(Event{Kind: EventTimeUpdate, Position: pos, Duration: dur})
		if ended {
			h.emit(Event{Kind: EventEnded, Position: dur, Duration: dur})
		}
	}
}

func (h *otoHandle) drained() bool {
	h.dataMu.Lock()
	defer h.dataMu.Unlock()
	return h.offset >= len(h.pcm)
}

// Read feeds oto and the analyser ring.
func (h *otoHandle) Read(p []byte) (int, error) {
	h.dataMu.Lock()
	defer h.dataMu.Unlock()

	if h.offset >= len(h.pcm) {
		return 0, io.EOF
	}
	n := copy(p, h.pcm[h.offset:])
	h.offset += n
	h.ring.WritePCM(p[:n])
	return n, nil
}

// Play starts playback, or schedules it when the track is still loading.
func (h *otoHandle) Play() error {
	h.mu.Lock()
	switch {
	case h.closed:
		h.mu.Unlock()
		return errHandleClosed
	case h.loadErr != nil:
		h.mu.Unlock()
		return h.loadErr
	case !h.loaded:
		h.wantPlay = true
		h.mu.Unlock()
		return nil
	}
	h.mu.Unlock()

	if err := h.graph.waitReady(); err != nil {
		return err
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return errHandleClosed
	}
	if h.drained() {
		h.restart(0)
	}
	h.wantPlay = false
	h.playing = true
	h.out.Play()
	h.mu.Unlock()

	h.emit(Event{Kind: EventPlay, Position: h.Position(), Duration: h.Duration()})
	return nil
}

func (h *otoHandle) Pause() {
	h.mu.Lock()
	was := h.playing || h.wantPlay
	h.wantPlay = false
	h.playing = false
	if h.out != nil {
		h.out.Pause()
	}
	h.mu.Unlock()

	if was {
		h.emit(Event{Kind: EventPause, Position: h.Position(), Duration: h.Duration()})
	}
}

func (h *otoHandle) Paused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.playing && !h.wantPlay
}

func (h *otoHandle) Duration() float64 {
	h.dataMu.Lock()
	defer h.dataMu.Unlock()

	if h.pcm == nil {
		return math.NaN()
	}
	return float64(len(h.pcm)) / h.bps
}

// Position excludes audio queued in the device but not yet heard.
func (h *otoHandle) Position() float64 {
	h.mu.Lock()
	unplayed := 0
	if h.out != nil {
		unplayed = h.out.UnplayedBufferSize()
	}
	h.mu.Unlock()

	h.dataMu.Lock()
	defer h.dataMu.Unlock()
	return math.Max(float64(h.offset-unplayed), 0) / h.bps
}

func (h *otoHandle) SetPosition(seconds float64) {
	h.mu.Lock()
	if !h.loaded || h.closed {
		h.mu.Unlock()
		return
	}
	h.restart(int(seconds * h.bps))
	if h.playing {
		h.out.Play()
	}
	h.mu.Unlock()

	h.emit(Event{Kind: EventTimeUpdate, Position: h.Position(), Duration: h.Duration()})
}

// restart discards what oto has buffered and moves the read offset. The output is left paused.
//
// oto stops reading a source once it returned io.EOF until the player is reset. Callers hold mu.
func (h *otoHandle) restart(byteOffset int) {
	h.out.Reset()
	h.rewind(byteOffset)
}

// rewind moves the read offset to a frame boundary near byteOffset.
func (h *otoHandle) rewind(byteOffset int) {
	h.dataMu.Lock()
	defer h.dataMu.Unlock()

	byteOffset -= byteOffset % bytesPerFrame
	h.offset = min(max(byteOffset, 0), len(h.pcm))
	h.ring.Reset()
}

func (h *otoHandle) Subscribe(fn func(Event)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextListener
	h.nextListener++
	h.listeners[id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.listeners, id)
	}
}

func (h *otoHandle) emit(ev Event) {
	h.mu.Lock()
	fns := make([]func(Event), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (h *otoHandle) Tap() (Analyser, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, errHandleClosed
	}
	return newFFTAnalyser(h.ring, h.graph.fftSize, nil), nil
}

func (h *otoHandle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.playing = false
	h.wantPlay = false
	h.listeners = map[int]func(Event){}
	out := h.out
	h.out = nil
	h.mu.Unlock()

	h.cancel()
	if out != nil {
		return out.Close()
	}
	return nil
}
