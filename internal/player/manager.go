package player

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
	"golang.org/x/time/rate"
)

// Manager owns the current track and its playback [Session].
//
// notify receives every event of the current session and must not call back into the Manager synchronously;
// the UI forwards events to its own loop and hands them to [Manager.HandleEvent].
type Manager struct {
	mu      sync.Mutex
	graph   AudioGraph
	notify  func(Event)
	logger  *log.Logger
	nextID  uint64
	session *Session
	track   *models.Track

	progressLog rate.Sometimes
}

// NewManager creates a Manager that plays through graph.
func NewManager(graph AudioGraph, notify func(Event), logger *log.Logger) *Manager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if notify == nil {
		notify = func(Event) {}
	}
	return &Manager{
		graph:       graph,
		notify:      notify,
		logger:      logger,
		progressLog: rate.Sometimes{Interval: 5 * time.Second},
	}
}

// Show releases the current session and loads track in a new one.
//
// The player stays hidden when the track cannot be opened.
func (m *Manager) Show(track models.Track) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNoTrack, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.release()

	h, err := m.graph.Open(track.AudioURL)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", shared.ErrPlayback, track.AudioURL, err)
	}

	m.nextID++
	m.session = newSession(m.nextID, h, m.notify)
	m.track = &track

	m.logger.Debug("track loaded", "session", m.nextID, "url", track.AudioURL)
	return nil
}

// Hide releases the current session.
func (m *Manager) Hide() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

func (m *Manager) release() {
	if m.session == nil {
		return
	}
	if err := m.session.Close(); err != nil {
		m.logger.Warn("failed to close session", "session", m.session.ID, "err", err)
	}
	m.logger.Debug("session released", "session", m.session.ID)
	m.session = nil
	m.track = nil
}

// TogglePlayPause pauses a playing track or starts a paused one.
//
// Starting resumes a suspended graph first and attaches the analyser once per session. Errors leave the
// state as reported by the handle. The lock is not held while the handle starts, which may wait for the
// audio device; a session replaced in the meantime is left alone.
func (m *Manager) TogglePlayPause() error {
	m.mu.Lock()
	s := m.session
	if s == nil {
		m.mu.Unlock()
		return shared.ErrNoTrack
	}
	if !s.handle.Paused() {
		s.handle.Pause()
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	if m.graph.Suspended() {
		if err := m.graph.Resume(); err != nil {
			return m.playbackFailed(s, err)
		}
	}

	if err := s.handle.Play(); err != nil {
		return m.playbackFailed(s, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != s {
		m.logger.Debug("session replaced while starting", "session", s.ID)
		return nil
	}
	if err := s.attachAnalyser(); err != nil {
		m.logger.Warn("spectrum unavailable", "session", s.ID, "err", err)
	}
	return nil
}

func (m *Manager) playbackFailed(s *Session, err error) error {
	paused := s.handle.Paused()
	m.logger.Error("playback failed", "session", s.ID, "paused", paused, "err", err)
	return fmt.Errorf("%w: %w", shared.ErrPlayback, err)
}

// Seek moves playback to seconds. It does nothing and returns false while the duration is unknown.
//
// Positions outside the track are clamped to its bounds.
func (m *Manager) Seek(seconds float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil || math.IsNaN(seconds) {
		return false
	}

	d := m.session.handle.Duration()
	if math.IsNaN(d) {
		return false
	}

	m.session.handle.SetPosition(math.Min(math.Max(seconds, 0), d))
	return true
}

// SeekBy moves playback by delta seconds from the current position.
func (m *Manager) SeekBy(delta float64) bool {
	m.mu.Lock()
	var pos float64
	if m.session != nil {
		pos = m.session.handle.Position()
	}
	m.mu.Unlock()
	return m.Seek(pos + delta)
}

// HandleEvent reports whether ev belongs to the current session. Events of released sessions are ignored.
func (m *Manager) HandleEvent(ev Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil || ev.Session != m.session.ID {
		m.logger.Debug("ignoring stale player event", "session", ev.Session, "kind", ev.Kind)
		return false
	}

	switch ev.Kind {
	case EventTimeUpdate:
		m.progressLog.Do(func() {
			m.logger.Debug("progress", "session", ev.Session, "position", ev.Position, "duration", ev.Duration)
		})
	case EventError:
		m.logger.Error("player error", "session", ev.Session, "err", ev.Err)
	default:
		m.logger.Debug("player event", "session", ev.Session, "kind", ev.Kind)
	}
	return true
}

// State derives the current state from the active handle.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return State{
			Duration: math.NaN(),
			Genre:    models.Placeholder,
			Mood:     models.Placeholder,
			Tempo:    models.Placeholder,
		}
	}

	h := m.session.handle
	playing := !h.Paused()
	return State{
		Visible:  true,
		Playing:  playing,
		Analysed: playing && m.session.analyser != nil,
		Position: h.Position(),
		Duration: h.Duration(),
		Genre:    m.track.Genre(),
		Mood:     m.track.Mood(),
		Tempo:    m.track.Tempo(),
	}
}

// Track returns the current track.
func (m *Manager) Track() (models.Track, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.track == nil {
		return models.Track{}, false
	}
	return *m.track, true
}

// Frame renders the visualizer: live bars while playing with an analyser, the idle panel otherwise.
func (m *Manager) Frame(width, height int) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil || m.session.analyser == nil || m.session.handle.Paused() {
		return IdlePanel(width, height)
	}

	a := m.session.analyser
	data := make([]byte, a.FrequencyBinCount())
	a.ByteFrequencyData(data)
	return RenderBars(data, width, height)
}

// Close releases the current session and the graph.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.release()
	return m.graph.Close()
}
