package player

import "math"

// EventKind identifies a playback event.
type EventKind int

const (
	EventLoadedMetadata EventKind = iota
	EventTimeUpdate
	EventPlay
	EventPause
	EventEnded
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventLoadedMetadata:
		return "loadedmetadata"
	case EventTimeUpdate:
		return "timeupdate"
	case EventPlay:
		return "play"
	case EventPause:
		return "pause"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is emitted by a [Handle]. Session is stamped by the [Manager] so that events from released
// sessions can be told apart.
type Event struct {
	Session  uint64
	Kind     EventKind
	Position float64
	Duration float64
	Err      error
}

// AudioGraph opens playable handles and owns the shared output device.
type AudioGraph interface {
	// Open prepares url for playback. Loading may finish asynchronously; an [EventLoadedMetadata] follows.
	Open(url string) (Handle, error)

	// Suspended reports whether output is suspended and must be resumed before playing.
	Suspended() bool

	// Resume restarts a suspended output.
	Resume() error

	// Close releases the output device.
	Close() error
}

// Handle is one loaded track.
type Handle interface {
	Play() error
	Pause()
	Paused() bool

	// Duration is in seconds; NaN while unknown.
	Duration() float64
	Position() float64
	SetPosition(seconds float64)

	// Subscribe registers fn for every event of this handle and returns a function that removes it.
	Subscribe(fn func(Event)) (unsubscribe func())

	// Tap connects an analyser to the handle's output.
	Tap() (Analyser, error)

	Close() error
}

// Analyser exposes the frequency content of what is currently playing.
type Analyser interface {
	FrequencyBinCount() int

	// ByteFrequencyData fills dst with magnitudes scaled to 0..255.
	ByteFrequencyData(dst []byte)

	Disconnect()
}

// State is derived from the active handle each time it is requested.
type State struct {
	Visible  bool
	Playing  bool
	Analysed bool
	Position float64
	Duration float64
	Genre    string
	Mood     string
	Tempo    string
}

// PlayLabel is the label of the play/pause control.
func (s State) PlayLabel() string {
	if s.Playing {
		return "Pause"
	}
	return "Play"
}

// Progress is the playback position as a fraction of the duration, or 0 when unknown.
func (s State) Progress() float64 {
	if math.IsNaN(s.Duration) || s.Duration <= 0 {
		return 0
	}
	return math.Min(math.Max(s.Position/s.Duration, 0), 1)
}
