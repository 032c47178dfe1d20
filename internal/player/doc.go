// Package player owns the one active track of the UI.
//
// # Ports
//
// Playback is reached through three small interfaces so the [Manager] can be tested without a sound card:
//   - [AudioGraph] : opens tracks and owns the output device
//   - [Handle] : one loaded track, with play/pause/seek and an event subscription
//   - [Analyser] : frequency magnitudes of what is playing
//
// [OtoGraph] implements them on top of github.com/hajimehoshi/oto/v2, decoding tracks with an ffmpeg
// [Decoder] and analysing output with [FFTAnalyser]. [NullGraph] stands in when no device is available.
//
// # Sessions
//
// Every [Manager.Show] opens a new [Session] with an increasing ID. The previous session is closed first:
// its listener is removed, its analyser disconnected and its handle closed. Events carry the session ID
// and [Manager.HandleEvent] ignores those of released sessions.
//
// # Visualization
//
// [Manager.Frame] renders the spectrum with [RenderBars] while playing and [IdlePanel] otherwise.
package player
