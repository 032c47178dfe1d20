package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Backend request errors
	ErrAPIRequest     = fmt.Errorf("API request failed")
	ErrHTTPStatus     = fmt.Errorf("unexpected HTTP status")
	ErrDecodeResponse = fmt.Errorf("malformed response body")
	ErrGeneration     = fmt.Errorf("generation failed")

	// Playback errors
	ErrPlayback         = fmt.Errorf("playback failed")
	ErrNoTrack          = fmt.Errorf("no track loaded")
	ErrAudioUnavailable = fmt.Errorf("audio output unavailable")

	// Storage errors
	ErrCorruptData = fmt.Errorf("stored data is corrupt")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
