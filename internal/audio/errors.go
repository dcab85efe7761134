package audio

import "fmt"

// PlaybackError reports that a channel could not play. It is non-fatal:
// the manager reverts the channel to paused and hands the error to the
// diagnostics callback instead of returning it.
type PlaybackError struct {
	ChannelID string
	Source    string
	Err       error
}

// Error implements the error interface.
func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playback failed for channel %q (%s): %v", e.ChannelID, e.Source, e.Err)
}

// Unwrap returns the backend error.
func (e *PlaybackError) Unwrap() error {
	return e.Err
}
