package audio

// Track is a backend playback resource bound to one source.
// Implementations must not block: Play starts playback in the background.
type Track interface {
	// Play starts looping playback at gain (0.0–1.0). If playback cannot
	// start, or later stops with an error, onError is invoked at most once
	// for this Play call, possibly from another goroutine.
	Play(gain float64, onError func(error))

	// Pause stops playback. Pausing a paused track is a no-op.
	Pause()

	// SetGain changes the playback gain.
	SetGain(gain float64)

	// Close releases the track. It is not used after Close.
	Close()
}

// Backend opens tracks for source addresses (file paths or URLs).
type Backend interface {
	Open(source string) Track
}

// SilentBackend produces tracks that accept every operation and play nothing.
// It is used when ambient sound is disabled or no player is available.
type SilentBackend struct{}

// Open implements Backend.
func (SilentBackend) Open(string) Track { return silentTrack{} }

type silentTrack struct{}

func (silentTrack) Play(float64, func(error)) {}
func (silentTrack) Pause()                    {}
func (silentTrack) SetGain(float64)           {}
func (silentTrack) Close()                    {}
