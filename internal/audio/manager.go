// Package audio manages ambient sound channels: named, looping playback
// slots that can be loaded, played, paused, mixed, and torn down.
//
// Channel operations never return errors. Unknown channel ids are no-ops and
// playback failures are reported through a diagnostics callback.
package audio

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/breathe/internal/log"
)

// DefaultDiagnosticsWindow is how long an identical playback failure on the
// same channel is kept out of the warning log after it was first logged.
// Every failure still reaches the error callback.
const DefaultDiagnosticsWindow = 30 * time.Second

// ErrorCallback receives non-fatal playback failures.
type ErrorCallback func(*PlaybackError)

// Config configures a Manager.
type Config struct {
	// Backend defaults to SilentBackend.
	Backend Backend

	// OnPlaybackError is optional.
	OnPlaybackError ErrorCallback

	// DiagnosticsWindow defaults to DefaultDiagnosticsWindow. A negative
	// value logs every failure at warn level.
	DiagnosticsWindow time.Duration

	// Tracer defaults to the global otel tracer.
	Tracer trace.Tracer
}

// ChannelState is a snapshot of one channel for rendering.
type ChannelState struct {
	ID      string
	Source  string
	Loaded  bool
	Loop    bool
	Volume  float64 // normalized gain, 0.0–1.0
	Playing bool
}

// Percent returns the volume as an integer percentage.
func (s ChannelState) Percent() int {
	return int(s.Volume*100 + 0.5)
}

type channel struct {
	id      string
	source  string
	track   Track
	gain    float64
	playing bool
	playGen uint64
}

func (c *channel) state() ChannelState {
	return ChannelState{
		ID:      c.id,
		Source:  c.source,
		Loaded:  true,
		Loop:    true,
		Volume:  c.gain,
		Playing: c.playing,
	}
}

// Manager owns a registry of ambient channels.
type Manager struct {
	backend Backend
	onError ErrorCallback
	tracer  trace.Tracer

	reported *cache.Cache

	mu       sync.Mutex
	channels map[string]*channel
	order    []string
}

// NewManager creates a Manager with no channels.
func NewManager(cfg Config) *Manager {
	backend := cfg.Backend
	if backend == nil {
		backend = SilentBackend{}
	}
	window := cfg.DiagnosticsWindow
	if window == 0 {
		window = DefaultDiagnosticsWindow
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer("github.com/zjrosen/breathe/internal/audio")
	}

	var reported *cache.Cache
	if window > 0 {
		reported = cache.New(window, 2*window)
	}

	return &Manager{
		backend:  backend,
		onError:  cfg.OnPlaybackError,
		tracer:   tracer,
		reported: reported,
		channels: make(map[string]*channel),
	}
}

// Load creates a looping, paused channel at full volume bound to source.
// Loading an id that already exists leaves the existing channel untouched.
func (m *Manager) Load(id, source string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.channels[id]; ok {
		return
	}

	m.channels[id] = &channel{
		id:     id,
		source: source,
		track:  m.backend.Open(source),
		gain:   1.0,
	}
	m.order = append(m.order, id)
	log.Debug(log.CatAudio, "Channel loaded", "id", id, "source", source)
}

// Play starts playback on the channel. Unknown ids are ignored.
// Failures surface later through the diagnostics callback.
func (m *Manager) Play(id string) {
	_, span := m.tracer.Start(context.Background(), "audio.play",
		trace.WithAttributes(attribute.String("channel.id", id)))
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.channels[id]
	if !ok {
		span.SetAttributes(attribute.Bool("channel.known", false))
		return
	}
	if ch.playing {
		return
	}

	ch.playGen++
	gen := ch.playGen
	ch.playing = true
	ch.track.Play(ch.gain, func(err error) {
		log.SafeGo("audio.playbackFailed", func() {
			m.playbackFailed(id, gen, err)
		})
	})
	log.Debug(log.CatAudio, "Channel playing", "id", id, "gain", ch.gain)
}

// Pause stops playback on the channel. Unknown ids are ignored.
func (m *Manager) Pause(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ch, ok := m.channels[id]; ok {
		m.pauseLocked(ch)
	}
}

// SetVolume sets the channel's gain to level/100. level is clamped to 0–100.
// Unknown ids are ignored.
func (m *Manager) SetVolume(id string, level int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ch, ok := m.channels[id]; ok {
		m.setGainLocked(ch, Normalize(level))
	}
}

// PauseAll pauses every loaded channel.
func (m *Manager) PauseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.order {
		m.pauseLocked(m.channels[id])
	}
}

// SetVolumeAll applies SetVolume to every loaded channel.
func (m *Manager) SetVolumeAll(level int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	gain := Normalize(level)
	for _, id := range m.order {
		m.setGainLocked(m.channels[id], gain)
	}
}

// Cleanup pauses and releases every channel and empties the registry.
// Afterwards the manager behaves as if Load had never been called.
func (m *Manager) Cleanup() {
	_, span := m.tracer.Start(context.Background(), "audio.cleanup")
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	span.SetAttributes(attribute.Int("channel.count", len(m.order)))
	for _, id := range m.order {
		ch := m.channels[id]
		m.pauseLocked(ch)
		ch.track.Close()
	}
	m.channels = make(map[string]*channel)
	m.order = nil
	if m.reported != nil {
		m.reported.Flush()
	}
	log.Debug(log.CatAudio, "Channels cleaned up")
}

// Channel returns a snapshot of the channel, or false if it is not loaded.
func (m *Manager) Channel(id string) (ChannelState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.channels[id]
	if !ok {
		return ChannelState{}, false
	}
	return ch.state(), true
}

// Channels returns snapshots of every loaded channel in load order.
func (m *Manager) Channels() []ChannelState {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ChannelState, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.channels[id].state())
	}
	return out
}

// Normalize converts a 0–100 volume level to a gain in [0.0, 1.0].
func Normalize(level int) float64 {
	level = min(max(level, 0), 100)
	return float64(level) / 100
}

// pauseLocked must be called with mu held.
func (m *Manager) pauseLocked(ch *channel) {
	ch.playGen++
	if !ch.playing {
		return
	}
	ch.track.Pause()
	ch.playing = false
}

// setGainLocked must be called with mu held.
func (m *Manager) setGainLocked(ch *channel, gain float64) {
	ch.gain = gain
	ch.track.SetGain(gain)
}

// playbackFailed handles an asynchronous failure from the backend.
// Failures from a superseded Play (paused, replayed, or cleaned up since)
// are logged and otherwise ignored.
func (m *Manager) playbackFailed(id string, gen uint64, err error) {
	m.mu.Lock()
	ch, ok := m.channels[id]
	if !ok || ch.playGen != gen {
		m.mu.Unlock()
		log.Debug(log.CatAudio, "Ignoring stale playback failure", "id", id, "error", err)
		return
	}
	ch.playing = false
	perr := &PlaybackError{ChannelID: id, Source: ch.source, Err: err}
	m.mu.Unlock()

	if m.firstReport(id, err) {
		log.Warn(log.CatAudio, "Ambient playback failed", "id", id, "source", perr.Source, "error", err.Error())
	} else {
		log.Debug(log.CatAudio, "Ambient playback failed again", "id", id, "error", err.Error())
	}
	if m.onError != nil {
		m.onError(perr)
	}
}

// firstReport reports whether err on id has not been logged within the
// diagnostics window.
func (m *Manager) firstReport(id string, err error) bool {
	if m.reported == nil {
		return true
	}
	return m.reported.Add(id+"\x00"+err.Error(), struct{}{}, cache.DefaultExpiration) == nil
}
