// Package relaxation composes a breathing Controller and an ambient audio
// Manager into the single session object the UI and CLI drive.
package relaxation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/zjrosen/breathe/internal/audio"
	"github.com/zjrosen/breathe/internal/breathing"
	exdomain "github.com/zjrosen/breathe/internal/breathing/domain"
	"github.com/zjrosen/breathe/internal/log"
	prefdomain "github.com/zjrosen/breathe/internal/preferences/domain"
)

// VolumeStep is the change applied by one volume key press.
const VolumeStep = 10

// Track is one ambient channel to load.
type Track struct {
	ID     string
	Source string
}

// WarningCallback receives soft failures such as a track that cannot play.
type WarningCallback func(error)

// Config configures a Host.
type Config struct {
	TickInterval time.Duration
	Scheduler    breathing.Scheduler
	OnChange     breathing.ChangeCallback

	Backend           audio.Backend
	DiagnosticsWindow time.Duration

	// Preferences is optional; without it nothing is remembered.
	Preferences prefdomain.Repository

	DefaultExercise  string
	DefaultVolume    int
	AmbientAutostart bool

	OnWarning WarningCallback
}

// Host owns one breathing session and its ambient soundscape.
type Host struct {
	controller *breathing.Controller
	manager    *audio.Manager
	repo       prefdomain.Repository
	onWarning  WarningCallback

	mu        sync.Mutex
	prefs     prefdomain.Preferences
	ambientOn bool
	closed    bool
}

// New creates a Host and restores saved preferences when available.
func New(cfg Config) *Host {
	h := &Host{
		repo:      cfg.Preferences,
		onWarning: cfg.OnWarning,
		ambientOn: cfg.AmbientAutostart,
		prefs:     prefdomain.New(cfg.DefaultExercise, cfg.DefaultVolume),
	}

	h.controller = breathing.New(breathing.Config{
		TickInterval: cfg.TickInterval,
		Scheduler:    cfg.Scheduler,
		OnChange:     cfg.OnChange,
	})
	h.manager = audio.NewManager(audio.Config{
		Backend:           cfg.Backend,
		DiagnosticsWindow: cfg.DiagnosticsWindow,
		OnPlaybackError:   func(e *audio.PlaybackError) { h.warn(e) },
	})

	if h.repo != nil {
		saved, err := h.repo.Get()
		var notFound *prefdomain.PreferencesNotFoundError
		switch {
		case err == nil:
			if saved.LastExercise == "" {
				saved.LastExercise = cfg.DefaultExercise
			}
			if saved.Channels == nil {
				saved.Channels = map[string]bool{}
			}
			h.prefs = saved
			log.Debug(log.CatSession, "Restored preferences",
				"exercise", saved.LastExercise, "volume", saved.MasterVolume)
		case errors.As(err, &notFound):
		default:
			log.ErrorErr(log.CatDB, "Failed to load preferences", err)
		}
	}
	return h
}

// LoadTracks registers each track with the audio manager at the master volume.
func (h *Host) LoadTracks(tracks []Track) {
	h.mu.Lock()
	volume := h.prefs.MasterVolume
	h.mu.Unlock()

	for _, t := range tracks {
		h.manager.Load(t.ID, t.Source)
		h.manager.SetVolume(t.ID, volume)
	}
}

// Begin starts ex and, when ambient sound is on, plays every enabled channel.
func (h *Host) Begin(ctx context.Context, ex *exdomain.Exercise) error {
	if err := h.controller.Start(ctx, ex); err != nil {
		return err
	}

	h.mu.Lock()
	h.prefs.LastExercise = ex.ID
	ambient := h.ambientOn
	prefs := h.prefs
	h.mu.Unlock()

	if ambient {
		h.playEnabled(prefs)
	}
	h.save(prefs)
	return nil
}

// End stops the breathing session and silences every channel.
func (h *Host) End() {
	h.controller.Stop()
	h.manager.PauseAll()
}

// ToggleAmbient switches ambient sound on or off and reports the new setting.
func (h *Host) ToggleAmbient() bool {
	h.mu.Lock()
	h.ambientOn = !h.ambientOn
	on := h.ambientOn
	prefs := h.prefs
	h.mu.Unlock()

	if on {
		h.playEnabled(prefs)
	} else {
		h.manager.PauseAll()
	}
	log.Debug(log.CatAudio, "Ambient toggled", "on", on)
	return on
}

// ToggleChannel flips whether id plays with sessions and reports the new
// setting. Unknown channels are ignored and report false.
func (h *Host) ToggleChannel(id string) bool {
	state, ok := h.manager.Channel(id)
	if !ok {
		return false
	}

	h.mu.Lock()
	enabled := !h.prefs.ChannelEnabled(id)
	h.prefs = h.prefs.WithChannel(id, enabled)
	ambient := h.ambientOn
	prefs := h.prefs
	h.mu.Unlock()

	switch {
	case !enabled:
		h.manager.Pause(id)
	case ambient && !state.Playing:
		h.manager.Play(id)
	}
	h.save(prefs)
	return enabled
}

// AdjustVolume changes the master volume by delta percent, clamped to
// 0..100, applies it to every channel and returns the new level.
func (h *Host) AdjustVolume(delta int) int {
	h.mu.Lock()
	h.prefs = h.prefs.WithVolume(h.prefs.MasterVolume + delta)
	prefs := h.prefs
	h.mu.Unlock()

	h.manager.SetVolumeAll(prefs.MasterVolume)
	h.save(prefs)
	return prefs.MasterVolume
}

// Close ends the session, releases every channel and persists preferences.
// Subsequent calls are no-ops.
func (h *Host) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	prefs := h.prefs
	h.mu.Unlock()

	h.controller.Stop()
	h.manager.Cleanup()
	h.save(prefs)
}

// State returns the current breathing state.
func (h *Host) State() breathing.State {
	return h.controller.State()
}

// Channels returns every loaded channel in load order.
func (h *Host) Channels() []audio.ChannelState {
	return h.manager.Channels()
}

// ChannelEnabled reports whether id plays with sessions.
func (h *Host) ChannelEnabled(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.prefs.ChannelEnabled(id)
}

// AmbientOn reports whether ambient sound is switched on.
func (h *Host) AmbientOn() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ambientOn
}

// Volume returns the master volume percentage.
func (h *Host) Volume() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.prefs.MasterVolume
}

// LastExercise returns the most recently started (or restored) exercise id.
func (h *Host) LastExercise() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.prefs.LastExercise
}

func (h *Host) playEnabled(prefs prefdomain.Preferences) {
	for _, ch := range h.manager.Channels() {
		if prefs.ChannelEnabled(ch.ID) {
			h.manager.Play(ch.ID)
		}
	}
}

func (h *Host) save(prefs prefdomain.Preferences) {
	if h.repo == nil {
		return
	}
	if err := h.repo.Save(prefs); err != nil {
		log.ErrorErr(log.CatDB, "Failed to save preferences", err)
	}
}

func (h *Host) warn(err error) {
	if h.onWarning != nil {
		h.onWarning(err)
	}
}
