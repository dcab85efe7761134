package domain

import (
	"sort"
	"time"
)

// Preferences are the settings remembered across runs.
type Preferences struct {
	LastExercise string
	MasterVolume int
	// Channels maps an ambient channel id to whether it plays with a session.
	Channels  map[string]bool
	UpdatedAt time.Time
}

// New returns preferences with every channel enabled.
func New(lastExercise string, masterVolume int) Preferences {
	return Preferences{
		LastExercise: lastExercise,
		MasterVolume: clampVolume(masterVolume),
		Channels:     map[string]bool{},
	}
}

// ChannelEnabled reports whether id should play. Channels without a stored
// preference are enabled.
func (p Preferences) ChannelEnabled(id string) bool {
	enabled, ok := p.Channels[id]
	return !ok || enabled
}

// WithChannel returns a copy of p with id set to enabled.
func (p Preferences) WithChannel(id string, enabled bool) Preferences {
	channels := make(map[string]bool, len(p.Channels)+1)
	for k, v := range p.Channels {
		channels[k] = v
	}
	channels[id] = enabled
	p.Channels = channels
	return p
}

// WithVolume returns a copy of p with the master volume clamped to 0..100.
func (p Preferences) WithVolume(level int) Preferences {
	p.MasterVolume = clampVolume(level)
	return p
}

// ChannelIDs returns the ids with a stored preference, sorted.
func (p Preferences) ChannelIDs() []string {
	ids := make([]string, 0, len(p.Channels))
	for id := range p.Channels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func clampVolume(level int) int {
	return max(0, min(100, level))
}

// Repository persists Preferences.
type Repository interface {
	// Get returns the stored preferences, or *PreferencesNotFoundError
	// before the first Save.
	Get() (Preferences, error)
	// Save replaces the stored preferences.
	Save(p Preferences) error
}
