// Package config provides configuration types and defaults for breathe.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Player names accepted by audio.player.
const (
	PlayerAuto   = "auto"
	PlayerFFPlay = "ffplay"
	PlayerAFPlay = "afplay"
	PlayerPAPlay = "paplay"
	PlayerNone   = "none"
)

// Tracing exporters accepted by tracing.exporter.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// Config holds all configuration options for breathe.
type Config struct {
	DataDir   string          `mapstructure:"data_dir"`
	Log       LogConfig       `mapstructure:"log"`
	Session   SessionConfig   `mapstructure:"session"`
	Audio     AudioConfig     `mapstructure:"audio"`
	Exercises ExercisesConfig `mapstructure:"exercises"`
	UI        UIConfig        `mapstructure:"ui"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

// LogConfig controls the log file. An empty File logs to data_dir/breathe.log.
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// SessionConfig holds breathing session options.
type SessionConfig struct {
	TickInterval     time.Duration `mapstructure:"tick_interval"`
	DefaultExercise  string        `mapstructure:"default_exercise"`
	AmbientAutostart bool          `mapstructure:"ambient_autostart"`
}

// TrackConfig names one ambient audio channel.
type TrackConfig struct {
	ID string `mapstructure:"id"`
	// Source is either "builtin:<name>" or a file path / URL understood by the player.
	Source string `mapstructure:"source"`
}

// AudioConfig holds ambient audio options.
type AudioConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	Player            string        `mapstructure:"player"`
	MasterVolume      int           `mapstructure:"master_volume"`
	DiagnosticsWindow time.Duration `mapstructure:"diagnostics_window"`
	Tracks            []TrackConfig `mapstructure:"tracks"`
}

// ExercisesConfig controls user-defined exercises.
type ExercisesConfig struct {
	UserDir string `mapstructure:"user_dir"`
	Watch   bool   `mapstructure:"watch"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowBenefits   bool `mapstructure:"show_benefits"`
	RenderMarkdown bool `mapstructure:"render_markdown"`
}

// TracingConfig selects an OpenTelemetry exporter.
type TracingConfig struct {
	Exporter string `mapstructure:"exporter"`
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

// DefaultTracks returns the built-in ambient beds.
func DefaultTracks() []TrackConfig {
	return []TrackConfig{
		{ID: "rain", Source: "builtin:rain"},
		{ID: "ocean", Source: "builtin:ocean"},
		{ID: "forest", Source: "builtin:forest"},
	}
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		DataDir: "~/.local/share/breathe",
		Log: LogConfig{
			Level: "info",
		},
		Session: SessionConfig{
			TickInterval:     time.Second,
			DefaultExercise:  "4-7-8",
			AmbientAutostart: true,
		},
		Audio: AudioConfig{
			Enabled:           true,
			Player:            PlayerAuto,
			MasterVolume:      60,
			DiagnosticsWindow: 30 * time.Second,
			Tracks:            DefaultTracks(),
		},
		Exercises: ExercisesConfig{
			UserDir: "~/.config/breathe/exercises",
			Watch:   true,
		},
		UI: UIConfig{
			ShowBenefits:   true,
			RenderMarkdown: true,
		},
		Tracing: TracingConfig{
			Exporter: ExporterNone,
			Endpoint: "localhost:4317",
			Insecure: true,
		},
	}
}

// SetDefaults registers every default with v so environment variables can
// override keys that are absent from the config file.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("session.tick_interval", d.Session.TickInterval)
	v.SetDefault("session.default_exercise", d.Session.DefaultExercise)
	v.SetDefault("session.ambient_autostart", d.Session.AmbientAutostart)
	v.SetDefault("audio.enabled", d.Audio.Enabled)
	v.SetDefault("audio.player", d.Audio.Player)
	v.SetDefault("audio.master_volume", d.Audio.MasterVolume)
	v.SetDefault("audio.diagnostics_window", d.Audio.DiagnosticsWindow)
	v.SetDefault("audio.tracks", []map[string]string{
		{"id": "rain", "source": "builtin:rain"},
		{"id": "ocean", "source": "builtin:ocean"},
		{"id": "forest", "source": "builtin:forest"},
	})
	v.SetDefault("exercises.user_dir", d.Exercises.UserDir)
	v.SetDefault("exercises.watch", d.Exercises.Watch)
	v.SetDefault("ui.show_benefits", d.UI.ShowBenefits)
	v.SetDefault("ui.render_markdown", d.UI.RenderMarkdown)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("tracing.insecure", d.Tracing.Insecure)
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.Session.TickInterval <= 0 {
		return fmt.Errorf("session.tick_interval must be positive, got %s", c.Session.TickInterval)
	}
	if c.Audio.MasterVolume < 0 || c.Audio.MasterVolume > 100 {
		return fmt.Errorf("audio.master_volume must be between 0 and 100, got %d", c.Audio.MasterVolume)
	}
	switch c.Audio.Player {
	case "", PlayerAuto, PlayerFFPlay, PlayerAFPlay, PlayerPAPlay, PlayerNone:
	default:
		return fmt.Errorf("audio.player: unknown player %q", c.Audio.Player)
	}
	seen := make(map[string]bool, len(c.Audio.Tracks))
	for i, t := range c.Audio.Tracks {
		if t.ID == "" {
			return fmt.Errorf("audio.tracks[%d]: id is required", i)
		}
		if t.Source == "" {
			return fmt.Errorf("audio.tracks[%d] (%s): source is required", i, t.ID)
		}
		if seen[t.ID] {
			return fmt.Errorf("audio.tracks[%d]: duplicate id %q", i, t.ID)
		}
		seen[t.ID] = true
	}
	switch c.Tracing.Exporter {
	case "", ExporterNone, ExporterStdout, ExporterOTLP:
	default:
		return fmt.Errorf("tracing.exporter: unknown exporter %q", c.Tracing.Exporter)
	}
	return nil
}

// ResolvedDataDir returns the expanded data directory.
func (c Config) ResolvedDataDir() string {
	dir := c.DataDir
	if dir == "" {
		dir = Defaults().DataDir
	}
	return ExpandPath(dir)
}

// ResolvedLogFile returns the expanded log file path.
func (c Config) ResolvedLogFile() string {
	if c.Log.File != "" {
		return ExpandPath(c.Log.File)
	}
	return filepath.Join(c.ResolvedDataDir(), "breathe.log")
}

// DatabasePath returns the path of the preferences database.
func (c Config) DatabasePath() string {
	return filepath.Join(c.ResolvedDataDir(), "breathe.db")
}

// SoundsDir returns the directory built-in tracks are extracted to.
func (c Config) SoundsDir() string {
	return filepath.Join(c.ResolvedDataDir(), "sounds")
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// DefaultConfigPath returns ~/.config/breathe/config.yaml.
func DefaultConfigPath() string {
	return ExpandPath("~/.config/breathe/config.yaml")
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Breathe Configuration

# Where preferences, logs and extracted sounds are kept
data_dir: ~/.local/share/breathe

log:
  # file: ~/.local/share/breathe/breathe.log
  level: info   # debug, info, warn, error

session:
  tick_interval: 1s
  default_exercise: "4-7-8"   # run 'breathe exercises' to see ids
  ambient_autostart: true     # start ambient tracks with each session

audio:
  enabled: true
  # Player used for ambient tracks:
  #   auto    - first of ffplay, afplay, paplay found on PATH
  #   ffplay  - ffmpeg's player
  #   afplay  - macOS
  #   paplay  - PulseAudio
  #   none    - silent
  player: auto
  master_volume: 60           # 0-100
  diagnostics_window: 30s     # repeat playback errors are logged once per window
  tracks:
    - id: rain
      source: "builtin:rain"
    - id: ocean
      source: "builtin:ocean"
    - id: forest
      source: "builtin:forest"
  # Tracks may also point at files:
  #   - id: bowls
  #     source: ~/Music/singing-bowls.mp3

exercises:
  # YAML files in this directory add to (or override) the built-in exercises
  user_dir: ~/.config/breathe/exercises
  watch: true   # reload when files change

ui:
  show_benefits: true
  render_markdown: true

tracing:
  exporter: none   # none, stdout, otlp
  endpoint: localhost:4317
  insecure: true
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
