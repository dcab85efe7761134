package cmd

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/zjrosen/breathe/catalog"
	"github.com/zjrosen/breathe/internal/audio"
	"github.com/zjrosen/breathe/internal/audio/command"
	"github.com/zjrosen/breathe/internal/breathing"
	"github.com/zjrosen/breathe/internal/config"
	"github.com/zjrosen/breathe/internal/exercises"
	"github.com/zjrosen/breathe/internal/infrastructure/sqlite"
	"github.com/zjrosen/breathe/internal/log"
	prefdomain "github.com/zjrosen/breathe/internal/preferences/domain"
	"github.com/zjrosen/breathe/internal/relaxation"
	"github.com/zjrosen/breathe/internal/sound"
	"github.com/zjrosen/breathe/internal/tracing"
)

// appHooks routes background events to the active front end.
type appHooks struct {
	OnChange  breathing.ChangeCallback
	OnWarning relaxation.WarningCallback
	OnReload  func()
	Mute      bool
}

// app is the wired set of services shared by the TUI and the headless runner.
type app struct {
	registry *exercises.Registry
	host     *relaxation.Host
	db       *sqlite.DB
	watcher  *exercises.Watcher
	shutdown tracing.ShutdownFunc
}

func newApp(ctx context.Context, c config.Config, hooks appHooks) (*app, error) {
	shutdown, err := tracing.Setup(ctx, c.Tracing, tracing.Options{})
	if err != nil {
		return nil, err
	}
	a := &app{shutdown: shutdown}

	a.registry, err = exercises.NewRegistry(catalog.ExercisesFS(), config.ExpandPath(c.Exercises.UserDir))
	if err != nil {
		a.Close()
		return nil, err
	}

	var prefs prefdomain.Repository
	if db, err := sqlite.NewDB(c.DatabasePath()); err != nil {
		log.ErrorErr(log.CatDB, "Preferences unavailable", err, "path", c.DatabasePath())
	} else {
		a.db = db
		prefs = db.Preferences()
	}

	a.host = relaxation.New(relaxation.Config{
		TickInterval:      c.Session.TickInterval,
		OnChange:          hooks.OnChange,
		Backend:           newBackend(c.Audio, hooks.Mute),
		DiagnosticsWindow: c.Audio.DiagnosticsWindow,
		Preferences:       prefs,
		DefaultExercise:   c.Session.DefaultExercise,
		DefaultVolume:     c.Audio.MasterVolume,
		AmbientAutostart:  c.Session.AmbientAutostart,
		OnWarning:         hooks.OnWarning,
	})
	a.host.LoadTracks(resolveTracks(c))

	if c.Exercises.Watch && hooks.OnReload != nil {
		a.startWatcher(ctx, hooks.OnReload)
	}
	return a, nil
}

func (a *app) startWatcher(ctx context.Context, onReload func()) {
	dir := a.registry.UserDir()
	if _, err := os.Stat(dir); err != nil {
		log.Debug(log.CatRegistry, "Not watching user exercises", "dir", dir)
		return
	}
	w, err := exercises.NewWatcher(a.registry, exercises.DefaultDebounce, onReload)
	if err != nil {
		log.ErrorErr(log.CatRegistry, "Failed to watch user exercises", err, "dir", dir)
		return
	}
	w.Start(ctx)
	a.watcher = w
}

// Close stops every service, flushing spans and preferences.
func (a *app) Close() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.host != nil {
		a.host.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.ErrorErr(log.CatDB, "Failed to close database", err)
		}
	}
	if a.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "Failed to flush traces", err)
		}
	}
}

// newBackend picks the audio backend for the configured player. Audio problems
// never stop a session, so failures fall back to silence.
func newBackend(c config.AudioConfig, mute bool) audio.Backend {
	if mute || !c.Enabled || c.Player == config.PlayerNone {
		return audio.SilentBackend{}
	}
	p, err := command.Detect(c.Player, exec.LookPath)
	if err != nil {
		if errors.Is(err, command.ErrNoPlayer) {
			log.Warn(log.CatAudio, "No audio player found, ambient tracks are silent")
		} else {
			log.ErrorErr(log.CatAudio, "Audio player unavailable", err, "player", c.Player)
		}
		return audio.SilentBackend{}
	}
	log.Info(log.CatAudio, "Using audio player", "player", p.Name)
	return command.New(p)
}

// resolveTracks maps configured sources to playable paths, skipping tracks
// whose built-in sound does not exist.
func resolveTracks(c config.Config) []relaxation.Track {
	tracks := make([]relaxation.Track, 0, len(c.Audio.Tracks))
	for _, t := range c.Audio.Tracks {
		src, err := sound.Resolve(t.Source, c.SoundsDir())
		if err != nil {
			log.ErrorErr(log.CatAudio, "Skipping track", err, "id", t.ID, "source", t.Source)
			continue
		}
		tracks = append(tracks, relaxation.Track{ID: t.ID, Source: config.ExpandPath(src)})
	}
	return tracks
}
