// Package command plays ambient tracks through OS-native audio commands
// (ffplay, afplay, paplay). Each playing track owns one child process;
// looping is done by restarting the process when it exits cleanly.
package command

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/zjrosen/breathe/internal/audio"
	"github.com/zjrosen/breathe/internal/log"
)

// minRunTime is the shortest clean run that is restarted as a loop.
// Faster clean exits mean the player cannot actually decode the source.
const minRunTime = 100 * time.Millisecond

// ErrNoPlayer is returned by Detect when no supported player is installed.
var ErrNoPlayer = errors.New("no supported audio player found on PATH")

// Player describes how to invoke an audio command.
type Player struct {
	Name string
	Args func(source string, gain float64) []string
}

// FFPlay plays anything ffmpeg can decode.
var FFPlay = Player{
	Name: "ffplay",
	Args: func(source string, gain float64) []string {
		return []string{"-nodisp", "-autoexit", "-loglevel", "quiet",
			"-volume", strconv.Itoa(int(gain*100 + 0.5)), source}
	},
}

// AFPlay is the macOS built-in player.
var AFPlay = Player{
	Name: "afplay",
	Args: func(source string, gain float64) []string {
		return []string{"-v", strconv.FormatFloat(gain, 'f', 2, 64), source}
	},
}

// PAPlay is the PulseAudio player (WAV and other libsndfile formats).
var PAPlay = Player{
	Name: "paplay",
	Args: func(source string, gain float64) []string {
		return []string{"--volume=" + strconv.Itoa(int(gain*65536)), source}
	},
}

// Players lists supported players in detection order.
var Players = []Player{FFPlay, AFPlay, PAPlay}

// Detect resolves a configured player name. "auto" (or "") picks the first
// supported player found by lookPath.
func Detect(name string, lookPath func(string) (string, error)) (Player, error) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	if name == "" || name == "auto" {
		for _, p := range Players {
			if _, err := lookPath(p.Name); err == nil {
				return p, nil
			}
		}
		return Player{}, ErrNoPlayer
	}

	for _, p := range Players {
		if p.Name == name {
			if _, err := lookPath(p.Name); err != nil {
				return Player{}, fmt.Errorf("audio player %s: %w", name, err)
			}
			return p, nil
		}
	}
	return Player{}, fmt.Errorf("unknown audio player %q", name)
}

// Backend opens command-backed tracks for one Player.
type Backend struct {
	player Player
}

// New creates a Backend that plays through p.
func New(p Player) *Backend {
	return &Backend{player: p}
}

// Open implements audio.Backend.
func (b *Backend) Open(source string) audio.Track {
	return &track{player: b.player, source: source, gain: 1.0}
}

var _ audio.Backend = (*Backend)(nil)

type track struct {
	player Player
	source string

	mu      sync.Mutex
	gain    float64
	wanted  bool
	onError func(error)
	cancel  context.CancelFunc
	gen     uint64
}

func (t *track) Play(gain float64, onError func(error)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.wanted {
		return
	}
	t.wanted = true
	t.gain = gain
	t.onError = onError
	t.spawnLocked()
}

func (t *track) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.wanted = false
	t.killLocked()
}

func (t *track) SetGain(gain float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gain == t.gain {
		return
	}
	t.gain = gain
	if t.wanted {
		t.killLocked()
		t.spawnLocked()
	}
}

func (t *track) Close() {
	t.Pause()
}

// spawnLocked starts a player process for the current gain.
// Must be called with mu held.
func (t *track) spawnLocked() {
	t.gen++
	gen := t.gen

	ctx, cancel := context.WithCancel(context.Background())
	// #nosec G204 -- player name comes from the fixed Players table
	cmd := exec.CommandContext(ctx, t.player.Name, t.player.Args(t.source, t.gain)...)
	if err := cmd.Start(); err != nil {
		cancel()
		t.failLocked(fmt.Errorf("starting %s: %w", t.player.Name, err))
		return
	}
	t.cancel = cancel
	started := time.Now()

	log.Debug(log.CatAudio, "Player process started",
		"player", t.player.Name,
		"source", t.source,
		"pid", cmd.Process.Pid)

	log.SafeGo("audio.command.wait", func() {
		err := cmd.Wait()
		t.exited(gen, err, time.Since(started))
	})
}

// killLocked stops the running process, if any. Must be called with mu held.
func (t *track) killLocked() {
	t.gen++
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// exited restarts the loop after a clean exit, or reports the failure.
// Exits of processes that were killed on purpose are ignored.
func (t *track) exited(gen uint64, err error, ran time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.gen || !t.wanted {
		return
	}
	t.cancel = nil

	switch {
	case err != nil:
		t.failLocked(fmt.Errorf("%s exited: %w", t.player.Name, err))
	case ran < minRunTime:
		t.failLocked(fmt.Errorf("%s exited immediately; source %s may be unreadable", t.player.Name, t.source))
	default:
		t.spawnLocked()
	}
}

// failLocked ends the current Play and notifies onError once.
// Must be called with mu held.
func (t *track) failLocked(err error) {
	t.wanted = false
	cb := t.onError
	t.onError = nil
	if cb != nil {
		cb(err)
	}
}
