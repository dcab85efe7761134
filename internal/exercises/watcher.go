package exercises

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/breathe/internal/log"
)

// DefaultDebounce coalesces bursts of file events (editors often write a
// file several times on save).
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a Registry when files in its user directory change.
type Watcher struct {
	registry *Registry
	debounce time.Duration
	onReload func()

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
}

// NewWatcher creates a watcher for r's user directory. onReload is called
// after each successful reload and may be nil. The directory must exist.
func NewWatcher(r *Registry, debounce time.Duration, onReload func()) (*Watcher, error) {
	dir := r.UserDir()
	if dir == "" {
		return nil, errors.New("registry has no user exercise directory")
	}
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("user exercise directory %s does not exist", dir)
		}
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	return &Watcher{
		registry: r,
		debounce: debounce,
		onReload: onReload,
		watcher:  fw,
	}, nil
}

// Start begins watching in the background until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})

	log.SafeGo("exercises.watch", func() {
		defer close(w.done)
		w.loop(ctx)
	})
}

// Stop stops watching and releases the underlying watcher. Safe to call
// multiple times.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.done
		}
		_ = w.watcher.Close()
	})
}

func (w *Watcher) loop(ctx context.Context) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isExerciseFile(ev.Name) {
				continue
			}
			log.Debug(log.CatRegistry, "Exercise file changed", "file", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn(log.CatRegistry, "File watcher error", "error", err.Error())

		case <-fire:
			fire = nil
			if err := w.registry.Reload(); err != nil {
				log.ErrorErr(log.CatRegistry, "Failed to reload exercises", err)
				continue
			}
			if w.onReload != nil {
				w.onReload()
			}
		}
	}
}
