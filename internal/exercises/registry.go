package exercises

import (
	"io/fs"
	"sort"
	"sync"

	"github.com/zjrosen/breathe/internal/breathing/domain"
	"github.com/zjrosen/breathe/internal/log"
)

// Registry holds the merged set of built-in and user exercises.
// A user exercise with the same id as a built-in one replaces it.
type Registry struct {
	builtin fs.FS
	userDir string

	mu      sync.RWMutex
	entries []Entry
	byID    map[string]int
}

// NewRegistry loads exercises from builtin (may be nil) and userDir (may be
// empty or missing).
func NewRegistry(builtin fs.FS, userDir string) (*Registry, error) {
	r := &Registry{builtin: builtin, userDir: userDir}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads both sources and atomically swaps in the result.
func (r *Registry) Reload() error {
	var builtin []Entry
	if r.builtin != nil {
		loaded, err := LoadFromFS(r.builtin, SourceBuiltIn)
		if err != nil {
			return err
		}
		builtin = loaded
	}

	user, err := LoadFromDir(r.userDir)
	if err != nil {
		// A broken user directory must not hide the built-in exercises.
		log.Warn(log.CatRegistry, "Loading user exercises", "dir", r.userDir, "error", err.Error())
		user = nil
	}

	entries, byID := merge(builtin, user)

	r.mu.Lock()
	r.entries = entries
	r.byID = byID
	r.mu.Unlock()

	log.Debug(log.CatRegistry, "Exercises loaded", "builtin", len(builtin), "user", len(user), "total", len(entries))
	return nil
}

// merge orders built-in exercises first (catalog order) and then user-only
// exercises sorted by id. Overrides keep the built-in position.
func merge(builtin, user []Entry) ([]Entry, map[string]int) {
	entries := make([]Entry, 0, len(builtin)+len(user))
	byID := make(map[string]int, len(builtin)+len(user))

	add := func(e Entry) {
		if i, ok := byID[e.Exercise.ID]; ok {
			entries[i] = e
			return
		}
		byID[e.Exercise.ID] = len(entries)
		entries = append(entries, e)
	}

	for _, e := range builtin {
		add(e)
	}

	sorted := append([]Entry(nil), user...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Exercise.ID < sorted[j].Exercise.ID
	})
	for _, e := range sorted {
		add(e)
	}
	return entries, byID
}

// All returns every exercise in display order.
func (r *Registry) All() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Entry(nil), r.entries...)
}

// Exercises returns the exercises in display order without source metadata.
func (r *Registry) Exercises() []*domain.Exercise {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Exercise, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Exercise
	}
	return out
}

// Get returns the exercise with the given id.
func (r *Registry) Get(id string) (*domain.Exercise, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return r.entries[i].Exercise, true
}

// ListBySource returns the exercises that came from src.
func (r *Registry) ListBySource(src Source) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Entry
	for _, e := range r.entries {
		if e.Source == src {
			out = append(out, e)
		}
	}
	return out
}

// UserDir returns the directory user exercises are loaded from.
func (r *Registry) UserDir() string {
	return r.userDir
}
