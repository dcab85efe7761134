// Package sound bundles short, loopable ambient beds (rain, ocean, forest).
// Command-line players can only open files on disk, so Extract copies the
// embedded WAV files into a directory before they are played.
package sound

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zjrosen/breathe/internal/log"
)

// Scheme prefixes track sources that refer to an embedded sound.
const Scheme = "builtin:"

// soundFiles contains embedded WAV files for ambient playback.
//
//go:embed sounds/*.wav
var soundFiles embed.FS

// Names returns the names of all embedded sounds, sorted.
func Names() []string {
	entries, err := fs.ReadDir(soundFiles, "sounds")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".wav"))
	}
	sort.Strings(names)
	return names
}

// IsBuiltin reports whether source refers to an embedded sound.
func IsBuiltin(source string) bool {
	return strings.HasPrefix(source, Scheme)
}

// Extract writes every embedded sound into dir, skipping files that are
// already present with identical content. Returns name -> file path.
func Extract(dir string) (map[string]string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("creating sound directory: %w", err)
	}

	paths := make(map[string]string)
	for _, name := range Names() {
		p, err := extractOne(dir, name)
		if err != nil {
			return nil, err
		}
		paths[name] = p
	}
	return paths, nil
}

// Resolve maps a track source to something a player can open. Sources using
// Scheme are extracted into dir; anything else (paths, URLs) is returned as is.
func Resolve(source, dir string) (string, error) {
	if !IsBuiltin(source) {
		return source, nil
	}
	name := strings.TrimPrefix(source, Scheme)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("creating sound directory: %w", err)
	}
	return extractOne(dir, name)
}

func extractOne(dir, name string) (string, error) {
	data, err := soundFiles.ReadFile(path.Join("sounds", name+".wav"))
	if err != nil {
		return "", fmt.Errorf("unknown builtin sound %q", name)
	}

	dst := filepath.Join(dir, name+".wav")
	if existing, err := os.ReadFile(dst); err == nil && bytes.Equal(existing, data) { //nolint:gosec // G304: dst is inside the configured data dir
		return dst, nil
	}

	if err := os.WriteFile(dst, data, 0600); err != nil {
		return "", fmt.Errorf("writing sound %s: %w", name, err)
	}
	log.Debug(log.CatAudio, "Extracted builtin sound", "name", name, "path", dst)
	return dst, nil
}
