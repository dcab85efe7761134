// Package log provides category-tagged structured logging for breathe.
//
// The TUI owns the terminal, so log output is written to a file configured
// with Init. Until Init is called all output is discarded.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
)

// Category groups log lines by subsystem.
type Category string

// Log categories.
const (
	CatConfig   Category = "config"
	CatDB       Category = "db"
	CatSession  Category = "session"
	CatAudio    Category = "audio"
	CatUI       Category = "ui"
	CatRegistry Category = "registry"
	CatTrace    Category = "trace"
)

var (
	mu     sync.RWMutex
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// Init opens (or creates) the log file at path and routes all logging to it.
// The returned function closes the file and restores the discard logger.
func Init(path, level string) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) //nolint:gosec // G304: path comes from config
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	SetOutput(f, level)

	return func() error {
		SetOutput(io.Discard, level)
		return f.Close()
	}, nil
}

// SetOutput routes logging to w at the given level ("debug", "info", "warn", "error").
func SetOutput(w io.Writer, level string) {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})

	mu.Lock()
	logger = slog.New(h)
	mu.Unlock()
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debug logs at debug level.
func Debug(cat Category, msg string, kv ...any) {
	current().Debug(msg, append([]any{"cat", string(cat)}, kv...)...)
}

// Info logs at info level.
func Info(cat Category, msg string, kv ...any) {
	current().Info(msg, append([]any{"cat", string(cat)}, kv...)...)
}

// Warn logs at warn level.
func Warn(cat Category, msg string, kv ...any) {
	current().Warn(msg, append([]any{"cat", string(cat)}, kv...)...)
}

// Error logs at error level.
func Error(cat Category, msg string, kv ...any) {
	current().Error(msg, append([]any{"cat", string(cat)}, kv...)...)
}

// ErrorErr logs err at error level under the "error" key.
func ErrorErr(cat Category, msg string, err error, kv ...any) {
	Error(cat, msg, append([]any{"error", err}, kv...)...)
}

// SafeGo runs fn in a new goroutine and logs (instead of crashing on) any panic.
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				Error(CatSession, "Recovered panic in goroutine",
					"goroutine", name,
					"panic", fmt.Sprint(r),
					"stack", string(debug.Stack()))
			}
		}()
		fn()
	}()
}
