// Package logging holds the process-wide structured logger. It discards
// everything until Init enables it; the TUI owns the terminal, so logs only
// ever go to a file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// L is the global logger. It discards output until Init is called.
var L = slog.New(slog.NewTextHandler(io.Discard, nil))

const (
	logPrefix     = "shiftmap-"
	logSuffix     = ".log"
	retentionDays = 30
)

// Options configures Init.
type Options struct {
	Enabled bool       // false => discard everything
	Dir     string     // default: ~/.shiftmap/logs
	Level   slog.Level // default: Info
	Writer  io.Writer  // overrides Dir (tests)
}

// Init configures logging; call from main before any log calls. It returns a
// closer for the opened log file (a no-op when nothing was opened).
func Init(opts Options) (func() error, error) {
	nop := func() error { return nil }
	if !opts.Enabled {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return nop, nil
	}
	level := opts.Level
	if level == 0 {
		level = slog.LevelInfo
	}
	if opts.Writer != nil {
		L = slog.New(slog.NewJSONHandler(opts.Writer, &slog.HandlerOptions{Level: level}))
		return nop, nil
	}

	dir := opts.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nop, err
		}
		dir = filepath.Join(home, ".shiftmap", "logs")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nop, err
	}
	cleanOldLogs(dir, time.Now())

	name := filepath.Join(dir, logPrefix+time.Now().Format("2006-01-02")+logSuffix)
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nop, err
	}
	L = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	return f.Close, nil
}

// ParseLevel maps a config string to a slog level; unknown values are Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// cleanOldLogs removes log files older than retentionDays (best-effort).
func cleanOldLogs(dir string, now time.Time) {
	cutoff := now.AddDate(0, 0, -retentionDays)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, logPrefix) || !strings.HasSuffix(name, logSuffix) {
			continue
		}
		date, err := time.Parse("2006-01-02", strings.TrimSuffix(strings.TrimPrefix(name, logPrefix), logSuffix))
		if err != nil {
			continue
		}
		if date.Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, name))
		}
	}
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }

func Info(msg string, args ...any) { L.Info(msg, args...) }

func Warn(msg string, args ...any) { L.Warn(msg, args...) }

func Error(msg string, args ...any) { L.Error(msg, args...) }
