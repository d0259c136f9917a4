// Package config loads and saves ~/.shiftmap/config.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// EnvConfigDir overrides the config directory (tests, portable installs).
const EnvConfigDir = "SHIFTMAP_CONFIG_DIR"

const defaultDwellMs = 300

type Config struct {
	Drag    DragConfig    `toml:"drag"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`
	Journal JournalConfig `toml:"journal"`
}

type DragConfig struct {
	ExpandDwellMs int `toml:"expand_dwell_ms"`
}

type UIConfig struct {
	// Theme is auto, light or dark.
	Theme string `toml:"theme"`
	// Glyphs is unicode or ascii.
	Glyphs string `toml:"glyphs"`
}

type LogConfig struct {
	Enabled bool   `toml:"enabled"`
	Level   string `toml:"level"`
	Dir     string `toml:"dir"`
}

type JournalConfig struct {
	Path string `toml:"path"`
}

func Default() Config {
	return Config{
		Drag: DragConfig{ExpandDwellMs: defaultDwellMs},
		UI:   UIConfig{Theme: "auto", Glyphs: "unicode"},
		Log:  LogConfig{Level: "info"},
	}
}

// ExpandDwell is the hover time before a dragged-over row expands.
func (c Config) ExpandDwell() time.Duration {
	if c.Drag.ExpandDwellMs <= 0 {
		return defaultDwellMs * time.Millisecond
	}
	return time.Duration(c.Drag.ExpandDwellMs) * time.Millisecond
}

func (c Config) Theme() string {
	switch t := strings.ToLower(strings.TrimSpace(c.UI.Theme)); t {
	case "light", "dark":
		return t
	default:
		return "auto"
	}
}

func (c Config) Glyphs() string {
	if strings.EqualFold(strings.TrimSpace(c.UI.Glyphs), "ascii") {
		return "ascii"
	}
	return "unicode"
}

// JournalPath returns the configured journal, defaulting to
// <config dir>/journal.sqlite.
func (c Config) JournalPath() (string, error) {
	if p := strings.TrimSpace(c.Journal.Path); p != "" {
		return expandHome(p)
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "journal.sqlite"), nil
}

// LogDir returns the configured log directory, defaulting to <config dir>/logs.
func (c Config) LogDir() (string, error) {
	if p := strings.TrimSpace(c.Log.Dir); p != "" {
		return expandHome(p)
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs"), nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvConfigDir)); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".shiftmap"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file. A missing file yields Default().
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(path)
}

func LoadFrom(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, err
	}
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to the config path, replacing the file atomically.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return atomicWriteFile(dir, "config.toml.*.tmp", path, b, 0o600)
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
