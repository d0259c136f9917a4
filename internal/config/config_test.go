package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvConfigDir, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ExpandDwell() != 300*time.Millisecond {
		t.Fatalf("expected 300ms dwell, got %s", cfg.ExpandDwell())
	}
	if cfg.Theme() != "auto" || cfg.Glyphs() != "unicode" {
		t.Fatalf("unexpected ui defaults: %+v", cfg.UI)
	}
	if cfg.Log.Enabled {
		t.Fatalf("logging should default off")
	}
}

func TestLoad_PartialFileKeepsOtherDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)
	body := "[drag]\nexpand_dwell_ms = 150\n\n[ui]\nglyphs = \"ASCII\"\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ExpandDwell() != 150*time.Millisecond {
		t.Fatalf("dwell: got %s", cfg.ExpandDwell())
	}
	if cfg.Glyphs() != "ascii" {
		t.Fatalf("glyphs: got %q", cfg.Glyphs())
	}
	if cfg.Theme() != "auto" {
		t.Fatalf("theme: got %q", cfg.Theme())
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("log level: got %q", cfg.Log.Level)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[drag\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)

	cfg := Default()
	cfg.UI.Theme = "dark"
	cfg.Log.Enabled = true
	cfg.Journal.Path = "/tmp/j.sqlite"
	if err := Save(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != cfg {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected only config.toml, got %d entries", len(entries))
	}
}

func TestPaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)
	cfg := Default()

	jp, err := cfg.JournalPath()
	if err != nil || jp != filepath.Join(dir, "journal.sqlite") {
		t.Fatalf("journal path: %q %v", jp, err)
	}
	ld, err := cfg.LogDir()
	if err != nil || ld != filepath.Join(dir, "logs") {
		t.Fatalf("log dir: %q %v", ld, err)
	}

	cfg.Journal.Path = "~/j.sqlite"
	jp, err = cfg.JournalPath()
	if err != nil {
		t.Fatalf("journal path: %v", err)
	}
	home, _ := os.UserHomeDir()
	if jp != filepath.Join(home, "j.sqlite") {
		t.Fatalf("expected home expansion, got %q", jp)
	}
}

func TestTheme_Unknown(t *testing.T) {
	cfg := Default()
	cfg.UI.Theme = "purple"
	if cfg.Theme() != "auto" {
		t.Fatalf("got %q", cfg.Theme())
	}
}
