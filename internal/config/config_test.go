package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultHasExpectedToggles(t *testing.T) {
	cfg := Default()
	if !cfg.Unpack.FilterFramework {
		t.Error("filter_framework should default to true")
	}
	if !cfg.Unpack.CleanOld {
		t.Error("clean_old should default to true")
	}
	if !cfg.Unpack.History {
		t.Error("history should default to true")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("level defaults to info, got %q", cfg.Logging.Level)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("file should not exist")
	}
	if resolved != path {
		t.Fatalf("resolved path %q, want %q", resolved, path)
	}
	if !cfg.Unpack.FilterFramework {
		t.Error("defaults not applied")
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		"[unpack]",
		"filter_framework = false",
		"clean_old = false",
		"[logging]",
		`format = "json"`,
		`level = "debug"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("file should exist")
	}
	if cfg.Unpack.FilterFramework {
		t.Error("filter_framework override not applied")
	}
	if cfg.Unpack.CleanOld {
		t.Error("clean_old override not applied")
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Errorf("logging overrides not applied: %+v", cfg.Logging)
	}
	if cfg.Paths.LogDir != filepath.Join(dir, "logs") {
		t.Errorf("log_dir not expanded: %q", cfg.Paths.LogDir)
	}
}

func TestLoadRejectsBadLoggingValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected validation error for bad format")
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	got, err := ExpandPath("~/x")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "x") {
		t.Fatalf("got %q", got)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := Load(path); err != nil || !exists {
		t.Fatalf("sample config should load: exists=%v err=%v", exists, err)
	}
}
