package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return p
}

func TestLoadFile_Basic(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "asmscan.yaml", `fail_on: high
verbose: true
engine:
  binary: /opt/engine/asmscan-engine
  min_version: 1.2.0
  options:
    unity: "true"
`)
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.FailOn == nil || *cfg.FailOn != "high" {
		t.Fatalf("expected fail_on=high, got %#v", cfg.FailOn)
	}
	if cfg.Verbose == nil || !*cfg.Verbose {
		t.Fatalf("expected verbose=true")
	}
	if cfg.NoColor != nil {
		t.Fatalf("expected no_color unset, got %#v", cfg.NoColor)
	}
	ec := cfg.GetEngineConfig()
	if ec.GetBinaryPath() != "/opt/engine/asmscan-engine" {
		t.Fatalf("unexpected binary path %q", ec.GetBinaryPath())
	}
	if ec.GetMinVersion() != "1.2.0" {
		t.Fatalf("unexpected min version %q", ec.GetMinVersion())
	}
	if ec.GetRulesPath() != "" {
		t.Fatalf("expected empty rules path, got %q", ec.GetRulesPath())
	}
	if ec.Options["unity"] != "true" {
		t.Fatalf("expected engine option, got %#v", ec.Options)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "asmscan.yaml", "fail_on: [unclosed\n")
	if _, err := LoadFile(p); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestGetEngineConfig_Defaults(t *testing.T) {
	ec := FileConfig{}.GetEngineConfig()
	if ec.GetBinaryPath() != "" || ec.GetRulesPath() != "" || ec.GetMinVersion() != "" {
		t.Fatalf("expected empty defaults, got %#v", ec)
	}
}

func TestLoadLocal_PrefersDotfile(t *testing.T) {
	dir := t.TempDir()
	// place both, expect the dotfile to be picked first by search order
	writeTemp(t, dir, "asmscan.yaml", "fail_on: low\n")
	writeTemp(t, dir, ".asmscan.yml", "fail_on: critical\n")
	cfg, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("LoadLocal: %v", err)
	}
	if cfg.FailOn == nil || *cfg.FailOn != "critical" {
		t.Fatalf("expected fail_on=critical from .asmscan.yml, got %#v", cfg.FailOn)
	}
}

func TestLoadLocal_NoConfig(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadLocal(dir); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound when no local config exists, got %v", err)
	}
}

func TestLoadGlobal_XDG_Config(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "asmscan")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeTemp(t, cfgDir, "config.yml", "no_color: true\n")
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if cfg.NoColor == nil || !*cfg.NoColor {
		t.Fatalf("expected no_color=true from global config, got %#v", cfg.NoColor)
	}
}

func TestLoadGlobal_NoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	// Simulate no HOME as well by clearing HOME; LoadGlobal should error
	t.Setenv("HOME", "")
	if _, err := LoadGlobal(); err == nil {
		t.Fatal("expected error when no global config dir exists")
	}
}
