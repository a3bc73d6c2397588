package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape for asmscan.
// Pointer fields distinguish "unset" from zero values so CLI flags,
// local and global files can be layered.
type FileConfig struct {
	FailOn  *string `yaml:"fail_on,omitempty"`
	Verbose *bool   `yaml:"verbose,omitempty"`
	NoColor *bool   `yaml:"no_color,omitempty"`
	Audit   *bool   `yaml:"audit,omitempty"`
	Cache   *bool   `yaml:"cache,omitempty"`

	Engine *EngineConfig `yaml:"engine,omitempty"`
}

// EngineConfig configures how the external scan engine is located and invoked.
type EngineConfig struct {
	// BinaryPath is an explicit path to the engine binary.
	// If empty, the binary is searched in $PATH and ~/.asmscan/bin.
	BinaryPath *string `yaml:"binary,omitempty"`

	// RulesPath overrides the engine's built-in rule set.
	RulesPath *string `yaml:"rules,omitempty"`

	// MinVersion rejects engines older than this semantic version.
	MinVersion *string `yaml:"min_version,omitempty"`

	// Options are passed through to the engine as --option key=value.
	Options map[string]string `yaml:"options,omitempty"`
}

// ErrNotFound is returned by LoadLocal and LoadGlobal when no file exists.
var ErrNotFound = errors.New("config file not found")

var localNames = []string{".asmscan.yml", ".asmscan.yaml", "asmscan.yml", "asmscan.yaml"}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a project-local config file in dir.
// It supports .asmscan.yml/.yaml and asmscan.yml/.yaml.
func LoadLocal(dir string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range localNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, ErrNotFound
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return cfg, ErrNotFound
	}
	p := filepath.Join(base, "asmscan", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, ErrNotFound
}

// GetEngineConfig returns the engine configuration, never nil.
func (fc FileConfig) GetEngineConfig() EngineConfig {
	if fc.Engine == nil {
		return EngineConfig{}
	}
	return *fc.Engine
}

// GetBinaryPath returns the custom binary path or empty string.
func (ec EngineConfig) GetBinaryPath() string {
	if ec.BinaryPath == nil {
		return ""
	}
	return *ec.BinaryPath
}

// GetRulesPath returns the rule set override or empty string.
func (ec EngineConfig) GetRulesPath() string {
	if ec.RulesPath == nil {
		return ""
	}
	return *ec.RulesPath
}

// GetMinVersion returns the minimum engine version or empty string.
func (ec EngineConfig) GetMinVersion() string {
	if ec.MinVersion == nil {
		return ""
	}
	return *ec.MinVersion
}
