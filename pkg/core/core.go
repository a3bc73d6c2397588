package core

import (
	"github.com/varalys/asmscan/internal/config"
	"github.com/varalys/asmscan/internal/report"
	"github.com/varalys/asmscan/internal/scanner"
	"github.com/varalys/asmscan/internal/scanner/factory"
	"github.com/varalys/asmscan/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type Finding = types.Finding
type Guidance = types.Guidance
type Severity = types.Severity
type Report = report.Document

const (
	SevLow      = types.SevLow
	SevMedium   = types.SevMedium
	SevHigh     = types.SevHigh
	SevCritical = types.SevCritical
)

// Config selects the engine and the options handed to it.
type Config struct {
	// EnginePath is an explicit engine binary. Empty searches $PATH and
	// ~/.asmscan/bin.
	EnginePath string
	// RulesPath optionally replaces the engine's built-in rule set.
	RulesPath string
	// MinEngineVersion rejects older engines when set.
	MinEngineVersion string
	// Options are passed to the engine as --option key=value.
	Options map[string]string
}

// newScanner is swapped out by tests.
var newScanner = factory.New

// Scan is the stable entrypoint for other programs. Guidance is always
// requested from the engine.
func Scan(assemblyPath string, cfg Config) ([]Finding, error) {
	ec := config.EngineConfig{Options: cfg.Options}
	if cfg.EnginePath != "" {
		ec.BinaryPath = &cfg.EnginePath
	}
	if cfg.RulesPath != "" {
		ec.RulesPath = &cfg.RulesPath
	}
	if cfg.MinEngineVersion != "" {
		ec.MinVersion = &cfg.MinEngineVersion
	}
	s, err := newScanner(factory.Config{Engine: ec})
	if err != nil {
		return nil, err
	}
	return s.Scan(assemblyPath, scanner.Config{
		DeveloperMode: true,
		RulesPath:     cfg.RulesPath,
		Options:       cfg.Options,
	})
}

// Filter returns the findings a report shows: all of them when verbose,
// otherwise only those carrying guidance.
func Filter(findings []Finding, verbose bool) []Finding {
	return report.FilterForDisplay(findings, verbose)
}

// ShouldFail reports whether any finding reaches failOn and how many do.
// An empty or unrecognized failOn never fails.
func ShouldFail(findings []Finding, failOn string) (bool, int) {
	return report.ShouldFail(findings, failOn)
}

// ParseSeverity converts a case-insensitive severity name.
func ParseSeverity(text string) (Severity, bool) { return types.ParseSeverity(text) }
