package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/varalys/asmscan/internal/config"
	"github.com/varalys/asmscan/internal/logging"
	"github.com/varalys/asmscan/internal/scanner"
	"github.com/varalys/asmscan/internal/types"
)

// Scanner implements the scanner.Scanner interface by running the
// external engine binary and reading its JSON report.
type Scanner struct {
	binaryPath string
	version    string
}

// NewScanner locates the engine binary and checks its version against
// the configured minimum.
func NewScanner(cfg config.EngineConfig) (*Scanner, error) {
	bm := NewBinaryManager(cfg.GetBinaryPath())

	binaryPath, err := bm.Find()
	if err != nil {
		return nil, fmt.Errorf("engine binary not found: %w\n\n"+
			"To fix this:\n"+
			"  1. Put %s on your PATH or in ~/.asmscan/bin\n"+
			"  2. Or pass --engine /path/to/%s\n"+
			"  3. Or specify explicit path in config:\n"+
			"     engine:\n"+
			"       binary: /path/to/%s", err, BinaryName, BinaryName, BinaryName)
	}

	version, err := bm.Version(binaryPath)
	if err != nil {
		logging.Logger.Debugw("engine version unavailable", "binary", binaryPath, "error", err)
		version = "unknown"
	}
	if err := checkMinVersion(version, cfg.GetMinVersion()); err != nil {
		return nil, err
	}
	logging.Logger.Debugw("engine resolved", "binary", binaryPath, "version", version)

	return &Scanner{
		binaryPath: binaryPath,
		version:    version,
	}, nil
}

// Version implements scanner.Scanner.
func (s *Scanner) Version() (string, error) {
	return s.version, nil
}

// Scan implements scanner.Scanner.
func (s *Scanner) Scan(assemblyPath string, cfg scanner.Config) ([]types.Finding, error) {
	reportFile, err := os.CreateTemp("", "asmscan-report-*.json")
	if err != nil {
		return nil, &scanner.ScanError{Op: "create report file", Err: err}
	}
	reportPath := reportFile.Name()
	_ = reportFile.Close() //nolint:errcheck // Only need the path
	defer func() {
		_ = os.Remove(reportPath) //nolint:errcheck // Cleanup
	}()

	args := buildArgs(assemblyPath, reportPath, cfg)
	logging.Logger.Debugw("running engine", "binary", s.binaryPath, "args", args)

	cmd := exec.Command(s.binaryPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		return nil, wrapEngineError(err, stderr.String())
	}

	reportData, err := os.ReadFile(reportPath)
	if err != nil {
		return nil, &scanner.ScanError{Op: "read engine report", Err: err}
	}
	findings, err := parseReport(reportData)
	if err != nil {
		return nil, &scanner.ScanError{
			Op:     "parse engine report",
			Err:    err,
			Detail: fmt.Sprintf("engine version: %s\n%s", s.version, strings.TrimSpace(stderr.String())),
		}
	}
	logging.Logger.Debugw("engine finished", "elapsed", time.Since(start), "findings", len(findings))
	return findings, nil
}

func buildArgs(assemblyPath, reportPath string, cfg scanner.Config) []string {
	args := []string{
		"scan",
		"--assembly", assemblyPath,
		"--format", "json",
		"--report-path", reportPath,
	}
	if cfg.DeveloperMode {
		args = append(args, "--developer-mode")
	}
	if cfg.RulesPath != "" {
		args = append(args, "--rules", cfg.RulesPath)
	}
	keys := make([]string, 0, len(cfg.Options))
	for k := range cfg.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--option", k+"="+cfg.Options[k])
	}
	return args
}

func wrapEngineError(err error, stderr string) error {
	detail := strings.TrimSpace(stderr)
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := fmt.Sprintf("engine failed (exit code %d)", exitErr.ExitCode())
		if line := firstLine(detail); line != "" {
			msg += ": " + line
		}
		return &scanner.ScanError{Op: "engine scan", Err: errors.New(msg), Detail: detail}
	}
	return &scanner.ScanError{Op: "engine execution", Err: err, Detail: detail}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// EngineFinding represents one entry in the engine's JSON report.
type EngineFinding struct {
	RuleID      string          `json:"ruleId"`
	Description string          `json:"description"`
	Severity    string          `json:"severity"`
	Location    string          `json:"location"`
	CodeSnippet string          `json:"codeSnippet,omitempty"`
	Guidance    *EngineGuidance `json:"developerGuidance,omitempty"`
}

// EngineGuidance is the developer guidance block of an EngineFinding.
type EngineGuidance struct {
	Remediation      string   `json:"remediation"`
	DocumentationURL string   `json:"documentationUrl,omitempty"`
	AlternativeAPIs  []string `json:"alternativeApis,omitempty"`
	IsRemediable     bool     `json:"isRemediable"`
}

// parseReport decodes the engine report. An empty report means no findings.
func parseReport(data []byte) ([]types.Finding, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var raw []EngineFinding
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("malformed JSON: %w", err)
	}
	findings := make([]types.Finding, 0, len(raw))
	for i, ef := range raw {
		f, err := convertFinding(ef)
		if err != nil {
			return nil, fmt.Errorf("finding %d: %w", i, err)
		}
		findings = append(findings, f)
	}
	return findings, nil
}

// convertFinding maps an engine finding to an asmscan finding.
func convertFinding(ef EngineFinding) (types.Finding, error) {
	sev, ok := types.ParseSeverity(ef.Severity)
	if !ok {
		return types.Finding{}, fmt.Errorf("unknown severity %q", ef.Severity)
	}
	f := types.Finding{
		RuleID:      strings.TrimSpace(ef.RuleID),
		Description: ef.Description,
		Severity:    sev,
		Location:    ef.Location,
		CodeSnippet: ef.CodeSnippet,
	}
	if g := ef.Guidance; g != nil {
		f.Guidance = &types.Guidance{
			Remediation:      g.Remediation,
			DocumentationURL: g.DocumentationURL,
			IsRemediable:     g.IsRemediable,
		}
		if len(g.AlternativeAPIs) > 0 {
			f.Guidance.AlternativeAPIs = append([]string(nil), g.AlternativeAPIs...)
		}
	}
	return f, nil
}
