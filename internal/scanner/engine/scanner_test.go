package engine

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varalys/asmscan/internal/config"
	"github.com/varalys/asmscan/internal/scanner"
	"github.com/varalys/asmscan/internal/types"
)

// writeFakeEngine writes a shell script standing in for the engine.
// `version` prints 1.4.0; everything else runs scanBody with $out set to
// the --report-path argument and $args holding all arguments.
func writeFakeEngine(t *testing.T, scanBody string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engine is a shell script")
	}
	script := `#!/bin/sh
if [ "$1" = "version" ]; then
  echo "1.4.0"
  exit 0
fi
args="$*"
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    --report-path) out="$2"; shift 2 ;;
    *) shift ;;
  esac
done
` + scanBody + "\n"
	path := filepath.Join(t.TempDir(), BinaryName)
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func newTestScanner(t *testing.T, scanBody string) *Scanner {
	t.Helper()
	bin := writeFakeEngine(t, scanBody)
	s, err := NewScanner(config.EngineConfig{BinaryPath: &bin})
	require.NoError(t, err)
	return s
}

const sampleReport = `[
  {
    "ruleId": "PersistenceRule",
    "description": "Writes to persistent storage",
    "severity": "HIGH",
    "location": "Mod.Save:IL_0004",
    "codeSnippet": "call File::WriteAllText",
    "developerGuidance": {
      "remediation": "Use the sandboxed store",
      "documentationUrl": "https://docs.example.com/persistence",
      "alternativeApis": ["Store.Save"],
      "isRemediable": false
    }
  },
  {
    "description": "Unattributed call",
    "severity": "low",
    "location": "Mod.Other:IL_0000"
  }
]`

func TestNewScanner_CustomBinary(t *testing.T) {
	bin := writeFakeEngine(t, "exit 1")
	s, err := NewScanner(config.EngineConfig{BinaryPath: &bin})
	require.NoError(t, err)
	assert.Equal(t, bin, s.binaryPath)

	v, err := s.Version()
	require.NoError(t, err)
	assert.Equal(t, "1.4.0", v)
}

func TestNewScanner_NotFound(t *testing.T) {
	customPath := "/nonexistent/asmscan-engine"
	_, err := NewScanner(config.EngineConfig{BinaryPath: &customPath})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestNewScanner_MinVersion(t *testing.T) {
	bin := writeFakeEngine(t, "exit 0")
	tooNew := "2.0.0"
	_, err := NewScanner(config.EngineConfig{BinaryPath: &bin, MinVersion: &tooNew})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "older than required")

	ok := "1.3.0"
	_, err = NewScanner(config.EngineConfig{BinaryPath: &bin, MinVersion: &ok})
	require.NoError(t, err)
}

func TestScanner_Scan(t *testing.T) {
	s := newTestScanner(t, "cat > \"$out\" <<'EOF'\n"+sampleReport+"\nEOF")

	findings, err := s.Scan("Mod.dll", scanner.Config{DeveloperMode: true})
	require.NoError(t, err)
	require.Len(t, findings, 2)

	f := findings[0]
	assert.Equal(t, "PersistenceRule", f.RuleID)
	assert.Equal(t, types.SevHigh, f.Severity)
	assert.Equal(t, "Mod.Save:IL_0004", f.Location)
	assert.Equal(t, "call File::WriteAllText", f.CodeSnippet)
	require.NotNil(t, f.Guidance)
	assert.False(t, f.Guidance.IsRemediable)
	assert.Equal(t, []string{"Store.Save"}, f.Guidance.AlternativeAPIs)
	assert.Equal(t, "https://docs.example.com/persistence", f.Guidance.DocumentationURL)

	assert.Empty(t, findings[1].RuleID)
	assert.Equal(t, types.SevLow, findings[1].Severity)
	assert.Nil(t, findings[1].Guidance)
}

func TestScanner_Scan_PassesArguments(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args.txt")
	s := newTestScanner(t, "echo \"$args\" > '"+argsFile+"'\necho '[]' > \"$out\"")

	findings, err := s.Scan("/tmp/Mod.dll", scanner.Config{
		DeveloperMode: true,
		RulesPath:     "rules.json",
		Options:       map[string]string{"unity": "true", "depth": "2"},
	})
	require.NoError(t, err)
	assert.Empty(t, findings)

	b, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	got := string(b)
	assert.Contains(t, got, "scan --assembly /tmp/Mod.dll --format json --report-path ")
	assert.Contains(t, got, "--developer-mode --rules rules.json --option depth=2 --option unity=true")
}

func TestScanner_Scan_EmptyReport(t *testing.T) {
	s := newTestScanner(t, ": > \"$out\"")
	findings, err := s.Scan("Mod.dll", scanner.Config{})
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestScanner_Scan_EngineFailure(t *testing.T) {
	s := newTestScanner(t, "echo 'BadImageFormat: not a managed assembly' >&2\necho 'at Loader.Read' >&2\nexit 3")

	_, err := s.Scan("broken.dll", scanner.Config{})
	require.Error(t, err)

	var se *scanner.ScanError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, err.Error(), "exit code 3")
	assert.Contains(t, err.Error(), "BadImageFormat")
	assert.NotContains(t, err.Error(), "\n")
	assert.Contains(t, se.Detail, "at Loader.Read")
}

func TestScanner_Scan_MalformedReport(t *testing.T) {
	s := newTestScanner(t, "echo '{not json' > \"$out\"")
	_, err := s.Scan("Mod.dll", scanner.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse engine report")
}

func TestScanner_Scan_UnknownSeverity(t *testing.T) {
	s := newTestScanner(t, `echo '[{"ruleId":"R","severity":"Severe","location":"x"}]' > "$out"`)
	_, err := s.Scan("Mod.dll", scanner.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown severity")
}

func TestConvertFinding_CopiesAlternatives(t *testing.T) {
	alts := []string{"A", "B"}
	f, err := convertFinding(EngineFinding{RuleID: " R ", Severity: "critical", Guidance: &EngineGuidance{AlternativeAPIs: alts}})
	require.NoError(t, err)
	alts[0] = "changed"
	assert.Equal(t, "R", f.RuleID)
	assert.Equal(t, types.SevCritical, f.Severity)
	assert.Equal(t, []string{"A", "B"}, f.Guidance.AlternativeAPIs)
}
