package scanner

import (
	"fmt"
	"strings"

	"github.com/varalys/asmscan/internal/types"
)

// Scanner is the boundary to the external assembly analysis engine.
// Rules, guidance content and detection logic all live behind it.
type Scanner interface {
	// Scan analyses the assembly at path and returns its findings in the
	// engine's order.
	Scan(assemblyPath string, cfg Config) ([]types.Finding, error)

	// Version returns the engine version information.
	Version() (string, error)
}

// Config is the set of options handed to the engine for one scan.
type Config struct {
	// DeveloperMode asks the engine to attach developer guidance.
	DeveloperMode bool

	// RulesPath optionally replaces the engine's built-in rule set.
	RulesPath string

	// Options are engine-specific key/value switches.
	Options map[string]string
}

// ScanError reports a failure while running the engine. Error returns a
// single line; Detail keeps whatever extended diagnostic the engine
// produced (usually its stderr).
type ScanError struct {
	Op     string
	Err    error
	Detail string
}

func (e *ScanError) Error() string {
	msg := e.Op
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return msg
}

func (e *ScanError) Unwrap() error { return e.Err }
