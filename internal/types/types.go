package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity is the risk level the engine assigns to a finding.
// Values are ordered: Low < Medium < High < Critical.
type Severity int

const (
	SevLow Severity = iota
	SevMedium
	SevHigh
	SevCritical
)

// Severities lists every level from least to most severe.
func Severities() []Severity {
	return []Severity{SevLow, SevMedium, SevHigh, SevCritical}
}

func (s Severity) String() string {
	switch s {
	case SevLow:
		return "Low"
	case SevMedium:
		return "Medium"
	case SevHigh:
		return "High"
	case SevCritical:
		return "Critical"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// IsAtLeast reports whether s is as severe as other or more.
func (s Severity) IsAtLeast(other Severity) bool {
	return s >= other
}

// ParseSeverity maps a case-insensitive level name to a Severity.
func ParseSeverity(text string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "low":
		return SevLow, true
	case "medium":
		return SevMedium, true
	case "high":
		return SevHigh, true
	case "critical":
		return SevCritical, true
	default:
		return SevLow, false
	}
}

// MarshalJSON encodes the level name, never the numeric rank.
func (s Severity) MarshalJSON() ([]byte, error) {
	if s < SevLow || s > SevCritical {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return fmt.Errorf("severity must be a string: %w", err)
	}
	v, ok := ParseSeverity(name)
	if !ok {
		return fmt.Errorf("unknown severity %q", name)
	}
	*s = v
	return nil
}

// Guidance is optional remediation metadata the engine attaches to a
// finding when developer mode is enabled.
type Guidance struct {
	Remediation      string   `json:"remediation"`
	DocumentationURL string   `json:"documentationUrl,omitempty"`
	AlternativeAPIs  []string `json:"alternativeApis,omitempty"`
	// IsRemediable is false when no safe alternative API exists.
	IsRemediable bool `json:"isRemediable"`
}

// Finding is one occurrence of a matched rule in a scanned assembly.
// An empty RuleID means the engine did not attribute it to a rule.
type Finding struct {
	RuleID      string    `json:"ruleId,omitempty"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	Location    string    `json:"location"`
	CodeSnippet string    `json:"codeSnippet,omitempty"`
	Guidance    *Guidance `json:"developerGuidance,omitempty"`
}

// HasGuidance reports whether developer guidance is attached.
func (f Finding) HasGuidance() bool {
	return f.Guidance != nil
}
