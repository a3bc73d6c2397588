package report

import (
	"encoding/json"
	"io"

	"github.com/varalys/asmscan/internal/types"
)

// Document is the machine-readable report. Consumers must tolerate new
// fields being added.
type Document struct {
	Assembly      string          `json:"assembly"`
	TotalFindings int             `json:"totalFindings"`
	Findings      []types.Finding `json:"findings"`
}

// NewDocument builds the report view over display findings.
func NewDocument(assembly string, findings []types.Finding) Document {
	if findings == nil {
		findings = []types.Finding{}
	} // no `null` in JSON
	return Document{Assembly: assembly, TotalFindings: len(findings), Findings: findings}
}

// WriteJSON writes the structured report as indented JSON.
func WriteJSON(w io.Writer, assembly string, findings []types.Finding) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	// generic type names in snippets (List<T>) should stay readable
	enc.SetEscapeHTML(false)
	return enc.Encode(NewDocument(assembly, findings))
}
