package core

import (
	"encoding/json"
	"io"

	"github.com/varalys/asmscan/internal/report"
)

// MarshalReport writes the structured report document for assembly.
func MarshalReport(w io.Writer, assembly string, findings []Finding) error {
	return report.WriteJSON(w, assembly, findings)
}

// UnmarshalReport decodes a document written by MarshalReport, useful for
// ingestion tests.
func UnmarshalReport(r io.Reader) (Report, error) {
	var doc Report
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return doc, err
	}
	return doc, nil
}
