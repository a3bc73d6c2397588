// internal/report/sarif.go
package report

import (
	"encoding/json"
	"io"

	"github.com/varalys/asmscan/internal/types"
)

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
	HelpURI          string       `json:"helpUri,omitempty"`
	Help             *sarifText   `json:"help,omitempty"`
}

type sarifText struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID     string            `json:"ruleId,omitempty"`
	RuleIndex  *int              `json:"ruleIndex,omitempty"`
	Level      string            `json:"level"`
	Message    sarifMessage      `json:"message"`
	Locations  []sarifLoc        `json:"locations"`
	Properties map[string]string `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys      `json:"physicalLocation"`
	LogicalLocations []sarifLogical `json:"logicalLocations,omitempty"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt `json:"artifactLocation"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

type sarifLogical struct {
	FullyQualifiedName string `json:"fullyQualifiedName"`
}

const sarifSchema = "https://json.schemastore.org/sarif-2.1.0.json"

func sevToLevel(s types.Severity) string {
	switch s {
	case types.SevCritical, types.SevHigh:
		return "error"
	case types.SevMedium:
		return "warning"
	default:
		return "note"
	}
}

// WriteSARIF writes findings as SARIF 2.1.0 to the provided writer. Rules
// are deduplicated by id in first-seen order and results link to them
// through ruleIndex.
func WriteSARIF(w io.Writer, assembly string, findings []types.Finding) error {
	run := sarifRun{
		Tool:    sarifTool{Driver: sarifDriver{Name: "asmscan", Rules: []sarifRule{}}},
		Results: []sarifResult{},
	}
	ruleIdx := map[string]int{}
	for _, f := range findings {
		res := sarifResult{
			RuleID:  f.RuleID,
			Level:   sevToLevel(f.Severity),
			Message: sarifMessage{Text: f.Description},
			Locations: []sarifLoc{{
				PhysicalLocation: sarifPhys{ArtifactLocation: sarifArt{URI: assembly}},
				LogicalLocations: []sarifLogical{{FullyQualifiedName: f.Location}},
			}},
		}
		if f.RuleID != "" {
			idx, ok := ruleIdx[f.RuleID]
			if !ok {
				idx = len(run.Tool.Driver.Rules)
				ruleIdx[f.RuleID] = idx
				run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, newSarifRule(f))
			}
			res.RuleIndex = &idx
		}
		if f.CodeSnippet != "" {
			res.Properties = map[string]string{"codeSnippet": f.CodeSnippet}
		}
		run.Results = append(run.Results, res)
	}
	doc := sarif{Schema: sarifSchema, Version: "2.1.0", Runs: []sarifRun{run}}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func newSarifRule(f types.Finding) sarifRule {
	r := sarifRule{ID: f.RuleID, ShortDescription: sarifMessage{Text: f.Description}}
	if f.Guidance != nil {
		r.HelpURI = f.Guidance.DocumentationURL
		if f.Guidance.Remediation != "" {
			r.Help = &sarifText{Text: f.Guidance.Remediation}
		}
	}
	return r
}
