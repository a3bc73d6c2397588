package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/varalys/asmscan/internal/types"
)

// maxLocations caps how many locations are listed per rule group.
const maxLocations = 3

var separator = strings.Repeat("-", 60)

var (
	sevCriticalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	sevHighStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sevMedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	sevLowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

type PrintOptions struct {
	Verbose bool
	NoColor bool
}

// ruleGroup collects the findings reported under one rule id.
type ruleGroup struct {
	ruleID   string
	findings []types.Finding
	// rep is the first finding carrying the group's highest severity.
	rep types.Finding
}

// PrintText writes the human-readable report for findings that have
// already been filtered for display.
func PrintText(w io.Writer, assembly string, findings []types.Finding, opts PrintOptions) {
	fmt.Fprintln(w, "Assembly Security Scan")
	fmt.Fprintln(w, "======================")
	fmt.Fprintf(w, "Assembly: %s\n", assembly)
	fmt.Fprintf(w, "Findings: %d\n", len(findings))
	if len(findings) == 0 {
		fmt.Fprintln(w, "No issues found ✅")
		return
	}

	for _, g := range groupByRule(findings) {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s\n", severityTag(g.rep.Severity, opts.NoColor), g.rep.Description)
		fmt.Fprintf(w, "  Rule: %s\n", g.ruleID)
		fmt.Fprintf(w, "  Occurrences: %d\n", len(g.findings))

		if gd := g.findings[0].Guidance; gd != nil {
			printGuidance(w, gd)
		} else if opts.Verbose {
			fmt.Fprintln(w, "  (no guidance available)")
		}

		fmt.Fprintln(w, "  Locations:")
		for i, f := range g.findings {
			if i == maxLocations {
				fmt.Fprintf(w, "    ... and %d more\n", len(g.findings)-maxLocations)
				break
			}
			fmt.Fprintf(w, "    - %s\n", f.Location)
		}
		fmt.Fprintln(w, separator)
	}
}

func printGuidance(w io.Writer, gd *types.Guidance) {
	fmt.Fprintf(w, "  Guidance: %s\n", gd.Remediation)
	if gd.DocumentationURL != "" {
		fmt.Fprintf(w, "  Docs: %s\n", gd.DocumentationURL)
	}
	if len(gd.AlternativeAPIs) > 0 {
		fmt.Fprintf(w, "  Alternatives: %s\n", strings.Join(gd.AlternativeAPIs, ", "))
	}
	if !gd.IsRemediable {
		fmt.Fprintln(w, "  ⚠ No safe alternative available")
	}
}

// groupByRule groups findings by rule id in first-seen order, then sorts
// the groups by their highest severity, most severe first. The sort is
// stable, so groups with equal severity keep first-seen order. Findings
// without a rule id are left out.
func groupByRule(findings []types.Finding) []*ruleGroup {
	var groups []*ruleGroup
	index := map[string]*ruleGroup{}
	for _, f := range findings {
		if f.RuleID == "" {
			continue
		}
		g, ok := index[f.RuleID]
		if !ok {
			g = &ruleGroup{ruleID: f.RuleID, rep: f}
			index[f.RuleID] = g
			groups = append(groups, g)
		}
		g.findings = append(g.findings, f)
		if f.Severity > g.rep.Severity {
			g.rep = f
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].rep.Severity > groups[j].rep.Severity
	})
	return groups
}

func severityTag(s types.Severity, noColor bool) string {
	tag := "[" + strings.ToUpper(s.String()) + "]"
	if noColor {
		return tag
	}
	switch s {
	case types.SevCritical:
		return sevCriticalStyle.Render(tag)
	case types.SevHigh:
		return sevHighStyle.Render(tag)
	case types.SevMedium:
		return sevMedStyle.Render(tag)
	default:
		return sevLowStyle.Render(tag)
	}
}
