package report

import "github.com/varalys/asmscan/internal/types"

// FilterForDisplay selects the findings a report shows. Verbose reports
// show everything; otherwise only findings that carry developer guidance
// are kept. Order is preserved and the result is never nil.
func FilterForDisplay(findings []types.Finding, verbose bool) []types.Finding {
	out := make([]types.Finding, 0, len(findings))
	for _, f := range findings {
		if verbose || f.HasGuidance() {
			out = append(out, f)
		}
	}
	return out
}
