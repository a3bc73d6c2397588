package report

import "github.com/varalys/asmscan/internal/types"

// ShouldFail counts findings at or above the failOn severity and reports
// whether any exist. An empty or unrecognized failOn disables the gate.
//
// Callers must pass the unfiltered findings so display filtering can never
// hide a failure.
func ShouldFail(findings []types.Finding, failOn string) (bool, int) {
	th, ok := types.ParseSeverity(failOn)
	if !ok {
		return false, 0
	}
	n := 0
	for _, f := range findings {
		if f.Severity.IsAtLeast(th) {
			n++
		}
	}
	return n > 0, n
}
