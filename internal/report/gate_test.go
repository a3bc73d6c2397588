package report

import (
	"reflect"
	"testing"

	"github.com/varalys/asmscan/internal/types"
)

func sampleFindings() []types.Finding {
	return []types.Finding{
		{RuleID: "A", Severity: types.SevLow, Location: "a"},
		{RuleID: "B", Severity: types.SevHigh, Location: "b", Guidance: &types.Guidance{Remediation: "fix b"}},
		{RuleID: "C", Severity: types.SevMedium, Location: "c"},
		{RuleID: "D", Severity: types.SevMedium, Location: "d", Guidance: &types.Guidance{Remediation: "fix d", IsRemediable: true}},
	}
}

func TestFilterForDisplay_Verbose(t *testing.T) {
	fs := sampleFindings()
	if got := FilterForDisplay(fs, true); !reflect.DeepEqual(got, fs) {
		t.Fatalf("verbose filter must return all findings in order; got %#v", got)
	}
}

func TestFilterForDisplay_GuidanceOnly(t *testing.T) {
	got := FilterForDisplay(sampleFindings(), false)
	if len(got) != 2 || got[0].RuleID != "B" || got[1].RuleID != "D" {
		t.Fatalf("expected B and D in order; got %#v", got)
	}
	for _, f := range got {
		if f.Guidance == nil {
			t.Fatalf("filtered finding without guidance: %#v", f)
		}
	}
}

func TestFilterForDisplay_NeverNil(t *testing.T) {
	if got := FilterForDisplay(nil, false); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestShouldFail(t *testing.T) {
	fs := sampleFindings()
	tests := []struct {
		failOn string
		fail   bool
		count  int
	}{
		{"low", true, 4},
		{"Medium", true, 3},
		{"HIGH", true, 1},
		{"critical", false, 0},
		{"", false, 0},
		{"bogus", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.failOn, func(t *testing.T) {
			fail, n := ShouldFail(fs, tt.failOn)
			if fail != tt.fail || n != tt.count {
				t.Fatalf("ShouldFail(%q) = %v, %d; want %v, %d", tt.failOn, fail, n, tt.fail, tt.count)
			}
		})
	}
}

func TestShouldFail_Monotonic(t *testing.T) {
	sets := [][]types.Finding{
		nil,
		{{Severity: types.SevLow}},
		{{Severity: types.SevMedium}},
		{{Severity: types.SevHigh}},
		{{Severity: types.SevCritical}, {Severity: types.SevLow}},
	}
	levels := []string{"Low", "Medium", "High", "Critical"}
	for _, fs := range sets {
		prev := -1
		for i, lvl := range levels {
			fail, n := ShouldFail(fs, lvl)
			if fail != (n > 0) {
				t.Fatalf("fail must equal count>0 at %s", lvl)
			}
			if i > 0 && n > prev {
				t.Fatalf("count must not grow with a stricter threshold: %s=%d > %d", lvl, n, prev)
			}
			prev = n
		}
	}
}

func TestShouldFail_UnrecognizedNeverFails(t *testing.T) {
	fs := []types.Finding{{Severity: types.SevCritical}, {Severity: types.SevHigh}}
	for _, v := range []string{"", "none", "info", "error", "4"} {
		if fail, _ := ShouldFail(fs, v); fail {
			t.Fatalf("failOn %q must not trigger failure", v)
		}
	}
}
