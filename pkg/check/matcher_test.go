package check_test

import (
	"strings"
	"testing"

	"github.com/AntonLydike/filecheck/pkg/check"
)

func run(t *testing.T, checkContent, input string, opts ...check.Option) *check.Result {
	t.Helper()
	result, err := check.Run("t.check", checkContent, strings.NewReader(input), opts...)
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	return result
}

func diagMessages(result *check.Result) []string {
	var msgs []string
	for _, d := range result.Diagnostics {
		msgs = append(msgs, d.Error())
	}
	return msgs
}

// Scenario 1: adjacency via CHECK-LABEL + CHECK-NEXT + CHECK-NEXT.
func TestScenarioAdjacency(t *testing.T) {
	checkContent := strings.Join([]string{
		"CHECK-LABEL: define @kernel",
		"CHECK-NEXT: entry:",
		"CHECK-NEXT: ret void",
	}, "\n")
	input := strings.Join([]string{
		"; preamble that should be skipped",
		"define @kernel",
		"entry:",
		"ret void",
	}, "\n")

	result := run(t, checkContent, input)
	if !result.Pass {
		t.Fatalf("Run() Pass = false, diagnostics: %v", diagMessages(result))
	}
}

func TestScenarioAdjacencyFailsOnGap(t *testing.T) {
	checkContent := strings.Join([]string{
		"CHECK-LABEL: define @kernel",
		"CHECK-NEXT: entry:",
		"CHECK-NEXT: ret void",
	}, "\n")
	input := strings.Join([]string{
		"define @kernel",
		"entry:",
		"; an extra line breaks CHECK-NEXT adjacency",
		"ret void",
	}, "\n")

	result := run(t, checkContent, input)
	if result.Pass {
		t.Fatal("Run() Pass = true, want false (CHECK-NEXT adjacency broken by extra line)")
	}
}

// Scenario 2: capture and back-reference.
func TestScenarioCaptureAndBackReference(t *testing.T) {
	checkContent := strings.Join([]string{
		"CHECK: %[[REG:[a-z0-9]+]] = load i32",
		"CHECK: store i32 %[[REG]]",
	}, "\n")
	input := strings.Join([]string{
		"%tmp1 = load i32",
		"store i32 %tmp1",
	}, "\n")

	result := run(t, checkContent, input)
	if !result.Pass {
		t.Fatalf("Run() Pass = false, diagnostics: %v", diagMessages(result))
	}
}

func TestScenarioBackReferenceMismatchFails(t *testing.T) {
	checkContent := strings.Join([]string{
		"CHECK: %[[REG:[a-z0-9]+]] = load i32",
		"CHECK: store i32 %[[REG]]",
	}, "\n")
	input := strings.Join([]string{
		"%tmp1 = load i32",
		"store i32 %tmp2",
	}, "\n")

	result := run(t, checkContent, input)
	if result.Pass {
		t.Fatal("Run() Pass = true, want false (back-reference does not match captured value)")
	}
}

// Scenario 3: DAG permutation, independent order in the input.
func TestScenarioDagPermutation(t *testing.T) {
	checkContent := strings.Join([]string{
		"CHECK-DAG: alpha",
		"CHECK-DAG: beta",
		"CHECK-DAG: gamma",
	}, "\n")
	input := strings.Join([]string{
		"gamma line",
		"alpha line",
		"beta line",
	}, "\n")

	result := run(t, checkContent, input)
	if !result.Pass {
		t.Fatalf("Run() Pass = false, diagnostics: %v", diagMessages(result))
	}
}

// Scenario 4: DAG failure interleaved with CHECK-NOT.
func TestScenarioDagWithInterleavedNot(t *testing.T) {
	checkContent := strings.Join([]string{
		"CHECK-DAG: alpha",
		"CHECK-NOT: forbidden",
		"CHECK-DAG: beta",
	}, "\n")

	passing := strings.Join([]string{
		"alpha line",
		"beta line",
	}, "\n")
	if result := run(t, checkContent, passing); !result.Pass {
		t.Fatalf("Run() Pass = false for clean interleave, diagnostics: %v", diagMessages(result))
	}

	failing := strings.Join([]string{
		"alpha line",
		"forbidden line",
		"beta line",
	}, "\n")
	if result := run(t, checkContent, failing); result.Pass {
		t.Fatal("Run() Pass = true, want false (forbidden string present inside the DAG group span)")
	}
}

// Scenario 5: numeric capture and format round-trip.
func TestScenarioNumericCaptureRoundTrip(t *testing.T) {
	checkContent := strings.Join([]string{
		"CHECK: addr = [[#%.8X,ADDR:]]",
		"CHECK: next  = [[#ADDR]]",
	}, "\n")
	input := strings.Join([]string{
		"addr = FF00FF00",
		"next  = FF00FF00",
	}, "\n")

	result := run(t, checkContent, input)
	if !result.Pass {
		t.Fatalf("Run() Pass = false, diagnostics: %v", diagMessages(result))
	}
}

func TestScenarioNumericCaptureRoundTripMismatch(t *testing.T) {
	checkContent := strings.Join([]string{
		"CHECK: addr = [[#%.8X,ADDR:]]",
		"CHECK: next  = [[#ADDR]]",
	}, "\n")
	input := strings.Join([]string{
		"addr = FF00FF00",
		"next  = 000000FF",
	}, "\n")

	result := run(t, checkContent, input)
	if result.Pass {
		t.Fatal("Run() Pass = true, want false (re-rendered numeral does not match)")
	}
}

// Scenario 6: empty capture with reject-empty-vars.
func TestScenarioEmptyCaptureRejected(t *testing.T) {
	checkContent := "CHECK: value=[[VAL:]]"
	input := "value="

	warnOnly := run(t, checkContent, input)
	if !warnOnly.Pass {
		t.Fatalf("Run() without WithRejectEmptyCaptures Pass = false, want true (warning only), diagnostics: %v", diagMessages(warnOnly))
	}
	sawWarning := false
	for _, d := range warnOnly.Diagnostics {
		if d.Severity == check.SevWarning {
			sawWarning = true
		}
	}
	if !sawWarning {
		t.Error("no warning diagnostic recorded for the empty capture")
	}

	rejected := run(t, checkContent, input, check.WithRejectEmptyCaptures())
	if rejected.Pass {
		t.Fatal("Run() with WithRejectEmptyCaptures Pass = true, want false")
	}
}

// Additional coverage beyond the six headline scenarios.

func TestCheckSameRemainderContinuation(t *testing.T) {
	checkContent := strings.Join([]string{
		"CHECK: foo:",
		"CHECK-SAME: bar",
	}, "\n")
	input := "foo: bar baz"

	result := run(t, checkContent, input)
	if !result.Pass {
		t.Fatalf("Run() Pass = false, diagnostics: %v", diagMessages(result))
	}
}

func TestCheckSameFailsWhenRemainderExhausted(t *testing.T) {
	checkContent := strings.Join([]string{
		"CHECK: foo:",
		"CHECK-SAME: bar",
	}, "\n")
	input := "foo:"

	result := run(t, checkContent, input)
	if result.Pass {
		t.Fatal("Run() Pass = true, want false (nothing left on the line for CHECK-SAME to match)")
	}
}

func TestCheckEmptyRequiresBlankLine(t *testing.T) {
	checkContent := strings.Join([]string{
		"CHECK: header",
		"CHECK-EMPTY:",
		"CHECK: footer",
	}, "\n")

	if result := run(t, checkContent, "header\n\nfooter"); !result.Pass {
		t.Fatalf("Run() Pass = false, diagnostics: %v", diagMessages(result))
	}
	if result := run(t, checkContent, "header\nfooter"); result.Pass {
		t.Fatal("Run() Pass = true, want false (no blank line present)")
	}
}

func TestCheckCountMatchesExactWindow(t *testing.T) {
	checkContent := "CHECK-COUNT-3: item"
	if result := run(t, checkContent, "item 1\nitem 2\nitem 3"); !result.Pass {
		t.Fatalf("Run() Pass = false, diagnostics: %v", diagMessages(result))
	}
	if result := run(t, checkContent, "item 1\nitem 2\ncompletely different"); result.Pass {
		t.Fatal("Run() Pass = true, want false (third line breaks the count window)")
	}
}

func TestCheckCountDoesNotPartiallyBindOnFailedWindow(t *testing.T) {
	checkContent := strings.Join([]string{
		"CHECK-COUNT-2: val=[[V:[a-z]+]]",
		"CHECK: final=[[V]]",
	}, "\n")
	input := strings.Join([]string{
		"val=aa",
		"not a match",
		"val=bb",
		"final=bb",
	}, "\n")

	result := run(t, checkContent, input)
	if result.Pass {
		t.Fatal("Run() Pass = true, want false (no two-line window of val= exists)")
	}
	unbound := false
	for _, msg := range diagMessages(result) {
		if strings.Contains(msg, `undefined variable "V"`) {
			unbound = true
		}
	}
	if !unbound {
		t.Errorf("no undefined-variable diagnostic for V, so the failed window left a binding; diagnostics: %v", diagMessages(result))
	}
}

func TestVarScopeResetsAcrossLabelRegions(t *testing.T) {
	checkContent := strings.Join([]string{
		"CHECK-LABEL: region_a:",
		"CHECK: x=[[V:[a-z0-9]+]]",
		"CHECK-LABEL: region_b:",
		"CHECK: x=[[V]]",
	}, "\n")
	input := strings.Join([]string{
		"region_a:",
		"x=one",
		"region_b:",
		"x=one",
	}, "\n")

	withoutScope := run(t, checkContent, input)
	if !withoutScope.Pass {
		t.Fatalf("Run() without WithVarScope Pass = false, diagnostics: %v", diagMessages(withoutScope))
	}

	withScope := run(t, checkContent, input, check.WithVarScope())
	if withScope.Pass {
		t.Fatal("Run() with WithVarScope Pass = true, want false (V is unbound again in region_b's fresh scope)")
	}
}

func TestDefinePreBindsVariable(t *testing.T) {
	checkContent := "CHECK: version [[VER]]"
	result := run(t, checkContent, "version 3.1", check.WithDefine("VER", "3.1"))
	if !result.Pass {
		t.Fatalf("Run() Pass = false, diagnostics: %v", diagMessages(result))
	}
}

func TestMatchFullLinesAnchorsWholeLine(t *testing.T) {
	checkContent := "CHECK: exact line"
	if result := run(t, checkContent, "exact line", check.WithMatchFullLines()); !result.Pass {
		t.Fatalf("Run() Pass = false, diagnostics: %v", diagMessages(result))
	}
	if result := run(t, checkContent, "exact line trailing", check.WithMatchFullLines()); result.Pass {
		t.Fatal("Run() Pass = true, want false (trailing text violates full-line anchoring)")
	}
}

func TestCommentPrefixSuppressesDirective(t *testing.T) {
	checkContent := "// CHECK: should not run\nCHECK: foo"
	result := run(t, checkContent, "foo", check.WithCommentPrefixes("//"))
	if !result.Pass {
		t.Fatalf("Run() Pass = false, diagnostics: %v", diagMessages(result))
	}
}

func TestEmptyInputFailsByDefault(t *testing.T) {
	result := run(t, "CHECK: foo", "")
	if result.Pass {
		t.Fatal("Run() Pass = true, want false (empty input without WithAllowEmpty)")
	}

	allowed := run(t, "CHECK: foo", "", check.WithAllowEmpty())
	if allowed.Pass {
		t.Fatal("Run() Pass = true, want false (CHECK: foo still needs to match something)")
	}
}

type stubNearMiss struct {
	line string
	ok   bool
}

func (s stubNearMiss) BestMatch(lines []string, pattern string) (string, bool) {
	return s.line, s.ok
}

func TestNearMissAdvisoryAttachedToFailure(t *testing.T) {
	result := run(t, "CHECK: needle", "haystack one\nhaystack two",
		check.WithNearMiss(stubNearMiss{line: "haystack two", ok: true}))
	if result.Pass {
		t.Fatal("Run() Pass = true, want false")
	}
	found := false
	for _, d := range result.Diagnostics {
		if d.NearMiss == "haystack two" {
			found = true
		}
	}
	if !found {
		t.Error("no diagnostic carries the stub near-miss advisory")
	}
}
