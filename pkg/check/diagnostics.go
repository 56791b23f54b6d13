package check

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Severity is a Diagnostic's level.
type Severity int

const (
	SevError Severity = iota
	SevWarning
	SevNote
)

func (s Severity) String() string {
	switch s {
	case SevWarning:
		return "warning"
	case SevNote:
		return "note"
	default:
		return "error"
	}
}

// Diagnostic is a single structured entry: a parse error, a match failure,
// a warning, or an advisory note, tied back to the directive (and, where
// applicable, the input line) that produced it.
type Diagnostic struct {
	Severity  Severity
	Loc       SourceLocation
	InputLine int // -1 when not applicable
	Message   string
	NearMiss  string // advisory candidate line text, empty if none
}

func (d *Diagnostic) Error() string {
	if d.InputLine >= 0 {
		return fmt.Sprintf("%s:%d: %s: %s (input line %d)", d.Loc.File, d.Loc.Line, d.Severity, d.Message, d.InputLine+1)
	}
	return fmt.Sprintf("%s:%d: %s: %s", d.Loc.File, d.Loc.Line, d.Severity, d.Message)
}

// Diagnostics accumulates the Diagnostic entries produced over one run and
// derives the overall verdict from them: failure iff any Error-severity
// entry was recorded. It is backed by hashicorp/go-multierror, which exists
// precisely to combine many independently-raised errors into one verdict
// without hand-rolled slice plumbing.
type Diagnostics struct {
	all      *multierror.Error
	entries  []*Diagnostic
	hasError bool
}

// NewDiagnostics returns an empty collector.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{all: &multierror.Error{}}
}

// Add records d. Error-severity diagnostics flip the run's verdict to
// failure; warnings and notes do not.
func (c *Diagnostics) Add(d *Diagnostic) {
	c.entries = append(c.entries, d)
	if d.Severity == SevError {
		c.hasError = true
		c.all = multierror.Append(c.all, d)
	}
}

// Errorf is a convenience that builds and adds an Error-severity Diagnostic
// with no associated input line.
func (c *Diagnostics) Errorf(loc SourceLocation, format string, args ...interface{}) {
	c.Add(&Diagnostic{Severity: SevError, Loc: loc, InputLine: -1, Message: fmt.Sprintf(format, args...)})
}

// Warnf is a convenience for a Warning-severity Diagnostic.
func (c *Diagnostics) Warnf(loc SourceLocation, format string, args ...interface{}) {
	c.Add(&Diagnostic{Severity: SevWarning, Loc: loc, InputLine: -1, Message: fmt.Sprintf(format, args...)})
}

// Entries returns every recorded Diagnostic, in the order added.
func (c *Diagnostics) Entries() []*Diagnostic { return c.entries }

// Failed reports the run's overall verdict: true iff any Error-severity
// diagnostic was recorded.
func (c *Diagnostics) Failed() bool { return c.hasError }

// Err returns the combined multierror.Error of every Error-severity
// diagnostic, or nil if the run succeeded.
func (c *Diagnostics) Err() error { return c.all.ErrorOrNil() }

// UnboundVariableError is returned by Pattern materialization when a
// Reference segment names a variable with no current binding. It is a
// match-time error, not a parse error, since a reference can only be
// resolved once the Env holding its binding exists, so it is returned from
// Materialize rather than Compile.
type UnboundVariableError struct {
	Name string
}

func (e *UnboundVariableError) Error() string {
	return fmt.Sprintf("check: undefined variable %q", e.Name)
}
