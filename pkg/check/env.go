package check

// BindingKind distinguishes a textual capture from a numeric one.
type BindingKind int

const (
	BindingText BindingKind = iota
	BindingNumeric
)

// Binding is the value currently held by a variable name: a textual capture
// or a numeric one tagged with the Format it was captured under, so a later
// textual reference re-renders identically to what matched.
type Binding struct {
	Kind    BindingKind
	Text    string
	Numeric int64
	Format  Format
}

// RenderText returns the binding's value as the literal text a reference
// segment should match against.
func (b Binding) RenderText() string {
	if b.Kind == BindingNumeric {
		return b.Format.Render(b.Numeric)
	}
	return b.Text
}

// Env is the Variable Environment: a mapping from name to last-bound value,
// with a scope stack pushed on entry to a CHECK-LABEL region and popped on
// exit, when scoping is enabled. Scope 0 is the base scope and is never
// popped; it holds -D pre-bindings and, when scoping is disabled, everything.
type Env struct {
	scopes []map[string]Binding
}

// NewEnv returns an Env with a single base scope.
func NewEnv() *Env {
	return &Env{scopes: []map[string]Binding{{}}}
}

func (e *Env) top() map[string]Binding {
	return e.scopes[len(e.scopes)-1]
}

// BindText stores a textual binding, rebinding silently if name was already
// bound. Returns true if value is empty, so callers can apply the
// empty-capture warning/error policy.
func (e *Env) BindText(name, value string) (empty bool) {
	e.top()[name] = Binding{Kind: BindingText, Text: value}
	return value == ""
}

// BindNumeric stores a numeric binding tagged with the Format it was
// captured under.
func (e *Env) BindNumeric(name string, value int64, format Format) {
	e.top()[name] = Binding{Kind: BindingNumeric, Numeric: value, Format: format}
}

// Lookup searches from the innermost active scope outward so that bindings
// made before scoping was enabled (e.g. -D pre-binds) remain visible, while
// a name rebound in an inner scope shadows the outer one.
func (e *Env) Lookup(name string) (Binding, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if b, ok := e.scopes[i][name]; ok {
			return b, true
		}
	}
	return Binding{}, false
}

// PushScope opens a new scope frame on entry to a labeled region.
func (e *Env) PushScope() {
	e.scopes = append(e.scopes, map[string]Binding{})
}

// PopScope discards the innermost scope frame's bindings on exit from a
// labeled region. It is a no-op if only the base scope remains.
func (e *Env) PopScope() {
	if len(e.scopes) > 1 {
		e.scopes = e.scopes[:len(e.scopes)-1]
	}
}
