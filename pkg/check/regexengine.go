package check

import (
	"fmt"

	"github.com/dlclark/regexp2"
)

// RegexMatch is the result of a successful search: the matched span and any
// named groups it bound.
type RegexMatch struct {
	Start, End int
	Text       string
	groups     map[string]string
}

// Group returns the text captured by a named group, or "" if the group did
// not participate in the match.
func (m *RegexMatch) Group(name string) string {
	return m.groups[name]
}

// RegexPattern is a compiled regular expression. It is the concrete
// implementation of the regex-engine contract described in the design
// notes (compile/search with named-group support); everything upstream of
// this file works only against RegexPattern/RegexMatch, never against
// regexp2 directly, so the engine could be swapped without touching the
// Pattern Compiler or Matcher.
type RegexPattern struct {
	re     *regexp2.Regexp
	source string
}

// Source returns the regex text this RegexPattern was compiled from, used
// by the near-miss advisory to score candidate lines for a failed match.
func (p *RegexPattern) Source() string { return p.source }

// CompileRegex compiles source as a PCRE-flavored pattern with named
// capture group support, backed by regexp2 (a backtracking, .NET/PCRE
// style engine with named groups, the shape the Pattern Compiler's
// materialized patterns rely on for back-reference-free, per-attempt
// capture extraction).
func CompileRegex(source string) (*RegexPattern, error) {
	re, err := regexp2.Compile(source, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("check: invalid pattern %q: %w", source, err)
	}
	return &RegexPattern{re: re, source: source}, nil
}

// Search finds the first match at or after the rune index start. It returns
// (nil, nil) when there is no match anywhere in text from start onward.
func (p *RegexPattern) Search(text string, start int) (*RegexMatch, error) {
	m, err := p.re.FindStringMatchStartingAt(text, start)
	if err != nil {
		return nil, fmt.Errorf("check: match error: %w", err)
	}
	if m == nil {
		return nil, nil
	}

	groups := make(map[string]string)
	for _, g := range m.Groups() {
		if g.Name == "" || g.Name == "0" {
			continue
		}
		if len(g.Captures) > 0 {
			groups[g.Name] = g.String()
		}
	}

	return &RegexMatch{
		Start:  m.Index,
		End:    m.Index + m.Length,
		Text:   m.String(),
		groups: groups,
	}, nil
}
