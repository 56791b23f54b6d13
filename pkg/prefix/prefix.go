/*
	Package prefix recognizes directive labels — a configured prefix like
	"CHECK" crossed with a directive-kind suffix like "-NEXT" — at the head
	of a check-file line.

	This is the same shape of problem the classic getopt(1) solves for long
	options: given a set of known tokens, find the longest one that matches
	what's actually there, preferring an earlier match over a later one
	when more than one token could start at different positions. Scanner
	below keeps that functional-options builder shape (New(opts...) with an
	Opts-like configuration struct) but answers "which directive label
	starts here" instead of "which --flag did the user type".
*/
package prefix

import "strings"

// kindSuffixes is every recognized directive-kind suffix. No suffix is a
// prefix of another, so their order does not matter; the bare "" suffix is
// the fallback when none of them follows the prefix. "-COUNT-" is handled
// separately since it takes a numeric argument.
var kindSuffixes = []string{"-NEXT", "-SAME", "-NOT", "-EMPTY", "-LABEL", "-DAG"}

const literalSuffix = "{LITERAL}"

// Opt configures a Scanner.
type Opt func(*Scanner)

// WithPrefixes adds recognized check-prefix labels. There is no default: a
// Scanner built without WithPrefixes recognizes no directive.
func WithPrefixes(prefixes ...string) Opt {
	return func(s *Scanner) {
		s.prefixes = append(s.prefixes, prefixes...)
	}
}

// WithCommentPrefixes sets prefixes that, when matched at or before a
// check-prefix directive on the same line, suppress that directive (the
// line is treated as a plain comment instead).
func WithCommentPrefixes(prefixes ...string) Opt {
	return func(s *Scanner) {
		s.commentPrefixes = append(s.commentPrefixes, prefixes...)
	}
}

// Scanner recognizes directive labels given a configured set of prefixes.
type Scanner struct {
	prefixes        []string
	commentPrefixes []string
}

// New builds a Scanner from options.
func New(opts ...Opt) *Scanner {
	s := &Scanner{}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Kind is the directive-kind suffix a Match carries, "" for a bare CHECK.
type Kind string

const (
	KindCheck Kind = ""
	KindNext  Kind = "-NEXT"
	KindSame  Kind = "-SAME"
	KindNot   Kind = "-NOT"
	KindEmpty Kind = "-EMPTY"
	KindLabel Kind = "-LABEL"
	KindDag   Kind = "-DAG"
	KindCount Kind = "-COUNT"
)

// Match describes one recognized directive label.
type Match struct {
	Prefix     string // the matched check-prefix, e.g. "CHECK"
	Kind       Kind
	Count      int  // valid when Kind == KindCount
	Literal    bool // {LITERAL} suffix was present
	HeadIndex  int  // byte index in the line where Prefix begins
	PayloadIdx int  // byte index in the line right after the label's ':'
}

// Scan finds the directive label that starts earliest in line; ties are
// broken by preferring the longest Kind suffix. It returns false if no
// configured prefix forms a well-formed label (prefix+kind[+{LITERAL}]+":")
// anywhere in the line, or if a comment prefix suppresses the line. A
// comment prefix is parsed and discarded on sight: unlike a check prefix it
// does not need a kind suffix or a trailing ':' of its own to count, so
// "// CHECK: ..." is suppressed by a bare "//" even though "// " has no
// ':' immediately after it.
func (s *Scanner) Scan(line string) (Match, bool) {
	best, found := s.scanPrefixes(s.prefixes, line)
	if !found {
		return Match{}, false
	}

	if idx, ok := s.scanBareTokens(s.commentPrefixes, line); ok && idx <= best.HeadIndex {
		return Match{}, false
	}

	return best, true
}

func (s *Scanner) scanPrefixes(prefixes []string, line string) (Match, bool) {
	best := Match{}
	bestIdx := -1

	for startIdx := 0; startIdx < len(line); startIdx++ {
		if !atTokenStart(line, startIdx) {
			continue
		}
		for _, p := range prefixes {
			m, ok := matchLabel(p, line, startIdx)
			if !ok {
				continue
			}
			if bestIdx == -1 || startIdx < bestIdx || (startIdx == bestIdx && len(m.Kind) > len(best.Kind)) {
				best, bestIdx = m, startIdx
			}
		}
	}

	return best, bestIdx != -1
}

// scanBareTokens finds the earliest token-start index at which one of
// tokens occurs literally in line. Unlike scanPrefixes/matchLabel, it
// requires nothing beyond the literal text itself: a comment prefix
// suppresses a line just by appearing on it.
func (s *Scanner) scanBareTokens(tokens []string, line string) (int, bool) {
	best := -1
	for startIdx := 0; startIdx < len(line); startIdx++ {
		if !atTokenStart(line, startIdx) {
			continue
		}
		for _, t := range tokens {
			if t == "" {
				continue
			}
			if strings.HasPrefix(line[startIdx:], t) && (best == -1 || startIdx < best) {
				best = startIdx
			}
		}
	}
	return best, best != -1
}

// atTokenStart reports whether idx is not preceded by a word character, so
// a prefix like "CHECK" doesn't match in the middle of "FOOCHECK".
func atTokenStart(line string, idx int) bool {
	if idx == 0 {
		return true
	}
	c := line[idx-1]
	isWord := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
	return !isWord
}

func matchLabel(prefix, line string, startIdx int) (Match, bool) {
	if !strings.HasPrefix(line[startIdx:], prefix) {
		return Match{}, false
	}
	rest := line[startIdx+len(prefix):]

	if strings.HasPrefix(rest, string(KindCount)+"-") {
		digits := rest[len(KindCount)+1:]
		n, dlen := leadingDigits(digits)
		if dlen == 0 {
			return Match{}, false
		}
		return finishMatch(prefix, KindCount, n, startIdx, len(prefix)+len(KindCount)+1+dlen, digits[dlen:])
	}

	for _, k := range kindSuffixes {
		if strings.HasPrefix(rest, k) {
			return finishMatch(prefix, Kind(k), 0, startIdx, len(prefix)+len(k), rest[len(k):])
		}
	}

	return finishMatch(prefix, KindCheck, 0, startIdx, len(prefix), rest)
}

func finishMatch(prefix string, kind Kind, count, startIdx, labelLen int, remainder string) (Match, bool) {
	literal := false
	if strings.HasPrefix(remainder, literalSuffix) {
		literal = true
		remainder = remainder[len(literalSuffix):]
		labelLen += len(literalSuffix)
	}
	if !strings.HasPrefix(remainder, ":") {
		return Match{}, false
	}
	return Match{
		Prefix:     prefix,
		Kind:       kind,
		Count:      count,
		Literal:    literal,
		HeadIndex:  startIdx,
		PayloadIdx: startIdx + labelLen + 1,
	}, true
}

func leadingDigits(s string) (value, length int) {
	for length < len(s) && s[length] >= '0' && s[length] <= '9' {
		value = value*10 + int(s[length]-'0')
		length++
	}
	return value, length
}
