/*
	Package nearmiss gives a failed directive match an advisory "did you mean
	this line" candidate. It parses the failed pattern with regexp/syntax
	to pull out its literal runs, then scores each candidate line by how
	many of those runs it contains. The highest-scoring line is offered as
	the near miss; it is never used to decide pass/fail.
*/
package nearmiss

import (
	"regexp/syntax"
	"strings"
)

// Finder implements check.NearMissFinder.
type Finder struct{}

// New returns a Finder.
func New() *Finder {
	return &Finder{}
}

// BestMatch scores every line in lines against the literal runs extracted
// from pattern and returns the highest-scoring one. It reports false if
// pattern has no extractable literal runs, or if no candidate line scores
// above zero.
func (f *Finder) BestMatch(lines []string, pattern string) (string, bool) {
	literals := literalRuns(pattern)
	if len(literals) == 0 {
		return "", false
	}

	bestLine := ""
	bestScore := 0
	for _, line := range lines {
		score := scoreLine(line, literals)
		if score > bestScore {
			bestScore, bestLine = score, line
		}
	}
	if bestScore == 0 {
		return "", false
	}
	return bestLine, true
}

// literalRuns walks pattern's parsed syntax tree and collects every
// literal (non-meta) run of at least 2 runes.
//
// pattern here is a materialized regexp2 pattern, which names captures with
// (?<name>...). regexp/syntax accepts that group syntax from Go 1.22 on;
// built with an older toolchain, Parse rejects any pattern with a capture,
// literalRuns returns nil for it, and no near miss is offered for
// capture-bearing directives.
func literalRuns(pattern string) []string {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil
	}

	var out []string
	var walk func(*syntax.Regexp)
	walk = func(r *syntax.Regexp) {
		if r.Op == syntax.OpLiteral && len(r.Rune) >= 2 {
			out = append(out, string(r.Rune))
		}
		for _, sub := range r.Sub {
			walk(sub)
		}
	}
	walk(re)
	return out
}

// scoreLine counts how many literal runs appear in line, weighted by run
// length so a long exact fragment outweighs several short ones.
func scoreLine(line string, literals []string) int {
	score := 0
	for _, lit := range literals {
		if strings.Contains(line, lit) {
			score += len(lit)
		}
	}
	return score
}
