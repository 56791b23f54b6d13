package check

import "fmt"

// NearMissFinder produces an advisory best-candidate line when a positive
// directive fails to match anywhere in its search domain. It is optional;
// the Matcher works correctly with it unset, just without the advisory.
type NearMissFinder interface {
	BestMatch(lines []string, pattern string) (line string, ok bool)
}

// MatcherConfig carries the run-wide flags that shape matching behavior.
type MatcherConfig struct {
	StrictWhitespace bool
	MatchFullLines   bool
	EnableVarScope   bool
	MLIRRegexCls     bool
	AllowEmpty       bool
}

// Matcher is the dispatch core: for each directive in order it selects the
// matching strategy named by its Kind and updates the Cursor and Env
// accordingly, recording a Diagnostic on every failure.
type Matcher struct {
	cursor *Cursor
	env    *Env
	diags  *Diagnostics
	cfg    MatcherConfig

	NearMiss NearMissFinder

	lastMatchLine int // absolute line index of the last positive/NEXT match
	lastMatchEnd  int // column within that line where the match ended

	lastResolvedLine int
	pendingNots      []*Directive

	regionEndCache *int
	labelCacheIdx  int
	inLabelRegion  bool
}

// NewMatcher builds a Matcher over input, reusing env (so -D pre-bindings
// are already visible) and diags (so parse-time diagnostics and match-time
// diagnostics land in one collector).
func NewMatcher(input string, env *Env, diags *Diagnostics, cfg MatcherConfig) *Matcher {
	return &Matcher{
		cursor:           NewCursor(input),
		env:              env,
		diags:            diags,
		cfg:              cfg,
		lastMatchLine:    -1,
		lastResolvedLine: -1,
		labelCacheIdx:    -1,
	}
}

// Run processes directives in order, the Matcher's outer dispatch loop.
func (m *Matcher) Run(directives []*Directive) {
	if !m.cfg.AllowEmpty && m.isEmptyInput() && len(directives) > 0 {
		m.diags.Errorf(directives[0].Loc, "input is empty")
	}

	i := 0
	for i < len(directives) {
		d := directives[i]
		switch d.Kind {
		case KindNot:
			m.pendingNots = append(m.pendingNots, d)
			i++
		case KindDag:
			i = m.applyDagGroup(directives, i)
		case KindLabel:
			m.applyLabel(directives, i)
			i++
		default:
			m.applyPositive(directives, d)
			i++
		}
	}

	m.resolveNots(m.cursor.Len())
}

func (m *Matcher) isEmptyInput() bool {
	if m.cursor.Len() == 0 {
		return true
	}
	if m.cursor.Len() == 1 {
		pos, _ := m.cursor.Current()
		return pos.Text == ""
	}
	return false
}

// resolveNots checks every buffered CHECK-NOT against the half-open
// interval (lastResolvedLine, upperBound) and clears the buffer.
func (m *Matcher) resolveNots(upperBound int) {
	for _, not := range m.pendingNots {
		m.applyNot(not, m.lastResolvedLine+1, upperBound)
	}
	m.pendingNots = nil
	m.lastResolvedLine = upperBound
}

func (m *Matcher) applyNot(d *Directive, lo, hi int) {
	re, _, err := m.materialize(d, MaterializeConfig{
		StrictWhitespace: m.cfg.StrictWhitespace,
		MatchFullLines:   m.cfg.MatchFullLines,
		MLIRRegexCls:     m.cfg.MLIRRegexCls,
	})
	if err != nil {
		m.diags.Errorf(d.Loc, "CHECK-NOT: %s", err)
		return
	}
	for line := lo; line < hi; line++ {
		pos, ok := m.cursor.Line(line)
		if !ok {
			break
		}
		match, err := re.Search(pos.Text, 0)
		if err != nil {
			m.diags.Errorf(d.Loc, "CHECK-NOT: %s", err)
			return
		}
		if match != nil {
			m.diags.Add(&Diagnostic{
				Severity:  SevError,
				Loc:       d.Loc,
				InputLine: line,
				Message:   "CHECK-NOT: excluded string found in input",
			})
			return
		}
	}
}

// applyPositive dispatches CHECK, CHECK-NEXT, CHECK-SAME, CHECK-EMPTY and
// CHECK-COUNT-n, the directive kinds that advance (or continue on) the
// cursor's current line.
func (m *Matcher) applyPositive(directives []*Directive, d *Directive) {
	switch d.Kind {
	case KindCheck:
		m.applyCheck(directives, d)
	case KindNext:
		m.applyNext(d)
	case KindSame:
		m.applySame(d)
	case KindEmpty:
		m.applyEmpty(d)
	case KindCount:
		m.applyCount(directives, d)
	}
}

func (m *Matcher) applyCheck(directives []*Directive, d *Directive) {
	bound := m.regionBound(directives, d)
	re, plans, err := m.materialize(d, MaterializeConfig{
		StrictWhitespace: m.cfg.StrictWhitespace,
		MatchFullLines:   m.cfg.MatchFullLines,
		MLIRRegexCls:     m.cfg.MLIRRegexCls,
	})
	if err != nil {
		m.diags.Errorf(d.Loc, "%s", err)
		return
	}

	start := m.cursor.Index()
	for line := start; line < bound; line++ {
		pos, _ := m.cursor.Line(line)
		match, serr := re.Search(pos.Text, 0)
		if serr != nil {
			m.diags.Errorf(d.Loc, "%s", serr)
			return
		}
		if match == nil {
			continue
		}
		m.resolveNots(line)
		m.commit(d.Loc, plans, match)
		m.lastMatchLine, m.lastMatchEnd = line, match.End
		m.cursor.Seek(line + 1)
		return
	}

	m.reportNoMatch(d, re, start, bound)
}

func (m *Matcher) applyNext(d *Directive) {
	if m.cursor.AtEOF() {
		m.diags.Errorf(d.Loc, "CHECK-NEXT: no next line (end of input)")
		return
	}
	re, plans, err := m.materialize(d, MaterializeConfig{
		StrictWhitespace: m.cfg.StrictWhitespace,
		MatchFullLines:   m.cfg.MatchFullLines,
		MLIRRegexCls:     m.cfg.MLIRRegexCls,
	})
	if err != nil {
		m.diags.Errorf(d.Loc, "%s", err)
		return
	}

	line := m.cursor.Index()
	pos, _ := m.cursor.Current()
	match, serr := re.Search(pos.Text, 0)
	if serr != nil {
		m.diags.Errorf(d.Loc, "%s", serr)
		return
	}
	if match == nil {
		m.reportNoMatch(d, re, line, line+1)
		return
	}
	m.resolveNots(line)
	m.commit(d.Loc, plans, match)
	m.lastMatchLine, m.lastMatchEnd = line, match.End
	m.cursor.Seek(line + 1)
}

// applySame matches against the remainder of the last matched line, after
// the last match's end column, without moving the cursor. Per the
// continuation-anchoring decision, the remainder is matched as its own
// string, so "^"/"$" (forced by --match-full-lines) anchor to the
// remainder's bounds rather than the original line's. A last match end
// past the line's length (only possible if a prior CHECK-SAME exhausted
// it) yields an empty remainder, which simply fails to match rather than
// erroring.
func (m *Matcher) applySame(d *Directive) {
	if m.lastMatchLine < 0 {
		m.diags.Errorf(d.Loc, "CHECK-SAME: no preceding match on this line")
		return
	}
	pos, ok := m.cursor.Line(m.lastMatchLine)
	if !ok {
		m.diags.Errorf(d.Loc, "CHECK-SAME: no preceding match on this line")
		return
	}
	remainder := ""
	if m.lastMatchEnd <= len(pos.Text) {
		remainder = pos.Text[m.lastMatchEnd:]
	}

	re, plans, err := m.materialize(d, MaterializeConfig{
		StrictWhitespace: m.cfg.StrictWhitespace,
		MatchFullLines:   m.cfg.MatchFullLines,
		MLIRRegexCls:     m.cfg.MLIRRegexCls,
	})
	if err != nil {
		m.diags.Errorf(d.Loc, "%s", err)
		return
	}

	match, serr := re.Search(remainder, 0)
	if serr != nil {
		m.diags.Errorf(d.Loc, "%s", serr)
		return
	}
	if match == nil {
		m.diags.Add(&Diagnostic{
			Severity:  SevError,
			Loc:       d.Loc,
			InputLine: m.lastMatchLine,
			Message:   "CHECK-SAME: no match on the remainder of the previous line",
		})
		return
	}
	m.commit(d.Loc, plans, match)
	m.lastMatchEnd += match.End
}

func (m *Matcher) applyEmpty(d *Directive) {
	if m.cursor.AtEOF() {
		m.diags.Errorf(d.Loc, "CHECK-EMPTY: no next line (end of input)")
		return
	}
	line := m.cursor.Index()
	pos, _ := m.cursor.Current()
	if pos.Text != "" {
		m.diags.Add(&Diagnostic{
			Severity:  SevError,
			Loc:       d.Loc,
			InputLine: line,
			Message:   "CHECK-EMPTY: expected an empty line",
		})
		return
	}
	m.resolveNots(line)
	m.lastMatchLine, m.lastMatchEnd = line, 0
	m.cursor.Seek(line + 1)
}

// applyCount finds n consecutive matching lines: the first is found by
// forward search like CHECK, the remaining n-1 must immediately follow it,
// like chained CHECK-NEXTs. It verifies the whole window before binding any
// captures, so a window that matches lines 1..k but fails at k+1 leaves no
// partial bindings in Env.
func (m *Matcher) applyCount(directives []*Directive, d *Directive) {
	bound := m.regionBound(directives, d)
	re, plans, err := m.materialize(d, MaterializeConfig{
		StrictWhitespace: m.cfg.StrictWhitespace,
		MatchFullLines:   m.cfg.MatchFullLines,
		MLIRRegexCls:     m.cfg.MLIRRegexCls,
	})
	if err != nil {
		m.diags.Errorf(d.Loc, "%s", err)
		return
	}

	start := m.cursor.Index()
	for first := start; first < bound; first++ {
		pos, _ := m.cursor.Line(first)
		match, serr := re.Search(pos.Text, 0)
		if serr != nil {
			m.diags.Errorf(d.Loc, "%s", serr)
			return
		}
		if match == nil {
			continue
		}

		matches := []*RegexMatch{match}
		ok := true
		for k := 1; k < d.Count; k++ {
			line := first + k
			if line >= bound {
				ok = false
				break
			}
			p, _ := m.cursor.Line(line)
			mk, serr := re.Search(p.Text, 0)
			if serr != nil {
				m.diags.Errorf(d.Loc, "%s", serr)
				return
			}
			if mk == nil {
				ok = false
				break
			}
			matches = append(matches, mk)
		}
		if !ok {
			continue
		}

		m.resolveNots(first)
		for _, mk := range matches {
			m.commit(d.Loc, plans, mk)
		}
		last := first + d.Count - 1
		m.lastMatchLine, m.lastMatchEnd = last, matches[len(matches)-1].End
		m.cursor.Seek(last + 1)
		return
	}

	m.reportNoMatch(d, re, start, bound)
}

// applyDagGroup consumes the maximal run of CHECK-DAG directives (and any
// CHECK-NOT directives interleaved among them) starting at idx, and returns
// the index of the first directive past the group.
func (m *Matcher) applyDagGroup(directives []*Directive, idx int) int {
	groupStart := m.cursor.Index()
	bound := m.regionBound(directives, directives[idx])
	m.resolveNots(groupStart)

	used := make(map[int]bool)
	maxLine := groupStart - 1
	var groupNots []*Directive

	i := idx
	for i < len(directives) {
		d := directives[i]
		if d.Kind == KindNot {
			j := i + 1
			for j < len(directives) && directives[j].Kind == KindNot {
				j++
			}
			if j == len(directives) || directives[j].Kind != KindDag {
				break
			}
			groupNots = append(groupNots, d)
			i++
			continue
		}
		if d.Kind != KindDag {
			break
		}

		re, plans, err := m.materialize(d, MaterializeConfig{
			StrictWhitespace: m.cfg.StrictWhitespace,
			MatchFullLines:   m.cfg.MatchFullLines,
			MLIRRegexCls:     m.cfg.MLIRRegexCls,
		})
		if err != nil {
			m.diags.Errorf(d.Loc, "%s", err)
			i++
			continue
		}

		found := false
		for line := groupStart; line < bound; line++ {
			if used[line] {
				continue
			}
			pos, _ := m.cursor.Line(line)
			match, serr := re.Search(pos.Text, 0)
			if serr != nil {
				m.diags.Errorf(d.Loc, "%s", serr)
				break
			}
			if match == nil {
				continue
			}
			used[line] = true
			m.commit(d.Loc, plans, match)
			if line > maxLine {
				maxLine = line
			}
			found = true
			break
		}
		if !found {
			m.reportNoMatch(d, re, groupStart, bound)
		}
		i++
	}

	for _, not := range groupNots {
		lo := groupStart
		if maxLine >= groupStart {
			m.applyNot(not, lo, maxLine)
		} else {
			m.applyNot(not, lo, bound)
		}
	}

	if maxLine >= groupStart {
		m.cursor.Seek(maxLine + 1)
		m.lastMatchLine, m.lastMatchEnd = maxLine, 0
	}
	m.lastResolvedLine = maxLine

	return i
}

// applyLabel resolves the LABEL directive at idx: it is searched for like a
// CHECK (unbounded, to EOF), reusing a cached region-boundary search if one
// was already performed on its behalf by regionBound, then establishes a
// new scope (when scoping is enabled) and clears the region cache so the
// next call to regionBound computes the following region's boundary fresh.
func (m *Matcher) applyLabel(directives []*Directive, idx int) {
	d := directives[idx]

	var line int
	var ok bool
	if m.regionEndCache != nil && m.labelCacheIdx == idx {
		line, ok = *m.regionEndCache, *m.regionEndCache < m.cursor.Len()
	} else {
		line, ok = m.searchLabel(d)
	}
	m.regionEndCache = nil
	m.labelCacheIdx = -1

	if !ok {
		m.reportNoMatch(d, nil, m.cursor.Index(), m.cursor.Len())
		m.resolveNots(m.cursor.Len())
		m.cursor.Seek(m.cursor.Len())
		return
	}

	m.resolveNots(line)

	if m.cfg.EnableVarScope {
		if m.inLabelRegion {
			m.env.PopScope()
		}
		m.env.PushScope()
		m.inLabelRegion = true
	}

	m.lastMatchLine, m.lastMatchEnd = line, 0
	m.cursor.Seek(line + 1)
}

// searchLabel finds d's match line from the current cursor position to
// EOF without consuming the cursor.
func (m *Matcher) searchLabel(d *Directive) (int, bool) {
	re, _, err := m.materialize(d, MaterializeConfig{
		StrictWhitespace: m.cfg.StrictWhitespace,
		MatchFullLines:   m.cfg.MatchFullLines,
		MLIRRegexCls:     m.cfg.MLIRRegexCls,
	})
	if err != nil {
		m.diags.Errorf(d.Loc, "%s", err)
		return 0, false
	}
	for line := m.cursor.Index(); line < m.cursor.Len(); line++ {
		pos, _ := m.cursor.Line(line)
		match, serr := re.Search(pos.Text, 0)
		if serr != nil {
			m.diags.Errorf(d.Loc, "%s", serr)
			return 0, false
		}
		if match != nil {
			return line, true
		}
	}
	return 0, false
}

// regionBound returns the exclusive line bound a non-LABEL directive at or
// after idx must search within: the next CHECK-LABEL's match line, found by
// a speculative (checkpoint/restore) search, cached so the label itself
// doesn't re-search when the main loop reaches it. With scoping disabled
// this is still the correct bound: LLVM partitions the input by LABEL
// regardless of whether variables are scoped to it.
func (m *Matcher) regionBound(directives []*Directive, from *Directive) int {
	if m.regionEndCache != nil {
		return *m.regionEndCache
	}

	idx := -1
	for j, d := range directives {
		if d == from {
			idx = j
			break
		}
	}

	bound := m.cursor.Len()
	labelIdx := -1
	if idx >= 0 {
		for j := idx; j < len(directives); j++ {
			if directives[j].Kind == KindLabel {
				labelIdx = j
				break
			}
		}
	}
	if labelIdx >= 0 {
		ckpt := m.cursor.Checkpoint()
		if line, ok := m.searchLabel(directives[labelIdx]); ok {
			bound = line
		}
		m.cursor.Restore(ckpt)
	}

	m.regionEndCache = &bound
	m.labelCacheIdx = labelIdx
	return bound
}

func (m *Matcher) materialize(d *Directive, cfg MaterializeConfig) (*RegexPattern, []capturePlan, error) {
	src, plans, err := d.Pattern.Materialize(m.env, cfg)
	if err != nil {
		return nil, nil, err
	}
	re, err := CompileRegex(src)
	if err != nil {
		return nil, nil, err
	}
	return re, plans, nil
}

func (m *Matcher) commit(loc SourceLocation, plans []capturePlan, match *RegexMatch) {
	for _, p := range plans {
		if p.name == "" {
			continue
		}
		text := match.Group(p.group)
		if p.isNumeric {
			v, err := p.format.Parse(text)
			if err != nil {
				m.diags.Warnf(loc, "variable %q: %s", p.name, err)
				continue
			}
			m.env.BindNumeric(p.name, v, p.format)
			continue
		}
		m.env.BindText(p.name, text)
	}
}

func (m *Matcher) reportNoMatch(d *Directive, re *RegexPattern, lo, hi int) {
	d1 := &Diagnostic{
		Severity:  SevError,
		Loc:       d.Loc,
		InputLine: -1,
		Message:   fmt.Sprintf("%s: could not find a match in lines [%d, %d)", d.Kind, lo, hi),
	}
	if m.NearMiss != nil && re != nil {
		var lines []string
		for line := lo; line < hi; line++ {
			pos, ok := m.cursor.Line(line)
			if !ok {
				break
			}
			lines = append(lines, pos.Text)
		}
		if best, ok := m.NearMiss.BestMatch(lines, re.Source()); ok {
			d1.NearMiss = best
		}
	}
	m.diags.Add(d1)
}
