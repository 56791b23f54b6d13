package check

import (
	"strings"

	"github.com/AntonLydike/filecheck/pkg/prefix"
)

// Kind is the directive's matching strategy tag.
type Kind int

const (
	KindCheck Kind = iota
	KindNext
	KindSame
	KindNot
	KindEmpty
	KindLabel
	KindDag
	KindCount
)

func (k Kind) String() string {
	switch k {
	case KindNext:
		return "CHECK-NEXT"
	case KindSame:
		return "CHECK-SAME"
	case KindNot:
		return "CHECK-NOT"
	case KindEmpty:
		return "CHECK-EMPTY"
	case KindLabel:
		return "CHECK-LABEL"
	case KindDag:
		return "CHECK-DAG"
	case KindCount:
		return "CHECK-COUNT"
	default:
		return "CHECK"
	}
}

// SourceLocation pins a Directive to the check file and line it came from.
type SourceLocation struct {
	File string
	Line int // 1-based
}

// Directive is a parsed, compiled check-file directive. It is immutable
// after parsing.
type Directive struct {
	Kind    Kind
	Pattern *Pattern
	Loc     SourceLocation
	Prefix  string
	Literal bool
	Count   int // valid when Kind == KindCount
}

var kindByLabel = map[prefix.Kind]Kind{
	prefix.KindCheck: KindCheck,
	prefix.KindNext:  KindNext,
	prefix.KindSame:  KindSame,
	prefix.KindNot:   KindNot,
	prefix.KindEmpty: KindEmpty,
	prefix.KindLabel: KindLabel,
	prefix.KindDag:   KindDag,
	prefix.KindCount: KindCount,
}

// ParserConfig carries the Directive Parser's configuration.
type ParserConfig struct {
	CheckPrefixes       []string
	CommentPrefixes     []string
	StrictWhitespace    bool
	RejectEmptyCaptures bool
	MatchFullLines      bool
}

// ParseCheckFile scans a check file's contents line by line and compiles
// every recognized directive. Parsing continues past an individual
// directive's error so that multiple parse errors can surface from one run;
// the returned Diagnostics records them all.
func ParseCheckFile(file, content string, cfg ParserConfig) ([]*Directive, *Diagnostics) {
	diags := NewDiagnostics()
	scanner := prefix.New(
		prefix.WithPrefixes(cfg.CheckPrefixes...),
		prefix.WithCommentPrefixes(cfg.CommentPrefixes...),
	)

	var directives []*Directive
	for i, line := range strings.Split(content, "\n") {
		loc := SourceLocation{File: file, Line: i + 1}

		m, ok := scanner.Scan(line)
		if !ok {
			continue
		}

		kind := kindByLabel[m.Kind]
		if kind == KindCount && m.Count < 1 {
			diags.Errorf(loc, "CHECK-COUNT requires a positive repeat count, got %d", m.Count)
			continue
		}

		payload := line[m.PayloadIdx:]
		if !cfg.StrictWhitespace {
			payload = strings.TrimSpace(payload)
		}

		pattern, emptyCaptures, err := CompilePattern(payload, CompileConfig{
			Literal:             m.Literal,
			RejectEmptyCaptures: cfg.RejectEmptyCaptures,
		})
		for _, name := range emptyCaptures {
			diags.Warnf(loc, "variable %q captured an empty string", name)
		}
		if err != nil {
			diags.Errorf(loc, "%s", err)
			continue
		}

		if kind == KindLabel && pattern.HasCapture() {
			diags.Errorf(loc, "CHECK-LABEL directives may not contain captures")
			continue
		}

		directives = append(directives, &Directive{
			Kind:    kind,
			Pattern: pattern,
			Loc:     loc,
			Prefix:  m.Prefix,
			Literal: m.Literal,
			Count:   m.Count,
		})
	}

	return directives, diags
}
