package check

import (
	"fmt"
	"regexp"
	"strings"
)

// Segment is one piece of a compiled Pattern. The concrete types below are
// the six kinds spec'd for the Compiled Pattern: Literal, Regex,
// CaptureText, CaptureNumeric, ReferenceText, ReferenceNumeric.
type Segment interface {
	isSegment()
}

// LiteralSeg is matched verbatim, modulo whitespace canonicalization.
type LiteralSeg struct{ Text string }

// RegexSeg is matched as a raw embedded regex (a `{{...}}` body).
type RegexSeg struct{ Expr string }

// CaptureTextSeg binds Name to whatever Expr (an inline regex) matches.
type CaptureTextSeg struct {
	Name string
	Expr string
}

// CaptureNumericSeg binds Name (if non-empty) to an integer parsed from the
// match per Format. An empty Name is a non-binding numeric match.
type CaptureNumericSeg struct {
	Name   string
	Format Format
}

// ReferenceTextSeg requires the matched text to equal Name's current
// binding, rendered as text.
type ReferenceTextSeg struct{ Name string }

// ReferenceNumericSeg re-renders Name's numeric binding in the Format it
// was captured under.
type ReferenceNumericSeg struct{ Name string }

func (LiteralSeg) isSegment()          {}
func (RegexSeg) isSegment()            {}
func (CaptureTextSeg) isSegment()      {}
func (CaptureNumericSeg) isSegment()   {}
func (ReferenceTextSeg) isSegment()    {}
func (ReferenceNumericSeg) isSegment() {}

// Pattern is a directive's payload compiled into an ordered segment
// sequence, independent of the current Env; Materialize renders it to a
// concrete regex against a specific Env.
type Pattern struct {
	Segments []Segment
}

// CompileConfig carries the compile-time flags that change how a payload's
// meta-syntax is interpreted.
type CompileConfig struct {
	Literal             bool // {LITERAL} suffix: disable all meta-syntax
	RejectEmptyCaptures bool
}

// CompilePattern parses a directive payload into a Pattern, per the payload
// grammar: literal runs outside brackets, `{{regex}}`, `[[name:body]]`
// captures, `[[name]]` references, `[[#fmt,name:]]` numeric captures,
// `[[#name]]` numeric references.
func CompilePattern(payload string, cfg CompileConfig) (*Pattern, []string, error) {
	if cfg.Literal {
		return &Pattern{Segments: []Segment{LiteralSeg{Text: payload}}}, nil, nil
	}

	var segs []Segment
	var emptyCaptures []string
	var rejectedNames []string
	var lit strings.Builder
	flushLit := func() {
		if lit.Len() > 0 {
			segs = append(segs, LiteralSeg{Text: lit.String()})
			lit.Reset()
		}
	}

	i := 0
	for i < len(payload) {
		switch {
		case strings.HasPrefix(payload[i:], "{{"):
			end := strings.Index(payload[i+2:], "}}")
			if end < 0 {
				return nil, nil, fmt.Errorf("check: unterminated {{ in pattern %q", payload)
			}
			body := payload[i+2 : i+2+end]
			if strings.Contains(body, "{{") {
				return nil, nil, fmt.Errorf("check: nested {{ is not allowed in pattern %q", payload)
			}
			flushLit()
			segs = append(segs, RegexSeg{Expr: body})
			i = i + 2 + end + 2

		case strings.HasPrefix(payload[i:], "[["):
			end := strings.Index(payload[i+2:], "]]")
			if end < 0 {
				// No closing ]] at all: the rest of the payload is literal,
				// per the ambiguity rule ("[[ begins a variable expression
				// only if terminated by ]]").
				lit.WriteString(payload[i:])
				i = len(payload)
				continue
			}
			body := payload[i+2 : i+2+end]
			seg, ok, err := parseVarExpr(body)
			if err != nil {
				return nil, nil, err
			}
			if !ok {
				// Malformed body: the whole [[...]] run is literal text.
				lit.WriteString(payload[i : i+2+end+2])
				i = i + 2 + end + 2
				continue
			}
			flushLit()
			segs = append(segs, seg)
			if cap, ok := seg.(CaptureTextSeg); ok && cap.Expr == "" {
				emptyCaptures = append(emptyCaptures, cap.Name)
				if cfg.RejectEmptyCaptures {
					rejectedNames = append(rejectedNames, cap.Name)
				}
			}
			i = i + 2 + end + 2

		default:
			lit.WriteByte(payload[i])
			i++
		}
	}
	flushLit()

	pattern := &Pattern{Segments: segs}
	if len(rejectedNames) > 0 {
		return pattern, emptyCaptures, fmt.Errorf("check: empty capture for variable(s) %s is rejected (--reject-empty-vars)", strings.Join(rejectedNames, ", "))
	}
	return pattern, emptyCaptures, nil
}

// parseVarExpr parses the text between "[[" and "]]". ok is false when body
// does not match any recognized variable-expression shape, signalling the
// caller to fall back to treating the whole bracketed run as literal text.
func parseVarExpr(body string) (Segment, bool, error) {
	if strings.HasPrefix(body, "#") {
		return parseNumericExpr(body[1:])
	}

	if idx := strings.Index(body, ":"); idx >= 0 {
		name, expr := body[:idx], body[idx+1:]
		if !isIdent(name) {
			return nil, false, nil
		}
		return CaptureTextSeg{Name: name, Expr: expr}, true, nil
	}

	if isIdent(body) {
		return ReferenceTextSeg{Name: body}, true, nil
	}
	return nil, false, nil
}

func parseNumericExpr(body string) (Segment, bool, error) {
	if idx := strings.Index(body, ","); idx >= 0 {
		fmtSpec, rest := body[:idx], body[idx+1:]
		if !strings.HasSuffix(rest, ":") {
			return nil, false, nil
		}
		name := rest[:len(rest)-1]
		if name != "" && !isIdent(name) {
			return nil, false, nil
		}
		format, err := ParseFormat(fmtSpec)
		if err != nil {
			return nil, false, err
		}
		return CaptureNumericSeg{Name: name, Format: format}, true, nil
	}

	if body == "" || !isIdent(body) {
		return nil, false, nil
	}
	return ReferenceNumericSeg{Name: body}, true, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// MaterializeConfig carries the match-time flags that shape how a Pattern
// is rendered into a concrete regex.
type MaterializeConfig struct {
	StrictWhitespace bool
	MatchFullLines   bool
	MLIRRegexCls     bool
}

// capturePlan records, for one CaptureText/CaptureNumeric segment, the
// regex group name it was assigned and how to bind it back into the Env
// once a match is found.
type capturePlan struct {
	group     string
	name      string
	isNumeric bool
	format    Format
}

// Materialize renders p into a concrete regex source string given the
// current Env: References are substituted with the escaped current
// binding (re-rendering numeric ones in their captured Format), Captures
// become named groups the Matcher reads back after a successful search.
// This "materialize per attempt" approach (rather than engine-side
// back-references) is what lets numeric references re-render in whatever
// format they were captured under.
func (p *Pattern) Materialize(env *Env, cfg MaterializeConfig) (string, []capturePlan, error) {
	var b strings.Builder
	var plans []capturePlan

	if cfg.MatchFullLines {
		b.WriteString("^")
	}

	for i, seg := range p.Segments {
		switch s := seg.(type) {
		case LiteralSeg:
			b.WriteString(materializeLiteral(s.Text, cfg.StrictWhitespace))
		case RegexSeg:
			b.WriteString("(?:" + translateEmbedded(s.Expr, cfg.MLIRRegexCls) + ")")
		case CaptureTextSeg:
			group := fmt.Sprintf("v%d", i)
			b.WriteString("(?<" + group + ">" + translateEmbedded(s.Expr, cfg.MLIRRegexCls) + ")")
			plans = append(plans, capturePlan{group: group, name: s.Name})
		case CaptureNumericSeg:
			group := fmt.Sprintf("v%d", i)
			b.WriteString("(?<" + group + ">" + s.Format.Regex() + ")")
			plans = append(plans, capturePlan{group: group, name: s.Name, isNumeric: true, format: s.Format})
		case ReferenceTextSeg:
			bind, ok := env.Lookup(s.Name)
			if !ok {
				return "", nil, &UnboundVariableError{Name: s.Name}
			}
			b.WriteString(regexp.QuoteMeta(bind.RenderText()))
		case ReferenceNumericSeg:
			bind, ok := env.Lookup(s.Name)
			if !ok {
				return "", nil, &UnboundVariableError{Name: s.Name}
			}
			b.WriteString(regexp.QuoteMeta(bind.RenderText()))
		}
	}

	if cfg.MatchFullLines {
		b.WriteString("$")
	}

	return b.String(), plans, nil
}

// HasCapture reports whether p contains any binding segment (Capture*),
// used to enforce the LabelWithCapture rule.
func (p *Pattern) HasCapture() bool {
	for _, seg := range p.Segments {
		switch seg.(type) {
		case CaptureTextSeg, CaptureNumericSeg:
			return true
		}
	}
	return false
}

var whitespaceRun = regexp.MustCompile(`[ \t]+`)

// materializeLiteral regex-escapes text, collapsing runs of spaces/tabs to
// a single "one-or-more-whitespace" match unless strict is set.
func materializeLiteral(text string, strict bool) string {
	if strict {
		return regexp.QuoteMeta(text)
	}
	parts := whitespaceRun.Split(text, -1)
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return strings.Join(parts, `[ \t]+`)
}

// posixClasses is the best-effort translation from POSIX bracket-expression
// classes to PCRE-style equivalents, applied to {{...}} bodies before they
// reach the regex engine (regexp2 has no native POSIX class support).
var posixClasses = map[string]string{
	"[:alnum:]":  "A-Za-z0-9",
	"[:alpha:]":  "A-Za-z",
	"[:digit:]":  "0-9",
	"[:lower:]":  "a-z",
	"[:upper:]":  "A-Z",
	"[:space:]":  ` \t\n\r\f\v`,
	"[:punct:]":  `!-/:-@\[-` + "`" + `{-~`,
	"[:xdigit:]": "0-9A-Fa-f",
	"[:blank:]":  ` \t`,
	"[:cntrl:]":  `\x00-\x1f\x7f`,
	"[:print:]":  `\x20-\x7e`,
	"[:graph:]":  `\x21-\x7e`,
}

// mlirValueName is the shape of an MLIR/LLVM SSA value name, used to expand
// the \V escape when FILECHECK_FEATURE_ENABLE=MLIR_REGEX_CLS is set.
const mlirValueName = `%[A-Za-z_][A-Za-z_0-9]*(?:#[0-9]+)?`

// translateEmbedded applies POSIX-class translation and, when enabled, \V
// expansion to an embedded regex body before it is handed to the engine.
func translateEmbedded(expr string, mlir bool) string {
	for posix, pcre := range posixClasses {
		expr = strings.ReplaceAll(expr, posix, pcre)
	}
	if mlir {
		expr = strings.ReplaceAll(expr, `\V`, mlirValueName)
	}
	return expr
}
