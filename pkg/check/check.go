package check

import (
	"fmt"
	"io"
)

// Option configures a Run, following the same functional-options builder
// shape used throughout this module's configuration surfaces.
type Option func(*Config)

// Config is the core's full configuration record, built up by Option
// values and otherwise opaque to callers.
type Config struct {
	CheckPrefixes       []string
	CommentPrefixes     []string
	StrictWhitespace    bool
	MatchFullLines      bool
	EnableVarScope      bool
	AllowEmpty          bool
	RejectEmptyCaptures bool
	MLIRRegexCls        bool
	Defines             map[string]string
	NearMiss            NearMissFinder
}

// WithCheckPrefixes sets the directive prefixes recognized in the check
// file (default: CHECK). A non-empty call replaces the default outright
// rather than adding to it, so WithCheckPrefixes("FOO") recognizes only
// "FOO:"-labeled directives, not "FOO:" alongside "CHECK:".
func WithCheckPrefixes(prefixes ...string) Option {
	return func(c *Config) {
		if len(prefixes) > 0 {
			c.CheckPrefixes = append([]string(nil), prefixes...)
		}
	}
}

// WithCommentPrefixes sets prefixes that neutralize a directive on their
// line.
func WithCommentPrefixes(prefixes ...string) Option {
	return func(c *Config) { c.CommentPrefixes = append(c.CommentPrefixes, prefixes...) }
}

// WithStrictWhitespace disables whitespace canonicalization in both the
// pattern payload and materialized regex.
func WithStrictWhitespace() Option {
	return func(c *Config) { c.StrictWhitespace = true }
}

// WithMatchFullLines anchors every positive pattern to the whole line (or,
// for CHECK-SAME, the whole remainder).
func WithMatchFullLines() Option {
	return func(c *Config) { c.MatchFullLines = true }
}

// WithVarScope enables label-scoped variables: a scope is pushed on entry
// to each CHECK-LABEL region and popped on exit.
func WithVarScope() Option {
	return func(c *Config) { c.EnableVarScope = true }
}

// WithAllowEmpty suppresses the empty-input error.
func WithAllowEmpty() Option {
	return func(c *Config) { c.AllowEmpty = true }
}

// WithRejectEmptyCaptures promotes the empty-capture warning to an error.
func WithRejectEmptyCaptures() Option {
	return func(c *Config) { c.RejectEmptyCaptures = true }
}

// WithMLIRRegexCls enables the \V SSA-value-name regex class, the
// equivalent of setting FILECHECK_FEATURE_ENABLE=MLIR_REGEX_CLS.
func WithMLIRRegexCls() Option {
	return func(c *Config) { c.MLIRRegexCls = true }
}

// WithDefine pre-binds a textual variable in the base scope, as if it had
// been captured before the first directive ran (-D<NAME=VALUE>).
func WithDefine(name, value string) Option {
	return func(c *Config) {
		if c.Defines == nil {
			c.Defines = map[string]string{}
		}
		c.Defines[name] = value
	}
}

// WithNearMiss wires an advisory near-miss finder into the Matcher.
func WithNearMiss(f NearMissFinder) Option {
	return func(c *Config) { c.NearMiss = f }
}

// Result is the outcome of one verification run.
type Result struct {
	Pass        bool
	Diagnostics []*Diagnostic
}

// Run parses checkContent's directives (attributed to checkFile in
// diagnostics) and matches them against input, the full pipeline: Directive
// Parser -> Pattern Compiler -> Matcher -> Diagnostics Collector.
func Run(checkFile, checkContent string, input io.Reader, opts ...Option) (*Result, error) {
	cfg := &Config{CheckPrefixes: []string{"CHECK"}}
	for _, o := range opts {
		o(cfg)
	}

	data, err := io.ReadAll(input)
	if err != nil {
		return nil, fmt.Errorf("check: reading input: %w", err)
	}

	directives, diags := ParseCheckFile(checkFile, checkContent, ParserConfig{
		CheckPrefixes:       cfg.CheckPrefixes,
		CommentPrefixes:     cfg.CommentPrefixes,
		StrictWhitespace:    cfg.StrictWhitespace,
		RejectEmptyCaptures: cfg.RejectEmptyCaptures,
		MatchFullLines:      cfg.MatchFullLines,
	})

	env := NewEnv()
	for name, value := range cfg.Defines {
		env.BindText(name, value)
	}

	if !diags.Failed() {
		m := NewMatcher(string(data), env, diags, MatcherConfig{
			StrictWhitespace: cfg.StrictWhitespace,
			MatchFullLines:   cfg.MatchFullLines,
			EnableVarScope:   cfg.EnableVarScope,
			MLIRRegexCls:     cfg.MLIRRegexCls,
			AllowEmpty:       cfg.AllowEmpty,
		})
		m.NearMiss = cfg.NearMiss
		m.Run(directives)
	}

	return &Result{Pass: !diags.Failed(), Diagnostics: diags.Entries()}, nil
}
