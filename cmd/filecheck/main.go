package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AntonLydike/filecheck/internal/nearmiss"
	"github.com/AntonLydike/filecheck/pkg/check"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	flags = []flag{
		{"check-prefixes", "", []string{"CHECK"}, "comma-separated directive prefixes (repeatable)"},
		{"comment-prefixes", "", []string{}, "prefixes that neutralize a directive on their line"},
		{"input-file", "", "-", "read input from this file instead of stdin"},
		{"match-full-lines", "", false, "anchor every positive pattern to the whole line"},
		{"strict-whitespace", "", false, "disable whitespace canonicalization"},
		{"enable-var-scope", "", false, "scope variables to CHECK-LABEL regions"},
		{"define", "D", []string{}, "pre-bind NAME=VALUE (repeatable)"},
		{"allow-empty", "", false, "do not fail on empty input"},
		{"dump-input", "", "never", "diagnostic control: never|fail"},
		{"reject-empty-vars", "", false, "promote the empty-capture warning to an error"},
	}
)

type flag struct {
	name  string
	short string
	val   interface{}
	use   string
}

func setFlags(flagset *pflag.FlagSet) {
	for _, f := range flags {
		switch val := f.val.(type) {
		case []string:
			flagset.StringArrayP(f.name, f.short, val, f.use)
		case bool:
			flagset.BoolP(f.name, f.short, val, f.use)
		case string:
			flagset.StringP(f.name, f.short, val, f.use)
		}
	}
}

func main() {
	var exitCode int

	cmd := &cobra.Command{}
	cmd.SetUsageTemplate(usage)
	cmd.SetHelpTemplate(help)

	setFlags(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			exitCode = 2
			return cmd.Usage()
		}
		checkFilePath := args[0]

		checkBytes, err := os.ReadFile(checkFilePath)
		if err != nil {
			return fmt.Errorf("filecheck: %w", err)
		}

		flagset := cmd.Flags()
		opts, dumpInput, err := buildOptions(flagset)
		if err != nil {
			return err
		}

		inputBytes, err := readInput(flagset)
		if err != nil {
			return err
		}

		result, err := check.Run(checkFilePath, string(checkBytes), bytes.NewReader(inputBytes), opts...)
		if err != nil {
			return err
		}

		renderDiagnostics(os.Stderr, result.Diagnostics)

		if dumpInput == "fail" && !result.Pass {
			renderDumpInput(os.Stderr, inputBytes, result.Diagnostics)
		}

		if !result.Pass {
			exitCode = 1
		}
		return nil
	}

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exitCode = 2
	}
	os.Exit(exitCode)
}

func buildOptions(flagset *pflag.FlagSet) ([]check.Option, string, error) {
	var opts []check.Option

	splitList := func(vals []string) []string {
		var out []string
		for _, v := range vals {
			out = append(out, strings.Split(v, ",")...)
		}
		return out
	}

	if v, _ := flagset.GetStringArray("check-prefixes"); len(v) > 0 {
		opts = append(opts, check.WithCheckPrefixes(splitList(v)...))
	}
	if v, _ := flagset.GetStringArray("comment-prefixes"); len(v) > 0 {
		opts = append(opts, check.WithCommentPrefixes(splitList(v)...))
	}
	if v, _ := flagset.GetBool("match-full-lines"); v {
		opts = append(opts, check.WithMatchFullLines())
	}
	if v, _ := flagset.GetBool("strict-whitespace"); v {
		opts = append(opts, check.WithStrictWhitespace())
	}
	if v, _ := flagset.GetBool("enable-var-scope"); v {
		opts = append(opts, check.WithVarScope())
	}
	if v, _ := flagset.GetBool("allow-empty"); v {
		opts = append(opts, check.WithAllowEmpty())
	}
	if v, _ := flagset.GetBool("reject-empty-vars"); v {
		opts = append(opts, check.WithRejectEmptyCaptures())
	}

	defines, _ := flagset.GetStringArray("define")
	for _, d := range defines {
		name, value, err := parseDefine(d)
		if err != nil {
			fmt.Fprintf(os.Stderr, "filecheck: warning: ignoring -D%s: %s\n", d, err)
			continue
		}
		opts = append(opts, check.WithDefine(name, value))
	}

	dumpInput, _ := flagset.GetString("dump-input")
	switch dumpInput {
	case "never", "fail":
	default:
		fmt.Fprintf(os.Stderr, "filecheck: warning: unrecognized --dump-input value %q, ignored\n", dumpInput)
		dumpInput = "never"
	}

	for _, tok := range strings.Split(os.Getenv("FILECHECK_FEATURE_ENABLE"), ",") {
		if strings.TrimSpace(tok) == "MLIR_REGEX_CLS" {
			opts = append(opts, check.WithMLIRRegexCls())
		}
	}

	opts = append(opts, check.WithNearMiss(nearmiss.New()))

	return opts, dumpInput, nil
}

func readInput(flagset *pflag.FlagSet) ([]byte, error) {
	path, _ := flagset.GetString("input-file")

	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("filecheck: %w", err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("filecheck: reading input: %w", err)
	}
	return data, nil
}

const usage = `Usage: filecheck [OPTION]... CHECK-FILE
Try 'filecheck --help' for more information.
`

const help = `Usage: filecheck [OPTION]... CHECK-FILE
Verify that standard input (or --input-file) matches the directives in
CHECK-FILE.

  --check-prefixes PREFIX,...  directive prefixes (default CHECK)
  --comment-prefixes PREFIX,...  prefixes that neutralize a directive's line
  --input-file FILE         read input from FILE instead of stdin
  --match-full-lines        anchor every positive pattern to the whole line
  --strict-whitespace       disable whitespace canonicalization
  --enable-var-scope        scope variables to CHECK-LABEL regions
  -D NAME=VALUE             pre-bind a textual variable (repeatable)
  --allow-empty             do not fail on empty input
  --dump-input never|fail   dump annotated input when the run fails
  --reject-empty-vars       promote the empty-capture warning to an error

Exit status is 0 if every directive matched, 1 on a failed run, 2 on
usage error.
`
