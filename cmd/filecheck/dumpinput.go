package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/AntonLydike/filecheck/internal/pipeline"
	"github.com/AntonLydike/filecheck/pkg/check"
)

// renderDumpInput streams input back out with every line a Diagnostic
// pinned to annotated with that diagnostic's message, the --dump-input=fail
// facility. It is built on internal/pipeline so the annotation pass is a
// Stage like any other, not a one-off loop tied to this command.
func renderDumpInput(w io.Writer, input []byte, diags []*check.Diagnostic) {
	marks := make(map[int]string)
	for _, d := range diags {
		if d.InputLine >= 0 {
			marks[d.InputLine] = d.Message
		}
	}

	annotate := pipeline.StageFunc(func(r io.Reader) io.Reader {
		out, pw := io.Pipe()
		go func() {
			s := bufio.NewScanner(r)
			line := 0
			for s.Scan() {
				var err error
				if msg, ok := marks[line]; ok {
					_, err = fmt.Fprintf(pw, "%4d: %s    <<< %s\n", line+1, s.Text(), msg)
				} else {
					_, err = fmt.Fprintf(pw, "%4d: %s\n", line+1, s.Text())
				}
				if err != nil {
					pw.CloseWithError(err)
					return
				}
				line++
			}
			pw.CloseWithError(s.Err())
		}()
		return out
	})

	fmt.Fprintln(w, "--- dump-input: annotated input ---")
	io.Copy(w, pipeline.Chain(bytes.NewReader(input), annotate))
}
