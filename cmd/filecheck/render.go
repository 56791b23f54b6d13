package main

import (
	"fmt"
	"io"

	"github.com/AntonLydike/filecheck/pkg/check"
)

// renderDiagnostics writes every recorded Diagnostic to w, one per line, in
// the order the run produced them. Colorized rendering is an external
// collaborator's concern, not the matching engine's; this is the plain
// textual form diagnostics are handed off in.
func renderDiagnostics(w io.Writer, diags []*check.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.Error())
		if d.NearMiss != "" {
			fmt.Fprintf(w, "  near miss: %s\n", d.NearMiss)
		}
	}
}
