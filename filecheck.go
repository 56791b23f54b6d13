package filecheck

import (
	"io"

	"github.com/AntonLydike/filecheck/pkg/check"
)

// Run is a thin top-level entry point for callers who just want the
// verifier, not the individual Directive Parser / Matcher pieces.
func Run(checkFile, checkContent string, input io.Reader, opts ...check.Option) (*check.Result, error) {
	return check.Run(checkFile, checkContent, input, opts...)
}
