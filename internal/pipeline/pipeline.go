/*
	Package pipeline composes streaming transforms over an input stream: each
	Stage consumes an io.Reader and produces one, and Chain wires a sequence
	of them together behind a single io.Reader backed by a pipe goroutine.
	cmd/filecheck uses it to drive --dump-input=fail, annotating each input
	line that a diagnostic points at with that diagnostic's message as it
	streams past.
*/
package pipeline

import "io"

// Stage transforms a byte stream.
type Stage interface {
	Run(io.Reader) io.Reader
}

// StageFunc adapts a function to a Stage.
type StageFunc func(io.Reader) io.Reader

func (f StageFunc) Run(r io.Reader) io.Reader { return f(r) }

// Chain feeds in through every stage in order and returns an io.Reader over
// the final result. The chain runs on a background goroutine writing into
// an io.Pipe, so the returned Reader can be consumed with ordinary
// io.Copy/io.ReadAll semantics.
func Chain(in io.Reader, stages ...Stage) io.Reader {
	out, w := io.Pipe()

	go func() {
		for _, stage := range stages {
			in = stage.Run(in)
		}
		_, err := io.Copy(w, in)
		w.CloseWithError(err)
	}()

	return out
}
