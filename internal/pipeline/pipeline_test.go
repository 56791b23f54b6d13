package pipeline_test

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/AntonLydike/filecheck/internal/pipeline"
)

func upper(r io.Reader) io.Reader {
	out, w := io.Pipe()
	go func() {
		s := bufio.NewScanner(r)
		for s.Scan() {
			if _, err := io.WriteString(w, strings.ToUpper(s.Text())+"\n"); err != nil {
				w.CloseWithError(err)
				return
			}
		}
		w.CloseWithError(s.Err())
	}()
	return out
}

func prefix(p string) pipeline.StageFunc {
	return func(r io.Reader) io.Reader {
		out, w := io.Pipe()
		go func() {
			s := bufio.NewScanner(r)
			for s.Scan() {
				if _, err := io.WriteString(w, p+s.Text()+"\n"); err != nil {
					w.CloseWithError(err)
					return
				}
			}
			w.CloseWithError(s.Err())
		}()
		return out
	}
}

func TestChain(t *testing.T) {
	in := strings.NewReader("a\nb\nc\n")
	out := pipeline.Chain(in, pipeline.StageFunc(upper), prefix("> "))

	got, err := io.ReadAll(out)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	want := "> A\n> B\n> C\n"
	if string(got) != want {
		t.Errorf("Chain() = %q, want %q", got, want)
	}
}

func TestChainEmpty(t *testing.T) {
	in := strings.NewReader("")
	out := pipeline.Chain(in)
	got, err := io.ReadAll(out)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Chain() with no stages = %q, want empty", got)
	}
}
