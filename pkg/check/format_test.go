package check_test

import (
	"testing"

	"github.com/AntonLydike/filecheck/pkg/check"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    check.Format
		wantErr bool
	}{
		{name: "default decimal", spec: "", want: check.Format{Base: 10}},
		{name: "explicit decimal", spec: "d", want: check.Format{Base: 10}},
		{name: "lower hex", spec: "x", want: check.Format{Base: 16}},
		{name: "upper hex", spec: "X", want: check.Format{Base: 16, Upper: true}},
		{name: "percent prefix hex", spec: "%X", want: check.Format{Base: 16, Upper: true}},
		{name: "width", spec: ".8X", want: check.Format{Base: 16, Upper: true, Width: 8}},
		{name: "plus sign", spec: "+.3d", want: check.Format{Base: 10, Plus: true, Width: 3}},
		{name: "width with no base letter", spec: ".3", want: check.Format{Base: 10, Width: 3}},
		{name: "bad base letter", spec: "q", wantErr: true},
		{name: "trailing garbage", spec: "d9", wantErr: true},
		{name: "empty width", spec: ".", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := check.ParseFormat(tt.spec)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseFormat(%q) error = nil, want error", tt.spec)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat(%q) unexpected error: %v", tt.spec, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %+v, want %+v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestFormatRenderParseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		f    check.Format
		v    int64
	}{
		{name: "decimal positive", f: check.Format{Base: 10}, v: 100},
		{name: "decimal negative", f: check.Format{Base: 10}, v: -100},
		{name: "hex upper", f: check.Format{Base: 16, Upper: true}, v: 0xFF00FF00},
		{name: "hex width-padded", f: check.Format{Base: 16, Upper: true, Width: 8}, v: 0xFF},
		{name: "decimal width-padded", f: check.Format{Base: 10, Width: 3}, v: 7},
		{name: "plus sign", f: check.Format{Base: 10, Plus: true}, v: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rendered := tt.f.Render(tt.v)
			got, err := tt.f.Parse(rendered)
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", rendered, err)
			}
			if got != tt.v {
				t.Errorf("round-trip %v -> %q -> %v, want %v", tt.v, rendered, got, tt.v)
			}
		})
	}
}

func TestFormatRenderWidth(t *testing.T) {
	f := check.Format{Base: 16, Upper: true, Width: 8}
	if got, want := f.Render(0xFF00FF00), "FF00FF00"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}
