package check

import (
	"fmt"
	"strconv"
	"strings"
)

// Format carries the base, width and sign handling of a numeric capture or
// reference, as parsed from a `[[#fmt,name:]]` segment's fmt token.
type Format struct {
	Base  int  // 10 or 16
	Upper bool // render hex digits in upper case (the %X form)
	Width int  // zero-pad rendering to at least this many digits; 0 disables
	Plus  bool // render a leading '+' for non-negative values
}

// ParseFormat parses the portion of a numeric segment between '#' and the
// following ',' (or, for a bare numeric reference, the whole body). Grammar,
// per the payload spec: optional '%', optional '+', optional ".<digits>"
// precision, then a base letter 'x' | 'X' | 'd' (default 'd').
func ParseFormat(spec string) (Format, error) {
	f := Format{Base: 10}
	s := strings.TrimPrefix(spec, "%")

	if strings.HasPrefix(s, "+") {
		f.Plus = true
		s = s[1:]
	}

	if strings.HasPrefix(s, ".") {
		digits, n := leadingDigits(s[1:])
		if n == 0 {
			return Format{}, fmt.Errorf("check: invalid numeric format %q: expected digits after '.'", spec)
		}
		f.Width = digits
		s = s[1+n:]
	}

	switch {
	case s == "":
		// default base: decimal
	case s == "X":
		f.Base, f.Upper = 16, true
		s = ""
	case s == "x":
		f.Base = 16
		s = ""
	case s == "d":
		f.Base = 10
		s = ""
	default:
		return Format{}, fmt.Errorf("check: invalid numeric format %q: unrecognized base specifier %q", spec, s)
	}

	if s != "" {
		return Format{}, fmt.Errorf("check: invalid numeric format %q: trailing characters %q", spec, s)
	}
	return f, nil
}

// Regex returns a pattern fragment that matches any numeral this Format's
// base could have produced, including an optional sign and, for hex, an
// optional "0x"/"0X" prefix (the input stream is not required to spell
// hex literals any particular way).
func (f Format) Regex() string {
	if f.Base == 16 {
		return `[-+]?(?:0[xX])?[0-9A-Fa-f]+`
	}
	return `[-+]?[0-9]+`
}

// Parse converts matched text back into an integer per this Format's base.
func (f Format) Parse(text string) (int64, error) {
	t := strings.TrimSpace(text)
	neg := false
	if strings.HasPrefix(t, "-") {
		neg = true
		t = t[1:]
	} else if strings.HasPrefix(t, "+") {
		t = t[1:]
	}

	base := f.Base
	if base == 16 {
		t = strings.TrimPrefix(strings.TrimPrefix(t, "0x"), "0X")
	}
	if base == 0 {
		base = 10
	}

	v, err := strconv.ParseUint(t, base, 64)
	if err != nil {
		return 0, fmt.Errorf("check: invalid numeral %q for base %d: %w", text, base, err)
	}
	n := int64(v)
	if neg {
		n = -n
	}
	return n, nil
}

// Render formats v the way this Format's originating capture would have
// printed it, so a textual reference to a numeric binding re-renders
// identically to what was captured.
func (f Format) Render(v int64) string {
	neg := v < 0
	uv := uint64(v)
	if neg {
		uv = uint64(-v)
	}

	base := f.Base
	if base == 0 {
		base = 10
	}

	digits := strconv.FormatUint(uv, base)
	if f.Upper {
		digits = strings.ToUpper(digits)
	}
	if pad := f.Width - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}

	sign := ""
	switch {
	case neg:
		sign = "-"
	case f.Plus:
		sign = "+"
	}
	return sign + digits
}

func leadingDigits(s string) (value int, length int) {
	for length < len(s) && s[length] >= '0' && s[length] <= '9' {
		value = value*10 + int(s[length]-'0')
		length++
	}
	return value, length
}
