//go:build rp2040 || rp2350

package fmtx

import (
	"errors"

	"mediaremote-go/x/strconvx"
)

type stringer interface{ String() string }

// Sprintf supports %s %q %d %x %v and %%. Other verbs print as %!c.
func Sprintf(format string, a ...any) string {
	out := make([]byte, 0, len(format)+16)
	next := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 == len(format) {
			out = append(out, c)
			continue
		}
		i++
		verb := format[i]
		if verb == '%' {
			out = append(out, '%')
			continue
		}
		if next >= len(a) {
			out = append(out, "%!"...)
			out = append(out, verb)
			out = append(out, "(MISSING)"...)
			continue
		}
		out = appendArg(out, verb, a[next])
		next++
	}
	return string(out)
}

// Errorf formats like Sprintf. %w is not supported.
func Errorf(format string, a ...any) error { return errors.New(Sprintf(format, a...)) }

func appendArg(out []byte, verb byte, v any) []byte {
	switch verb {
	case 'd':
		if s, ok := integer(v, 10); ok {
			return append(out, s...)
		}
	case 'x':
		if s, ok := integer(v, 16); ok {
			return append(out, s...)
		}
	case 's', 'v':
		if s, ok := integer(v, 10); ok {
			return append(out, s...)
		}
		return append(out, text(v)...)
	case 'q':
		return appendQuoted(out, text(v))
	}
	out = append(out, "%!"...)
	return append(out, verb)
}

func text(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case error:
		return x.Error()
	case stringer:
		return x.String()
	case bool:
		if x {
			return "true"
		}
		return "false"
	case nil:
		return "<nil>"
	}
	return "?"
}

func integer(v any, base int) (string, bool) {
	switch x := v.(type) {
	case int:
		return signed(int64(x), base), true
	case int8:
		return signed(int64(x), base), true
	case int16:
		return signed(int64(x), base), true
	case int32:
		return signed(int64(x), base), true
	case int64:
		return signed(x, base), true
	case uint:
		return strconvx.FormatUint(uint64(x), base), true
	case uint8:
		return strconvx.FormatUint(uint64(x), base), true
	case uint16:
		return strconvx.FormatUint(uint64(x), base), true
	case uint32:
		return strconvx.FormatUint(uint64(x), base), true
	case uint64:
		return strconvx.FormatUint(x, base), true
	}
	return "", false
}

func signed(n int64, base int) string {
	if n < 0 {
		return "-" + strconvx.FormatUint(uint64(-n), base)
	}
	return strconvx.FormatUint(uint64(n), base)
}

func appendQuoted(out []byte, s string) []byte {
	out = append(out, '"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			out = append(out, '\\', c)
		case '\n':
			out = append(out, '\\', 'n')
		case '\t':
			out = append(out, '\\', 't')
		default:
			out = append(out, c)
		}
	}
	return append(out, '"')
}
