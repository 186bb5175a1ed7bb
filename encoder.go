package logjson

import (
	"unicode/utf8"
)

// EncodeOptions tweaks string escaping of the canonical encoder. A nil
// *EncodeOptions selects the canonical form: only characters JSON requires
// to be escaped are escaped.
type EncodeOptions struct {
	EscapeHTML    bool // escape <, > and & as \u003c, \u003e, \u0026
	EscapeSlash   bool // escape / as \/
	EscapeUnicode bool // escape every non-ASCII rune as \uXXXX
}

const hexDigits = "0123456789abcdef"

// AppendValue appends the compact JSON encoding of v to dst.
func AppendValue(dst []byte, v Value, opts *EncodeOptions) []byte {
	switch v.kind {
	case KindNull:
		return append(dst, "null"...)
	case KindBool:
		if v.b {
			return append(dst, "true"...)
		}
		return append(dst, "false"...)
	case KindNumber:
		return append(dst, v.s...)
	case KindString:
		return AppendString(dst, v.s, opts)
	case KindArray:
		dst = append(dst, '[')
		for i, e := range v.arr {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = AppendValue(dst, e, opts)
		}
		return append(dst, ']')
	case KindObject:
		return AppendObject(dst, v.obj, opts)
	}
	return dst
}

// AppendObject appends the compact JSON encoding of o to dst. A nil object
// encodes as {}.
func AppendObject(dst []byte, o *Object, opts *EncodeOptions) []byte {
	dst = append(dst, '{')
	for i, e := range o.entriesOrNil() {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = AppendString(dst, e.key, opts)
		dst = append(dst, ':')
		dst = AppendValue(dst, e.value, opts)
	}
	return append(dst, '}')
}

// AppendString appends s as a quoted, escaped JSON string. Invalid UTF-8 is
// replaced by U+FFFD.
func AppendString(dst []byte, s string, opts *EncodeOptions) []byte {
	dst = append(dst, '"')
	dst = appendEscaped(dst, s, opts)
	return append(dst, '"')
}

// Escape returns s with JSON string escaping applied, without the
// surrounding quotes.
func Escape(s string) string {
	return string(appendEscaped(nil, s, nil))
}

func appendEscaped(dst []byte, s string, opts *EncodeOptions) []byte {
	if opts == nil {
		opts = &EncodeOptions{}
	}
	start := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			if !needsEscape(c, opts) {
				i++
				continue
			}
			dst = append(dst, s[start:i]...)
			switch c {
			case '"', '\\':
				dst = append(dst, '\\', c)
			case '\b':
				dst = append(dst, '\\', 'b')
			case '\f':
				dst = append(dst, '\\', 'f')
			case '\n':
				dst = append(dst, '\\', 'n')
			case '\r':
				dst = append(dst, '\\', 'r')
			case '\t':
				dst = append(dst, '\\', 't')
			case '/':
				dst = append(dst, '\\', '/')
			default:
				dst = appendUnicodeEscape(dst, rune(c))
			}
			i++
			start = i
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			dst = append(dst, s[start:i]...)
			dst = append(dst, `\ufffd`...)
			i += size
			start = i
			continue
		}
		// U+2028 and U+2029 are valid JSON but break JavaScript consumers
		if opts.EscapeUnicode || (opts.EscapeHTML && (r == '\u2028' || r == '\u2029')) {
			dst = append(dst, s[start:i]...)
			if r > 0xFFFF {
				r1, r2 := surrogatePair(r)
				dst = appendUnicodeEscape(dst, r1)
				dst = appendUnicodeEscape(dst, r2)
			} else {
				dst = appendUnicodeEscape(dst, r)
			}
			i += size
			start = i
			continue
		}
		i += size
	}
	return append(dst, s[start:]...)
}

func needsEscape(c byte, opts *EncodeOptions) bool {
	switch {
	case c < 0x20, c == '"', c == '\\':
		return true
	case c == '/':
		return opts.EscapeSlash
	case c == '<', c == '>', c == '&':
		return opts.EscapeHTML
	}
	return false
}

func appendUnicodeEscape(dst []byte, r rune) []byte {
	return append(dst, '\\', 'u',
		hexDigits[(r>>12)&0xF], hexDigits[(r>>8)&0xF],
		hexDigits[(r>>4)&0xF], hexDigits[r&0xF])
}

func surrogatePair(r rune) (rune, rune) {
	r -= 0x10000
	return 0xD800 + (r>>10)&0x3FF, 0xDC00 + r&0x3FF
}

func (o *Object) entriesOrNil() []member {
	if o == nil {
		return nil
	}
	return o.entries
}
