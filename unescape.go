package logjson

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/cybergodev/logjson/internal"
)

// Unescape reverses JSON string escaping on escaped and returns the result
// in a newly allocated buffer; the input is never modified.
//
// The function is lenient: an unknown escape sequence or a malformed \u
// escape is copied through unchanged, and an unpaired surrogate becomes
// U+FFFD. Whether the result is meaningful is left to the caller.
func Unescape(escaped []byte) []byte {
	out := make([]byte, 0, len(escaped))
	for i := 0; i < len(escaped); {
		c := escaped[i]
		if c != '\\' || i+1 == len(escaped) {
			out = append(out, c)
			i++
			continue
		}
		switch esc := escaped[i+1]; esc {
		case '"', '\\', '/':
			out = append(out, esc)
			i += 2
		case 'b':
			out = append(out, '\b')
			i += 2
		case 'f':
			out = append(out, '\f')
			i += 2
		case 'n':
			out = append(out, '\n')
			i += 2
		case 'r':
			out = append(out, '\r')
			i += 2
		case 't':
			out = append(out, '\t')
			i += 2
		case 'u':
			r, n := decodeUnicodeEscape(escaped[i:])
			if n == 0 {
				out = append(out, c)
				i++
				continue
			}
			out = utf8.AppendRune(out, r)
			i += n
		default:
			out = append(out, c, esc)
			i += 2
		}
	}
	return out
}

// decodeUnicodeEscape decodes a \uXXXX escape at the start of b, combining a
// following low surrogate escape when present. It returns the rune and the
// number of bytes consumed, or 0 if b does not start with a valid escape.
func decodeUnicodeEscape(b []byte) (rune, int) {
	if len(b) < 6 {
		return 0, 0
	}
	r, ok := internal.ParseHex4(b[2:6])
	if !ok {
		return 0, 0
	}
	if !utf16.IsSurrogate(r) {
		return r, 6
	}
	if len(b) >= 12 && b[6] == '\\' && b[7] == 'u' {
		if r2, ok := internal.ParseHex4(b[8:12]); ok {
			if dec := utf16.DecodeRune(r, r2); dec != utf8.RuneError {
				return dec, 12
			}
		}
	}
	return utf8.RuneError, 6
}
