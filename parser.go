package logjson

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/cybergodev/logjson/internal"
)

// Parse parses buf as exactly one JSON object using state, which is reset
// first. A nil state parses with a temporary one.
//
// The returned error is a *ParseError whose Kind tells truncated input,
// malformed tokens, trailing non-whitespace data and non-object documents
// apart; errors.Is matches it against ErrTruncated, ErrSyntax,
// ErrTrailingData, ErrNotAnObject and ErrDepthLimit.
func Parse(state *ParserState, buf []byte) (*Object, error) {
	if state == nil {
		state = NewParserState()
	}
	v, perr := state.parseDocument(buf)
	if perr != nil {
		return nil, perr
	}
	obj, ok := v.AsObject()
	if !ok {
		return nil, state.fail(ParseNotAnObject, fmt.Sprintf("JSON value is not an object (got %s)", v.Kind()))
	}
	return obj, nil
}

// ParseValue parses buf as exactly one JSON value of any kind.
func ParseValue(state *ParserState, buf []byte) (Value, error) {
	if state == nil {
		state = NewParserState()
	}
	v, perr := state.parseDocument(buf)
	if perr != nil {
		return Value{}, perr
	}
	return v, nil
}

func (s *ParserState) parseDocument(buf []byte) (Value, *ParseError) {
	s.Reset()
	s.buf = buf

	v, err := s.parseTree()
	if err != nil {
		return Value{}, err
	}
	s.skipSpace()
	if s.pos < len(s.buf) {
		return Value{}, s.fail(ParseTrailingData, "extra characters after JSON value")
	}
	s.status = StatusComplete
	return v, nil
}

// parseTree parses one value iteratively, keeping open containers on the
// frame stack instead of the call stack.
func (s *ParserState) parseTree() (Value, *ParseError) {
	for {
		// expecting the start of a value
		s.skipSpace()
		if s.pos >= len(s.buf) {
			return Value{}, s.truncated()
		}

		var v Value
		switch c := s.buf[s.pos]; {
		case c == '{':
			s.pos++
			s.skipSpace()
			if s.pos >= len(s.buf) {
				return Value{}, s.truncated()
			}
			if s.buf[s.pos] == '}' {
				s.pos++
				v = ObjectValue(NewObject())
				break
			}
			if err := s.push(frame{obj: NewObject(), isObj: true}); err != nil {
				return Value{}, err
			}
			if err := s.parseKey(); err != nil {
				return Value{}, err
			}
			continue
		case c == '[':
			s.pos++
			s.skipSpace()
			if s.pos >= len(s.buf) {
				return Value{}, s.truncated()
			}
			if s.buf[s.pos] == ']' {
				s.pos++
				v = Array()
				break
			}
			if err := s.push(frame{}); err != nil {
				return Value{}, err
			}
			continue
		case c == '"':
			str, err := s.parseString()
			if err != nil {
				return Value{}, err
			}
			v = String(str)
		case c == 't':
			if err := s.parseLiteral("true"); err != nil {
				return Value{}, err
			}
			v = Bool(true)
		case c == 'f':
			if err := s.parseLiteral("false"); err != nil {
				return Value{}, err
			}
			v = Bool(false)
		case c == 'n':
			if err := s.parseLiteral("null"); err != nil {
				return Value{}, err
			}
			v = Null()
		case c == '-' || internal.IsDigit(c):
			n, err := s.parseNumber()
			if err != nil {
				return Value{}, err
			}
			v = NumberValue(n)
		default:
			return Value{}, s.fail(ParseSyntax, fmt.Sprintf("unexpected character %q looking for beginning of value", c))
		}

		// attach the completed value to its parent, closing containers as
		// long as their terminators follow
		for {
			if len(s.stack) == 0 {
				return v, nil
			}
			top := &s.stack[len(s.stack)-1]
			if top.isObj {
				top.obj.Set(top.key, v)
			} else {
				top.arr = append(top.arr, v)
			}

			s.skipSpace()
			if s.pos >= len(s.buf) {
				return Value{}, s.truncated()
			}
			c := s.buf[s.pos]
			if c == ',' {
				s.pos++
				if top.isObj {
					s.skipSpace()
					if err := s.parseKey(); err != nil {
						return Value{}, err
					}
				}
				break
			}
			if (top.isObj && c == '}') || (!top.isObj && c == ']') {
				s.pos++
				v = s.pop()
				continue
			}
			if top.isObj {
				return Value{}, s.fail(ParseSyntax, fmt.Sprintf("unexpected character %q after object member", c))
			}
			return Value{}, s.fail(ParseSyntax, fmt.Sprintf("unexpected character %q after array element", c))
		}
	}
}

// parseKey reads `"key" :` into the top frame.
func (s *ParserState) parseKey() *ParseError {
	if s.pos >= len(s.buf) {
		return s.truncated()
	}
	if s.buf[s.pos] != '"' {
		return s.fail(ParseSyntax, fmt.Sprintf("unexpected character %q looking for object key", s.buf[s.pos]))
	}
	key, err := s.parseString()
	if err != nil {
		return err
	}
	s.skipSpace()
	if s.pos >= len(s.buf) {
		return s.truncated()
	}
	if s.buf[s.pos] != ':' {
		return s.fail(ParseSyntax, fmt.Sprintf("unexpected character %q after object key", s.buf[s.pos]))
	}
	s.pos++
	s.stack[len(s.stack)-1].key = key
	return nil
}

func (s *ParserState) skipSpace() {
	for s.pos < len(s.buf) && internal.IsSpace(s.buf[s.pos]) {
		s.pos++
	}
}

func (s *ParserState) parseLiteral(lit string) *ParseError {
	rest := s.buf[s.pos:]
	for i := 0; i < len(lit); i++ {
		if i >= len(rest) {
			s.pos += i
			return s.truncated()
		}
		if rest[i] != lit[i] {
			s.pos += i
			return s.fail(ParseSyntax, fmt.Sprintf("invalid character %q in literal %s", rest[i], lit))
		}
	}
	s.pos += len(lit)
	return nil
}

// parseNumber scans -?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?
func (s *ParserState) parseNumber() (Number, *ParseError) {
	start := s.pos
	if s.buf[s.pos] == '-' {
		s.pos++
	}
	if s.pos >= len(s.buf) {
		return "", s.truncated()
	}
	switch c := s.buf[s.pos]; {
	case c == '0':
		s.pos++
	case '1' <= c && c <= '9':
		s.scanDigits()
	default:
		return "", s.fail(ParseSyntax, fmt.Sprintf("invalid character %q in numeric literal", c))
	}
	if s.pos < len(s.buf) && s.buf[s.pos] == '.' {
		s.pos++
		if err := s.requireDigits("after decimal point"); err != nil {
			return "", err
		}
	}
	if s.pos < len(s.buf) && (s.buf[s.pos] == 'e' || s.buf[s.pos] == 'E') {
		s.pos++
		if s.pos < len(s.buf) && (s.buf[s.pos] == '+' || s.buf[s.pos] == '-') {
			s.pos++
		}
		if err := s.requireDigits("in exponent"); err != nil {
			return "", err
		}
	}
	return Number(s.buf[start:s.pos]), nil
}

func (s *ParserState) scanDigits() {
	for s.pos < len(s.buf) && internal.IsDigit(s.buf[s.pos]) {
		s.pos++
	}
}

func (s *ParserState) requireDigits(where string) *ParseError {
	if s.pos >= len(s.buf) {
		return s.truncated()
	}
	if !internal.IsDigit(s.buf[s.pos]) {
		return s.fail(ParseSyntax, fmt.Sprintf("invalid character %q %s", s.buf[s.pos], where))
	}
	s.scanDigits()
	return nil
}

// parseString decodes the string starting at the opening quote.
func (s *ParserState) parseString() (string, *ParseError) {
	s.pos++
	start := s.pos

	// fast path: no escapes
	for s.pos < len(s.buf) {
		c := s.buf[s.pos]
		if c == '"' {
			str := string(s.buf[start:s.pos])
			s.pos++
			return str, nil
		}
		if c == '\\' {
			break
		}
		if c < 0x20 {
			return "", s.fail(ParseSyntax, fmt.Sprintf("invalid control character %q in string literal", c))
		}
		s.pos++
	}
	if s.pos >= len(s.buf) {
		return "", s.truncated()
	}

	s.scratch = append(s.scratch[:0], s.buf[start:s.pos]...)
	for s.pos < len(s.buf) {
		c := s.buf[s.pos]
		switch {
		case c == '"':
			s.pos++
			return string(s.scratch), nil
		case c < 0x20:
			return "", s.fail(ParseSyntax, fmt.Sprintf("invalid control character %q in string literal", c))
		case c != '\\':
			s.scratch = append(s.scratch, c)
			s.pos++
			continue
		}

		if s.pos+1 >= len(s.buf) {
			return "", s.truncated()
		}
		switch esc := s.buf[s.pos+1]; esc {
		case '"', '\\', '/':
			s.scratch = append(s.scratch, esc)
		case 'b':
			s.scratch = append(s.scratch, '\b')
		case 'f':
			s.scratch = append(s.scratch, '\f')
		case 'n':
			s.scratch = append(s.scratch, '\n')
		case 'r':
			s.scratch = append(s.scratch, '\r')
		case 't':
			s.scratch = append(s.scratch, '\t')
		case 'u':
			r, err := s.parseUnicodeEscape()
			if err != nil {
				return "", err
			}
			s.scratch = utf8.AppendRune(s.scratch, r)
			continue
		default:
			s.pos++
			return "", s.fail(ParseSyntax, fmt.Sprintf("invalid escape character %q in string literal", esc))
		}
		s.pos += 2
	}
	return "", s.truncated()
}

// parseUnicodeEscape decodes \uXXXX at s.pos, pairing surrogates. Unpaired
// surrogates decode to U+FFFD.
func (s *ParserState) parseUnicodeEscape() (rune, *ParseError) {
	r, err := s.hex4(s.pos + 2)
	if err != nil {
		return 0, err
	}
	s.pos += 6
	if !utf16.IsSurrogate(r) {
		return r, nil
	}
	if s.pos+1 < len(s.buf) && s.buf[s.pos] == '\\' && s.buf[s.pos+1] == 'u' {
		r2, err := s.hex4(s.pos + 2)
		if err != nil {
			return 0, err
		}
		if dec := utf16.DecodeRune(r, r2); dec != utf8.RuneError {
			s.pos += 6
			return dec, nil
		}
	}
	return utf8.RuneError, nil
}

func (s *ParserState) hex4(at int) (rune, *ParseError) {
	if at+4 > len(s.buf) {
		// a partial escape at the end of input is truncation unless one of
		// the digits present is already invalid
		for i := at; i < len(s.buf); i++ {
			if _, ok := internal.HexValue(s.buf[i]); !ok {
				s.pos = i
				return 0, s.fail(ParseSyntax, fmt.Sprintf("invalid character %q in \\u hexadecimal character escape", s.buf[i]))
			}
		}
		s.pos = len(s.buf)
		return 0, s.truncated()
	}
	r, ok := internal.ParseHex4(s.buf[at : at+4])
	if !ok {
		s.pos = at
		return 0, s.fail(ParseSyntax, "invalid \\u hexadecimal character escape")
	}
	return r, nil
}
