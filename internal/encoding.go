package internal

import (
	"sync"
)

// IsSpace reports whether the character is a JSON whitespace character
func IsSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// IsASCIISpace reports whether the character is whitespace in the C locale
// sense, which also covers vertical tab and form feed.
func IsASCIISpace(c byte) bool {
	return IsSpace(c) || c == '\v' || c == '\f'
}

// IsDigit reports whether the character is a digit
func IsDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// HexValue returns the value of a hexadecimal digit and whether c is one.
func HexValue(c byte) (rune, bool) {
	switch {
	case '0' <= c && c <= '9':
		return rune(c - '0'), true
	case 'a' <= c && c <= 'f':
		return rune(c-'a') + 10, true
	case 'A' <= c && c <= 'F':
		return rune(c-'A') + 10, true
	}
	return 0, false
}

// ParseHex4 decodes the four hexadecimal digits of a \uXXXX escape.
func ParseHex4(b []byte) (rune, bool) {
	if len(b) < 4 {
		return 0, false
	}
	var r rune
	for i := 0; i < 4; i++ {
		v, ok := HexValue(b[i])
		if !ok {
			return 0, false
		}
		r = r<<4 | v
	}
	return r, true
}

var byteSlicePool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 1024)
		return &b
	},
}

// GetByteSlice gets a byte slice from the pool
func GetByteSlice() *[]byte {
	b := byteSlicePool.Get().(*[]byte)
	*b = (*b)[:0]
	return b
}

// PutByteSlice returns a byte slice to the pool
func PutByteSlice(b *[]byte) {
	if b == nil {
		return
	}
	const maxByteSliceCap = 32 * 1024 // 32KB
	const minByteSliceCap = 256
	c := cap(*b)
	if c >= minByteSliceCap && c <= maxByteSliceCap {
		*b = (*b)[:0]
		byteSlicePool.Put(b)
	}
}
