package logjson

import (
	"github.com/cybergodev/logjson/internal"
)

// DetectCookie skips leading ASCII whitespace in buf and checks that the
// remaining bytes start with cookie. On a match it returns the offset of the
// first byte after the cookie.
//
// An empty cookie matches at the first non-whitespace byte. A buffer that is
// empty or all whitespace never matches.
func DetectCookie(buf []byte, cookie string) (int, bool) {
	i := 0
	for i < len(buf) && internal.IsASCIISpace(buf[i]) {
		i++
	}
	if i == len(buf) {
		return 0, false
	}
	if len(buf)-i < len(cookie) || string(buf[i:i+len(cookie)]) != cookie {
		return 0, false
	}
	return i + len(cookie), true
}

// trimLeadingSpace returns buf without its leading ASCII whitespace.
func trimLeadingSpace(buf []byte) []byte {
	i := 0
	for i < len(buf) && internal.IsASCIISpace(buf[i]) {
		i++
	}
	return buf[i:]
}
