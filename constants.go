package logjson

const (
	// DefaultCookie is the CEE (Common Event Expression) marker that precedes
	// JSON payloads in syslog messages.
	DefaultCookie = "@cee:"

	// DefaultContainer attaches results at the root of the message tree.
	DefaultContainer = "!"

	// Container sigils
	SigilMessage = '!' // message variables ($!)
	SigilLocal   = '.' // local variables ($.)
	SigilGlobal  = '/' // global variables ($/)

	// DefaultFallbackField names the field holding the original text when a
	// record is not structured.
	DefaultFallbackField = "msg"

	// DefaultMaxNestingDepth bounds nesting when Options.MaxDepth is unset.
	// Zero keeps the parser unbounded.
	DefaultMaxNestingDepth = 0

	// MaxAllowedNestingDepth caps Options.MaxDepth.
	MaxAllowedNestingDepth = 10000
)
