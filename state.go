package logjson

// ParseStatus is the condition a ParserState reports after a parse.
type ParseStatus uint8

const (
	// StatusIdle means the state was reset and has not parsed anything since.
	StatusIdle ParseStatus = iota
	// StatusComplete means a complete value was parsed.
	StatusComplete
	// StatusNeedMore means the input ended before a value completed.
	StatusNeedMore
	// StatusFailed means parsing stopped on a terminal error.
	StatusFailed
)

func (s ParseStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusComplete:
		return "complete"
	case StatusNeedMore:
		return "need_more"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// ParserState is the reusable scanner context used by Parse. It keeps its
// frame stack and scratch buffer between calls so that a worker can parse
// many buffers without reallocating.
//
// A ParserState must not be used by more than one goroutine at a time; give
// each worker its own.
type ParserState struct {
	// MaxDepth bounds container nesting. Zero means unlimited; the parser is
	// iterative, so deep input costs heap rather than stack.
	MaxDepth int

	buf     []byte
	pos     int
	stack   []frame
	scratch []byte
	status  ParseStatus
	err     *ParseError

	nested *ParserState
}

// frame is one open container on the parse stack.
type frame struct {
	obj   *Object
	arr   []Value
	isObj bool
	key   string
}

// NewParserState returns a ready-to-use state.
func NewParserState() *ParserState {
	return &ParserState{
		stack:   make([]frame, 0, 16),
		scratch: make([]byte, 0, 256),
	}
}

// Reset returns s to a clean state. Parse calls it before every parse.
func (s *ParserState) Reset() {
	clear(s.stack)
	s.stack = s.stack[:0]
	s.scratch = s.scratch[:0]
	s.buf = nil
	s.pos = 0
	s.status = StatusIdle
	s.err = nil
}

// nestedState returns the state used to parse a message field found inside
// the document, so that s keeps reporting on the outer document.
func (s *ParserState) nestedState() *ParserState {
	if s.nested == nil {
		s.nested = NewParserState()
	}
	s.nested.MaxDepth = s.MaxDepth
	return s.nested
}

// Status reports the outcome of the last parse.
func (s *ParserState) Status() ParseStatus { return s.status }

// Offset is the byte offset the last parse stopped at: the end of the value
// on success or the position of the error otherwise.
func (s *ParserState) Offset() int { return s.pos }

// Err returns the error of the last parse, if any.
func (s *ParserState) Err() *ParseError { return s.err }

// Depth returns the number of currently open containers.
func (s *ParserState) Depth() int { return len(s.stack) }

func (s *ParserState) fail(kind ParseKind, msg string) *ParseError {
	s.err = &ParseError{Kind: kind, Offset: s.pos, Message: msg}
	if kind == ParseTruncated {
		s.status = StatusNeedMore
	} else {
		s.status = StatusFailed
	}
	return s.err
}

func (s *ParserState) truncated() *ParseError {
	return s.fail(ParseTruncated, "unterminated input")
}

func (s *ParserState) push(f frame) *ParseError {
	if s.MaxDepth > 0 && len(s.stack) >= s.MaxDepth {
		return s.fail(ParseDepthLimit, "maximum nesting depth exceeded")
	}
	s.stack = append(s.stack, f)
	return nil
}

func (s *ParserState) pop() Value {
	top := s.stack[len(s.stack)-1]
	s.stack[len(s.stack)-1] = frame{}
	s.stack = s.stack[:len(s.stack)-1]
	if top.isObj {
		return ObjectValue(top.obj)
	}
	return Array(top.arr...)
}
