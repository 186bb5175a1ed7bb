package logjson

import (
	"fmt"
)

// Reason tells why a buffer was not turned into structured data.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonNoCookie
	ReasonParseFailed
	ReasonCompactedToEmpty
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNoCookie:
		return "no_cookie"
	case ReasonParseFailed:
		return "parse_failed"
	case ReasonCompactedToEmpty:
		return "compacted_to_empty"
	}
	return fmt.Sprintf("reason(%d)", r)
}

// Result is the outcome of one extraction. It is either structured, holding
// the extracted object and the container it belongs in, or unstructured,
// holding the reason.
type Result struct {
	// Object is the extracted object; nil unless Structured.
	Object *Object
	// Container is the attachment path from the engine options.
	Container string
	// Reason is ReasonNone for structured results.
	Reason Reason
	// Err details the reason: ErrNoCookie, a *ParseError or
	// ErrCompactedToEmpty.
	Err error
	// Remainder is the candidate text: the input without leading whitespace
	// and, when the cookie matched, without the cookie. Callers use it to
	// build a fallback record. It aliases the input buffer.
	Remainder []byte
	// Resolve reports what nested field resolution did.
	Resolve ResolveOutcome
}

// Structured reports whether the result carries an object.
func (r *Result) Structured() bool { return r.Reason == ReasonNone && r.Object != nil }

// ParseSucceeded reports whether the input was valid structured data. A
// document that compacted to nothing was still parsed successfully.
func (r *Result) ParseSucceeded() bool {
	return r.Reason == ReasonNone || r.Reason == ReasonCompactedToEmpty
}

// Engine extracts JSON objects from text records. It holds only immutable
// options and is safe for concurrent use; the per-call parser state is
// supplied by the caller, usually through a Worker.
type Engine struct {
	opts Options
}

// NewEngine validates opts and returns an engine using a private copy of
// them. A nil opts selects DefaultOptions.
func NewEngine(opts *Options) (*Engine, error) {
	cfg := opts.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{opts: *cfg}, nil
}

// Options returns a copy of the engine's options.
func (e *Engine) Options() Options { return e.opts }

// Extract runs the extraction pipeline on buf: cookie detection, parsing,
// nested field resolution and compaction, as configured. state is reset
// before use and must not be shared with a concurrent call. Afterwards it
// reports on the outer document; the message field is parsed with a
// separate state.
//
// Extract never fails: inputs that are not structured data produce an
// unstructured Result.
func (e *Engine) Extract(state *ParserState, buf []byte) *Result {
	if state == nil {
		state = NewParserState()
	}
	state.MaxDepth = e.opts.MaxDepth

	offset, ok := DetectCookie(buf, e.opts.Cookie)
	if !ok {
		return &Result{
			Container: e.opts.Container,
			Reason:    ReasonNoCookie,
			Err:       ErrNoCookie,
			Remainder: trimLeadingSpace(buf),
		}
	}
	text := buf[offset:]

	var (
		obj *Object
		err error
	)
	if e.opts.Repair {
		obj, err = ParseRepaired(state, text)
	} else {
		obj, err = Parse(state, text)
	}
	if err != nil {
		return &Result{
			Container: e.opts.Container,
			Reason:    ReasonParseFailed,
			Err:       err,
			Remainder: text,
		}
	}

	result := &Result{Container: e.opts.Container, Remainder: text}
	if e.opts.MessageField != "" {
		result.Resolve = ResolveNestedField(state.nestedState(), obj, e.opts.MessageField, e.opts.AltMessageField)
	}

	if e.opts.Compact {
		// the alternate field is not subject to compaction and does not keep
		// an otherwise empty object alive
		alt := result.Resolve.AltRecorded
		if alt {
			obj.Delete(e.opts.AltMessageField)
		}
		compacted, empty := CompactObject(obj)
		if empty {
			result.Reason = ReasonCompactedToEmpty
			result.Err = ErrCompactedToEmpty
			return result
		}
		if alt {
			compacted.Set(e.opts.AltMessageField, String(result.Resolve.AltValue))
		}
		obj = compacted
	}

	result.Object = obj
	return result
}

// Worker pairs an engine with its own parser state. A worker serves one
// goroutine at a time; create one per concurrent worker and reuse it across
// calls.
type Worker struct {
	engine *Engine
	state  *ParserState
}

// NewWorker returns a worker with a fresh parser state.
func (e *Engine) NewWorker() *Worker {
	return &Worker{engine: e, state: NewParserState()}
}

// Extract runs the engine with the worker's parser state.
func (w *Worker) Extract(buf []byte) *Result {
	return w.engine.Extract(w.state, buf)
}

// Engine returns the engine the worker runs.
func (w *Worker) Engine() *Engine { return w.engine }
