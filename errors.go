package logjson

import (
	"errors"
	"fmt"
)

// Outcome errors. None of them is fatal to a pipeline: they tell the caller
// that the input is not structured data it can merge.
var (
	ErrNoCookie         = errors.New("no JSON cookie")
	ErrTruncated        = errors.New("unterminated input")
	ErrSyntax           = errors.New("invalid JSON syntax")
	ErrTrailingData     = errors.New("extra characters after JSON object")
	ErrNotAnObject      = errors.New("JSON value is not an object")
	ErrDepthLimit       = errors.New("nesting depth limit exceeded")
	ErrCompactedToEmpty = errors.New("object is empty after compaction")
)

// Configuration and resource errors.
var (
	ErrInvalidContainer  = errors.New("invalid container name")
	ErrInvalidOptions    = errors.New("invalid options")
	ErrResourceExhausted = errors.New("system resources exhausted")
)

// ParseKind classifies a parse failure.
type ParseKind uint8

const (
	ParseSyntax ParseKind = iota
	ParseTruncated
	ParseTrailingData
	ParseNotAnObject
	ParseDepthLimit
)

var parseKindNames = [...]string{
	ParseSyntax:       "syntax",
	ParseTruncated:    "truncated",
	ParseTrailingData: "trailing_data",
	ParseNotAnObject:  "not_an_object",
	ParseDepthLimit:   "depth_limit",
}

func (k ParseKind) String() string {
	if int(k) < len(parseKindNames) {
		return parseKindNames[k]
	}
	return fmt.Sprintf("parse_kind(%d)", k)
}

func (k ParseKind) sentinel() error {
	switch k {
	case ParseTruncated:
		return ErrTruncated
	case ParseTrailingData:
		return ErrTrailingData
	case ParseNotAnObject:
		return ErrNotAnObject
	case ParseDepthLimit:
		return ErrDepthLimit
	default:
		return ErrSyntax
	}
}

// ParseError describes why a buffer could not be parsed as a JSON object.
// Offset is the byte offset into the parsed buffer where the problem was
// detected.
type ParseError struct {
	Kind    ParseKind
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("JSON parse failed at offset %d: %v", e.Offset, e.Kind.sentinel())
	}
	return fmt.Sprintf("JSON parse failed at offset %d: %s", e.Offset, e.Message)
}

// Unwrap returns the sentinel error matching the failure kind.
func (e *ParseError) Unwrap() error {
	return e.Kind.sentinel()
}

// ExtractError represents a configuration or processing error with context.
type ExtractError struct {
	Op      string `json:"op"`      // Operation that failed
	Field   string `json:"field"`   // Option or field involved, if any
	Message string `json:"message"` // Human-readable error message
	Err     error  `json:"err"`     // Underlying error
}

func (e *ExtractError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("logjson %s failed for '%s': %s", e.Op, e.Field, e.Message)
	}
	return fmt.Sprintf("logjson %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error for error chain support
func (e *ExtractError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling
func (e *ExtractError) Is(target error) bool {
	if target == nil {
		return false
	}
	if targetErr, ok := target.(*ExtractError); ok {
		return e.Op == targetErr.Op && e.Err == targetErr.Err
	}
	return errors.Is(e.Err, target)
}

// newOptionError creates an ExtractError for an invalid option value
func newOptionError(field, message string, err error) error {
	return &ExtractError{
		Op:      "validate_options",
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// WrapError wraps an error with additional context
func WrapError(err error, op, message string) error {
	if err == nil {
		return nil
	}
	return &ExtractError{
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// IsUnstructured reports whether err is one of the expected "not structured
// data" outcomes rather than a configuration or resource failure.
func IsUnstructured(err error) bool {
	switch {
	case errors.Is(err, ErrNoCookie),
		errors.Is(err, ErrTruncated),
		errors.Is(err, ErrSyntax),
		errors.Is(err, ErrTrailingData),
		errors.Is(err, ErrNotAnObject),
		errors.Is(err, ErrDepthLimit),
		errors.Is(err, ErrCompactedToEmpty):
		return true
	default:
		return false
	}
}
