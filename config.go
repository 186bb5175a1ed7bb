package logjson

import (
	"fmt"
	"strings"
)

// Options configures an Engine. Build it with DefaultOptions, adjust the
// fields, and hand it to NewEngine, which validates it once; the engine keeps
// its own copy, so later changes to the struct have no effect.
type Options struct {
	// Cookie is the literal prefix required before the JSON text. An empty
	// cookie disables the check.
	Cookie string `json:"cookie" yaml:"cookie"`

	// UseRawSource and SourceProperty record which text the caller selected
	// (the raw record, or a named property). They do not change how the
	// engine processes the buffer it is given.
	UseRawSource   bool   `json:"use_raw_source" yaml:"use_raw_source"`
	SourceProperty string `json:"source_property" yaml:"source_property"`

	// Container is where the caller attaches the result. It must start with
	// '!', '.' or '/', optionally preceded by '$'.
	Container string `json:"container" yaml:"container"`

	// Compact removes empty strings, arrays, objects and nulls.
	Compact bool `json:"compact" yaml:"compact"`

	// MessageField names a field holding nested (possibly re-encoded) JSON.
	MessageField string `json:"message_field" yaml:"message_field"`

	// AltMessageField keeps the original representation of MessageField
	// under another name. Ignored unless MessageField is set.
	AltMessageField string `json:"alt_message_field" yaml:"alt_message_field"`

	// Repair retries malformed or truncated documents after running them
	// through a JSON repairer. Off by default.
	Repair bool `json:"repair" yaml:"repair"`

	// MaxDepth bounds nesting depth of parsed documents; 0 is unlimited.
	MaxDepth int `json:"max_depth" yaml:"max_depth"`
}

// DefaultOptions returns the default options: the CEE cookie, attached at
// the message root, with no compaction and no nested field resolution.
func DefaultOptions() *Options {
	return &Options{
		Cookie:    DefaultCookie,
		Container: DefaultContainer,
		MaxDepth:  DefaultMaxNestingDepth,
	}
}

// Clone creates a copy of the options
func (o *Options) Clone() *Options {
	if o == nil {
		return DefaultOptions()
	}
	clone := *o
	return &clone
}

// Validate checks the options and normalizes the container name.
func (o *Options) Validate() error {
	if o == nil {
		return newOptionError("", "options cannot be nil", ErrInvalidOptions)
	}

	container, err := NormalizeContainer(o.Container)
	if err != nil {
		return err
	}
	o.Container = container

	if o.MaxDepth < 0 {
		return newOptionError("max_depth", "max_depth cannot be negative", ErrInvalidOptions)
	}
	if o.MaxDepth > MaxAllowedNestingDepth {
		o.MaxDepth = MaxAllowedNestingDepth
	}
	if o.MessageField == "" {
		o.AltMessageField = ""
	}
	return nil
}

// NormalizeContainer validates a container name and strips an optional
// leading '$'. An empty name selects DefaultContainer.
func NormalizeContainer(name string) (string, error) {
	if name == "" {
		return DefaultContainer, nil
	}
	normalized := strings.TrimPrefix(name, "$")
	if normalized != "" {
		switch normalized[0] {
		case SigilMessage, SigilLocal, SigilGlobal:
			return normalized, nil
		}
	}
	return "", newOptionError("container",
		fmt.Sprintf("invalid container name '%s', name must start with either '$!', '$.', or '$/'", name),
		ErrInvalidContainer)
}
