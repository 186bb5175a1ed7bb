package action

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/cybergodev/logjson"
)

// ErrNotContainer is returned when a variable path runs through a value that
// is not an object.
var ErrNotContainer = errors.New("variable path runs through a non-object value")

// Globals is the global variable tree ($/), shared by all messages of a
// runner.
type Globals struct {
	mu   sync.Mutex
	tree *logjson.Object
}

// NewGlobals returns an empty global variable tree.
func NewGlobals() *Globals {
	return &Globals{tree: logjson.NewObject()}
}

// Snapshot returns a deep copy of the global tree.
func (g *Globals) Snapshot() *logjson.Object {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tree.Clone()
}

// Message is a log record as seen by the action: the parsed message text,
// the raw record, and the variable trees results are attached to.
//
// A Message is processed by one worker at a time.
type Message struct {
	// Msg is the message part of the record.
	Msg string
	// RawMsg is the record as received.
	RawMsg string
	// ParseSuccess is set by the action: true when the record carried
	// structured data.
	ParseSuccess bool

	vars    *logjson.Object // $!
	locals  *logjson.Object // $.
	globals *Globals        // $/
	uuid    string
}

// NewMessage creates a message. When msg is empty the raw text is used as
// the message as well.
func NewMessage(raw, msg string) *Message {
	if msg == "" {
		msg = raw
	}
	return &Message{
		Msg:    msg,
		RawMsg: raw,
		vars:   logjson.NewObject(),
		locals: logjson.NewObject(),
	}
}

// WithGlobals attaches a shared global variable tree.
func (m *Message) WithGlobals(g *Globals) *Message {
	m.globals = g
	return m
}

// UUID returns the message's unique id, generating it on first use.
func (m *Message) UUID() string {
	if m.uuid == "" {
		m.uuid = strings.ReplaceAll(strings.ToUpper(uuid.NewString()), "-", "")
	}
	return m.uuid
}

// HasUUID reports whether an id was generated for the message.
func (m *Message) HasUUID() bool { return m.uuid != "" }

// Vars returns the message variable tree ($!).
func (m *Message) Vars() *logjson.Object { return m.vars }

// Locals returns the local variable tree ($.).
func (m *Message) Locals() *logjson.Object { return m.locals }

// Property returns the text of a message property: "msg", "rawmsg", "uuid",
// or a variable such as "$!event!user", "$.tmp" or "$/counter". String
// variables are returned verbatim, other values as compact JSON.
func (m *Message) Property(name string) (string, bool) {
	switch strings.ToLower(name) {
	case "msg":
		return m.Msg, true
	case "rawmsg":
		return m.RawMsg, true
	case "uuid":
		return m.UUID(), true
	}

	sigil, path, err := splitVariable(name)
	if err != nil {
		return "", false
	}
	var value logjson.Value
	var ok bool
	m.withTree(sigil, func(root *logjson.Object) {
		value, ok = lookup(root, path)
	})
	if !ok {
		return "", false
	}
	if s, isString := value.AsString(); isString {
		return s, true
	}
	return value.String(), true
}

// AddJSON attaches obj at container. The root of a tree ("!", "." or "/")
// receives obj's members; a named leaf holding an object is merged with obj;
// any other leaf is replaced. Missing intermediate objects are created.
// obj is consumed.
func (m *Message) AddJSON(container string, obj *logjson.Object) error {
	sigil, path, err := splitVariable(container)
	if err != nil {
		return err
	}
	m.withTree(sigil, func(root *logjson.Object) {
		err = attach(root, path, obj)
	})
	if err != nil {
		return fmt.Errorf("add JSON at %q: %w", container, err)
	}
	return nil
}

func (m *Message) withTree(sigil byte, fn func(*logjson.Object)) {
	switch sigil {
	case logjson.SigilLocal:
		fn(m.locals)
	case logjson.SigilGlobal:
		if m.globals == nil {
			m.globals = NewGlobals()
		}
		m.globals.mu.Lock()
		defer m.globals.mu.Unlock()
		fn(m.globals.tree)
	default:
		fn(m.vars)
	}
}

// splitVariable splits "$!a!b" into its sigil and path segments.
func splitVariable(name string) (byte, []string, error) {
	normalized, err := logjson.NormalizeContainer(name)
	if err != nil {
		return 0, nil, err
	}
	var path []string
	for _, part := range strings.Split(normalized[1:], "!") {
		if part != "" {
			path = append(path, part)
		}
	}
	return normalized[0], path, nil
}

func lookup(root *logjson.Object, path []string) (logjson.Value, bool) {
	current := logjson.ObjectValue(root)
	for _, key := range path {
		obj, ok := current.AsObject()
		if !ok {
			return logjson.Value{}, false
		}
		if current, ok = obj.Get(key); !ok {
			return logjson.Value{}, false
		}
	}
	if obj, isObj := current.AsObject(); isObj && obj.Len() == 0 && len(path) == 0 {
		return logjson.Value{}, false
	}
	return current, true
}

func attach(root *logjson.Object, path []string, obj *logjson.Object) error {
	if len(path) == 0 {
		logjson.Merge(root, obj)
		return nil
	}
	parent := root
	for _, key := range path[:len(path)-1] {
		next, ok := parent.Get(key)
		if !ok {
			child := logjson.NewObject()
			parent.Set(key, logjson.ObjectValue(child))
			parent = child
			continue
		}
		child, isObj := next.AsObject()
		if !isObj {
			return fmt.Errorf("%w: %q is a %s", ErrNotContainer, key, next.Kind())
		}
		parent = child
	}

	leaf := path[len(path)-1]
	if existing, ok := parent.Get(leaf); ok {
		if existingObj, isObj := existing.AsObject(); isObj {
			logjson.Merge(existingObj, obj)
			return nil
		}
	}
	parent.Set(leaf, logjson.ObjectValue(obj))
	return nil
}
