package logjson

// Object is an ordered JSON object. Keys are unique; setting an existing key
// replaces its value in place, so iteration follows first-insertion order.
type Object struct {
	entries []member
	index   map[string]int
}

type member struct {
	key   string
	value Value
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{}
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.entries)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	i, ok := o.lookup(key)
	if !ok {
		return Value{}, false
	}
	return o.entries[i].value, true
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.lookup(key)
	return ok
}

// Set stores value under key. An existing key keeps its position.
func (o *Object) Set(key string, value Value) {
	if i, ok := o.lookup(key); ok {
		o.entries[i].value = value
		return
	}
	o.entries = append(o.entries, member{key: key, value: value})
	if o.index != nil {
		o.index[key] = len(o.entries) - 1
	} else if len(o.entries) > indexThreshold {
		o.buildIndex()
	}
}

// Delete removes key and returns the value it held.
func (o *Object) Delete(key string) (Value, bool) {
	i, ok := o.lookup(key)
	if !ok {
		return Value{}, false
	}
	removed := o.entries[i].value
	copy(o.entries[i:], o.entries[i+1:])
	o.entries[len(o.entries)-1] = member{}
	o.entries = o.entries[:len(o.entries)-1]
	if o.index != nil {
		delete(o.index, key)
		for j := i; j < len(o.entries); j++ {
			o.index[o.entries[j].key] = j
		}
	}
	return removed, true
}

// Keys returns the keys in iteration order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.entries))
	for i, e := range o.entries {
		keys[i] = e.key
	}
	return keys
}

// Range calls fn for each member in order until fn returns false.
func (o *Object) Range(fn func(key string, value Value) bool) {
	if o == nil {
		return
	}
	for _, e := range o.entries {
		if !fn(e.key, e.value) {
			return
		}
	}
}

// Clone returns a deep copy of o.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	c := &Object{entries: make([]member, len(o.entries))}
	for i, e := range o.entries {
		c.entries[i] = member{key: e.key, value: e.value.Clone()}
	}
	if o.index != nil {
		c.buildIndex()
	}
	return c
}

// Equal reports whether both objects hold the same keys with equal values.
func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	for _, e := range o.entries {
		v, ok := other.Get(e.key)
		if !ok || !e.value.Equal(v) {
			return false
		}
	}
	return true
}

// String renders o as canonical compact JSON.
func (o *Object) String() string {
	return string(AppendObject(nil, o, nil))
}

// small objects are scanned linearly; larger ones get a key index
const indexThreshold = 16

func (o *Object) lookup(key string) (int, bool) {
	if o == nil {
		return 0, false
	}
	if o.index != nil {
		i, ok := o.index[key]
		return i, ok
	}
	for i := range o.entries {
		if o.entries[i].key == key {
			return i, true
		}
	}
	return 0, false
}

func (o *Object) buildIndex() {
	o.index = make(map[string]int, len(o.entries))
	for i, e := range o.entries {
		o.index[e.key] = i
	}
}

// reset empties o while keeping its storage.
func (o *Object) reset() {
	clear(o.entries)
	o.entries = o.entries[:0]
	o.index = nil
}
