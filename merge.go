package logjson

// Merge moves every member of src into dest in src's order. A key already
// present in dest is overwritten by the incoming value; colliding objects are
// not merged recursively.
//
// src is drained: it is empty when Merge returns and its values are owned by
// dest.
func Merge(dest, src *Object) {
	if src == nil || dest == src {
		return
	}
	for _, e := range src.entries {
		dest.Set(e.key, e.value)
	}
	src.reset()
}
