package logjson

// Compact returns a copy of v with empty members removed bottom-up, and
// whether the result itself is empty. v is not modified.
//
// Empty means: a zero-length string, an array with no elements left, an
// object with no members left, or null. Numbers and booleans are never
// empty. Compacting a compacted value returns an equal value.
func Compact(v Value) (Value, bool) {
	switch v.kind {
	case KindNull:
		return v, true
	case KindString:
		return v, v.s == ""
	case KindArray:
		arr := make([]Value, 0, len(v.arr))
		for _, item := range v.arr {
			if cleaned, empty := Compact(item); !empty {
				arr = append(arr, cleaned)
			}
		}
		return Array(arr...), len(arr) == 0
	case KindObject:
		obj, empty := CompactObject(v.obj)
		return ObjectValue(obj), empty
	default:
		return v, false
	}
}

// CompactObject is Compact for an object. It returns a new object holding the
// surviving members in their original order.
func CompactObject(o *Object) (*Object, bool) {
	result := &Object{entries: make([]member, 0, o.Len())}
	o.Range(func(key string, value Value) bool {
		if value.IsNull() {
			return true
		}
		if cleaned, empty := Compact(value); !empty {
			result.Set(key, cleaned)
		}
		return true
	})
	return result, result.Len() == 0
}
