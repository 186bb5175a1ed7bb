package logjson

// ResolveAction tells what ResolveNestedField did.
type ResolveAction uint8

const (
	// ResolveNoOp means the object was left untouched.
	ResolveNoOp ResolveAction = iota
	// ResolvedString means a string field held JSON text that was parsed and
	// merged.
	ResolvedString
	// ResolvedObject means an object field was merged.
	ResolvedObject
)

func (a ResolveAction) String() string {
	switch a {
	case ResolveNoOp:
		return "noop"
	case ResolvedString:
		return "string"
	case ResolvedObject:
		return "object"
	}
	return "unknown"
}

// ResolveOutcome reports the result of ResolveNestedField.
type ResolveOutcome struct {
	Action ResolveAction
	// AltValue is the text recorded under the alternate field name; it is
	// only meaningful when AltRecorded is set.
	AltValue    string
	AltRecorded bool
	// ParseErr holds the reason a string field was not treated as nested
	// JSON. It is informational: a plain string field is a normal case.
	ParseErr error
}

// Resolved reports whether the field was replaced by its nested content.
func (o ResolveOutcome) Resolved() bool { return o.Action != ResolveNoOp }

// ResolveNestedField replaces obj[field] with the members of the JSON
// document it carries.
//
// A string value is treated as escaped JSON text: it is unescaped and parsed
// with state. When that yields an object, the field is removed and the object
// merged into obj; otherwise obj is left as it was. An object value is merged
// directly. Values of any other kind are left alone.
//
// When altField is not empty and the field was resolved, obj[altField]
// receives the original string value, or the canonical JSON text of the
// original object.
func ResolveNestedField(state *ParserState, obj *Object, field, altField string) ResolveOutcome {
	value, ok := obj.Get(field)
	if !ok {
		return ResolveOutcome{}
	}

	var (
		nested   *Object
		altValue string
		action   ResolveAction
	)
	switch value.Kind() {
	case KindString:
		raw, _ := value.AsString()
		parsed, err := Parse(state, []byte(raw))
		if err != nil {
			return ResolveOutcome{ParseErr: err}
		}
		nested, altValue, action = parsed, raw, ResolvedString
	case KindObject:
		nested, _ = value.AsObject()
		if altField != "" {
			altValue = nested.String()
		}
		action = ResolvedObject
	default:
		return ResolveOutcome{}
	}

	obj.Delete(field)
	Merge(obj, nested)

	outcome := ResolveOutcome{Action: action}
	if altField != "" {
		obj.Set(altField, String(altValue))
		outcome.AltValue = altValue
		outcome.AltRecorded = true
	}
	return outcome
}
