package logjson

import (
	"errors"

	"github.com/kaptinlin/jsonrepair"
)

// ParseRepaired parses buf like Parse. If that fails because the document is
// malformed or truncated, the text is run through a JSON repairer and the
// result parsed again. The repaired document must still be an object.
//
// On failure the error of the first, strict parse is returned so that
// diagnostics refer to the caller's input.
func ParseRepaired(state *ParserState, buf []byte) (*Object, error) {
	obj, err := Parse(state, buf)
	if err == nil || !repairable(err) {
		return obj, err
	}

	repaired, repairErr := jsonrepair.JSONRepair(string(buf))
	if repairErr != nil {
		return nil, err
	}
	obj, retryErr := Parse(state, []byte(repaired))
	if retryErr != nil {
		return nil, err
	}
	return obj, nil
}

func repairable(err error) bool {
	return errors.Is(err, ErrSyntax) || errors.Is(err, ErrTruncated)
}
