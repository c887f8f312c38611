package mockdata

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrUnexpectedShape is returned when a payload is neither an array nor an
// object wrapping exactly one recognisable array.
var ErrUnexpectedShape = errors.New("unexpected payload shape")

// NormalizeArray returns the array carried by raw. A bare array is returned
// as is. For an object, the first of preferredKeys holding an array wins;
// otherwise the object must contain exactly one array-valued field.
func NormalizeArray(raw []byte, preferredKeys ...string) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ErrUnexpectedShape
	}

	switch trimmed[0] {
	case '[':
		if !json.Valid(trimmed) {
			return nil, ErrUnexpectedShape
		}
		return json.RawMessage(trimmed), nil
	case '{':
	default:
		return nil, ErrUnexpectedShape
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, ErrUnexpectedShape
	}

	for _, key := range preferredKeys {
		if v, ok := fields[key]; ok && isArray(v) {
			return v, nil
		}
	}

	var arrays []string
	for key, v := range fields {
		if isArray(v) {
			arrays = append(arrays, key)
		}
	}
	if len(arrays) != 1 {
		return nil, ErrUnexpectedShape
	}
	return fields[arrays[0]], nil
}

func isArray(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) > 0 && v[0] == '['
}
