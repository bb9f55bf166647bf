// Package jsonutil holds helpers for values decoded from JSON documents
// (map[string]any, []any, json.Number, string, bool, nil).
package jsonutil

import (
	"bytes"
	"encoding/json"
)

// Clone deep-copies maps and slices so callers cannot mutate shared state
// through a returned value
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Clone(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	default:
		return v
	}
}

// CloneMap is Clone for a document object. A nil map yields nil.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return Clone(m).(map[string]any)
}

// Decode unmarshals data keeping numbers as json.Number so they are written
// back exactly as read
func Decode(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(dst)
}

// Equal reports whether a and b encode to the same JSON. Object keys are
// sorted by encoding/json, so member order does not matter.
func Equal(a, b any) bool {
	ra, errA := json.Marshal(a)
	rb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ra, rb)
}
