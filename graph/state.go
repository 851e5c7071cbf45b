package graph

import "maps"

// State is the unit of data passed between nodes: a mapping of field names to values.
// Nodes receive a snapshot and return a partial State holding only changed fields.
type State map[string]any

// Clone returns a shallow copy of the state. A nil state clones to an empty one.
func (s State) Clone() State {
	out := make(State, len(s))
	maps.Copy(out, s)
	return out
}

// GetAs returns the value stored under key converted to T.
// The second result is false if the key is missing or holds another type.
func GetAs[T any](s State, key string) (T, bool) {
	v, ok := s[key]
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
