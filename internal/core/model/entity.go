package model

import (
	"encoding/json"
	"maps"
)

// Entity is implemented by Node and Edge.
type Entity interface {
	Node | Edge
	EntityID() string
	EntityLabel() string
	EntityProperties() Properties
}

// Properties maps property names to values.
type Properties map[string]string

// Canonical returns a deterministic string form of the bag, keys sorted.
func (p Properties) Canonical() string {
	if len(p) == 0 {
		return "{}"
	}
	// Map keys are sorted by encoding/json.
	b, err := json.Marshal(map[string]string(p))
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Clone returns a shallow copy, never nil.
func (p Properties) Clone() Properties {
	out := make(Properties, len(p))
	maps.Copy(out, p)
	return out
}
