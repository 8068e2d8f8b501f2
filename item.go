package loadrouter

import "load-router/internal/routing"

// Item is the work-item boundary: the host supplies attribute storage,
// the engine only reads the attribute named by the configuration.
type Item interface {
	// Attribute returns the named attribute value; ok is false if absent
	Attribute(name string) (value string, ok bool)
}

// MapItem is a trivial map-backed Item for hosts and tests
type MapItem map[string]string

// Attribute implements the Item interface
func (m MapItem) Attribute(name string) (string, bool) {
	value, ok := m[name]
	return value, ok
}

// Strategy identifies a destination-selection algorithm
type Strategy = routing.Strategy

// Supported strategies
const (
	RoundRobin    = routing.RoundRobin
	Random        = routing.Random
	AttributeHash = routing.AttributeHash
)
