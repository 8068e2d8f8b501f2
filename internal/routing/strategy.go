package routing

import "strings"

// Strategy identifies a destination-selection algorithm
type Strategy string

const (
	// RoundRobin rotates through the live set with a shared counter
	RoundRobin Strategy = "RoundRobin"
	// Random picks uniformly from the live set
	Random Strategy = "Random"
	// AttributeHash routes items with equal attribute values to the same
	// live destination
	AttributeHash Strategy = "AttributeHash"
)

// DefaultStrategy is used when the host configures none
const DefaultStrategy = RoundRobin

// ParseStrategy maps a configuration string to a Strategy. Matching is
// case-insensitive and tolerates snake_case spellings.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "_", "")) {
	case "", "roundrobin":
		return RoundRobin, nil
	case "random":
		return Random, nil
	case "attributehash":
		return AttributeHash, nil
	default:
		return "", ErrUnsupportedStrategy
	}
}

// String returns the canonical spelling
func (s Strategy) String() string { return string(s) }
