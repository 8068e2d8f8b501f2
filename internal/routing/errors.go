package routing

import "errors"

var (
	// ErrNoLiveDestinations is returned when the live set is empty at
	// routing time. The caller sends the item to its failure sink; the
	// engine does not retry.
	ErrNoLiveDestinations = errors.New("no alive destinations")

	// ErrUnknownBucketDestination is returned when an affinity bucket
	// references a destination the liveness table has never seen. That is
	// a configuration inconsistency, distinct from an empty live set, and
	// is fatal for the item.
	ErrUnknownBucketDestination = errors.New("affinity bucket references a destination never seen by the liveness table")

	// ErrUnsupportedStrategy is returned for a strategy outside the
	// supported set
	ErrUnsupportedStrategy = errors.New("unsupported routing strategy")

	// ErrMissingAttributeField is returned when AttributeHash is selected
	// without a configured attribute name
	ErrMissingAttributeField = errors.New("attribute hash strategy requires an attribute field")
)
