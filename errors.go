package loadrouter

import (
	"errors"

	"load-router/internal/routing"
)

var (
	// ErrNoLiveDestinations is returned by Route when the live set is
	// empty. The item belongs in the caller's failure path; the engine
	// does not retry.
	ErrNoLiveDestinations = routing.ErrNoLiveDestinations

	// ErrUnknownBucketDestination is returned by Route when a sticky
	// bucket references a destination the liveness table has never seen.
	// It indicates a configuration or registration bug and should be
	// logged loudly by the caller.
	ErrUnknownBucketDestination = routing.ErrUnknownBucketDestination

	// ErrStopped is returned once Stop has been called; a stopped
	// Balancer never resurrects its timers.
	ErrStopped = errors.New("balancer is stopped")
)

// FailureReason maps a Route error to the human-readable reason the caller
// attaches to the item before handing it to its failure sink
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoLiveDestinations):
		return "no alive destinations"
	case errors.Is(err, ErrUnknownBucketDestination):
		return "affinity bucket references an unknown destination"
	default:
		return err.Error()
	}
}
