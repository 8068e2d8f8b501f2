// Package loadrouter is a health-aware routing engine. It distributes work
// items across named destinations, each backed by a periodic external
// liveness probe, and fails an item when no destination is currently live.
//
// Destinations are declared with an opaque probe command whose exit code
// zero means "live". One monitor loop per destination keeps a shared
// liveness table fresh; routing reads a point-in-time snapshot of that
// table and applies the configured strategy:
//
//   - RoundRobin: rotate through the live set with a shared counter
//   - Random: uniform pick from the live set
//   - AttributeHash: items with equal values of a configured attribute
//     stick to the same destination while it stays live
//
// Sticky assignments live in an affinity cache swept periodically; buckets
// unseen for longer than the configured lifetime are evicted.
//
// Example usage:
//
//	balancer, err := loadrouter.New(nil) // nil loads config from the environment
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer balancer.Stop()
//
//	item := loadrouter.MapItem{"user": "alice"}
//	dest, err := balancer.Route(item)
//	if err != nil {
//		failureSink.Send(item, loadrouter.FailureReason(err))
//		return
//	}
//	deliver(item, dest)
//
// The engine owns no wire protocol and performs no delivery; the caller
// transfers the item to the returned destination.
package loadrouter
