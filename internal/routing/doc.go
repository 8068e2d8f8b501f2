// Package routing selects one live destination per work item.
//
// The engine reads a point-in-time snapshot of the liveness table, applies
// the configured strategy, and returns a destination name or a typed
// failure. It never blocks on probe execution; health state is inherently
// stale between probe ticks and that is acceptable.
//
// Strategies:
//
//   - RoundRobin: one shared atomic counter; increment then index
//     counter mod live-count into the sorted live set. When the live set
//     changes size between calls the rotation is approximate, not a strict
//     permutation. That is intended best-effort behavior.
//   - Random: a uniform integer draw over the live set. Deliberately not a
//     scaled-and-rounded float draw, which gives the boundary indices only
//     half the weight of the interior ones.
//   - AttributeHash: a digest of the item's configured attribute value maps
//     to a sticky bucket in the affinity cache. A live sticky destination
//     is reused; a dead one degrades gracefully to a fresh random pick that
//     becomes the new sticky target.
package routing
