// Package health maintains per-destination liveness state refreshed by
// periodic probing.
package health

import (
	"sort"
	"sync"
)

// Table is the shared liveness view: destination name -> last-known boolean
// health. It is written only by the Monitor and read by the routing engine.
//
// A destination that has never been probed has no entry at all; absent is
// not the same as false. Entries are never deleted.
type Table struct {
	mu    sync.RWMutex
	state map[string]bool
}

// NewTable creates an empty liveness table
func NewTable() *Table {
	return &Table{state: make(map[string]bool)}
}

// Set records the latest probe outcome for a destination
func (t *Table) Set(name string, alive bool) {
	t.mu.Lock()
	t.state[name] = alive
	t.mu.Unlock()
}

// Get returns the last-known liveness of a destination. known is false if
// the destination has never been probed.
func (t *Table) Get(name string) (alive, known bool) {
	t.mu.RLock()
	alive, known = t.state[name]
	t.mu.RUnlock()
	return alive, known
}

// Live returns the current live set, sorted lexicographically so that
// index-based selection is reproducible for a given set. The snapshot is
// point-in-time; it may be stale the moment it is returned.
func (t *Table) Live() []string {
	t.mu.RLock()
	live := make([]string, 0, len(t.state))
	for name, alive := range t.state {
		if alive {
			live = append(live, name)
		}
	}
	t.mu.RUnlock()

	sort.Strings(live)
	return live
}
