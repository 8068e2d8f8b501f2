// Package affinity implements the sticky-routing cache: a digest of an
// item's attribute value maps to the destination that value last routed to,
// with a last-seen timestamp driving TTL eviction.
package affinity

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// Key returns the cache key for an attribute value: the MD5 digest of its
// UTF-8 bytes as 32 uppercase hex characters. An absent attribute is the
// empty string, which hashes to a fixed key; all such items share a bucket.
func Key(value string) string {
	sum := md5.Sum([]byte(value))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// bucket is one sticky assignment. Its own mutex keeps the two fields
// consistent under concurrent touch/reassign; last-write-wins on races is
// acceptable because affinity is advisory.
type bucket struct {
	mu          sync.Mutex
	destination string
	lastSeen    time.Time
}

// Cache maps digest keys to sticky destinations. The hot path (routing)
// is the only writer of assignments; the eviction sweep is the only
// deleter. Iteration during concurrent inserts is weakly consistent,
// which the sweep tolerates.
type Cache struct {
	buckets sync.Map // key -> *bucket
	now     func() time.Time
}

// NewCache creates an empty affinity cache
func NewCache() *Cache {
	return &Cache{now: time.Now}
}

// Lookup returns the sticky destination for key, refreshing its last-seen
// timestamp on a hit
func (c *Cache) Lookup(key string) (destination string, ok bool) {
	v, ok := c.buckets.Load(key)
	if !ok {
		return "", false
	}
	b := v.(*bucket)
	b.mu.Lock()
	b.lastSeen = c.now()
	destination = b.destination
	b.mu.Unlock()
	return destination, true
}

// Assign creates or overwrites the bucket for key, pointing it at
// destination and stamping it as just seen
func (c *Cache) Assign(key, destination string) {
	now := c.now()
	v, loaded := c.buckets.LoadOrStore(key, &bucket{destination: destination, lastSeen: now})
	if !loaded {
		return
	}
	b := v.(*bucket)
	b.mu.Lock()
	b.destination = destination
	b.lastSeen = now
	b.mu.Unlock()
}

// Sweep removes every bucket unseen for longer than ttl and returns how
// many were evicted. A bucket touched exactly at the ttl boundary survives.
func (c *Cache) Sweep(ttl time.Duration) int {
	now := c.now()
	evicted := 0
	c.buckets.Range(func(key, v interface{}) bool {
		b := v.(*bucket)
		b.mu.Lock()
		stale := now.Sub(b.lastSeen) > ttl
		b.mu.Unlock()
		if stale {
			c.buckets.Delete(key)
			evicted++
		}
		return true
	})
	return evicted
}

// Len reports the number of buckets currently cached
func (c *Cache) Len() int {
	n := 0
	c.buckets.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}
