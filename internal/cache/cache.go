package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync/atomic"
	"time"
)

// Cache stores encoded comparison artifacts
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

const keyPrefix = "vgmatch:v1:"

// Key derives a cache key from the parts that identify an artifact
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return keyPrefix + hex.EncodeToString(hash[:])
}

// digest returns the hex part of a key built by Key, or the key itself
func digest(key string) string {
	return strings.TrimPrefix(key, keyPrefix)
}

// StatsCache counts lookups against the wrapped cache
type StatsCache struct {
	Cache
	hits   atomic.Uint64
	misses atomic.Uint64
}

// WithStats wraps c with hit and miss counters
func WithStats(c Cache) *StatsCache {
	return &StatsCache{Cache: c}
}

// Get looks the key up and records the outcome
func (c *StatsCache) Get(key string) ([]byte, bool) {
	val, found := c.Cache.Get(key)
	if found {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return val, found
}

// Stats returns the number of hits and misses so far
func (c *StatsCache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}
