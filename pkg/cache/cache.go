// Package cache stores parsed diagrams and computed layouts between runs.
//
// # Backends
//
//   - [FileCache]: one file per entry under a directory, used by the CLI
//   - [LRUCache]: bounded in-process cache, used by the HTTP server
//   - [RedisCache] and [MongoCache]: shared caches for several servers
//   - [NullCache]: stores nothing
//
// All backends store opaque bytes. [Marshal] and [Unmarshal] encode values
// with MessagePack using their JSON field names, so cached diagrams decode
// into the same shapes the JSON API produces.
//
// # Keys
//
// A [Keyer] derives keys from a content hash plus the options that affect
// the result, so changing a layout constant never returns a stale layout.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values.
const (
	TTLDiagram = 7 * 24 * time.Hour
	TTLLayout  = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

var (
	_ Clearer = (*FileCache)(nil)
	_ Clearer = (*RedisCache)(nil)
	_ Clearer = (*MongoCache)(nil)
)
