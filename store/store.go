// Package store defines the byte-store abstraction consumed by tagtree.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte that was previously passed to Set for a key (no prepended
// metadata, no re-encoding, no mutation). If a store performs internal
// transforms (e.g., compression), they MUST be fully reversed.
//
// Important: the keyspaces "k:", "t:" and "tagtree:ttl:" are owned by
// tagtree. External code MUST NOT write values under these prefixes. Foreign
// writes may be treated as corruption by strict frame validation and
// deleted.
package store

import (
	"context"
	"time"
)

// Store is a minimal byte store with TTLs and multi-key operations. Must be
// safe for concurrent use. A TTL of 0 means no expiry; positive TTLs are
// rounded down to seconds by implementations that only support whole
// seconds.
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// GetMulti returns the present subset of keys. Missing keys are
	// simply absent from the result, never an error.
	GetMulti(ctx context.Context, keys []string) (map[string][]byte, error)

	// Set stores value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetMulti stores all entries with a single TTL, in one round trip
	// where the backend allows it.
	SetMulti(ctx context.Context, entries map[string][]byte, ttl time.Duration) error

	// Del removes a key (best-effort).
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}
