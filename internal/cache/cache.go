// Package cache defines the response cache for computed layers. A
// layer is a pure function of the request body, so cached entries
// never go stale; stores only bound memory (LRU) or lifetime (TTL).
package cache

import "context"

type Interface interface {
	// Get returns the cached payload and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
}
