package cache

import "time"

// CacheService is the key/value cache behind the loader and workflow invalidation.
type CacheService interface {
	Get(key string) (interface{}, bool)

	// Set stores value for duration. Zero means the cache default.
	Set(key string, value interface{}, duration time.Duration)

	Delete(key string)

	// DeletePrefix drops every key starting with prefix and reports how many went.
	DeletePrefix(prefix string) int

	Flush()
}

// Wildcard marks an invalidation key as a prefix, e.g. "stats:orders:*".
const Wildcard = "*"
