package constants

import "time"

// Redis cache keys and TTLs.
// Pattern: showtix:{module}:{operation}

const (
	CACHE_PREFIX = "showtix"
)

// Show cache keys
const (
	// The full listing is one cached value: the catalog is small and the
	// list endpoint is the hot read path.
	CACHE_KEY_SHOWS_LIST = CACHE_PREFIX + ":shows:list:all"
)

// Show cache TTLs. The listing carries live availability, so it stays short
// and is additionally invalidated on every ledger mutation.
const (
	TTL_SHOWS_LIST = 30 * time.Second
)

// Rate limit key prefix (pkg/ratelimit)
const (
	RATELIMIT_PREFIX = CACHE_PREFIX + ":ratelimit"
)
