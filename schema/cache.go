package schema

import (
	"time"
)

const (
	DefaultCacheSize = 500
	DefaultCacheTTL  = 5 * time.Minute

	DefaultCallTimeout      = 30 * time.Second
	DefaultLookupConcurrent = 20

	CacheControl = "max-age=120"
)
