package cache

import "fmt"

const pageKeyPrefix = "source:page:"

// PageKey is the cache key for one (source, page) fetch.
func PageKey(source string, page int) string {
	return fmt.Sprintf("%s%s:%d", pageKeyPrefix, source, page)
}

// RateLimitKey is the per-client rate limiting key.
func RateLimitKey(client string) string {
	return fmt.Sprintf("ratelimit:%s", client)
}
