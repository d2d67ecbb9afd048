// Package cache provides a Redis-backed cache for GitHub GraphQL responses.
//
// GraphQL requests are POSTs to a single endpoint, so responses are keyed by
// operation name, a digest of the query text, the request variables and an
// optional principal derived from the access token. Only successful payloads
// without errors are stored, for a fixed TTL chosen by the caller.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//	manager := cache.NewManager(redisClient)
//
//	key := cache.CacheKey{
//		Operation: "GetUserProfile",
//		Query:     query,
//		Variables: map[string]any{"username": "octocat"},
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from GitHub, then
//		_ = manager.Set(ctx, key, cache.NewEntry(data, 5*time.Minute))
//	}
//
// Paged requests cache each page separately: the cursor is part of the
// variables and therefore of the key.
//
// # Metrics
//
//   - github_fetcher_cache_hits_total - Cache hits
//   - github_fetcher_cache_misses_total - Cache misses
//   - github_fetcher_cache_errors_total{operation} - Cache operation errors
package cache
