package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks responses served from Redis
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "github_fetcher_cache_hits_total",
			Help: "Total number of GraphQL responses served from cache",
		},
	)

	// CacheMisses tracks lookups that fell through to GitHub
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "github_fetcher_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "github_fetcher_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
