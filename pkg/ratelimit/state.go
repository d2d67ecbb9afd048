// Package ratelimit tracks the GitHub API rate limit reported in response
// headers (X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset).
//
// Tracking is observational: requests are never delayed or blocked here.
// An exhausted budget surfaces as ACCESS_FORBIDDEN from the fetcher and the
// caller decides what to do.
package ratelimit

import (
	"time"
)

// GitHub rate limit response headers.
const (
	HeaderLimit     = "X-RateLimit-Limit"
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderReset     = "X-RateLimit-Reset"
	HeaderUsed      = "X-RateLimit-Used"
	HeaderResource  = "X-RateLimit-Resource"
)

// DefaultResource is assumed when a response does not name its resource.
const DefaultResource = "graphql"

// RedisKeyPrefix namespaces rate limit state shared through Redis.
const RedisKeyPrefix = "github-fetcher:rate_limit:"

// LowBudgetFraction marks the budget as low when less than this share of
// the limit is left.
const LowBudgetFraction = 0.1

// RateLimitState is the last rate limit reported by GitHub for a resource.
type RateLimitState struct {
	// Resource is the rate limit bucket, e.g. "graphql"
	Resource string `json:"resource"`

	// Limit is the number of points granted per window
	Limit int `json:"limit"`

	// Remaining is the number of points left in the current window
	Remaining int `json:"remaining"`

	// Used is the number of points spent in the current window
	Used int `json:"used"`

	// ResetAt is when the current window ends
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when this state was recorded
	LastUpdate time.Time `json:"last_update"`
}

// IsStale returns true if the state is older than maxAge or its window has
// already reset.
func (s *RateLimitState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge || time.Now().After(s.ResetAt)
}

// IsLow reports whether less than LowBudgetFraction of the limit is left.
func (s *RateLimitState) IsLow() bool {
	if s.Limit <= 0 {
		return false
	}
	return float64(s.Remaining) < float64(s.Limit)*LowBudgetFraction
}

// IsExhausted reports whether no points are left in the current window.
func (s *RateLimitState) IsExhausted() bool {
	return s.Remaining <= 0 && time.Now().Before(s.ResetAt)
}

// TimeUntilReset returns the duration until the window resets.
// Returns 0 if the reset time has already passed.
func (s *RateLimitState) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}
