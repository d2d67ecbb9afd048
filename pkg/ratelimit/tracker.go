package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit tracking.
var (
	rateLimitRemaining = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "github_fetcher_rate_limit_remaining",
		Help: "Points remaining in the current GitHub rate limit window",
	}, []string{"resource"})

	rateLimitLowTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "github_fetcher_rate_limit_low_total",
		Help: "Responses received while the rate limit budget was low",
	}, []string{"resource"})
)

// ErrNoState is returned by GetState before any rate limit headers were seen.
var ErrNoState = errors.New("no rate limit state recorded")

// Tracker records GitHub rate limit state from response headers. With a
// Redis client the state is shared across processes; without one it is kept
// in memory.
type Tracker struct {
	redis  *redis.Client
	logger zerolog.Logger

	mu     sync.RWMutex
	states map[string]RateLimitState
}

// NewTracker creates a new rate limit tracker. redisClient may be nil.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		logger: logger,
		states: make(map[string]RateLimitState),
	}
}

// GetState returns the last recorded state for resource, or ErrNoState.
func (t *Tracker) GetState(ctx context.Context, resource string) (*RateLimitState, error) {
	if resource == "" {
		resource = DefaultResource
	}

	if t.redis == nil {
		t.mu.RLock()
		defer t.mu.RUnlock()
		state, ok := t.states[resource]
		if !ok {
			return nil, ErrNoState
		}
		return &state, nil
	}

	data, err := t.redis.Get(ctx, RedisKeyPrefix+resource).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoState
		}
		return nil, fmt.Errorf("get rate limit state: %w", err)
	}

	var state RateLimitState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse rate limit state: %w", err)
	}
	return &state, nil
}

// UpdateFromHeaders parses GitHub rate limit headers and records the state.
// Responses without rate limit headers are ignored.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, headers http.Header) error {
	state, ok, err := ParseHeaders(headers)
	if err != nil || !ok {
		return err
	}

	if err := t.store(ctx, state); err != nil {
		return err
	}

	rateLimitRemaining.WithLabelValues(state.Resource).Set(float64(state.Remaining))

	if state.IsLow() {
		rateLimitLowTotal.WithLabelValues(state.Resource).Inc()
		t.logger.Warn().
			Str("resource", state.Resource).
			Int("rate_limit_remaining", state.Remaining).
			Int("limit", state.Limit).
			Time("reset_at", state.ResetAt).
			Msg("GitHub rate limit budget low")
	} else {
		t.logger.Debug().
			Str("resource", state.Resource).
			Int("rate_limit_remaining", state.Remaining).
			Time("reset_at", state.ResetAt).
			Msg("GitHub rate limit state updated")
	}

	return nil
}

func (t *Tracker) store(ctx context.Context, state *RateLimitState) error {
	if t.redis == nil {
		t.mu.Lock()
		t.states[state.Resource] = *state
		t.mu.Unlock()
		return nil
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal rate limit state: %w", err)
	}

	// Keep state one minute past the window so late readers still see it
	ttl := state.TimeUntilReset() + time.Minute
	if err := t.redis.Set(ctx, RedisKeyPrefix+state.Resource, data, ttl).Err(); err != nil {
		return fmt.Errorf("store rate limit state in redis: %w", err)
	}
	return nil
}

// ParseHeaders extracts the rate limit state from response headers. ok is
// false when the response carries no rate limit headers.
func ParseHeaders(headers http.Header) (state *RateLimitState, ok bool, err error) {
	remainStr := headers.Get(HeaderRemaining)
	if remainStr == "" {
		return nil, false, nil
	}

	remaining, err := strconv.Atoi(remainStr)
	if err != nil {
		return nil, false, fmt.Errorf("parse %s header: %w", HeaderRemaining, err)
	}

	resetStr := headers.Get(HeaderReset)
	if resetStr == "" {
		return nil, false, fmt.Errorf("%s header missing", HeaderReset)
	}
	resetUnix, err := strconv.ParseInt(resetStr, 10, 64)
	if err != nil {
		return nil, false, fmt.Errorf("parse %s header: %w", HeaderReset, err)
	}

	state = &RateLimitState{
		Resource:   headers.Get(HeaderResource),
		Remaining:  remaining,
		ResetAt:    time.Unix(resetUnix, 0),
		LastUpdate: time.Now(),
	}
	if state.Resource == "" {
		state.Resource = DefaultResource
	}

	if v := headers.Get(HeaderLimit); v != "" {
		if state.Limit, err = strconv.Atoi(v); err != nil {
			return nil, false, fmt.Errorf("parse %s header: %w", HeaderLimit, err)
		}
	}
	if v := headers.Get(HeaderUsed); v != "" {
		if state.Used, err = strconv.Atoi(v); err != nil {
			return nil, false, fmt.Errorf("parse %s header: %w", HeaderUsed, err)
		}
	}

	return state, true, nil
}
