package client

import (
	"net/http"
	"time"

	"github.com/gustavclausen/github-api-fetcher/pkg/ratelimit"
	"github.com/rs/zerolog"
)

// newTransport builds the round tripper chain shared by every request:
// authentication, then rate limit observation, then a pooled transport.
func newTransport(token, userAgent string, tracker *ratelimit.Tracker, logger zerolog.Logger) http.RoundTripper {
	pooled := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &authTransport{
		token:     token,
		userAgent: userAgent,
		base: &rateLimitTransport{
			tracker: tracker,
			logger:  logger,
			base:    pooled,
		},
	}
}

// authTransport adds the bearer token and user agent to every request.
type authTransport struct {
	token     string
	userAgent string
	base      http.RoundTripper
}

// RoundTrip implements http.RoundTripper
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	req = req.Clone(req.Context())

	req.Header.Set("Authorization", "Bearer "+t.token)
	req.Header.Set("User-Agent", t.userAgent)

	return t.base.RoundTrip(req)
}

// rateLimitTransport feeds response headers to the rate limit tracker.
// It never blocks or rejects a request.
type rateLimitTransport struct {
	tracker *ratelimit.Tracker
	logger  zerolog.Logger
	base    http.RoundTripper
}

// RoundTrip implements http.RoundTripper
func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if err := t.tracker.UpdateFromHeaders(req.Context(), resp.Header); err != nil {
		t.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
	}

	return resp, nil
}
