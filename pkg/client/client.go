// Package client provides the Fetcher: the single authenticated channel to
// the GitHub GraphQL endpoint, with error classification, cursor pagination,
// optional response caching and rate limit tracking.
package client

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gustavclausen/github-api-fetcher/pkg/cache"
	"github.com/gustavclausen/github-api-fetcher/pkg/logging"
	"github.com/gustavclausen/github-api-fetcher/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	gql "github.com/shurcooL/graphql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Prometheus metrics for fetcher operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "github_fetcher_requests_total",
		Help: "Total GraphQL requests by operation and status",
	}, []string{"operation", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "github_fetcher_request_duration_seconds",
		Help:    "GraphQL request duration in seconds by operation",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"operation"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "github_fetcher_errors_total",
		Help: "Total classified errors by kind",
	}, []string{"kind"})

	pagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "github_fetcher_pages_fetched_total",
		Help: "Total pages fetched by paged requests",
	}, []string{"operation"})
)

const (
	// DefaultEndpoint is GitHub's public GraphQL endpoint.
	DefaultEndpoint = "https://api.github.com/graphql"

	// DefaultTokenEnv is the environment variable consulted when no token is
	// passed explicitly.
	DefaultTokenEnv = "GITHUB_FETCHER_API_ACCESS_TOKEN"

	// DefaultUserAgent identifies the fetcher to GitHub.
	DefaultUserAgent = "github-api-fetcher"

	// DefaultMaxResponseBytes caps a single response body.
	DefaultMaxResponseBytes = 10 * 1024 * 1024
)

const tracerName = "github.com/gustavclausen/github-api-fetcher/pkg/client"

// ErrMissingToken is returned by New when no access token can be resolved.
var ErrMissingToken = errors.New("github access token is required")

// Fetcher sends GraphQL requests to GitHub. It holds no per-request state and
// may be shared between goroutines; paged requests passed to it may not.
type Fetcher struct {
	httpClient *http.Client
	gql        *gql.Client
	endpoint   string
	cache      *cache.Manager
	principal  string
	rateLimits *ratelimit.Tracker
	tracer     trace.Tracer
	config     Config
	logger     zerolog.Logger
}

// Config holds the fetcher configuration.
type Config struct {
	// Endpoint is the GraphQL endpoint URL
	Endpoint string

	// Token is the access token; when empty it is read from TokenEnv
	Token string

	// TokenEnv names the environment variable holding the token
	TokenEnv string

	// UserAgent header sent with every request
	UserAgent string

	// Timeout bounds a single round trip
	Timeout time.Duration

	// MaxResponseBytes caps the size of a response body
	MaxResponseBytes int64

	// Redis enables the response cache and shared rate limit state (optional)
	Redis *redis.Client

	// CacheTTL is how long successful responses are cached; 0 disables caching
	CacheTTL time.Duration
}

// DefaultConfig returns a configuration for the public GitHub endpoint.
// The token is resolved from the environment unless set afterwards.
func DefaultConfig() Config {
	return Config{
		Endpoint:         DefaultEndpoint,
		TokenEnv:         DefaultTokenEnv,
		UserAgent:        DefaultUserAgent,
		Timeout:          30 * time.Second,
		MaxResponseBytes: DefaultMaxResponseBytes,
	}
}

// New creates a Fetcher. The access token is taken from cfg.Token, then from
// the cfg.TokenEnv environment variable; without either New fails with
// ErrMissingToken.
func New(cfg Config) (*Fetcher, error) {
	cfg = withDefaults(cfg)

	token := cfg.Token
	if token == "" {
		token = os.Getenv(cfg.TokenEnv)
	}
	if token == "" {
		return nil, fmt.Errorf("%w: pass a token or set %s", ErrMissingToken, cfg.TokenEnv)
	}

	endpoint, err := url.Parse(cfg.Endpoint)
	if err != nil || (endpoint.Scheme != "http" && endpoint.Scheme != "https") || endpoint.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q", cfg.Endpoint)
	}

	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}

	if cfg.CacheTTL > 0 && cfg.Redis == nil {
		return nil, fmt.Errorf("cache_ttl requires a redis client")
	}

	logger := logging.NewLogger("github-fetcher")
	rateLimits := ratelimit.NewTracker(cfg.Redis, logger)

	httpClient := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: newTransport(token, cfg.UserAgent, rateLimits, logger),
	}

	f := &Fetcher{
		httpClient: httpClient,
		gql:        gql.NewClient(cfg.Endpoint, httpClient),
		endpoint:   cfg.Endpoint,
		principal:  cache.Digest(token),
		rateLimits: rateLimits,
		tracer:     otel.Tracer(tracerName),
		config:     cfg,
		logger:     logger,
	}

	if cfg.CacheTTL > 0 {
		f.cache = cache.NewManager(cfg.Redis)
	}

	return f, nil
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.TokenEnv == "" {
		cfg.TokenEnv = def.TokenEnv
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = def.MaxResponseBytes
	}
	return cfg
}

// Endpoint returns the GraphQL endpoint requests are sent to.
func (f *Fetcher) Endpoint() string {
	return f.endpoint
}

// RateLimits returns the tracker fed by response headers.
func (f *Fetcher) RateLimits() *ratelimit.Tracker {
	return f.rateLimits
}

// Close releases idle connections.
func (f *Fetcher) Close() error {
	f.httpClient.CloseIdleConnections()
	return nil
}
