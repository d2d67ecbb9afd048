package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gustavclausen/github-api-fetcher/pkg/apierror"
	"github.com/gustavclausen/github-api-fetcher/pkg/client"
	"github.com/gustavclausen/github-api-fetcher/pkg/config"
	"github.com/gustavclausen/github-api-fetcher/pkg/github"
	"github.com/gustavclausen/github-api-fetcher/pkg/logging"
	"github.com/gustavclausen/github-api-fetcher/pkg/metrics"
)

// errNotFound reports a subject GitHub does not know.
var errNotFound = errors.New("not found")

// Exit codes.
const (
	exitOK       = 0
	exitGeneral  = 1
	exitAuth     = 2
	exitUpstream = 3
	exitNotFound = 4
)

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, errNotFound) {
		return exitNotFound
	}
	if errors.Is(err, client.ErrMissingToken) {
		return exitAuth
	}

	var apiErr *apierror.Error
	var parseErr *apierror.ParseError
	if !errors.As(err, &apiErr) && !errors.As(err, &parseErr) {
		return exitGeneral
	}

	switch apierror.KindOf(err) {
	case apierror.KindBadCredentials, apierror.KindInsufficientScopes, apierror.KindAccessForbidden:
		return exitAuth
	case apierror.KindServerError, apierror.KindUnknown, apierror.KindParse:
		return exitUpstream
	}
	return exitGeneral
}

// flags are the persistent flags shared by every command.
type flags struct {
	configPath  string
	token       string
	endpoint    string
	logLevel    string
	logPretty   bool
	metricsAddr string
	timeout     time.Duration
}

// app is the state a command runs with, set up before and torn down after it.
type app struct {
	out     io.Writer
	cfg     *config.Config
	logger  zerolog.Logger
	redis   *redis.Client
	fetcher *client.Fetcher
	github  *github.Client
	metrics *http.Server
}

func newRootCommand(out io.Writer) *cobra.Command {
	var f flags
	a := &app{out: out}

	cmd := &cobra.Command{
		Use:   "github-fetcher",
		Short: "Fetch GitHub profiles and contributions as JSON",
		Long: `github-fetcher queries the GitHub GraphQL API and prints the result as JSON.

Authentication uses a personal access token:
  - Use --token to pass it directly
  - Or set GITHUB_FETCHER_API_ACCESS_TOKEN

Settings are read from --config, ./github-fetcher.yaml or
~/.config/github-fetcher/config.yaml, then from GITHUB_FETCHER_* variables,
then from flags.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, f)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown(cmd.Context())
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "config file (default: search ./github-fetcher.yaml, ~/.config/github-fetcher/config.yaml)")
	pf.StringVar(&f.token, "token", "", "GitHub access token (overrides "+config.EnvToken+")")
	pf.StringVar(&f.endpoint, "endpoint", "", "GraphQL endpoint (default "+client.DefaultEndpoint+")")
	pf.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error, disabled")
	pf.BoolVar(&f.logPretty, "log-pretty", false, "human-readable log output")
	pf.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	pf.DurationVar(&f.timeout, "timeout", 0, "per-request timeout (default 30s)")

	cmd.AddCommand(
		newUserCommand(a),
		newOrgCommand(a),
		newRepoCommand(a),
		newGistCommand(a),
		newContributionsCommand(a),
		newRateLimitCommand(a),
		newCacheCommand(a),
	)

	return cmd
}

func (a *app) setup(cmd *cobra.Command, f flags) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}

	changed := cmd.Flags().Changed
	if changed("token") {
		cfg.Token = f.token
	}
	if changed("endpoint") {
		cfg.Endpoint = f.endpoint
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-pretty") {
		cfg.Log.Pretty = f.logPretty
	}
	if changed("metrics-addr") {
		cfg.MetricsAddr = f.metricsAddr
	}
	if changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logging.Setup(cfg.LoggingConfig()).With().Str("component", "cli").Logger()
	if cfg.Source != "" {
		a.logger.Info().Str("config", cfg.Source).Msg("Loaded configuration")
	}

	a.redis = cfg.RedisClient()
	if a.redis != nil {
		if err := a.redis.Ping(cmd.Context()).Err(); err != nil {
			return fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
	}

	a.fetcher, err = client.New(cfg.ClientConfig(a.redis))
	if err != nil {
		return err
	}
	a.github = github.New(a.fetcher)

	if cfg.MetricsAddr != "" {
		a.serveMetrics(cfg.MetricsAddr)
	}
	return nil
}

func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	a.metrics = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error().Err(err).Str("addr", addr).Msg("Metrics server failed")
		}
	}()
	a.logger.Info().Str("addr", addr).Msg("Serving metrics")
}

func (a *app) teardown(ctx context.Context) error {
	var errs []error
	if a.metrics != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		errs = append(errs, a.metrics.Shutdown(shutdownCtx))
		cancel()
	}
	if a.fetcher != nil {
		errs = append(errs, a.fetcher.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	return errors.Join(errs...)
}
