// Package config loads fetcher settings from defaults, an optional YAML file
// and GITHUB_FETCHER_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/gustavclausen/github-api-fetcher/pkg/client"
	"github.com/gustavclausen/github-api-fetcher/pkg/logging"
)

// Environment variables read by Load.
const (
	EnvToken    = client.DefaultTokenEnv
	EnvEndpoint = "GITHUB_FETCHER_API_ENDPOINT"
	EnvLogLevel = "GITHUB_FETCHER_LOG_LEVEL"
	EnvRedis    = "GITHUB_FETCHER_REDIS_ADDR"
	EnvCacheTTL = "GITHUB_FETCHER_CACHE_TTL"
)

// FileName is the config file looked up in the working directory.
const FileName = "github-fetcher.yaml"

// Config is the complete fetcher configuration.
type Config struct {
	// Token is the GitHub access token. Prefer the environment over the file.
	Token string `yaml:"token"`

	Endpoint  string        `yaml:"endpoint" validate:"required,url"`
	UserAgent string        `yaml:"user_agent" validate:"required"`
	Timeout   time.Duration `yaml:"timeout" validate:"gte=0"`

	// MaxResponseBytes caps a single response body.
	MaxResponseBytes int64 `yaml:"max_response_bytes" validate:"gte=0"`

	Log   LogConfig   `yaml:"log"`
	Redis RedisConfig `yaml:"redis"`

	// CacheTTL enables the Redis response cache when positive.
	CacheTTL time.Duration `yaml:"cache_ttl" validate:"gte=0"`

	// MetricsAddr serves Prometheus metrics when set, e.g. ":9090".
	MetricsAddr string `yaml:"metrics_addr" validate:"omitempty,hostname_port"`

	// Source is the file the configuration was read from, if any.
	Source string `yaml:"-"`
}

// LogConfig configures zerolog output.
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error disabled off"`
	Pretty bool   `yaml:"pretty"`
}

// RedisConfig configures the optional Redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr" validate:"omitempty,hostname_port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0,lte=15"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	def := client.DefaultConfig()
	return Config{
		Endpoint:         def.Endpoint,
		UserAgent:        def.UserAgent,
		Timeout:          def.Timeout,
		MaxResponseBytes: def.MaxResponseBytes,
		Log:              LogConfig{Level: string(logging.LevelInfo)},
	}
}

// SearchPaths returns the files Load tries when no path is given.
func SearchPaths() []string {
	paths := []string{FileName}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "github-fetcher", "config.yaml"))
	}
	return paths
}

// Load reads the configuration. An explicit path must exist; an empty path
// tries SearchPaths and falls back to defaults when none exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	} else {
		for _, candidate := range SearchPaths() {
			err := cfg.readFile(candidate)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, err
			}
			break
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.Source = path
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvToken); v != "" {
		c.Token = v
	}
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvRedis); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv(EnvCacheTTL); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCacheTTL, err)
		}
		c.CacheTTL = ttl
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.CacheTTL > 0 && c.Redis.Addr == "" {
		return errors.New("invalid config: cache_ttl requires redis.addr")
	}
	return nil
}

// RedisClient connects to the configured Redis, or returns nil when none is
// configured. The caller closes the client.
func (c *Config) RedisClient() *redis.Client {
	if c.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	})
}

// ClientConfig converts to the Fetcher configuration.
func (c *Config) ClientConfig(rdb *redis.Client) client.Config {
	cfg := client.DefaultConfig()
	cfg.Endpoint = c.Endpoint
	cfg.Token = c.Token
	cfg.UserAgent = c.UserAgent
	cfg.Timeout = c.Timeout
	if c.MaxResponseBytes > 0 {
		cfg.MaxResponseBytes = c.MaxResponseBytes
	}
	cfg.Redis = rdb
	if rdb != nil {
		cfg.CacheTTL = c.CacheTTL
	}
	return cfg
}

// LoggingConfig converts to the logger configuration.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(c.Log.Level)
	cfg.Pretty = c.Log.Pretty
	return cfg
}
