package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/jonwraymond/postsync/observe"
	"github.com/jonwraymond/postsync/querycache"
	"github.com/jonwraymond/postsync/request"
)

// Config is the full client configuration.
type Config struct {
	BaseURL   string        `env:"POSTSYNC_BASE_URL"   envDefault:"https://dummyjson.com"`
	Timeout   time.Duration `env:"POSTSYNC_TIMEOUT"    envDefault:"10s"`
	UserAgent string        `env:"POSTSYNC_USER_AGENT" envDefault:"postsync"`

	// Token is sent as a bearer token when set.
	Token string `env:"POSTSYNC_TOKEN"`

	Retry     RetryConfig
	Breaker   BreakerConfig
	Cache     CacheConfig
	Filter    FilterConfig
	Telemetry TelemetryConfig
}

// RetryConfig configures read retries.
type RetryConfig struct {
	MaxAttempts  int           `env:"POSTSYNC_RETRY_ATTEMPTS"  envDefault:"3"`
	InitialDelay time.Duration `env:"POSTSYNC_RETRY_DELAY"     envDefault:"1s"`
	MaxDelay     time.Duration `env:"POSTSYNC_RETRY_MAX_DELAY" envDefault:"8s"`
	Jitter       bool          `env:"POSTSYNC_RETRY_JITTER"    envDefault:"true"`
}

// BreakerConfig configures the request circuit breaker. Zero failures
// disables it.
type BreakerConfig struct {
	MaxFailures  int           `env:"POSTSYNC_BREAKER_FAILURES" envDefault:"5"`
	ResetTimeout time.Duration `env:"POSTSYNC_BREAKER_RESET"    envDefault:"30s"`
}

// CacheConfig configures the query cache.
type CacheConfig struct {
	DefaultFreshness time.Duration `env:"POSTSYNC_CACHE_FRESHNESS"     envDefault:"0s"`
	MaxFreshness     time.Duration `env:"POSTSYNC_CACHE_MAX_FRESHNESS" envDefault:"1h"`
	FetchTimeout     time.Duration `env:"POSTSYNC_CACHE_FETCH_TIMEOUT" envDefault:"30s"`
}

// FilterConfig configures the filter store.
type FilterConfig struct {
	SearchDebounce time.Duration `env:"POSTSYNC_SEARCH_DEBOUNCE" envDefault:"500ms"`
	ResetSkip      bool          `env:"POSTSYNC_RESET_SKIP"      envDefault:"true"`
}

// TelemetryConfig configures logging, tracing and metrics.
type TelemetryConfig struct {
	ServiceName     string  `env:"POSTSYNC_SERVICE_NAME"     envDefault:"postsync"`
	LogLevel        string  `env:"POSTSYNC_LOG_LEVEL"        envDefault:"info"`
	TracingExporter string  `env:"POSTSYNC_TRACING_EXPORTER" envDefault:"none"`
	SamplePct       float64 `env:"POSTSYNC_TRACING_SAMPLE"   envDefault:"1"`
	MetricsExporter string  `env:"POSTSYNC_METRICS_EXPORTER" envDefault:"none"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	return LoadFrom(nil)
}

// LoadFrom is Load over an explicit variable set. A nil map reads the
// process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if u, err := url.Parse(c.BaseURL); err != nil || !u.IsAbs() {
		return fmt.Errorf("%w: %q", request.ErrInvalidBaseURL, c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.Timeout)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidRetry, c.Retry.MaxAttempts)
	}
	if c.Retry.MaxDelay < c.Retry.InitialDelay {
		return ErrInvalidRetryDelay
	}
	if c.Breaker.MaxFailures < 0 || (c.Breaker.MaxFailures > 0 && c.Breaker.ResetTimeout <= 0) {
		return ErrInvalidBreaker
	}
	if c.Cache.DefaultFreshness < 0 || c.Cache.MaxFreshness < 0 {
		return ErrInvalidFreshness
	}
	if c.Filter.SearchDebounce < 0 {
		return ErrInvalidDebounce
	}
	obs := c.Observe()
	return obs.Validate()
}

// RequestRetry returns the request layer retry settings.
func (c Config) RequestRetry() request.RetryConfig {
	cfg := request.DefaultRetryConfig()
	cfg.MaxAttempts = c.Retry.MaxAttempts
	cfg.InitialDelay = c.Retry.InitialDelay
	cfg.MaxDelay = c.Retry.MaxDelay
	cfg.Jitter = c.Retry.Jitter
	return cfg
}

// RequestBreaker returns the request layer breaker settings and whether the
// breaker is enabled.
func (c Config) RequestBreaker() (request.BreakerConfig, bool) {
	return request.BreakerConfig{
		MaxFailures:  c.Breaker.MaxFailures,
		ResetTimeout: c.Breaker.ResetTimeout,
	}, c.Breaker.MaxFailures > 0
}

// FreshnessPolicy returns the cache freshness policy.
func (c Config) FreshnessPolicy() querycache.FreshnessPolicy {
	return querycache.FreshnessPolicy{Default: c.Cache.DefaultFreshness, Max: c.Cache.MaxFreshness}
}

// Observe returns the observer configuration. Tracing and metrics are
// enabled unless their exporter is "none".
func (c Config) Observe() observe.Config {
	t := c.Telemetry
	return observe.Config{
		ServiceName: t.ServiceName,
		Tracing: observe.TracingConfig{
			Enabled:   t.TracingExporter != "" && t.TracingExporter != "none",
			Exporter:  t.TracingExporter,
			SamplePct: t.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  t.MetricsExporter != "" && t.MetricsExporter != "none",
			Exporter: t.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   t.LogLevel,
		},
	}
}
