package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // zoneinfo fallback for minimal container images

	"github.com/BurntSushi/toml"
)

const (
	defaultHost                  = "localhost"
	defaultPort                  = 8080
	defaultTimezone              = "Local"
	defaultChartCacheSizeMB      = 10
	defaultChartCacheTTLSeconds  = 60
	defaultChartMaxWindowDays    = 3660
	defaultWriteRateLimitPerMin  = 60
	defaultPrometheusMetricsPort = "9091"
)

type Config struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// log file rotation, 0 keeps the logging defaults
	LogMaxSizeMB  int `toml:"log_max_size_mb"`
	LogMaxBackups int `toml:"log_max_backups"`
	LogMaxAgeDays int `toml:"log_max_age_days"`
	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// charts
	Timezone             string `toml:"timezone"`
	ChartCacheSizeMB     int    `toml:"chart_cache_size_mb"`
	ChartCacheTTLSeconds int    `toml:"chart_cache_ttl_seconds"`
	ChartMaxWindowDays   int    `toml:"chart_max_window_days"`
	// api
	WriteRateLimitPerMin int      `toml:"write_rate_limit_per_min"`
	AllowedOrigins       []string `toml:"allowed_origins"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config for env: %s", env)
	}
	return cfg, nil
}

// Load reads the toml file at path and returns the config of env,
// with defaults applied to the unset values.
func Load(env, path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(env, string(content))
}

func Parse(env, content string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(content, &t); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = defaultHost
	}
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.ChartCacheSizeMB == 0 {
		c.ChartCacheSizeMB = defaultChartCacheSizeMB
	}
	if c.ChartCacheTTLSeconds == 0 {
		c.ChartCacheTTLSeconds = defaultChartCacheTTLSeconds
	}
	if c.ChartMaxWindowDays == 0 {
		c.ChartMaxWindowDays = defaultChartMaxWindowDays
	}
	if c.WriteRateLimitPerMin == 0 {
		c.WriteRateLimitPerMin = defaultWriteRateLimitPerMin
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = defaultPrometheusMetricsPort
	}
}

// Location is the server time zone, used for all calendar day computations.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone [%s]: %w", c.Timezone, err)
	}
	return loc, nil
}

// ChartCacheSizeBytes is negative when the cache is disabled (chart_cache_size_mb < 0).
func (c *Config) ChartCacheSizeBytes() int {
	return c.ChartCacheSizeMB * 1024 * 1024
}

func (c *Config) ChartCacheTTL() time.Duration {
	return time.Duration(c.ChartCacheTTLSeconds) * time.Second
}
