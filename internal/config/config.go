// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonathan/contact-discovery/internal/crawling"
	"github.com/jonathan/contact-discovery/internal/fetch"
)

// EnvPrefix namespaces environment overrides, e.g. CONTACTS_FETCH_TIMEOUT.
const EnvPrefix = "CONTACTS"

// DefaultConfigName is the file searched for in the home directory when no path is given.
const DefaultConfigName = ".contact-discovery"

// Config is the resolved configuration: defaults, then an optional file, then environment.
type Config struct {
	Fetch       FetchConfig    `mapstructure:"fetch"`
	Render      RenderConfig   `mapstructure:"render"`
	Pipeline    PipelineConfig `mapstructure:"pipeline"`
	Cache       CacheConfig    `mapstructure:"cache"`
	Server      ServerConfig   `mapstructure:"server"`
	Google      GoogleConfig   `mapstructure:"google"`
	DatabaseURL string         `mapstructure:"database_url"`
}

// FetchConfig configures the fast tier.
type FetchConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
	Concurrency int           `mapstructure:"concurrency"`
}

// RenderConfig configures the headless-browser tier.
type RenderConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	NavTimeout  time.Duration `mapstructure:"nav_timeout"`
	Settle      time.Duration `mapstructure:"settle"`
	NetworkIdle time.Duration `mapstructure:"network_idle"`
	ExecPath    string        `mapstructure:"exec_path"`
}

// PipelineConfig configures the navigation fallback.
type PipelineConfig struct {
	MaxNavLinks int `mapstructure:"max_nav_links"`
}

// CacheConfig configures the Postgres page cache.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port      int     `mapstructure:"port"`
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
	// Whitelist and Blacklist are comma-separated client IPs
	Whitelist string `mapstructure:"whitelist"`
	Blacklist string `mapstructure:"blacklist"`
}

// GoogleConfig holds Custom Search credentials for query-based seeding.
type GoogleConfig struct {
	APIKey string `mapstructure:"api_key"`
	CX     string `mapstructure:"cx"`
}

// SetDefaults registers every key with its default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("fetch.timeout", fetch.DefaultTimeout)
	v.SetDefault("fetch.user_agent", fetch.DefaultUserAgent)
	v.SetDefault("fetch.concurrency", 4)
	v.SetDefault("render.enabled", true)
	v.SetDefault("render.nav_timeout", fetch.DefaultNavTimeout)
	v.SetDefault("render.settle", fetch.DefaultSettleDelay)
	v.SetDefault("render.network_idle", fetch.DefaultNetworkIdle)
	v.SetDefault("render.exec_path", "")
	v.SetDefault("pipeline.max_nav_links", crawling.DefaultMaxLinks)
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttl", fetch.DefaultCacheTTL)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 2.0)
	v.SetDefault("server.rate_burst", 5)
	v.SetDefault("server.whitelist", "")
	v.SetDefault("server.blacklist", "")
	v.SetDefault("google.api_key", "")
	v.SetDefault("google.cx", "")
	v.SetDefault("database_url", "")
}

// NewViper returns a viper instance with defaults and environment binding applied.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unprefixed names used by the deployment environment
	_ = v.BindEnv("database_url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("google.api_key", EnvPrefix+"_GOOGLE_API_KEY", "GOOGLE_API_KEY")
	_ = v.BindEnv("google.cx", EnvPrefix+"_GOOGLE_CX", "GOOGLE_CX")
	return v
}

// ReadFile points v at path, or at $HOME/.contact-discovery.yaml when path is empty.
// A missing default file is not an error; a missing explicit file is.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	v.AddConfigPath(home)
	v.SetConfigType("yaml")
	v.SetConfigName(DefaultConfigName)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Decode unmarshals v into a Config and validates it.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load resolves the configuration from path (optional) and the environment.
func Load(path string) (*Config, error) {
	v := NewViper()
	if err := ReadFile(v, path); err != nil {
		return nil, err
	}
	return Decode(v)
}

// Default returns the configuration with only defaults applied.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("config error: 'fetch.timeout' must be positive")
	}
	if c.Fetch.Concurrency < 1 {
		return fmt.Errorf("config error: 'fetch.concurrency' must be at least 1")
	}
	if c.Render.NavTimeout <= 0 {
		return fmt.Errorf("config error: 'render.nav_timeout' must be positive")
	}
	if c.Render.Settle < 0 || c.Render.NetworkIdle < 0 {
		return fmt.Errorf("config error: render delays must be non-negative")
	}
	if c.Pipeline.MaxNavLinks < 1 {
		return fmt.Errorf("config error: 'pipeline.max_nav_links' must be at least 1")
	}
	if c.Cache.Enabled && c.DatabaseURL == "" {
		return fmt.Errorf("config error: 'cache.enabled' requires 'database_url'")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("config error: 'cache.ttl' must be positive")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' must be between 1 and 65535")
	}
	if c.Server.RateLimit <= 0 || c.Server.RateBurst < 1 {
		return fmt.Errorf("config error: 'server.rate_limit' and 'server.rate_burst' must be positive")
	}
	if (c.Google.APIKey == "") != (c.Google.CX == "") {
		return fmt.Errorf("config error: 'google.api_key' and 'google.cx' must be set together")
	}
	return nil
}

// FetchOptions returns the fast-tier options.
func (c *Config) FetchOptions() *fetch.Options {
	return &fetch.Options{Timeout: c.Fetch.Timeout, UserAgent: c.Fetch.UserAgent}
}

// BrowserOptions returns the render-tier options.
func (c *Config) BrowserOptions() fetch.BrowserOptions {
	return fetch.BrowserOptions{
		NavTimeout:  c.Render.NavTimeout,
		SettleDelay: c.Render.Settle,
		NetworkIdle: c.Render.NetworkIdle,
		UserAgent:   c.Fetch.UserAgent,
		ExecPath:    c.Render.ExecPath,
	}
}
