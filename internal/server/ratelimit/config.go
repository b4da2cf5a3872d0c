package ratelimit

import (
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string     // Endpoint path pattern (supports prefix matching)
	Method string     // HTTP method (GET, POST, etc.)
	Rate   rate.Limit // Sustained requests per second; rate.Inf means unlimited
	Burst  int        // Bucket size, also reported as the limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	Default         EndpointConfig
	CleanupInterval time.Duration
	IdleTimeout     time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// DefaultConfig returns a configuration where discovery runs are limited to
// discoverRate per second with bucket size discoverBurst. Reads get a lenient default.
func DefaultConfig(discoverRate float64, discoverBurst int) *Config {
	return &Config{
		Enabled:         true,
		Default:         EndpointConfig{Rate: 20, Burst: 40},
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     time.Hour,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		EndpointConfigs: DefaultEndpointConfigs(rate.Limit(discoverRate), discoverBurst),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs(discoverRate rate.Limit, discoverBurst int) []EndpointConfig {
	return []EndpointConfig{
		// Expensive: every call fetches and possibly renders pages
		{Path: "/contacts", Method: "POST", Rate: discoverRate, Burst: discoverBurst},

		// Health checks and scrapes are never limited
		{Path: "/health", Method: "GET", Rate: rate.Inf},
		{Path: "/metrics", Method: "GET", Rate: rate.Inf},
	}
}

// ParseIPList parses a comma-separated list of IP addresses into a set.
func ParseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	if list == "" {
		return result
	}

	for _, ip := range strings.Split(list, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
