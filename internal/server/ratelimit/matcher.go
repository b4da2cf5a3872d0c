package ratelimit

import "strings"

// MatchEndpoint returns the config for method and path, or nil.
// An exact path wins over a prefix config; a config path ending in "/"
// is a prefix, so "/discoveries/" covers "/discoveries/{id}".
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	var prefix *EndpointConfig
	for i := range configs {
		config := &configs[i]
		if config.Method != method {
			continue
		}
		if config.Path == path {
			return config
		}
		if prefix == nil && strings.HasSuffix(config.Path, "/") && strings.HasPrefix(path, config.Path) {
			prefix = config
		}
	}
	return prefix
}
