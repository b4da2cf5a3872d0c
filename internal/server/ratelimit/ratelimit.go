// Package ratelimit provides per-client rate limiting on top of golang.org/x/time/rate token buckets.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

type bucket struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Limiter manages rate limiting for multiple clients, one bucket per client, path and method.
type Limiter struct {
	mu            sync.Mutex
	buckets       map[string]*bucket
	config        *Config
	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig(1, 5)
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = time.Hour
	}

	limiter := &Limiter{
		buckets: make(map[string]*bucket),
		config:  config,
	}

	// Start cleanup goroutine if enabled
	if config.Enabled && config.CleanupInterval > 0 {
		limiter.cleanupTicker = time.NewTicker(config.CleanupInterval)
		limiter.cleanupStop = make(chan struct{})
		go limiter.cleanup()
	}

	return limiter
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
// Returns true if allowed, false if rate limited, along with rate limit information.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	endpointConfig := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if endpointConfig == nil {
		endpointConfig = &l.config.Default
	}
	if endpointConfig.Rate == rate.Inf || endpointConfig.Burst <= 0 {
		return true, Info{Allowed: true}
	}

	now := time.Now()
	lim := l.getLimiter(clientID+":"+endpoint+":"+method, endpointConfig, now)

	allowed := lim.AllowN(now, 1)
	tokens := lim.TokensAt(now)

	info := Info{
		Allowed:   allowed,
		Limit:     endpointConfig.Burst,
		Remaining: max(0, int(tokens)),
		ResetTime: now.Add(refillTime(float64(endpointConfig.Burst)-tokens, endpointConfig.Rate)),
	}
	if !allowed {
		info.RetryAfter = refillTime(1-tokens, endpointConfig.Rate)
	}
	return allowed, info
}

// refillTime is how long the bucket needs to gain the given number of tokens.
func refillTime(tokens float64, r rate.Limit) time.Duration {
	if tokens <= 0 || r <= 0 {
		return 0
	}
	return time.Duration(tokens / float64(r) * float64(time.Second))
}

func (l *Limiter) getLimiter(key string, config *EndpointConfig, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(config.Rate, config.Burst)}
		l.buckets[key] = b
	}
	b.lastAccess = now
	return b.limiter
}

// cleanup removes old unused buckets to prevent memory leaks.
func (l *Limiter) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.cleanupBuckets(time.Now())
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupBuckets removes buckets idle for longer than the configured timeout.
func (l *Limiter) cleanupBuckets(now time.Time) {
	cutoff := now.Add(-l.config.IdleTimeout)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.lastAccess.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupTicker != nil {
			l.cleanupTicker.Stop()
		}
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}
