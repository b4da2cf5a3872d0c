package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func (l *Limiter) bucketCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func slowConfig(burst int) *Config {
	return &Config{
		Enabled: true,
		Default: EndpointConfig{Rate: rate.Every(time.Hour), Burst: burst},
	}
}

func TestLimiter_Allow(t *testing.T) {
	limiter := NewLimiter(slowConfig(10))
	defer limiter.Stop()

	clientID := "127.0.0.1"

	// Should allow requests up to the bucket size
	for i := 0; i < 10; i++ {
		allowed, rateInfo := limiter.Allow(clientID, "/test", "GET")
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if rateInfo.Limit != 10 {
			t.Errorf("Expected limit 10, got %d", rateInfo.Limit)
		}
		if rateInfo.Remaining != 10-(i+1) {
			t.Errorf("Expected remaining %d, got %d", 10-(i+1), rateInfo.Remaining)
		}
	}

	// 11th request should be denied
	allowed, rateInfo := limiter.Allow(clientID, "/test", "GET")
	if allowed {
		t.Error("Expected 11th request to be denied")
	}
	if rateInfo.Remaining != 0 {
		t.Errorf("Expected remaining 0, got %d", rateInfo.Remaining)
	}
	if rateInfo.RetryAfter <= 0 {
		t.Error("Expected retry after to be positive")
	}
	if !rateInfo.ResetTime.After(time.Now()) {
		t.Error("Reset time should be in the future")
	}
}

func TestLimiter_Refill(t *testing.T) {
	config := &Config{Enabled: true, Default: EndpointConfig{Rate: 10, Burst: 1}}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	if allowed, _ := limiter.Allow("127.0.0.1", "/test", "GET"); !allowed {
		t.Fatal("Expected first request to be allowed")
	}
	if allowed, _ := limiter.Allow("127.0.0.1", "/test", "GET"); allowed {
		t.Fatal("Expected second request to be denied")
	}

	// One token every 100ms
	time.Sleep(150 * time.Millisecond)

	if allowed, _ := limiter.Allow("127.0.0.1", "/test", "GET"); !allowed {
		t.Error("Expected request to be allowed after refill")
	}
}

func TestLimiter_Whitelist(t *testing.T) {
	config := slowConfig(1)
	config.Whitelist = map[string]bool{"127.0.0.1": true}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	// Whitelisted IP should always be allowed
	for i := 0; i < 100; i++ {
		allowed, rateInfo := limiter.Allow("127.0.0.1", "/test", "GET")
		if !allowed {
			t.Errorf("Expected whitelisted request %d to be allowed", i+1)
		}
		if rateInfo.Limit != 0 {
			t.Errorf("Expected limit 0 for whitelisted, got %d", rateInfo.Limit)
		}
	}
}

func TestLimiter_Blacklist(t *testing.T) {
	config := slowConfig(1000)
	config.Blacklist = map[string]bool{"192.168.1.1": true}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	// Blacklisted IP should always be denied
	allowed, _ := limiter.Allow("192.168.1.1", "/test", "GET")
	if allowed {
		t.Error("Expected blacklisted request to be denied")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	// When disabled, all requests should be allowed
	for i := 0; i < 100; i++ {
		allowed, rateInfo := limiter.Allow("127.0.0.1", "/test", "GET")
		if !allowed {
			t.Errorf("Expected request %d to be allowed when disabled", i+1)
		}
		if rateInfo.Limit != 0 {
			t.Errorf("Expected limit 0 when disabled, got %d", rateInfo.Limit)
		}
	}
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	config := slowConfig(1000)
	config.EndpointConfigs = DefaultEndpointConfigs(rate.Every(time.Hour), 5)
	limiter := NewLimiter(config)
	defer limiter.Stop()

	clientID := "127.0.0.1"

	for i := 0; i < 5; i++ {
		allowed, rateInfo := limiter.Allow(clientID, "/contacts", "POST")
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if rateInfo.Limit != 5 {
			t.Errorf("Expected limit 5, got %d", rateInfo.Limit)
		}
	}

	// 6th request should be denied (limit reached)
	allowed, _ := limiter.Allow(clientID, "/contacts", "POST")
	if allowed {
		t.Error("Expected 6th request to be denied")
	}

	// Different endpoint should use default limit
	allowed, rateInfo := limiter.Allow(clientID, "/discoveries", "GET")
	if !allowed {
		t.Error("Expected different endpoint to be allowed")
	}
	if rateInfo.Limit != 1000 {
		t.Errorf("Expected default limit 1000, got %d", rateInfo.Limit)
	}
}

func TestLimiter_HealthAndMetricsUnlimited(t *testing.T) {
	config := slowConfig(1)
	config.EndpointConfigs = DefaultEndpointConfigs(rate.Every(time.Hour), 1)
	limiter := NewLimiter(config)
	defer limiter.Stop()

	for i := 0; i < 20; i++ {
		for _, path := range []string{"/health", "/metrics"} {
			if allowed, _ := limiter.Allow("127.0.0.1", path, "GET"); !allowed {
				t.Errorf("Expected %s request %d to be allowed", path, i+1)
			}
		}
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := NewLimiter(slowConfig(100))
	defer limiter.Stop()

	var wg sync.WaitGroup
	allowedCount := 0
	var mu sync.Mutex

	// Make 200 concurrent requests (should only allow 100)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, _ := limiter.Allow("127.0.0.1", "/test", "GET")
			if allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	if allowedCount != 100 {
		t.Errorf("Expected 100 allowed requests, got %d", allowedCount)
	}
}

func TestLimiter_CleanupBuckets(t *testing.T) {
	config := slowConfig(10)
	config.IdleTimeout = time.Minute
	limiter := NewLimiter(config)
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/test", "GET")
	}
	if got := limiter.bucketCount(); got != 10 {
		t.Fatalf("Expected 10 buckets, got %d", got)
	}

	// Nothing is idle yet
	limiter.cleanupBuckets(time.Now())
	if got := limiter.bucketCount(); got != 10 {
		t.Errorf("Expected 10 buckets after early cleanup, got %d", got)
	}

	// Everything is idle two minutes from now
	limiter.cleanupBuckets(time.Now().Add(2 * time.Minute))
	if got := limiter.bucketCount(); got != 0 {
		t.Errorf("Expected 0 buckets after cleanup, got %d", got)
	}
}

func TestLimiter_StopTwice(t *testing.T) {
	config := slowConfig(10)
	config.CleanupInterval = 10 * time.Millisecond
	limiter := NewLimiter(config)

	limiter.Stop()
	limiter.Stop()
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, rateInfo := limiter.Allow("127.0.0.1", "/test", "GET")
	if !allowed {
		t.Error("Expected request to be allowed with default config")
	}
	if rateInfo.Limit != 40 {
		t.Errorf("Expected default limit 40, got %d", rateInfo.Limit)
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/contacts", Method: "POST", Burst: 1},
		{Path: "/discoveries/", Method: "GET", Burst: 2},
	}

	if got := MatchEndpoint("/contacts", "POST", configs); got == nil || got.Burst != 1 {
		t.Errorf("Expected exact match for POST /contacts, got %+v", got)
	}
	if got := MatchEndpoint("/contacts", "GET", configs); got != nil {
		t.Errorf("Expected no match for GET /contacts, got %+v", got)
	}
	if got := MatchEndpoint("/discoveries/abc", "GET", configs); got == nil || got.Burst != 2 {
		t.Errorf("Expected prefix match for /discoveries/abc, got %+v", got)
	}
}

func TestParseIPList(t *testing.T) {
	got := ParseIPList(" 10.0.0.1, ,10.0.0.2 ")
	if len(got) != 2 || !got["10.0.0.1"] || !got["10.0.0.2"] {
		t.Errorf("Unexpected IP set: %v", got)
	}
	if len(ParseIPList("")) != 0 {
		t.Error("Expected empty set for empty list")
	}
}
