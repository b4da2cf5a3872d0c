package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultCacheTTL is how long a cached page body stays fresh.
const DefaultCacheTTL = 7 * 24 * time.Hour

// PageCache stores fetched page bodies and fetch failures.
type PageCache interface {
	// ShouldSkip reports whether a URL is in failure backoff or failed permanently.
	ShouldSkip(ctx context.Context, urlStr string) (bool, string, error)
	// Lookup returns a cached page fetched within ttl, or nil.
	Lookup(ctx context.Context, urlStr string, ttl time.Duration) (*Result, error)
	Store(ctx context.Context, result *Result, ttl time.Duration) error
	RecordFailure(ctx context.Context, urlStr string, statusCode int, message string) error
}

// CachedFetcher wraps a Strategy with a page cache.
type CachedFetcher struct {
	next     Strategy
	cache    PageCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL time.Duration
	Logger   *zap.Logger
}

// DefaultCachedFetcherConfig returns sensible defaults.
func DefaultCachedFetcherConfig() *CachedFetcherConfig {
	return &CachedFetcherConfig{
		CacheTTL: DefaultCacheTTL,
	}
}

// NewCachedFetcher creates a new cached fetcher around next.
func NewCachedFetcher(next Strategy, cache PageCache, config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = DefaultCachedFetcherConfig()
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedFetcher{
		next:     next,
		cache:    cache,
		cacheTTL: config.CacheTTL,
		logger:   logger,
	}
}

// Fetch retrieves a URL, using the cache if available and fresh.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*Result, error) {
	// Step 1: Check if URL should be skipped (permanent failure)
	skip, reason, err := f.cache.ShouldSkip(ctx, urlStr)
	if err != nil {
		f.logger.Warn("page cache skip check failed", zap.String("url", urlStr), zap.Error(err))
	} else if skip {
		return nil, &Error{
			URL:     urlStr,
			Message: fmt.Sprintf("URL skipped: %s", reason),
		}
	}

	// Step 2: Try to get fresh cached page
	cached, err := f.cache.Lookup(ctx, urlStr, f.cacheTTL)
	if err != nil {
		f.logger.Warn("page cache lookup failed", zap.String("url", urlStr), zap.Error(err))
	} else if cached != nil {
		cached.Tier = TierCache
		return cached, nil
	}

	// Step 3: Fetch fresh content
	result, err := f.next.Fetch(ctx, urlStr)
	if err != nil {
		// Only permanent failures are remembered; a timeout or 5xx must not
		// make the next run skip the URL.
		var fetchErr *Error
		if ctx.Err() == nil && errors.As(err, &fetchErr) && IsPermanentStatus(fetchErr.StatusCode) {
			if recErr := f.cache.RecordFailure(ctx, urlStr, fetchErr.StatusCode, err.Error()); recErr != nil {
				f.logger.Warn("failed to record fetch failure", zap.String("url", urlStr), zap.Error(recErr))
			}
		}
		return result, err
	}

	// Step 4: Store in cache; the fetch itself succeeded either way
	if err := f.cache.Store(ctx, result, f.cacheTTL); err != nil {
		f.logger.Warn("failed to cache page", zap.String("url", urlStr), zap.Error(err))
	}

	return result, nil
}
