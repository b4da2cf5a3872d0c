package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/contact-discovery/internal/fetch"
)

var _ fetch.PageCache = (*DB)(nil)

// GetCrawledPageByURL retrieves a cached page by URL
func (db *DB) GetCrawledPageByURL(ctx context.Context, pageURL string) (*CrawledPage, error) {
	var p CrawledPage
	err := db.pool.QueryRow(ctx,
		`SELECT id, url, raw_html, content_type, content_hash,
		        http_status, fetch_status, error_message, is_permanent_failure, retry_count, retry_after,
		        fetched_at, expires_at, last_accessed_at
		 FROM crawled_pages WHERE url = $1`,
		pageURL,
	).Scan(&p.ID, &p.URL, &p.RawHTML, &p.ContentType, &p.ContentHash,
		&p.HTTPStatus, &p.FetchStatus, &p.ErrorMessage, &p.IsPermanentFailure, &p.RetryCount, &p.RetryAfter,
		&p.FetchedAt, &p.ExpiresAt, &p.LastAccessedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get crawled page: %w", err)
	}
	return &p, nil
}

// ShouldSkip reports whether a URL failed permanently or is still in retry backoff
func (db *DB) ShouldSkip(ctx context.Context, pageURL string) (bool, string, error) {
	page, err := db.GetCrawledPageByURL(ctx, pageURL)
	if err != nil {
		return false, "", err
	}
	if page == nil {
		return false, "", nil
	}

	if page.IsPermanentFailure {
		reason := "permanent failure"
		if page.ErrorMessage != nil {
			reason = *page.ErrorMessage
		}
		return true, reason, nil
	}

	if page.RetryAfter != nil && time.Now().Before(*page.RetryAfter) {
		return true, "retry backoff", nil
	}

	return false, "", nil
}

// Lookup returns a successful page fetched within ttl, or nil
func (db *DB) Lookup(ctx context.Context, pageURL string, ttl time.Duration) (*fetch.Result, error) {
	page, err := db.GetCrawledPageByURL(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if page == nil || page.FetchStatus != FetchStatusSuccess || page.RawHTML == nil {
		return nil, nil
	}
	if !page.IsFresh(ttl) || page.IsExpired() {
		return nil, nil
	}

	_ = db.touchCrawledPage(ctx, page)

	result := &fetch.Result{URL: page.URL, HTML: *page.RawHTML}
	if page.ContentType != nil {
		result.ContentType = *page.ContentType
	}
	if page.HTTPStatus != nil {
		result.StatusCode = *page.HTTPStatus
	}
	return result, nil
}

// Store upserts a successful fetch and clears any failure state for the URL
func (db *DB) Store(ctx context.Context, result *fetch.Result, ttl time.Duration) error {
	hash := HashContent(result.HTML)
	expiresAt := time.Now().Add(ttl)

	_, err := db.pool.Exec(ctx,
		`INSERT INTO crawled_pages (url, raw_html, content_type, content_hash, http_status,
		                            fetch_status, retry_count, fetched_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, 0, NOW(), $7)
		 ON CONFLICT (url) DO UPDATE SET
		     raw_html = $2,
		     content_type = $3,
		     content_hash = $4,
		     http_status = $5,
		     fetch_status = $6,
		     error_message = NULL,
		     is_permanent_failure = FALSE,
		     retry_count = 0,
		     retry_after = NULL,
		     fetched_at = NOW(),
		     expires_at = $7,
		     updated_at = NOW()`,
		result.URL, result.HTML, result.ContentType, hash, result.StatusCode, FetchStatusSuccess, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store crawled page: %w", err)
	}
	return nil
}

// RecordFailure records a failed fetch attempt with exponential backoff.
// 404, 410 and 451 are permanent and never retried.
func (db *DB) RecordFailure(ctx context.Context, pageURL string, httpStatus int, errorMsg string) error {
	fetchStatus := FetchStatusFromHTTP(httpStatus)
	isPermanent := IsPermanentHTTPStatus(httpStatus)

	_, err := db.pool.Exec(ctx,
		`INSERT INTO crawled_pages (url, http_status, fetch_status, error_message, is_permanent_failure, retry_count, retry_after, fetched_at)
		 VALUES ($1, $2, $3, $4, $5, 1,
		         CASE WHEN $5 THEN NULL ELSE NOW() + INTERVAL '1 minute' END,
		         NOW())
		 ON CONFLICT (url) DO UPDATE SET
		     http_status = $2,
		     fetch_status = $3,
		     error_message = $4,
		     is_permanent_failure = $5 OR crawled_pages.is_permanent_failure,
		     retry_count = crawled_pages.retry_count + 1,
		     retry_after = CASE
		         WHEN $5 OR crawled_pages.is_permanent_failure THEN NULL
		         ELSE NOW() + LEAST(
		             INTERVAL '1 minute' * POWER(5, LEAST(crawled_pages.retry_count, 3)),
		             INTERVAL '2 hours'
		         )
		     END,
		     fetched_at = NOW(),
		     updated_at = NOW()`,
		pageURL, httpStatus, fetchStatus, errorMsg, isPermanent,
	)
	if err != nil {
		return fmt.Errorf("failed to record failed fetch: %w", err)
	}
	return nil
}

func (db *DB) touchCrawledPage(ctx context.Context, page *CrawledPage) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE crawled_pages SET last_accessed_at = NOW() WHERE id = $1`,
		page.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch crawled page: %w", err)
	}
	return nil
}

// DeleteExpiredPages removes pages that have passed their expires_at
func (db *DB) DeleteExpiredPages(ctx context.Context) (int64, error) {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM crawled_pages WHERE expires_at < NOW()`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired pages: %w", err)
	}
	return result.RowsAffected(), nil
}
