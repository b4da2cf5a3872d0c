package db

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/contact-discovery/internal/fetch"
	"github.com/jonathan/contact-discovery/internal/types"
)

// CrawledPage represents a cached web page or a recorded fetch failure
type CrawledPage struct {
	ID          uuid.UUID `json:"id"`
	URL         string    `json:"url"`
	RawHTML     *string   `json:"-"` // Don't serialize (large)
	ContentType *string   `json:"content_type,omitempty"`
	ContentHash *string   `json:"content_hash,omitempty"`
	HTTPStatus  *int      `json:"http_status,omitempty"`
	// Error tracking
	FetchStatus        string     `json:"fetch_status"`
	ErrorMessage       *string    `json:"error_message,omitempty"`
	IsPermanentFailure bool       `json:"is_permanent_failure"`
	RetryCount         int        `json:"retry_count"`
	RetryAfter         *time.Time `json:"retry_after,omitempty"`
	// Timestamps
	FetchedAt      time.Time  `json:"fetched_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
}

// FetchStatus constants for crawled pages
const (
	FetchStatusSuccess  = "success"   // Page fetched successfully
	FetchStatusError    = "error"     // Generic error (may retry)
	FetchStatusNotFound = "not_found" // 404/410 - permanent failure
	FetchStatusTimeout  = "timeout"   // Request timed out (may retry)
	FetchStatusBlocked  = "blocked"   // 403/429 - blocked by server
)

// IsPermanentHTTPStatus returns true for status codes that indicate permanent failure
func IsPermanentHTTPStatus(status int) bool {
	return fetch.IsPermanentStatus(status)
}

// FetchStatusFromHTTP determines fetch status from HTTP status code.
// A zero status means the request never got a response.
func FetchStatusFromHTTP(status int) string {
	switch {
	case status >= 200 && status < 300:
		return FetchStatusSuccess
	case status == http.StatusNotFound || status == http.StatusGone:
		return FetchStatusNotFound
	case status == http.StatusForbidden || status == http.StatusTooManyRequests:
		return FetchStatusBlocked
	case status == 0:
		return FetchStatusTimeout
	default:
		return FetchStatusError
	}
}

// HashContent computes SHA-256 hash of content for change detection
func HashContent(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// IsFresh returns true if the page was fetched within maxAge
func (p *CrawledPage) IsFresh(maxAge time.Duration) bool {
	return time.Since(p.FetchedAt) < maxAge
}

// IsExpired returns true if the page cache has expired
func (p *CrawledPage) IsExpired() bool {
	if p.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*p.ExpiresAt)
}

// Run statuses
const (
	RunStatusCompleted = "completed"
	RunStatusCanceled  = "canceled"
)

// DiscoveryRun is a stored pipeline run without its contacts
type DiscoveryRun struct {
	ID           uuid.UUID  `json:"id"`
	SeedURLs     []string   `json:"seed_urls"`
	Status       string     `json:"status"`
	ContactCount int        `json:"contact_count"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Discovery is a stored run together with its contacts in output order
type Discovery struct {
	DiscoveryRun
	Contacts []types.NormalizedContact `json:"contacts"`
}
