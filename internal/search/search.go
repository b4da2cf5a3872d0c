// Package search turns a free-text query into seed URLs for a discovery run.
package search

import (
	"context"
	"fmt"
	"net/url"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/jonathan/contact-discovery/internal/crawling"
)

// DefaultLimit is how many seed sites a query yields when no limit is given
const DefaultLimit = 5

// maxResultsPerPage is the Custom Search API page size cap
const maxResultsPerPage = 10

// SeedSource finds candidate sites for a query
type SeedSource interface {
	Seeds(ctx context.Context, query string, limit int) ([]string, error)
}

// GoogleSource is a SeedSource backed by Google Custom Search
type GoogleSource struct {
	svc *customsearch.Service
	cx  string
}

// NewGoogleSource creates a GoogleSource for the search engine cx
func NewGoogleSource(ctx context.Context, apiKey, cx string, opts ...option.ClientOption) (*GoogleSource, error) {
	if apiKey == "" || cx == "" {
		return nil, fmt.Errorf("google search requires an API key and a search engine ID")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &GoogleSource{svc: svc, cx: cx}, nil
}

// Seeds returns at most limit result links, one per registrable domain, in result order
func (g *GoogleSource) Seeds(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	num := int64(limit * 2)
	if num > maxResultsPerPage {
		num = maxResultsPerPage
	}

	resp, err := g.svc.Cse.List().Cx(g.cx).Q(query).Num(num).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	links := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		links = append(links, item.Link)
	}
	seeds := uniqueSites(links, limit)
	if len(seeds) == 0 {
		return nil, fmt.Errorf("no search results found for %q", query)
	}
	return seeds, nil
}

// uniqueSites keeps the first http(s) link per registrable domain
func uniqueSites(links []string, limit int) []string {
	seen := make(map[string]bool)
	sites := make([]string, 0, limit)
	for _, link := range links {
		u, err := url.Parse(link)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			continue
		}
		host := crawling.RegistrableHost(u.Hostname())
		if seen[host] {
			continue
		}
		seen[host] = true
		sites = append(sites, link)
		if len(sites) == limit {
			break
		}
	}
	return sites
}
