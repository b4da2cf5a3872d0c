package crawling

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/contact-discovery/internal/types"
)

// navigationSelector matches the structural regions that hold site navigation
const navigationSelector = `nav, header, footer, aside, ` +
	`[role="navigation"], [role="banner"], [role="contentinfo"], [role="menu"], [role="menubar"], ` +
	`.nav, .navbar, .navigation, .menu, .main-menu, .sidebar, .header, .footer, ` +
	`#nav, #navbar, #menu, #header, #footer, #sidebar`

var skippedSchemes = []string{"mailto:", "tel:", "javascript:", "sms:", "data:", "#"}

var skippedExtensions = map[string]bool{
	".pdf": true, ".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".svg": true,
	".webp": true, ".ico": true, ".css": true, ".js": true, ".zip": true, ".xml": true,
	".mp4": true, ".mp3": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
}

// DiscoverNavigationLinks extracts same-site links found inside navigation regions of a page.
// Links are absolute, fragment-free and unique; hosts compare without a leading "www.".
func DiscoverNavigationLinks(htmlContent string, baseURL string) ([]types.CandidateLink, error) {
	// Parse base URL to get domain
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, &LinkExtractionError{
			Message: "failed to parse base URL",
			Cause:   err,
		}
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, &LinkExtractionError{
			Message: fmt.Sprintf("invalid base URL: %s (must have scheme and host)", baseURL),
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, &LinkExtractionError{
			Message: "failed to parse HTML",
			Cause:   err,
		}
	}

	baseHost := bareHost(base.Host)
	seen := make(map[string]bool)
	links := make([]types.CandidateLink, 0)

	doc.Find(navigationSelector).Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || hasSkippedScheme(href) {
			return
		}

		linkURL, err := url.Parse(href)
		if err != nil {
			return
		}
		absoluteURL := base.ResolveReference(linkURL)
		if absoluteURL.Scheme != "http" && absoluteURL.Scheme != "https" {
			return
		}
		if bareHost(absoluteURL.Host) != baseHost {
			return
		}
		if skippedExtensions[strings.ToLower(path.Ext(absoluteURL.Path))] {
			return
		}

		absoluteURL.Fragment = ""
		urlString := strings.TrimSuffix(absoluteURL.String(), "/")
		if seen[urlString] {
			return
		}
		seen[urlString] = true

		links = append(links, types.CandidateLink{
			URL:   urlString,
			Text:  strings.Join(strings.Fields(s.Text()), " "),
			Depth: URLDepth(urlString),
		})
	})

	return links, nil
}

func hasSkippedScheme(href string) bool {
	lower := strings.ToLower(href)
	for _, prefix := range skippedSchemes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// bareHost lower-cases a host and strips a leading "www."
func bareHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
