package contacts

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/contact-discovery/internal/crawling"
	"github.com/jonathan/contact-discovery/internal/types"
)

// maxIconAncestors bounds how far up from an anchor icon detection walks
const maxIconAncestors = 3

// Analyzer derives context signals for a contact value inside a page
type Analyzer struct {
	tables *Tables
}

// NewAnalyzer creates an Analyzer over the given tables
func NewAnalyzer(tables *Tables) *Analyzer {
	return &Analyzer{tables: tables}
}

// Analyze computes the signals for value on page. FromJSONLD is left for the caller.
func (a *Analyzer) Analyze(page *Page, value string) types.Signals {
	needle := strings.ToLower(searchTerm(value))
	sig := types.Signals{
		IsContactPage: a.isContactPage(page),
		URLDepth:      crawling.URLDepth(page.URL),
	}
	if needle == "" {
		return sig
	}
	sig.InFooter = strings.Contains(page.regionHTML(a.tables.FooterSelector), needle)
	sig.InHeader = strings.Contains(page.regionHTML(a.tables.HeaderSelector), needle)
	sig.HasContactIcon = a.hasContactIcon(page, needle)
	return sig
}

// searchTerm returns the part of a value expected to appear literally in markup.
// Tagged values ("platform: handle") are searched by handle.
func searchTerm(value string) string {
	if i := strings.Index(value, ": "); i >= 0 {
		return strings.TrimSpace(value[i+2:])
	}
	return strings.TrimSpace(value)
}

func (a *Analyzer) isContactPage(page *Page) bool {
	title := strings.ToLower(page.Title())
	pageURL := strings.ToLower(page.URL)
	for _, kw := range a.tables.ContactKeywords {
		if strings.Contains(title, kw) || strings.Contains(pageURL, kw) {
			return true
		}
	}
	return false
}

func (a *Analyzer) hasContactIcon(page *Page, needle string) bool {
	found := false
	page.Doc.Find("a[href]").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		href, _ := anchor.Attr("href")
		if !strings.Contains(strings.ToLower(href), needle) {
			return true
		}
		node := anchor
		for level := 0; level <= maxIconAncestors && node.Length() > 0; level++ {
			if a.hasIcon(node) {
				found = true
				return false
			}
			node = node.Parent()
		}
		return true
	})
	return found
}

// hasIcon checks an element and its descendants for icon classes or labelled SVGs
func (a *Analyzer) hasIcon(s *goquery.Selection) bool {
	if a.iconClass(s) {
		return true
	}
	match := false
	s.Find("[class], svg[aria-label]").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if a.iconClass(el) || a.iconLabel(el) {
			match = true
			return false
		}
		return true
	})
	return match
}

func (a *Analyzer) iconClass(s *goquery.Selection) bool {
	class := strings.ToLower(s.AttrOr("class", ""))
	if class == "" {
		return false
	}
	for _, icon := range a.tables.IconVocabulary {
		if strings.Contains(class, icon) {
			return true
		}
	}
	return false
}

func (a *Analyzer) iconLabel(s *goquery.Selection) bool {
	if goquery.NodeName(s) != "svg" {
		return false
	}
	label := strings.ToLower(s.AttrOr("aria-label", ""))
	if label == "" {
		return false
	}
	for _, l := range a.tables.IconLabels {
		if strings.Contains(label, l) {
			return true
		}
	}
	return false
}
