package contacts

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/contact-discovery/internal/types"
)

// HyperlinkExtractor reads contacts from anchor targets: mailto:, tel:,
// social profile URLs and messenger links.
type HyperlinkExtractor struct {
	tables *Tables
}

// NewHyperlinkExtractor creates a HyperlinkExtractor over the given tables
func NewHyperlinkExtractor(tables *Tables) *HyperlinkExtractor {
	return &HyperlinkExtractor{tables: tables}
}

// Extract returns the contacts found in the page's hyperlinks. It never fails.
func (e *HyperlinkExtractor) Extract(page *Page) ([]types.Contact, error) {
	var found []types.Contact
	emit := func(t types.ContactType, value string) {
		found = append(found, types.Contact{Type: t, Value: value, SourceURL: page.URL})
	}

	page.Doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}
		lower := strings.ToLower(href)

		switch {
		case strings.HasPrefix(lower, "mailto:"):
			addr := href[len("mailto:"):]
			if i := strings.IndexByte(addr, '?'); i >= 0 {
				addr = addr[:i]
			}
			addr = strings.TrimSpace(strings.ReplaceAll(addr, "%40", "@"))
			for _, a := range strings.Split(addr, ",") {
				if a = strings.TrimSpace(a); a != "" {
					emit(types.ContactEmail, a)
				}
			}
			return
		case strings.HasPrefix(lower, "tel:"):
			if num := strings.TrimSpace(href[len("tel:"):]); num != "" {
				emit(types.ContactPhone, num)
			}
			return
		}

		if social, ok := e.tables.matchSocial(href); ok {
			emit(types.ContactSocial, social)
			return
		}
		for _, m := range e.tables.Messengers {
			if !m.InLinks {
				continue
			}
			match := m.Pattern.FindStringSubmatch(href)
			if match == nil {
				continue
			}
			emit(types.ContactMessenger, m.Platform+": "+m.format(match[1]))
			return
		}
	})

	return found, nil
}

// format renders a captured messenger value
func (m MessengerPattern) format(captured string) string {
	v := strings.TrimSpace(captured)
	if m.Digits {
		v = strings.ReplaceAll(strings.ToUpper(v), "%2B", "+")
		plus := strings.HasPrefix(v, "+")
		v = nonDigitRe.ReplaceAllString(v, "")
		if plus {
			v = "+" + v
		}
	}
	return m.Prefix + v
}
