package contacts

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Page is one parsed document. A Page belongs to a single goroutine.
type Page struct {
	URL  string
	Doc  *goquery.Document
	Text string

	regions map[string]string
}

// ParsePage parses raw HTML fetched from pageURL
func ParsePage(pageURL, rawHTML string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, &ParseError{URL: pageURL, Message: "failed to parse HTML", Cause: err}
	}
	return &Page{
		URL:  pageURL,
		Doc:  doc,
		Text: visibleText(doc.Nodes),
	}, nil
}

// Title returns the trimmed document title
func (p *Page) Title() string {
	return strings.TrimSpace(p.Doc.Find("title").First().Text())
}

// regionHTML returns the lower-cased serialized HTML of every element matching selector
func (p *Page) regionHTML(selector string) string {
	if cached, ok := p.regions[selector]; ok {
		return cached
	}
	var b strings.Builder
	p.Doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		h, err := goquery.OuterHtml(s)
		if err != nil {
			return
		}
		b.WriteString(h)
		b.WriteByte('\n')
	})
	if p.regions == nil {
		p.regions = make(map[string]string)
	}
	p.regions[selector] = strings.ToLower(b.String())
	return p.regions[selector]
}

// visibleText joins the text nodes a browser would render, skipping non-visual elements
func visibleText(roots []*html.Node) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Template:
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return strings.Join(parts, " ")
}
