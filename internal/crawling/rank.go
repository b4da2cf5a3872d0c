package crawling

import (
	"net/url"
	"sort"
	"strings"

	"github.com/jonathan/contact-discovery/internal/types"
)

// Keyword tier base scores
const (
	HighTierScore   = 1.0
	MediumTierScore = 0.6
	LowTierScore    = 0.2
)

// DefaultMaxLinks is how many ranked links a navigation pass visits
const DefaultMaxLinks = 10

// KeywordTiers groups navigation keywords by how likely they lead to contact details
type KeywordTiers struct {
	High   []string
	Medium []string
	Low    []string
}

// DefaultKeywordTiers returns the built-in multilingual keyword tiers
func DefaultKeywordTiers() KeywordTiers {
	return KeywordTiers{
		High: []string{
			"contact", "kontakt", "контакт", "contacto", "contactez", "contatti", "contato",
			"support", "поддержк", "soporte", "feedback", "обратная-связь", "get-in-touch", "reach-us",
		},
		Medium: []string{
			"about", "о-нас", "o-nas", "о-компании", "ueber-uns", "uber-uns", "sobre", "chi-siamo", "qui-sommes",
			"team", "команда", "equipo", "company", "компания", "empresa", "impressum", "imprint", "legal-notice",
		},
		Low: []string{
			"blog", "блог", "news", "новости", "noticias", "press", "portfolio", "портфолио", "careers", "jobs",
		},
	}
}

// DepthScore maps a URL path depth to a secondary relevance score
func DepthScore(depth int) float64 {
	switch {
	case depth <= 2:
		return 1.0
	case depth <= 3:
		return 0.7
	default:
		return 0.4
	}
}

// URLDepth counts the non-empty path segments of a URL; unparsable URLs have depth 0
func URLDepth(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	depth := 0
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			depth++
		}
	}
	return depth
}

// Ranker orders candidate links by relevance weight
type Ranker struct {
	tiers KeywordTiers
	limit int
}

// NewRanker creates a Ranker returning at most limit links (DefaultMaxLinks when limit < 1)
func NewRanker(tiers KeywordTiers, limit int) *Ranker {
	if limit < 1 {
		limit = DefaultMaxLinks
	}
	return &Ranker{tiers: tiers, limit: limit}
}

// KeywordScore returns the tier base score for a link, 0 when no keyword matches.
// Keywords are matched against the decoded URL path and the anchor text.
func (r *Ranker) KeywordScore(link types.CandidateLink) float64 {
	haystack := strings.ToLower(link.Text)
	if u, err := url.Parse(link.URL); err == nil {
		haystack = strings.ToLower(u.Path) + " " + haystack
	}
	switch {
	case containsAny(haystack, r.tiers.High):
		return HighTierScore
	case containsAny(haystack, r.tiers.Medium):
		return MediumTierScore
	case containsAny(haystack, r.tiers.Low):
		return LowTierScore
	}
	return 0
}

// Weight combines keyword tier and depth; it never falls below the keyword tier
func (r *Ranker) Weight(link types.CandidateLink) float64 {
	base := r.KeywordScore(link)
	if base == 0 {
		return 0
	}
	combined := base*0.7 + DepthScore(link.Depth)*0.3
	if combined > base {
		return combined
	}
	return base
}

// Rank scores links, drops those without a keyword match and returns the
// top links by weight. Equal weights keep their discovery order.
func (r *Ranker) Rank(links []types.CandidateLink) []types.CandidateLink {
	ranked := make([]types.CandidateLink, 0, len(links))
	for _, link := range links {
		w := r.Weight(link)
		if w == 0 {
			continue
		}
		link.Weight = w
		ranked = append(ranked, link)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Weight > ranked[j].Weight
	})

	if len(ranked) > r.limit {
		ranked = ranked[:r.limit]
	}
	return ranked
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
