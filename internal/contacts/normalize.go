package contacts

import (
	"regexp"
	"strings"

	"github.com/jonathan/contact-discovery/internal/types"
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	trunkPrefixRe = regexp.MustCompile(`^8\s*\(`)
	nonDigitRe    = regexp.MustCompile(`\D`)
)

// Normalizer canonicalizes raw contacts into dedup keys and display values
type Normalizer struct {
	tables *Tables
}

// NewNormalizer creates a Normalizer over the given tables
func NewNormalizer(tables *Tables) *Normalizer {
	return &Normalizer{tables: tables}
}

// IsValidEmail is the email validity gate: the domain must contain a dot, be at least
// 3 characters long and not be a disposable or placeholder domain.
func (n *Normalizer) IsValidEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return false
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	if len(domain) < 3 || !strings.Contains(domain, ".") {
		return false
	}
	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}
	return !n.tables.isDisposable(domain)
}

// Display returns the cosmetically cleaned value shown to users
func (n *Normalizer) Display(t types.ContactType, value string) string {
	v := strings.ReplaceAll(value, "%20", " ")
	v = strings.TrimSpace(whitespaceRe.ReplaceAllString(v, " "))
	switch t {
	case types.ContactEmail:
		return strings.ToLower(v)
	case types.ContactPhone:
		return trunkPrefixRe.ReplaceAllString(v, "+7 (")
	}
	return v
}

// Key returns the dedup key for a raw value. Phones key on their digits with an
// implied leading +; every other type keys on its lower-cased display form.
// Messenger handles key without a leading "@".
func (n *Normalizer) Key(t types.ContactType, value string) string {
	display := n.Display(t, value)
	if t == types.ContactPhone {
		return string(t) + ":+" + nonDigitRe.ReplaceAllString(display, "")
	}
	if t == types.ContactMessenger {
		// "telegram: @acme" and "telegram: acme" are the same account
		display = strings.Replace(display, ": @", ": ", 1)
	}
	return string(t) + ":" + strings.ToLower(display)
}

// Normalize collapses a FoundSet into deduplicated contacts in first-seen order.
// The first display value wins, sources accumulate distinct and ordered and
// confidence is the maximum over all merged occurrences. Invalid emails are dropped.
func (n *Normalizer) Normalize(found *FoundSet) []types.NormalizedContact {
	if found == nil {
		return []types.NormalizedContact{}
	}

	index := make(map[string]int)
	seenSource := make(map[string]map[string]bool)
	out := []types.NormalizedContact{}

	for _, e := range found.entries {
		c := e.Contact
		if c.Type == types.ContactEmail && !n.IsValidEmail(c.Value) {
			continue
		}
		key := n.Key(c.Type, c.Value)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			seenSource[key] = make(map[string]bool)
			out = append(out, types.NormalizedContact{
				Type:    c.Type,
				Value:   n.Display(c.Type, c.Value),
				Sources: []string{},
			})
		}
		if c.SourceURL != "" && !seenSource[key][c.SourceURL] {
			seenSource[key][c.SourceURL] = true
			out[i].Sources = append(out[i].Sources, c.SourceURL)
		}
		if e.Confidence > out[i].Confidence {
			out[i].Confidence = e.Confidence
		}
	}
	return out
}
