package contacts

import (
	"regexp"
	"strings"

	"github.com/jonathan/contact-discovery/internal/types"
)

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,24}`)

	// phonePatterns are tried in priority order; a later match overlapping an
	// accepted span is dropped.
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+\d{1,3}[\s.\-]?\(\d{1,5}\)[\s.\-]?\d{1,4}(?:[\s.\-]?\d{1,4}){1,3}`),
		regexp.MustCompile(`\d?[\s.\-]?\(\d{2,5}\)[\s.\-]?\d{1,4}(?:[\s.\-]?\d{1,4}){1,3}`),
		regexp.MustCompile(`\+\d{1,3}(?:[\s.\-]\d{2,4}){2,5}`),
		regexp.MustCompile(`\d{2,4}(?:[\s.\-]\d{2,4}){2,4}`),
		regexp.MustCompile(`\+\d{7,15}`),
	}

	isoDateRe      = regexp.MustCompile(`^\d{4}[\-./]\d{2}[\-./]\d{2}$`)
	dayFirstDateRe = regexp.MustCompile(`^\d{1,2}[\-./]\d{1,2}[\-./](?:19|20)\d{2}$`)
	yearRe         = regexp.MustCompile(`^20\d{2}$`)
)

// TextExtractor applies pattern matching to a page's visible text
type TextExtractor struct {
	tables     *Tables
	normalizer *Normalizer
}

// NewTextExtractor creates a TextExtractor. Emails are gated by normalizer.
func NewTextExtractor(tables *Tables, normalizer *Normalizer) *TextExtractor {
	return &TextExtractor{tables: tables, normalizer: normalizer}
}

// Extract returns emails, phones, social handles and messenger handles found in page.Text
func (e *TextExtractor) Extract(page *Page) ([]types.Contact, error) {
	text := page.Text
	var found []types.Contact
	emit := func(t types.ContactType, value string) {
		found = append(found, types.Contact{Type: t, Value: value, SourceURL: page.URL})
	}

	for _, m := range emailRe.FindAllString(text, -1) {
		m = strings.Trim(m, ".")
		if e.tables.isAsset(m) || !e.normalizer.IsValidEmail(m) {
			continue
		}
		emit(types.ContactEmail, m)
	}

	for _, p := range extractPhones(text) {
		emit(types.ContactPhone, p)
	}

	for _, p := range e.tables.Social {
		for _, m := range p.Pattern.FindAllStringSubmatch(text, -1) {
			if excluded(m[1], p.Exclude) {
				continue
			}
			emit(types.ContactSocial, p.Name+": "+m[1])
		}
	}

	for _, m := range e.tables.Messengers {
		for _, match := range m.Pattern.FindAllStringSubmatch(text, -1) {
			emit(types.ContactMessenger, m.Platform+": "+m.format(match[1]))
		}
	}

	return found, nil
}

type span struct{ start, end int }

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

// extractPhones runs the phone patterns in priority order with span-overlap suppression
// and drops repeats of the same cleaned string.
func extractPhones(text string) []string {
	var accepted []span
	seen := make(map[string]bool)
	var out []string

	for _, re := range phonePatterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			start, end := loc[0], loc[1]
			// trim separators the optional leading groups may have absorbed
			for start < end && strings.ContainsRune(" .-", rune(text[start])) {
				start++
			}
			s := span{start, end}
			if overlapsAny(s, accepted) || !bounded(text, start, end) {
				continue
			}
			raw := text[start:end]
			if !plausiblePhone(raw) {
				continue
			}
			accepted = append(accepted, s)
			cleaned := whitespaceRe.ReplaceAllString(strings.TrimSpace(raw), " ")
			if seen[cleaned] {
				continue
			}
			seen[cleaned] = true
			out = append(out, cleaned)
		}
	}
	return out
}

func overlapsAny(s span, spans []span) bool {
	for _, o := range spans {
		if s.overlaps(o) {
			return true
		}
	}
	return false
}

// bounded rejects matches glued to surrounding digits or word characters
func bounded(text string, start, end int) bool {
	if start > 0 {
		prev := text[start-1]
		if isDigit(prev) || isLetter(prev) || prev == '+' {
			return false
		}
	}
	if end < len(text) {
		next := text[end]
		if isDigit(next) || isLetter(next) {
			return false
		}
	}
	return true
}

// plausiblePhone accepts 7 to 15 digits that are not a year, a short ID or a date
func plausiblePhone(raw string) bool {
	digits := nonDigitRe.ReplaceAllString(raw, "")
	if yearRe.MatchString(digits) || (len(digits) >= 4 && len(digits) <= 6) {
		return false
	}
	if len(digits) < 7 || len(digits) > 15 {
		return false
	}
	raw = strings.TrimSpace(raw)
	return !isoDateRe.MatchString(raw) && !dayFirstDateRe.MatchString(raw)
}

func isDigit(b byte) bool  { return b >= '0' && b <= '9' }
func isLetter(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
