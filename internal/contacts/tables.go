// Package contacts extracts, scores and normalizes contact information found in web pages.
package contacts

import (
	"regexp"
	"strings"
)

// SocialPlatform describes how a profile URL on one platform is recognized.
// Pattern must expose the handle as capture group 1.
type SocialPlatform struct {
	Name    string
	Pattern *regexp.Regexp
	Exclude []string
}

// MessengerPattern recognizes one messenger form. Capture group 1 holds the value.
type MessengerPattern struct {
	Platform string
	Pattern  *regexp.Regexp

	// Prefix is prepended to the captured value
	Prefix string

	// Digits marks phone-number values; they are reduced to digits with an optional leading +
	Digits bool

	// InLinks marks URL forms that also apply to hyperlink targets
	InLinks bool
}

// Tables holds the fixed vocabularies used by extractors, the analyzer and the normalizer.
// A Tables value is built once and shared read-only.
type Tables struct {
	Social            []SocialPlatform
	Messengers        []MessengerPattern
	DisposableDomains []string
	AssetExtensions   []string
	IconVocabulary    []string
	IconLabels        []string
	ContactKeywords   []string
	FooterSelector    string
	HeaderSelector    string
}

// socialPattern builds a platform pattern anchored on a non-word boundary before the host
// and a path or end-of-token delimiter after the handle.
func socialPattern(host, path, handle string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^a-z0-9\-])(?:https?://)?` + host + `/` + path +
		`(` + handle + `)(?:[/?#\s"'<>),;]|$)`)
}

// DefaultTables returns the built-in vocabularies
func DefaultTables() Tables {
	return Tables{
		Social: []SocialPlatform{
			{
				Name:    "facebook",
				Pattern: socialPattern(`(?:www\.|m\.|web\.)?(?:facebook|fb)\.com`, ``, `[A-Za-z0-9.\-_]{3,50}`),
				Exclude: []string{"sharer", "share", "plugins", "dialog", "login", "profile.php", "groups", "events", "watch"},
			},
			{
				Name:    "instagram",
				Pattern: socialPattern(`(?:www\.)?instagram\.com`, ``, `[A-Za-z0-9._]{3,50}`),
				Exclude: []string{"explore", "accounts", "reel", "reels", "stories", "direct"},
			},
			{
				Name:    "twitter",
				Pattern: socialPattern(`(?:www\.|mobile\.)?(?:twitter|x)\.com`, ``, `[A-Za-z0-9_]{3,50}`),
				Exclude: []string{"intent", "share", "home", "hashtag", "search", "login", "explore"},
			},
			{
				Name:    "linkedin",
				Pattern: socialPattern(`(?:[a-z]{2,3}\.)?linkedin\.com`, `(?:in|company|school)/`, `[A-Za-z0-9\-_%]{3,50}`),
			},
			{
				Name:    "youtube",
				Pattern: socialPattern(`(?:www\.|m\.)?youtube\.com`, `(?:@|channel/|c/|user/)`, `[A-Za-z0-9\-_.]{3,50}`),
			},
			{
				Name:    "tiktok",
				Pattern: socialPattern(`(?:www\.)?tiktok\.com`, `@`, `[A-Za-z0-9._]{3,50}`),
			},
			{
				Name:    "vk",
				Pattern: socialPattern(`(?:www\.|m\.)?vk\.com`, ``, `[A-Za-z0-9_.]{3,50}`),
				Exclude: []string{"share", "away", "login", "feed"},
			},
			{
				Name:    "pinterest",
				Pattern: socialPattern(`(?:[a-z]{2}\.|www\.)?pinterest\.(?:com|co\.uk|de|fr|ru)`, ``, `[A-Za-z0-9_]{3,50}`),
				Exclude: []string{"pin", "search", "ideas"},
			},
		},
		Messengers: []MessengerPattern{
			{Platform: "telegram", Pattern: regexp.MustCompile(`(?i)(?:^|[^a-z0-9.\-])(?:https?://)?(?:www\.)?(?:t|telegram)\.me/([A-Za-z0-9_]{3,50})`), InLinks: true},
			{Platform: "telegram", Pattern: regexp.MustCompile(`(?i)tg://resolve\?domain=([A-Za-z0-9_]{3,50})`), InLinks: true},
			// @handle must follow start of text, whitespace or punctuation so email domains never match.
			// The handle is stored without "@" so it merges with t.me links.
			{Platform: "telegram", Pattern: regexp.MustCompile(`(?:^|[\s(\[,;:])@([A-Za-z][A-Za-z0-9_]{2,31})\b`)},
			{Platform: "whatsapp", Pattern: regexp.MustCompile(`(?i)wa\.me/(\+?\d{7,15})`), Digits: true, InLinks: true},
			{Platform: "whatsapp", Pattern: regexp.MustCompile(`(?i)api\.whatsapp\.com/send/?\?phone=(\+?\d{7,15})`), Digits: true, InLinks: true},
			{Platform: "whatsapp", Pattern: regexp.MustCompile(`(?i)whatsapp://send/?\?phone=(\+?\d{7,15})`), Digits: true, InLinks: true},
			{Platform: "whatsapp", Pattern: regexp.MustCompile(`(?i)whats\s?app\s*[:\-]?\s*(\+?\d[\d\s\-()]{5,18}\d)`), Digits: true},
			{Platform: "viber", Pattern: regexp.MustCompile(`(?i)viber://(?:chat|add|contact)\?number=((?:%2B|\+)?\d{7,15})`), Digits: true, InLinks: true},
			{Platform: "viber", Pattern: regexp.MustCompile(`(?i)viber\s*[:\-]?\s*(\+?\d[\d\s\-()]{5,18}\d)`), Digits: true},
			{Platform: "signal", Pattern: regexp.MustCompile(`(?i)signal\.me/(?:#p/)?(\+\d{7,15})`), Digits: true, InLinks: true},
			{Platform: "skype", Pattern: regexp.MustCompile(`(?i)\bskype\s*[:\-]\s*([A-Za-z0-9][A-Za-z0-9_.,:\-]{2,49})`), InLinks: true},
			{Platform: "discord", Pattern: regexp.MustCompile(`(?i)(?:discord\.gg|discord(?:app)?\.com/invite)/([A-Za-z0-9\-]{2,32})`), Prefix: "discord.gg/", InLinks: true},
			{Platform: "discord", Pattern: regexp.MustCompile(`(?i)discord(?:app)?\.com/users/(\d{17,20})`), Prefix: "user/", InLinks: true},
		},
		DisposableDomains: []string{
			"example.com", "example.org", "example.net", "test.com", "domain.com",
			"email.com", "yourdomain.com", "yoursite.com", "sentry.io", "wixpress.com",
			"mailinator.com", "tempmail.com", "temp-mail.org", "10minutemail.com",
			"guerrillamail.com", "throwawaymail.com", "yopmail.com", "trashmail.com",
			"sharklasers.com", "dispostable.com",
		},
		AssetExtensions: []string{
			".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico", ".bmp",
			".css", ".js", ".pdf", ".zip", ".mp4", ".mp3", ".woff", ".woff2",
		},
		IconVocabulary: []string{
			"fa-phone", "fa-mobile", "fa-envelope", "fa-at", "fa-whatsapp", "fa-telegram",
			"fa-viber", "fa-skype", "icon-phone", "icon-mail", "icon-email", "icon-envelope",
			"bi-telephone", "bi-envelope", "bi-whatsapp", "bi-telegram", "phone-icon",
			"mail-icon", "email-icon", "whatsapp", "telegram",
		},
		IconLabels: []string{"phone", "telephone", "call", "email", "mail", "whatsapp", "telegram", "contact"},
		ContactKeywords: []string{
			"contact", "kontakt", "контакт", "contacto", "contactez", "contatti", "contato", "連絡",
		},
		FooterSelector: `footer, .footer, #footer, .site-footer, [role="contentinfo"]`,
		HeaderSelector: `header, .header, #header, .site-header, [role="banner"]`,
	}
}

// isDisposable reports whether domain is a placeholder domain or a subdomain of one
func (t *Tables) isDisposable(domain string) bool {
	for _, d := range t.DisposableDomains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}

// isAsset reports whether s ends with a static asset extension
func (t *Tables) isAsset(s string) bool {
	lower := strings.ToLower(s)
	for _, ext := range t.AssetExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// matchSocial returns the "platform: handle" value for a profile URL
func (t *Tables) matchSocial(s string) (string, bool) {
	for _, p := range t.Social {
		m := p.Pattern.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		if excluded(m[1], p.Exclude) {
			continue
		}
		return p.Name + ": " + m[1], true
	}
	return "", false
}

func excluded(handle string, exclude []string) bool {
	h := strings.ToLower(handle)
	for _, e := range exclude {
		if h == e || strings.HasPrefix(h, e+".") {
			return true
		}
	}
	return false
}
