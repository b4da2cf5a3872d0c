package crawling

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// DefaultContactPaths are appended to the primary seed's registrable domain
var DefaultContactPaths = []string{
	"/contacts", "/contact", "/contact-us", "/contactus",
	"/about", "/about-us", "/company", "/our-company", "/join-us",
}

// BuildSeedQueue validates seeds and appends contact-page guesses built on the
// registrable domain of the first valid seed. Invalid seeds are skipped; duplicates
// (ignoring a trailing slash, fragment and host case) keep their first position.
func BuildSeedQueue(seeds []string, guessPaths []string) ([]string, error) {
	if len(seeds) == 0 {
		return nil, &EmptyInputError{Message: "no seed URLs provided"}
	}

	validSeeds := make([]*url.URL, 0, len(seeds))
	rawSeeds := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		seed = strings.TrimSpace(seed)
		parsedURL, err := url.Parse(seed)
		if err != nil || parsedURL.Host == "" || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") {
			continue
		}
		validSeeds = append(validSeeds, parsedURL)
		rawSeeds = append(rawSeeds, seed)
	}
	if len(validSeeds) == 0 {
		return nil, &EmptyInputError{Message: "no valid seed URLs provided"}
	}

	queue := make([]string, 0, len(rawSeeds)+len(guessPaths))
	queued := make(map[string]bool)
	enqueue := func(u string) {
		key := queueKey(u)
		if queued[key] {
			return
		}
		queued[key] = true
		queue = append(queue, u)
	}

	for _, s := range rawSeeds {
		enqueue(s)
	}

	primary := validSeeds[0]
	host := RegistrableHost(primary.Host)
	for _, p := range guessPaths {
		guess := url.URL{Scheme: primary.Scheme, Host: host, Path: p}
		enqueue(guess.String())
	}

	return queue, nil
}

// RegistrableHost reduces host to its registrable domain (eTLD+1), keeping any port.
// IP addresses, single-label hosts and unknown suffixes are returned unchanged.
func RegistrableHost(host string) string {
	hostname, port := host, ""
	if h, p, err := net.SplitHostPort(host); err == nil {
		hostname, port = h, p
	}
	hostname = strings.ToLower(hostname)

	domain := hostname
	if net.ParseIP(hostname) == nil && strings.Contains(hostname, ".") {
		if etld1, err := publicsuffix.EffectiveTLDPlusOne(hostname); err == nil {
			domain = etld1
		}
	}

	if port != "" {
		return net.JoinHostPort(domain, port)
	}
	return domain
}

func queueKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return strings.TrimSuffix(raw, "/")
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	u.Scheme = strings.ToLower(u.Scheme)
	return strings.TrimSuffix(u.String(), "/")
}
