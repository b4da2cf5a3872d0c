package contacts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestAnalyzer() *Analyzer {
	tables := DefaultTables()
	return NewAnalyzer(&tables)
}

func TestAnalyzer_FooterAndHeader(t *testing.T) {
	html := `<html><body>
		<header><a href="tel:+15550109999">Call us</a></header>
		<main><p>info@acme.io</p></main>
		<div class="site-footer"><a href="mailto:Sales@Acme.io">Sales</a></div>
	</body></html>`
	page := mustPage(t, "https://acme.io/en/home", html)
	a := newTestAnalyzer()

	sig := a.Analyze(page, "sales@acme.io")
	assert.True(t, sig.InFooter)
	assert.False(t, sig.InHeader)
	assert.Equal(t, 2, sig.URLDepth)

	sig = a.Analyze(page, "+15550109999")
	assert.True(t, sig.InHeader)
	assert.False(t, sig.InFooter)

	sig = a.Analyze(page, "info@acme.io")
	assert.False(t, sig.InHeader)
	assert.False(t, sig.InFooter)
}

func TestAnalyzer_TaggedValuesMatchByHandle(t *testing.T) {
	html := `<footer><a href="https://instagram.com/acme.store">IG</a></footer>`
	page := mustPage(t, "https://acme.io", html)

	assert.True(t, newTestAnalyzer().Analyze(page, "instagram: acme.store").InFooter)
}

func TestAnalyzer_ContactPage(t *testing.T) {
	a := newTestAnalyzer()

	byTitle := mustPage(t, "https://acme.io/reach", `<title>Contact Us | Acme</title>`)
	assert.True(t, a.Analyze(byTitle, "x").IsContactPage)

	byURL := mustPage(t, "https://acme.de/kontakt", `<title>Acme GmbH</title>`)
	assert.True(t, a.Analyze(byURL, "x").IsContactPage)

	localized := mustPage(t, "https://acme.ru/page", `<title>Контакты</title>`)
	assert.True(t, a.Analyze(localized, "x").IsContactPage)

	plain := mustPage(t, "https://acme.io/pricing", `<title>Pricing</title>`)
	assert.False(t, a.Analyze(plain, "x").IsContactPage)
}

func TestAnalyzer_ContactIcon(t *testing.T) {
	html := `
		<section><div><ul>
			<li class="item"><i class="fa fa-phone"></i><a href="tel:+15550109999">+1 555 010 9999</a></li>
			<li><a href="mailto:hi@acme.io"><svg aria-label="Email us"></svg></a></li>
		</ul></div></section>
		<section><div><div><p><a href="https://t.me/acme_chat">Chat</a></p></div></div></section>`
	page := mustPage(t, "https://acme.io", html)
	a := newTestAnalyzer()

	assert.True(t, a.Analyze(page, "+15550109999").HasContactIcon)
	assert.True(t, a.Analyze(page, "hi@acme.io").HasContactIcon)
	assert.False(t, a.Analyze(page, "telegram: acme_chat").HasContactIcon)
}

func TestAnalyzer_IconSearchStopsAtThreeAncestors(t *testing.T) {
	html := `<div class="icon-phone"><div><div><div><span><a href="tel:+15550109999">call</a></span></div></div></div></div>`
	page := mustPage(t, "https://acme.io", html)

	// the icon class sits on the anchor's fifth ancestor
	assert.False(t, newTestAnalyzer().Analyze(page, "+15550109999").HasContactIcon)
}
