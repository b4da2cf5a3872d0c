package discovery

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/contact-discovery/internal/crawling"
	"github.com/jonathan/contact-discovery/internal/fetch"
	"github.com/jonathan/contact-discovery/internal/metrics"
	"github.com/jonathan/contact-discovery/internal/types"
)

// fakeSite serves fixed HTML per URL and 404s everything else.
type fakeSite struct {
	mu     sync.Mutex
	pages  map[string]string
	calls  map[string]int
	tier   string
	onCall func(url string)
}

func newFakeSite(tier string, pages map[string]string) *fakeSite {
	return &fakeSite{pages: pages, calls: map[string]int{}, tier: tier}
}

func (f *fakeSite) Fetch(_ context.Context, urlStr string) (*fetch.Result, error) {
	f.mu.Lock()
	f.calls[urlStr]++
	html, ok := f.pages[urlStr]
	hook := f.onCall
	f.mu.Unlock()

	if hook != nil {
		hook(urlStr)
	}
	if !ok {
		return nil, &fetch.Error{URL: urlStr, Message: "HTTP status 404", StatusCode: http.StatusNotFound}
	}
	return &fetch.Result{URL: urlStr, HTML: html, StatusCode: http.StatusOK, Tier: f.tier}, nil
}

func (f *fakeSite) callCount(urlStr string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[urlStr]
}

func (f *fakeSite) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

type fakeSession struct {
	*fakeSite
	closes int
}

func (s *fakeSession) Close() error {
	s.closes++
	return nil
}

type fakeOpener struct {
	session *fakeSession
	opens   int
	err     error
}

func (o *fakeOpener) Open(_ context.Context) (fetch.Session, error) {
	o.opens++
	if o.err != nil {
		return nil, o.err
	}
	return o.session, nil
}

func newOpener(pages map[string]string) *fakeOpener {
	return &fakeOpener{session: &fakeSession{fakeSite: newFakeSite(fetch.TierRender, pages)}}
}

const blankPage = `<html><head><title>Home</title></head><body><p>Nothing to see here.</p></body></html>`

func TestDiscoverContacts_FooterMailto(t *testing.T) {
	fast := newFakeSite(fetch.TierHTTP, map[string]string{
		"https://example-biz.test": `<html><head><title>Example Biz</title></head><body>
			<main><p>Welcome</p></main>
			<footer><a href="mailto:sales@example-biz.test">Email us</a></footer>
		</body></html>`,
		"https://example-biz.test/contact": `<html><head><title>Contact</title></head><body>
			<p>Write to sales@example-biz.test</p>
		</body></html>`,
	})
	opener := newOpener(nil)
	p := New(fast, opener, DefaultOptions())

	got, err := p.DiscoverContacts(context.Background(), []string{"https://example-biz.test"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, types.ContactEmail, got[0].Type)
	assert.Equal(t, "sales@example-biz.test", got[0].Value)
	assert.Equal(t, []string{"https://example-biz.test", "https://example-biz.test/contact"}, got[0].Sources)
	assert.GreaterOrEqual(t, got[0].Confidence, 0.6)
	assert.Equal(t, 0, opener.opens)
}

func TestDiscoverContacts_FetchesSeedAndGuesses(t *testing.T) {
	fast := newFakeSite(fetch.TierHTTP, map[string]string{
		"https://www.acme.test/products": `<p>Call +1 (415) 555-0100</p>`,
	})
	p := New(fast, nil, DefaultOptions())

	got, err := p.DiscoverContacts(context.Background(), []string{"https://www.acme.test/products"})
	require.NoError(t, err)
	require.NotEmpty(t, got)

	assert.Equal(t, 1, fast.callCount("https://www.acme.test/products"))
	for _, path := range crawling.DefaultContactPaths {
		assert.Equal(t, 1, fast.callCount("https://acme.test"+path), path)
	}
}

func TestDiscoverContacts_NavigationPassStopsAtFirstHit(t *testing.T) {
	fast := newFakeSite(fetch.TierHTTP, map[string]string{
		"https://acme.test": `<html><body>
			<nav>
				<a href="/blog/news">Blog</a>
				<a href="/team">Team</a>
				<a href="/support-center">Support</a>
			</nav>
			<p>Welcome</p>
		</body></html>`,
		"https://acme.test/support-center": `<html><body><p>Reach us at help@acme-support.io</p></body></html>`,
		"https://acme.test/team":           `<html><body><p>team@acme-support.io</p></body></html>`,
	})
	opener := newOpener(nil)
	p := New(fast, opener, DefaultOptions())

	got, err := p.DiscoverContacts(context.Background(), []string{"https://acme.test"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "help@acme-support.io", got[0].Value)
	assert.Equal(t, 2, fast.callCount("https://acme.test"), "seed fetched in seed pass and re-fetched for navigation")
	assert.Equal(t, 1, fast.callCount("https://acme.test/support-center"))
	assert.Equal(t, 0, fast.callCount("https://acme.test/team"))
	assert.Equal(t, 0, fast.callCount("https://acme.test/blog/news"))
	assert.Equal(t, 0, opener.opens)
}

func TestDiscoverContacts_RenderTierOpenedExactlyOnce(t *testing.T) {
	fast := newFakeSite(fetch.TierHTTP, map[string]string{
		"https://spa.test":         blankPage,
		"https://spa.test/contact": blankPage,
	})
	opener := newOpener(map[string]string{
		"https://spa.test": `<html><body><div id="app"><a href="tel:+14155550100">Call</a></div></body></html>`,
	})
	p := New(fast, opener, DefaultOptions())

	got, err := p.DiscoverContacts(context.Background(), []string{"https://spa.test"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, types.ContactPhone, got[0].Type)
	assert.Equal(t, 1, opener.opens)
	assert.Equal(t, 1, opener.session.closes)
	assert.Equal(t, 1, opener.session.callCount("https://spa.test"))
	assert.Equal(t, 1, opener.session.callCount("https://spa.test/contact"))
}

func TestDiscoverContacts_RenderNavigationPassSharesSession(t *testing.T) {
	fast := newFakeSite(fetch.TierHTTP, map[string]string{"https://spa.test": blankPage})
	opener := newOpener(map[string]string{
		"https://spa.test":          `<html><body><header><a href="/kontakt">Kontakt</a></header></body></html>`,
		"https://spa.test/kontakt": `<html><body><p>info@spa-shop.io</p></body></html>`,
	})
	p := New(fast, opener, DefaultOptions())

	got, err := p.DiscoverContacts(context.Background(), []string{"https://spa.test"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "info@spa-shop.io", got[0].Value)
	assert.Equal(t, 1, opener.opens)
	assert.Equal(t, 1, opener.session.closes)
	assert.Equal(t, 2, opener.session.callCount("https://spa.test"))
}

func TestDiscoverContacts_RenderDisabled(t *testing.T) {
	fast := newFakeSite(fetch.TierHTTP, map[string]string{"https://spa.test": blankPage})
	opener := newOpener(nil)
	opts := DefaultOptions()
	opts.RenderEnabled = false
	p := New(fast, opener, opts)

	got, err := p.DiscoverContacts(context.Background(), []string{"https://spa.test"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, opener.opens)
}

func TestDiscoverContacts_AllFetchesFail(t *testing.T) {
	fast := newFakeSite(fetch.TierHTTP, nil)
	opener := newOpener(nil)
	p := New(fast, opener, DefaultOptions())

	got, err := p.DiscoverContacts(context.Background(), []string{"https://down.test"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 1, opener.opens)
	assert.Equal(t, 1, opener.session.closes)
}

func TestDiscoverContacts_RenderOpenFailure(t *testing.T) {
	fast := newFakeSite(fetch.TierHTTP, nil)
	opener := &fakeOpener{err: errors.New("chrome not found")}
	p := New(fast, opener, DefaultOptions())

	got, err := p.DiscoverContacts(context.Background(), []string{"https://down.test"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, opener.opens)
}

func TestDiscoverContacts_EmptyInput(t *testing.T) {
	p := New(newFakeSite(fetch.TierHTTP, nil), nil, nil)

	for _, seeds := range [][]string{nil, {}, {"not a url", "ftp://files.test"}} {
		_, err := p.DiscoverContacts(context.Background(), seeds)
		var emptyErr *crawling.EmptyInputError
		assert.ErrorAs(t, err, &emptyErr)
	}
}

func TestDiscoverContacts_CancellationReturnsPartialResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fast := newFakeSite(fetch.TierHTTP, map[string]string{
		"https://acme.test": `<p>sales@acme-corp.io</p>`,
	})
	fast.onCall = func(string) { cancel() }
	opener := newOpener(nil)

	opts := DefaultOptions()
	opts.Concurrency = 1
	p := New(fast, opener, opts)

	got, err := p.DiscoverContacts(ctx, []string{"https://acme.test"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sales@acme-corp.io", got[0].Value)
	assert.Equal(t, 1, fast.totalCalls())
	assert.Equal(t, 0, opener.opens)
}

func TestDiscoverContacts_ReportsProgressAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder, err := metrics.New(reg)
	require.NoError(t, err)

	var phases []string
	opts := DefaultOptions()
	opts.Metrics = recorder
	opts.OnProgress = func(e ProgressEvent) { phases = append(phases, e.Phase) }

	fast := newFakeSite(fetch.TierHTTP, nil)
	p := New(fast, newOpener(nil), opts)

	_, err = p.DiscoverContacts(context.Background(), []string{"https://down.test"})
	require.NoError(t, err)

	assert.Equal(t, []string{PhaseSeeds, PhaseNavigation, PhaseRender, PhaseNormalize}, phases)
	count, err := testutil.GatherAndCount(reg, "contact_discovery_render_fallbacks_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
