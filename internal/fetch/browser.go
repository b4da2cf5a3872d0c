package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Render tier defaults.
const (
	DefaultNavTimeout  = 20 * time.Second
	DefaultSettleDelay = 1500 * time.Millisecond
	DefaultNetworkIdle = 5 * time.Second
)

// Session is a render-tier strategy bound to one browser. Close must be called
// once the run is done with it.
type Session interface {
	Strategy
	Close() error
}

// SessionOpener starts render sessions. The pipeline opens at most one per run.
type SessionOpener interface {
	Open(ctx context.Context) (Session, error)
}

// BrowserOptions configures the render tier.
type BrowserOptions struct {
	NavTimeout  time.Duration
	SettleDelay time.Duration
	NetworkIdle time.Duration
	UserAgent   string
	ExecPath    string
}

// DefaultBrowserOptions returns the render tier defaults.
func DefaultBrowserOptions() BrowserOptions {
	return BrowserOptions{
		NavTimeout:  DefaultNavTimeout,
		SettleDelay: DefaultSettleDelay,
		NetworkIdle: DefaultNetworkIdle,
		UserAgent:   DefaultUserAgent,
	}
}

// ChromeOpener launches headless Chrome through chromedp.
// Requires Chrome/Chromium to be installed on the system.
type ChromeOpener struct {
	opts BrowserOptions
}

// NewChromeOpener creates a ChromeOpener
func NewChromeOpener(opts BrowserOptions) *ChromeOpener {
	return &ChromeOpener{opts: opts}
}

// Open starts a browser and returns a session that renders pages in fresh tabs.
func (o *ChromeOpener) Open(ctx context.Context) (Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if o.opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(o.opts.UserAgent))
	}
	if o.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(o.opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser so launch failures surface here
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, &Error{URL: "about:blank", Message: "failed to start browser", Cause: err}
	}

	return &BrowserSession{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		opts:          o.opts,
	}, nil
}

// BrowserSession renders pages in tabs of one shared browser.
type BrowserSession struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	opts          BrowserOptions
}

// Fetch renders urlStr: navigate, wait for network idle (bounded), settle, then read the DOM.
func (s *BrowserSession) Fetch(ctx context.Context, urlStr string) (*Result, error) {
	tabCtx, cancelTab := chromedp.NewContext(s.browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	budget := s.opts.NavTimeout + s.opts.NetworkIdle + s.opts.SettleDelay
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, budget)
	defer cancelTimeout()

	idle := make(chan struct{}, 1)
	chromedp.ListenTarget(tabCtx, func(ev any) {
		if e, ok := ev.(*page.EventLifecycleEvent); ok && e.Name == "networkIdle" {
			select {
			case idle <- struct{}{}:
			default:
			}
		}
	})

	if err := chromedp.Run(tabCtx, page.SetLifecycleEventsEnabled(true)); err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to open tab", Cause: err}
	}

	navCtx, cancelNav := context.WithTimeout(tabCtx, s.opts.NavTimeout)
	resp, err := chromedp.RunResponse(navCtx, chromedp.Navigate(urlStr))
	cancelNav()
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "navigation failed", Cause: err}
	}

	status := 0
	if resp != nil {
		status = int(resp.Status)
	}
	if status != 0 && (status < 200 || status >= 300) {
		return &Result{URL: urlStr, StatusCode: status, Tier: TierRender}, &Error{
			URL:        urlStr,
			Message:    fmt.Sprintf("HTTP status %d", status),
			StatusCode: status,
		}
	}

	var html string
	err = chromedp.Run(tabCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			waitNetworkIdle(ctx, idle, s.opts.NetworkIdle)
			return nil
		}),
		chromedp.Sleep(s.opts.SettleDelay),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "browser rendering failed", Cause: err}
	}

	return &Result{
		URL:         urlStr,
		HTML:        html,
		ContentType: "text/html",
		StatusCode:  status,
		Tier:        TierRender,
	}, nil
}

// waitNetworkIdle blocks until a networkIdle lifecycle event arrives or the wait elapses.
func waitNetworkIdle(ctx context.Context, idle <-chan struct{}, wait time.Duration) {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-idle:
	case <-timer.C:
	case <-ctx.Done():
	}
}

// Close shuts the browser down. It is safe to call more than once.
func (s *BrowserSession) Close() error {
	if s.browserCancel == nil {
		return nil
	}
	s.browserCancel()
	s.allocCancel()
	s.browserCancel = nil
	s.allocCancel = nil
	return nil
}
