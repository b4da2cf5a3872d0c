// Package discovery orchestrates a contact-discovery run: seed pass, navigation
// fallback and render-tier fallback, followed by normalization.
package discovery

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/contact-discovery/internal/contacts"
	"github.com/jonathan/contact-discovery/internal/crawling"
	"github.com/jonathan/contact-discovery/internal/fetch"
	"github.com/jonathan/contact-discovery/internal/metrics"
	"github.com/jonathan/contact-discovery/internal/types"
)

// DefaultConcurrency is how many fast-tier fetches run at once
const DefaultConcurrency = 4

// Progress phases
const (
	PhaseSeeds      = "seeds"
	PhaseNavigation = "navigation"
	PhaseRender     = "render"
	PhaseNormalize  = "normalize"
)

// ProgressEvent represents a progress update during a run
type ProgressEvent struct {
	Phase   string `json:"phase"`
	Tier    string `json:"tier,omitempty"`
	Message string `json:"message"`
	Found   int    `json:"found"`
}

// ProgressCallback is called when a run moves between phases
type ProgressCallback func(event ProgressEvent)

// Options holds configuration for a Pipeline. Zero values fall back to defaults.
type Options struct {
	Concurrency   int
	MaxNavLinks   int
	ContactPaths  []string
	RenderEnabled bool
	Tables        *contacts.Tables
	KeywordTiers  *crawling.KeywordTiers
	Logger        *zap.Logger
	Metrics       *metrics.Recorder
	OnProgress    ProgressCallback
}

// DefaultOptions returns the default pipeline options
func DefaultOptions() *Options {
	return &Options{
		Concurrency:   DefaultConcurrency,
		MaxNavLinks:   crawling.DefaultMaxLinks,
		ContactPaths:  crawling.DefaultContactPaths,
		RenderEnabled: true,
	}
}

// Pipeline discovers contacts for a set of seed URLs. It holds no per-run state
// and is safe for concurrent use.
type Pipeline struct {
	fast         fetch.Strategy
	opener       fetch.SessionOpener
	chain        *contacts.Chain
	ranker       *crawling.Ranker
	concurrency  int
	contactPaths []string
	render       bool
	logger       *zap.Logger
	metrics      *metrics.Recorder
	onProgress   ProgressCallback
}

// New creates a Pipeline. opener may be nil, which disables the render tier.
func New(fast fetch.Strategy, opener fetch.SessionOpener, opts *Options) *Pipeline {
	if opts == nil {
		opts = DefaultOptions()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tables := contacts.DefaultTables()
	if opts.Tables != nil {
		tables = *opts.Tables
	}
	tiers := crawling.DefaultKeywordTiers()
	if opts.KeywordTiers != nil {
		tiers = *opts.KeywordTiers
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	maxLinks := opts.MaxNavLinks
	if maxLinks <= 0 {
		maxLinks = crawling.DefaultMaxLinks
	}
	paths := opts.ContactPaths
	if paths == nil {
		paths = crawling.DefaultContactPaths
	}

	return &Pipeline{
		fast:         fast,
		opener:       opener,
		chain:        contacts.NewChain(tables, logger),
		ranker:       crawling.NewRanker(tiers, maxLinks),
		concurrency:  concurrency,
		contactPaths: paths,
		render:       opts.RenderEnabled && opener != nil,
		logger:       logger,
		metrics:      opts.Metrics,
		onProgress:   opts.OnProgress,
	}
}

// DiscoverContacts runs the pipeline over seedURLs and returns the deduplicated
// contacts. A canceled ctx stops further fetches; whatever was found so far is
// returned without an error. Only an empty or fully invalid seed list is an error.
func (p *Pipeline) DiscoverContacts(ctx context.Context, seedURLs []string) ([]types.NormalizedContact, error) {
	start := time.Now()

	queue, err := crawling.BuildSeedQueue(seedURLs, p.contactPaths)
	if err != nil {
		p.metrics.Run("error", time.Since(start))
		return nil, err
	}

	log := p.logger.With(zap.String("seed", queue[0]))
	log.Info("pipeline: starting discovery", zap.Int("queue", len(queue)))

	found := contacts.NewFoundSet()

	p.seedPass(ctx, found, queue)
	p.emit(PhaseSeeds, fetch.TierHTTP, "seed pass finished", found)

	if found.Len() == 0 && ctx.Err() == nil {
		log.Info("pipeline: seed pass empty, trying navigation links")
		p.navigationPass(ctx, p.fast, fetch.TierHTTP, found, queue[0])
		p.emit(PhaseNavigation, fetch.TierHTTP, "navigation pass finished", found)
	}

	if found.Len() == 0 && ctx.Err() == nil && p.render {
		log.Info("pipeline: fast tier empty, falling back to render tier")
		p.metrics.RenderFallback()
		if err := p.renderPass(ctx, found, queue); err != nil {
			log.Warn("pipeline: render tier unavailable", zap.Error(err))
		}
		p.emit(PhaseRender, fetch.TierRender, "render tier finished", found)
	}

	result := p.chain.Normalizer().Normalize(found)
	p.emit(PhaseNormalize, "", "normalized contacts", found)

	kinds := make([]string, len(result))
	for i, c := range result {
		kinds[i] = string(c.Type)
	}
	p.metrics.Contacts(kinds)
	outcome := "found"
	if len(result) == 0 {
		outcome = "empty"
	}
	p.metrics.Run(outcome, time.Since(start))

	if ctx.Err() != nil {
		log.Info("pipeline: canceled, returning partial results", zap.Int("contacts", len(result)))
	} else {
		log.Info("pipeline: finished", zap.Int("contacts", len(result)), zap.Duration("elapsed", time.Since(start)))
	}
	return result, nil
}

// seedPass fetches the queue concurrently on the fast tier. Each goroutine scans
// into its own FoundSet; the sets are merged in queue order after Wait.
func (p *Pipeline) seedPass(ctx context.Context, found *contacts.FoundSet, queue []string) {
	partials := make([]*contacts.FoundSet, len(queue))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, u := range queue {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			local := contacts.NewFoundSet()
			p.scanURL(ctx, p.fast, fetch.TierHTTP, u, local)
			partials[i] = local
			return nil
		})
	}
	_ = g.Wait()

	for _, local := range partials {
		if local != nil {
			found.Merge(local)
		}
	}
}

// navigationPass re-fetches seed, ranks its navigation links and visits them in
// order until one yields a contact.
func (p *Pipeline) navigationPass(ctx context.Context, strategy fetch.Strategy, tier string, found *contacts.FoundSet, seed string) {
	result, err := p.fetch(ctx, strategy, tier, seed)
	if err != nil {
		return
	}
	links, err := crawling.DiscoverNavigationLinks(result.HTML, result.URL)
	if err != nil {
		p.logger.Debug("pipeline: navigation discovery failed", zap.String("url", seed), zap.Error(err))
		return
	}
	ranked := p.ranker.Rank(links)
	p.logger.Debug("pipeline: ranked navigation links",
		zap.String("tier", tier), zap.Int("candidates", len(links)), zap.Int("visiting", len(ranked)))

	for _, link := range ranked {
		if ctx.Err() != nil {
			return
		}
		if p.scanURL(ctx, strategy, tier, link.URL, found) > 0 {
			p.logger.Info("pipeline: contact found via navigation",
				zap.String("url", link.URL), zap.Float64("weight", link.Weight))
			return
		}
	}
}

// renderPass opens one browser session and runs the seed and navigation passes
// through it sequentially. The session is closed on every return path.
func (p *Pipeline) renderPass(ctx context.Context, found *contacts.FoundSet, queue []string) error {
	session, err := p.opener.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			p.logger.Warn("pipeline: closing render session", zap.Error(err))
		}
	}()

	for _, u := range queue {
		if ctx.Err() != nil {
			return nil
		}
		p.scanURL(ctx, session, fetch.TierRender, u, found)
	}

	if found.Len() == 0 && ctx.Err() == nil {
		p.navigationPass(ctx, session, fetch.TierRender, found, queue[0])
	}
	return nil
}

// scanURL fetches and scans one page into found and returns how many new
// occurrences were recorded. Fetch and parse failures count as zero.
func (p *Pipeline) scanURL(ctx context.Context, strategy fetch.Strategy, tier, u string, found *contacts.FoundSet) int {
	result, err := p.fetch(ctx, strategy, tier, u)
	if err != nil {
		return 0
	}
	page, err := contacts.ParsePage(result.URL, result.HTML)
	if err != nil {
		p.logger.Debug("pipeline: parse failed", zap.String("url", u), zap.Error(err))
		return 0
	}
	return p.chain.Scan(page, found)
}

func (p *Pipeline) fetch(ctx context.Context, strategy fetch.Strategy, tier, u string) (*fetch.Result, error) {
	result, err := strategy.Fetch(ctx, u)
	if err != nil {
		p.metrics.Fetch(tier, err)
		p.logger.Debug("pipeline: fetch failed", zap.String("url", u), zap.String("tier", tier), zap.Error(err))
		return nil, err
	}
	if result.Tier != "" {
		tier = result.Tier
	}
	p.metrics.Fetch(tier, nil)
	if result.URL == "" {
		result.URL = u
	}
	return result, nil
}

func (p *Pipeline) emit(phase, tier, message string, found *contacts.FoundSet) {
	if p.onProgress == nil {
		return
	}
	p.onProgress(ProgressEvent{Phase: phase, Tier: tier, Message: message, Found: found.Len()})
}
