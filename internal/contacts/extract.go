package contacts

import (
	"errors"

	"github.com/jonathan/contact-discovery/internal/types"
	"go.uber.org/zap"
)

// Extractor pulls raw contacts out of a parsed page
type Extractor interface {
	Extract(page *Page) ([]types.Contact, error)
}

// Chain runs the structured, hyperlink and free-text extractors in that order,
// scores every occurrence and records it in a FoundSet.
type Chain struct {
	structured Extractor
	extractors []Extractor
	normalizer *Normalizer
	analyzer   *Analyzer
	scorer     *Scorer
	logger     *zap.Logger
}

// NewChain builds the default extractor chain over tables
func NewChain(tables Tables, logger *zap.Logger) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &tables
	normalizer := NewNormalizer(t)
	return &Chain{
		structured: NewStructuredExtractor(t),
		extractors: []Extractor{
			NewHyperlinkExtractor(t),
			NewTextExtractor(t, normalizer),
		},
		normalizer: normalizer,
		analyzer:   NewAnalyzer(t),
		scorer:     NewScorer(normalizer),
		logger:     logger,
	}
}

// Normalizer returns the chain's normalizer
func (c *Chain) Normalizer() *Normalizer {
	return c.normalizer
}

// Scan extracts every contact from page into found and returns how many new triples were added.
// Invalid emails are filtered here regardless of which extractor produced them.
func (c *Chain) Scan(page *Page, found *FoundSet) int {
	added := 0
	record := func(contacts []types.Contact, fromJSONLD bool) {
		for _, ct := range contacts {
			if ct.Type == types.ContactEmail && !c.normalizer.IsValidEmail(ct.Value) {
				continue
			}
			sig := c.analyzer.Analyze(page, ct.Value)
			sig.FromJSONLD = fromJSONLD
			if found.Add(ct, c.scorer.Score(ct.Type, ct.Value, sig)) {
				added++
			}
		}
	}

	contacts, err := c.structured.Extract(page)
	c.logParseErrors(page.URL, err)
	record(contacts, true)

	for _, ex := range c.extractors {
		contacts, err := ex.Extract(page)
		c.logParseErrors(page.URL, err)
		record(contacts, false)
	}
	return added
}

func (c *Chain) logParseErrors(pageURL string, err error) {
	if err == nil {
		return
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		c.logger.Debug("skipped malformed block", zap.String("url", pageURL), zap.Error(err))
		return
	}
	c.logger.Warn("extraction failed", zap.String("url", pageURL), zap.Error(err))
}
