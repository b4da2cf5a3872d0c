package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jonathan/contact-discovery/internal/config"
	"github.com/jonathan/contact-discovery/internal/db"
	"github.com/jonathan/contact-discovery/internal/discovery"
	"github.com/jonathan/contact-discovery/internal/fetch"
	"github.com/jonathan/contact-discovery/internal/metrics"
)

type appOptions struct {
	NoRender     bool
	UseStore     bool // connect when database_url is set
	RequireStore bool // fail when database_url is not set
	OnProgress   discovery.ProgressCallback
}

// app holds the collaborators one command needs, built from configuration
type app struct {
	store    *db.DB
	pipeline *discovery.Pipeline
	registry *prometheus.Registry
	logger   *zap.Logger
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts appOptions) (*app, error) {
	if opts.RequireStore && cfg.DatabaseURL == "" {
		return nil, errors.New("database_url is required to save discoveries")
	}

	a := &app{registry: prometheus.NewRegistry(), logger: logger}

	if cfg.DatabaseURL != "" && (opts.UseStore || opts.RequireStore || cfg.Cache.Enabled) {
		store, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, err
		}
		a.store = store
	}

	var strategy fetch.Strategy = fetch.NewHTTPFetcher(cfg.FetchOptions())
	if cfg.Cache.Enabled {
		if a.store != nil {
			strategy = fetch.NewCachedFetcher(strategy, a.store, &fetch.CachedFetcherConfig{
				CacheTTL: cfg.Cache.TTL,
				Logger:   logger,
			})
		} else {
			logger.Warn("cache.enabled is set without database_url, page cache disabled")
		}
	}

	var opener fetch.SessionOpener
	if cfg.Render.Enabled && !opts.NoRender {
		opener = fetch.NewChromeOpener(cfg.BrowserOptions())
	}

	recorder, err := metrics.New(a.registry)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	a.pipeline = discovery.New(strategy, opener, &discovery.Options{
		Concurrency:   cfg.Fetch.Concurrency,
		MaxNavLinks:   cfg.Pipeline.MaxNavLinks,
		RenderEnabled: opener != nil,
		Logger:        logger,
		Metrics:       recorder,
		OnProgress:    opts.OnProgress,
	})
	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
}
