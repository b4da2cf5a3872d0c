package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/contact-discovery/internal/config"
	"github.com/jonathan/contact-discovery/internal/server"
	"github.com/jonathan/contact-discovery/internal/server/ratelimit"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: "Start an HTTP server exposing POST /contacts, stored discoveries when database_url is set, " +
		"/health and /metrics.",
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger, appOptions{UseStore: true})
	if err != nil {
		return err
	}
	defer a.close()

	// server.Store must stay a nil interface when there is no database
	var store server.Store
	if a.store != nil {
		store = a.store
		if cfg.Cache.Enabled {
			if n, err := a.store.DeleteExpiredPages(ctx); err != nil {
				logger.Warn("serve: expired page cleanup failed", zap.Error(err))
			} else {
				logger.Info("serve: removed expired cached pages", zap.Int64("count", n))
			}
		}
	} else {
		logger.Info("serve: no database_url, discovery history endpoints disabled")
	}

	srv, err := server.New(server.Options{
		Port:       cfg.Server.Port,
		Discoverer: a.pipeline,
		Store:      store,
		Logger:     logger,
		RateLimit:  rateLimitConfig(cfg.Server),
		Gatherer:   a.registry,
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

// rateLimitConfig builds the limiter config from server settings
func rateLimitConfig(sc config.ServerConfig) *ratelimit.Config {
	rl := ratelimit.DefaultConfig(sc.RateLimit, sc.RateBurst)
	rl.Whitelist = ratelimit.ParseIPList(sc.Whitelist)
	rl.Blacklist = ratelimit.ParseIPList(sc.Blacklist)
	return rl
}
