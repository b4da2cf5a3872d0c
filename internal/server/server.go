// Package server provides the HTTP API for contact discovery.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jonathan/contact-discovery/internal/db"
	"github.com/jonathan/contact-discovery/internal/server/ratelimit"
	"github.com/jonathan/contact-discovery/internal/types"
)

const shutdownTimeout = 30 * time.Second

// Discoverer runs a contact discovery over seed URLs
type Discoverer interface {
	DiscoverContacts(ctx context.Context, seedURLs []string) ([]types.NormalizedContact, error)
}

// Store persists finished discovery runs
type Store interface {
	SaveDiscovery(ctx context.Context, seedURLs []string, contacts []types.NormalizedContact, status string) (uuid.UUID, error)
	ListDiscoveries(ctx context.Context, limit int) ([]db.DiscoveryRun, error)
	GetDiscovery(ctx context.Context, runID uuid.UUID) (*db.Discovery, error)
}

// Options configures a Server. Store, Logger, RateLimit and Gatherer are optional.
type Options struct {
	Port       int
	Discoverer Discoverer
	Store      Store
	Logger     *zap.Logger
	RateLimit  *ratelimit.Config
	Gatherer   prometheus.Gatherer
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	discoverer  Discoverer
	store       Store
	logger      *zap.Logger
	rateLimiter *ratelimit.Limiter
}

// New creates a new server instance
func New(opts Options) (*Server, error) {
	if opts.Discoverer == nil {
		return nil, errors.New("server: discoverer is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		discoverer:  opts.Discoverer,
		store:       opts.Store,
		logger:      logger,
		rateLimiter: ratelimit.NewLimiter(opts.RateLimit),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /contacts", s.handleDiscover)
	mux.HandleFunc("GET /discoveries", s.handleListDiscoveries)
	mux.HandleFunc("GET /discoveries/{id}", s.handleGetDiscovery)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // render tier can take minutes
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the routed handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	defer s.rateLimiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server: listening", zap.String("addr", s.httpServer.Addr))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server: stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients that exhausted their bucket for the endpoint
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.logger.Warn("server: rate limit exceeded",
				zap.String("client", clientID),
				zap.String("path", r.URL.Path),
				zap.Int("limit", info.Limit),
			)
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("server: encoding response failed", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]any{"success": false, "error": message})
}

// extractClientID returns the IP part of RemoteAddr.
// X-Forwarded-For is ignored since no proxy is trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"success":   false,
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		// round up so clients never retry early
		seconds := int((info.RetryAfter + time.Second - 1) / time.Second)
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
