package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"rampview/internal/backend"
	"rampview/internal/cache"
	"rampview/internal/core"
	"rampview/internal/log"
	"rampview/internal/metrics"
	"rampview/internal/middleware/ratelimit"
	"rampview/internal/middleware/security"
	"rampview/internal/middleware/trace"
)

// Config holds server configuration.
type Config struct {
	Addr         string
	FeeRate      decimal.Decimal
	CacheTTL     time.Duration
	CacheMaxSize int
}

// Server exposes the transaction analytics API. Snapshots come from the
// store; the per-channel cache avoids re-reading the snapshot on every
// request and is cleared when a refresh message arrives.
type Server struct {
	http.Server
	store   backend.TransactionStore
	rules   map[core.Channel]core.StatusRules
	feeRate decimal.Decimal
	logger  *log.Logger

	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware

	txCache      *cache.LRUCache[[]core.Transaction]
	cacheManager *cache.Manager
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, store backend.TransactionStore, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		store: store,
		rules: map[core.Channel]core.StatusRules{
			core.ChannelDeposit:    core.DefaultRules(core.ChannelDeposit),
			core.ChannelWithdrawal: core.DefaultRules(core.ChannelWithdrawal),
		},
		feeRate:      cfg.FeeRate,
		logger:       logger.WithComponent(log.ComponentHTTP),
		rateLimiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:       trace.NewMiddleware(extractClientIP),
		txCache:      cache.NewLRUCache[[]core.Transaction](cfg.CacheMaxSize, cfg.CacheTTL),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.txCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /api/v1/history", s.handleHistory)
	mux.HandleFunc("GET /api/v1/history/{key...}", s.handleDayBucket)
	mux.HandleFunc("GET /api/v1/monthly", s.handleMonthly)
	mux.HandleFunc("GET /api/v1/summary", s.handleSummary)
	mux.HandleFunc("GET /api/v1/stats", s.handleStats)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.rateLimiter.Middleware(extractClientIP, nil)

	handler := s.tracer.Middleware(headers.Middleware(limited(log.Middleware(s.logger)(mux))))

	s.Server = http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// loadTransactions returns the snapshot for a channel, cached.
func (s *Server) loadTransactions(ctx context.Context, channel core.Channel) ([]core.Transaction, error) {
	if txs, ok := s.txCache.Get(string(channel)); ok {
		metrics.CacheHits.WithLabelValues("hit").Inc()
		return txs, nil
	}
	metrics.CacheHits.WithLabelValues("miss").Inc()

	txs, err := s.store.ListTransactions(ctx, channel)
	if err != nil {
		return nil, err
	}
	s.txCache.Set(string(channel), txs)
	return txs, nil
}

// InvalidateAll drops all cached snapshots. Called when a refresh
// message announces new data.
func (s *Server) InvalidateAll() {
	s.txCache.Clear()
}

// rulesFor returns the status vocabulary for a channel.
func (s *Server) rulesFor(channel core.Channel) core.StatusRules {
	if rules, ok := s.rules[channel]; ok {
		return rules
	}
	return core.DefaultRules(channel)
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// extractClientIP resolves the client address, honoring proxy headers.
func extractClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleReady reports readiness plus a few request-level diagnostics.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	m := s.tracer.GetMetrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":               "ready",
		"total_requests":       m.TotalRequests,
		"avg_response_time_us": m.AverageResponseTime,
		"rate_limit_clients":   s.rateLimiter.ActiveClients(),
	})
}
