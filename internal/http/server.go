// Package http serves the JSON REST API under /api/v1.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"centavo/internal/log"
	"centavo/internal/metrics"
	"centavo/internal/middleware/ratelimit"
	"centavo/internal/middleware/security"
	"centavo/internal/middleware/trace"
	"centavo/internal/services"
)

const apiPrefix = "/api/v1"

// Config carries the HTTP settings from the process configuration.
type Config struct {
	Addr               string
	CORSOrigins        []string
	RateLimitPerMinute int
	TrustedProxies     []string

	// WebhookPath mounts Webhook when both are set.
	WebhookPath string
	Webhook     http.Handler
}

// Services are the domain operations behind the handlers.
type Services struct {
	Users        *services.UserService
	Categories   *services.CategoryService
	Transactions *services.TransactionService
	Recurring    *services.RecurringService
	Summary      *services.SummaryService
}

type Server struct {
	http.Server
	svc         Services
	logger      *log.Logger
	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	started     time.Time
	now         func() time.Time

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, svc Services, logger *log.Logger) (*Server, error) {
	logger = logger.WithComponent(log.ComponentHTTP)
	detector, err := security.NewDetector(logger, cfg.TrustedProxies...)
	if err != nil {
		return nil, err
	}

	s := &Server{
		svc:         svc,
		logger:      logger,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimitPerMinute),
		detector:    detector,
		started:     time.Now(),
		now:         time.Now,
	}

	mux := http.NewServeMux()
	s.routes(mux, cfg)

	s.Server = http.Server{
		Addr: cfg.Addr,
		Handler: chain(mux,
			trace.NewMiddleware(logger, detector.ExtractClientIP).Middleware,
			detector.Middleware,
			security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
			security.CORS(cfg.CORSOrigins),
		),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux, cfg Config) {
	auth := func(h http.HandlerFunc) http.HandlerFunc { return requireAuth(s.svc.Users, h) }
	limited := s.rateLimiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldPath, r.URL.Path)
		writeErrorMessage(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
	})

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())
	if cfg.Webhook != nil && cfg.WebhookPath != "" {
		mux.Handle("POST "+cfg.WebhookPath, cfg.Webhook)
	}

	// Auth endpoints share one per-address budget.
	authMux := http.NewServeMux()
	authMux.HandleFunc("POST "+apiPrefix+"/auth/register", s.handleRegister)
	authMux.HandleFunc("POST "+apiPrefix+"/auth/login", s.handleLogin)
	authMux.HandleFunc("POST "+apiPrefix+"/auth/refresh", s.handleRefresh)
	authMux.HandleFunc("POST "+apiPrefix+"/auth/logout", auth(s.handleLogout))
	authMux.HandleFunc("GET "+apiPrefix+"/auth/me", auth(s.handleMe))
	authMux.HandleFunc("PATCH "+apiPrefix+"/auth/me", auth(s.handleUpdateMe))
	mux.Handle(apiPrefix+"/auth/", limited(authMux))

	mux.HandleFunc("POST "+apiPrefix+"/users/link/code", auth(s.handleLinkCode))

	mux.HandleFunc("GET "+apiPrefix+"/categories", auth(s.handleListCategories))
	mux.HandleFunc("POST "+apiPrefix+"/categories", auth(s.handleCreateCategory))
	mux.HandleFunc("GET "+apiPrefix+"/categories/{id}", auth(s.handleGetCategory))
	mux.HandleFunc("PUT "+apiPrefix+"/categories/{id}", auth(s.handleUpdateCategory))
	mux.HandleFunc("DELETE "+apiPrefix+"/categories/{id}", auth(s.handleDeleteCategory))

	mux.HandleFunc("GET "+apiPrefix+"/transactions", auth(s.handleListTransactions))
	mux.HandleFunc("POST "+apiPrefix+"/transactions", auth(s.handleCreateTransaction))
	mux.HandleFunc("GET "+apiPrefix+"/transactions/{id}", auth(s.handleGetTransaction))
	mux.HandleFunc("PUT "+apiPrefix+"/transactions/{id}", auth(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE "+apiPrefix+"/transactions/{id}", auth(s.handleDeleteTransaction))

	mux.HandleFunc("GET "+apiPrefix+"/recurring-transactions", auth(s.handleListRecurring))
	mux.HandleFunc("POST "+apiPrefix+"/recurring-transactions", auth(s.handleCreateRecurring))
	mux.HandleFunc("GET "+apiPrefix+"/recurring-transactions/{id}", auth(s.handleGetRecurring))
	mux.HandleFunc("PUT "+apiPrefix+"/recurring-transactions/{id}", auth(s.handleUpdateRecurring))
	mux.HandleFunc("DELETE "+apiPrefix+"/recurring-transactions/{id}", auth(s.handleDeleteRecurring))
	mux.HandleFunc("POST "+apiPrefix+"/recurring-transactions/{id}/pay", auth(s.handlePayRecurring))

	mux.HandleFunc("GET "+apiPrefix+"/reports/monthly", auth(s.handleMonthlyReport))
	mux.HandleFunc("GET "+apiPrefix+"/reports/monthly/chart.png", auth(s.handleMonthlyChart))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeErrorMessage(w, http.StatusNotFound, "not found")
	})
}

// RateLimiter exposes the auth limiter so its idle clients can be swept.
func (s *Server) RateLimiter() *ratelimit.Limiter {
	return s.rateLimiter
}

// Shutdown drains the server. Later calls are no-ops.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
	})
	return err
}
