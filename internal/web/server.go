// Package web provides the JSON HTTP API for vendor tiers, field access and
// spreadsheet import/export.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/VendorHub/internal/core"
	"github.com/JonMunkholm/VendorHub/internal/metrics"
	"github.com/JonMunkholm/VendorHub/internal/web/middleware"
)

// Options configures a Server.
type Options struct {
	Auth           middleware.AuthConfig
	TrustedProxies []string

	RequestTimeout time.Duration // per-request middleware timeout (default: 3m)
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration

	MaxUploadSize int64 // multipart body limit (default: core.DefaultMaxFileSize)
	DryRunDefault bool  // imports preview unless dryRun=false is passed

	RateLimit int // requests per minute per IP; 0 disables

	Metrics *metrics.Metrics            // optional; serves /metrics when set
	Health  func(context.Context) error // optional readiness check for /healthz
}

// Server is the HTTP server for the VendorHub API.
type Server struct {
	service  *core.Service
	router   *chi.Mux
	server   *http.Server
	opts     Options
	limiter  *rateLimiter
	validate *validator.Validate
}

// NewServer wires the router for service. Zero timeouts and sizes take the
// package defaults.
func NewServer(service *core.Service, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 3 * time.Minute
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = core.DefaultMaxFileSize
	}
	s := &Server{
		service:  service,
		router:   chi.NewRouter(),
		opts:     opts,
		validate: validator.New(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware installs the chain shared by every route. The real IP is
// resolved before logging and rate limiting so both see the client address.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.opts.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(s.opts.RequestTimeout))
	s.router.Use(securityHeaders)

	if s.opts.RateLimit > 0 {
		s.limiter = newRateLimiter(s.opts.RateLimit, time.Minute)
		s.router.Use(s.limiter.middleware)
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.opts.Metrics != nil {
		s.router.Handle("/metrics", s.opts.Metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(s.opts.Auth))

		// Field registry
		r.Get("/fields", s.handleFields)

		// Vendor-scoped routes: the owning vendor or an admin
		r.Route("/vendors/{id}", func(r chi.Router) {
			r.Use(middleware.RequireVendorAccess("id"))

			r.Get("/", s.handleGetVendor)
			r.Get("/template", s.handleVendorTemplate)
			r.Get("/export", s.handleExportVendor)
			r.Post("/import", s.handleImport)
			r.Post("/import/preview", s.handleImportPreview)
			r.Get("/import-history", s.handleImportHistory)

			r.Post("/tier-upgrade-requests", s.handleCreateTierRequest)
			r.Delete("/tier-upgrade-requests/{requestId}", s.handleCancelTierRequest)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Get("/tier-upgrade-requests", s.handleListTierRequests)
			r.Put("/tier-upgrade-requests/{id}/approve", s.handleApproveTierRequest)
			r.Put("/tier-upgrade-requests/{id}/reject", s.handleRejectTierRequest)
			r.Get("/vendors", s.handleListVendors)
			r.Put("/vendors/{id}/tier", s.handleSetVendorTier)
			r.Post("/vendors/export", s.handleExportVendors)
			r.Get("/templates/{tier}", s.handleAdminTemplate)
			r.Get("/audit-log", s.handleAuditLog)
			r.Get("/imports/status", s.handleImportStatus)
		})
	})
}

// Start serves until Shutdown; it returns http.ErrServerClosed after a clean stop.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown stops the rate limiter sweep and drains open connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router exposes the handler tree for httptest.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders marks every response as uncacheable, unframeable JSON.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}

// rateLimiter implements a fixed-window limiter per client IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
	now      func() time.Time
	done     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter allows rate requests per IP in each window and sweeps idle
// visitors in the background until stop.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every minute until stop is called.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if rl.now().Sub(v.lastReset) > rl.window*2 {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[ip]
	if !exists || now.Sub(v.lastReset) > rl.window {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastReset: now}
		return true
	}

	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by IP. It runs
// after TrustedRealIP so RemoteAddr is already the client address.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if v := core.ClientFromContext(r.Context()).IP; v != "" {
			ip = v
		}

		if !rl.allow(ip) {
			w.Header().Set("Retry-After", "60")
			respondError(w, r, errRateLimited, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
