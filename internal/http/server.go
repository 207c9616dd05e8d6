package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/cache"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

const (
	maxBodyBytes       = 1 << 20
	cacheCleanInterval = 10 * time.Minute
)

// Deps are the collaborators the API serves from.
type Deps struct {
	Auth    *auth.Provider
	Ledger  *services.Ledger
	Reports *services.ReportService
	// Ready, when set, backs /readyz.
	Ready func(context.Context) error
}

// Options tune the protective layers around the API.
type Options struct {
	RateLimitPerMinute int
	ReportCacheTTL     time.Duration
	ReportCacheSize    int
	// TrustedProxies are CIDRs allowed to set the client address headers.
	TrustedProxies []string
	Logger         *applog.Logger
}

type Server struct {
	http.Server
	auth    *auth.Provider
	ledger  *services.Ledger
	reports *services.ReportService
	ready   func(context.Context) error

	logger       *applog.Logger
	reportCache  *cache.ReportCache
	cacheManager *cache.Manager
	limiter      *ratelimit.Limiter
	detector     *security.Detector
	tracer       *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if opts.ReportCacheSize <= 0 {
		opts.ReportCacheSize = 256
	}

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", "cidr", cidr, applog.FieldError, err)
		}
	}
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		auth:         deps.Auth,
		ledger:       deps.Ledger,
		reports:      deps.Reports,
		ready:        deps.Ready,
		logger:       logger.WithComponent(applog.ComponentHTTP),
		reportCache:  cache.NewReportCache(opts.ReportCacheSize, opts.ReportCacheTTL),
		cacheManager: cache.NewManager(),
		limiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:     detector,
		tracer:       trace.NewMiddleware(logger, detector.ExtractClientIP),
	}

	s.cacheManager.Register(s.reportCache)
	s.cacheManager.StartCleanup(cacheCleanInterval)

	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/users", s.handleRegister)

	mux.HandleFunc("GET /api/transactions", s.authenticated(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.authenticated(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.authenticated(s.handleGetTransaction))
	mux.HandleFunc("PATCH /api/transactions/{id}", s.authenticated(s.handleEditTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.authenticated(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/reports/categories", s.authenticated(s.handleCategoryReport))
	mux.HandleFunc("GET /api/reports/budget", s.authenticated(s.handleBudget))

	mux.HandleFunc("GET /api/exports/{file}", s.authenticated(s.handleExport))

	var h http.Handler = mux
	h = s.limitAPI(h)
	h = s.flagSuspicious(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)
	return h
}

// limitAPI rate limits /api/ only; probes stay reachable.
func (s *Server) limitAPI(next http.Handler) http.Handler {
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, s.detector.ExtractClientIP(r))
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many requests, please slow down"})
	})(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			limited.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			applog.FromContext(r.Context()).WithComponent(applog.ComponentSecurity).WarnContext(r.Context(),
				"Suspicious request", applog.NewFields().
					WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
					WithClientIP(s.detector.ExtractClientIP(r)).
					ToSlice()...)
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	m := s.tracer.GetMetrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"requests":         m.TotalRequests,
		"avg_response_us":  m.AverageResponseTime,
		"rate_limited":     s.limiter.GetMetrics().TotalHits,
		"cached_reports":   s.reportCache.Size(),
		"suspicious_flags": s.detector.GetMetrics().SuspiciousRequests,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
