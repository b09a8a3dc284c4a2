// Package http serves the rewards dashboard and its JSON API.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"rewards/internal/cache"
	"rewards/internal/log"
	"rewards/internal/middleware/ratelimit"
	"rewards/internal/middleware/security"
	"rewards/internal/middleware/trace"
	"rewards/internal/services"
	"rewards/internal/sources"
	appweb "rewards/web"
)

// Options tune a Server. Zero values get defaults.
type Options struct {
	DefaultRangeMonths int
	RateLimit          ratelimit.Config
	// Provider, when set, has its snapshot cache purged periodically and
	// reported on /metrics.
	Provider *sources.CachedProvider
	Now      func() time.Time
}

type Server struct {
	http.Server
	templates *template.Template
	reports   *services.ReportService
	provider  *sources.CachedProvider
	logger    *log.Logger
	events    *log.StructuredLogger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	caches   *cache.Manager

	rangeMonths int
	now         func() time.Time
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, reports *services.ReportService, opts Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	if opts.DefaultRangeMonths <= 0 {
		opts.DefaultRangeMonths = 3
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 16,
		},
		reports:     reports,
		provider:    opts.Provider,
		logger:      logger,
		events:      log.NewStructuredLogger(logger),
		limiter:     ratelimit.NewLimiter(opts.RateLimit),
		detector:    security.NewDetector(logger),
		caches:      cache.NewManager(logger),
		rangeMonths: opts.DefaultRangeMonths,
		now:         opts.Now,
		started:     time.Now(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger)

	if s.provider != nil && s.provider.Cache() != nil {
		s.caches.Register(s.provider.Cache())
	}
	s.caches.StartCleanup(10 * time.Minute)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Error("Failed parsing templates", log.FieldError, err, log.FieldComponent, log.ComponentTemplate)
	} else {
		s.templates = t
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	// UI partials
	mux.Handle("/ui/report", s.limited(s.handleReportPartial))
	mux.Handle("/ui/retry", s.limited(s.handleRetry))

	// JSON API
	mux.Handle("/api/report", s.limited(s.handleAPIReport))
	mux.Handle("/api/report/latest", s.limited(s.handleAPILatest))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Handler = s.tracer.Middleware(
		s.recoverer(
			s.detector.Middleware(
				headers.Middleware(mux))))

	return s
}

func (s *Server) limited(h http.HandlerFunc) http.Handler {
	return s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)(h)
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path)
	if isAPI(r) {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
		return
	}
	ErrorResponse(http.StatusTooManyRequests, "Too many requests. Please try again in a minute.").Write(w)
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
