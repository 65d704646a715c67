package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"thrips/internal/core"
	applog "thrips/internal/log"
	"thrips/internal/middleware/security"
	"thrips/internal/middleware/trace"
	appweb "thrips/web"
)

// Service is what the handlers need from the application layer.
// *services.ThripsService implements it.
type Service interface {
	Record(ctx context.Context, n core.NewCountRecord) (core.CountRecord, error)
	Aggregate(ctx context.Context, period core.Period) ([]core.Bucket, error)
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server
	svc            Service
	templates      *template.Template
	logger         *applog.Logger
	allowedOrigins []string
}

// Options tunes the underlying http.Server.
type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Logger       *applog.Logger

	// AllowedOrigins enables CORS on /thrips for these origins.
	AllowedOrigins []string
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, svc Service, opts Options) *Server {
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.Config{Handler: slog.Default().Handler(), Component: applog.ComponentHTTP})
	}

	s := &Server{
		svc:            svc,
		logger:         logger.WithComponent(applog.ComponentHTTP),
		allowedOrigins: opts.AllowedOrigins,
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(trace.NewMiddleware(s.logger).Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(3600)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Static assets unavailable", applog.FieldError, err)
	}

	r.Get("/", s.handleIndex)
	r.Route("/thrips", func(r chi.Router) {
		if len(s.allowedOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: s.allowedOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
				AllowedHeaders: []string{"Content-Type", trace.RequestIDHeader},
				ExposedHeaders: []string{trace.RequestIDHeader, "Content-Disposition"},
				MaxAge:         300,
			}))
		}
		r.Get("/", s.handleListThrips)
		r.Post("/", s.handleCreateThrips)
		r.Get("/chart", s.handleChart)
		r.Get("/export", s.handleExport)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		MethodNotAllowedError("GET, POST").Write(w)
	})
	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports whether the store is reachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := s.svc.Ping(ctx); err != nil {
		applog.FromContext(r.Context()).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
