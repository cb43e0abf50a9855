package web

import (
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/justinas/nosurf"

	"github.com/acgh213/fluentmd/internal/config"
	"github.com/acgh213/fluentmd/internal/fluent"
	"github.com/acgh213/fluentmd/internal/metrics"
	"github.com/acgh213/fluentmd/internal/ratelimit"
)

//go:embed templates
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

type Server struct {
	cfg       *config.Config
	templates *template.Template
	limiter   *ratelimit.Limiter
	metrics   *metrics.Recorder
}

// NewRouter builds the HTTP service. rec may be nil to disable metrics.
func NewRouter(cfg *config.Config, rec *metrics.Recorder) (http.Handler, error) {
	s := &Server{
		cfg:     cfg,
		limiter: ratelimit.New(cfg.RateLimitRequests, cfg.RateLimitWindow),
		metrics: rec,
	}

	if err := s.loadTemplates(); err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// CSRF protection on the form routes; the JSON API is exempt.
	r.Use(csrfProtect(cfg.IsDevelopment(), "/api/render"))

	staticContent, _ := fs.Sub(staticFS, "static")
	r.Get("/static/fluent.css", handleStylesheet)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Get("/", s.handleIndex)

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.Middleware)

		r.Post("/preview", s.handlePreview)
		r.Post("/api/render", s.handleAPIRender)
	})

	return r, nil
}

func (s *Server) loadTemplates() error {
	tmpl, err := template.New("").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return err
	}
	s.templates = tmpl
	return nil
}

// csrfProtect wraps nosurf for CSRF protection.
func csrfProtect(isDev bool, exempt ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		csrf := nosurf.New(next)
		csrf.SetBaseCookie(http.Cookie{
			Name:     "csrf_token",
			Path:     "/",
			HttpOnly: true,
			Secure:   !isDev,
			SameSite: http.SameSiteLaxMode,
		})
		// Detect TLS from the actual request (X-Forwarded-Proto or r.TLS)
		csrf.SetIsTLSFunc(func(r *http.Request) bool {
			if r.TLS != nil {
				return true
			}
			return r.Header.Get("X-Forwarded-Proto") == "https"
		})
		for _, path := range exempt {
			csrf.ExemptPath(path)
		}
		csrf.SetFailureHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slog.Warn("CSRF validation failed",
				"method", r.Method,
				"path", r.URL.Path,
				"reason", nosurf.Reason(r),
				"ip", r.RemoteAddr,
			)
			http.Error(w, "Forbidden - invalid CSRF token", http.StatusForbidden)
		}))
		return csrf
	}
}

func handleStylesheet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write([]byte(fluent.Stylesheet))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
