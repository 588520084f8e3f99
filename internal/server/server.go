// Package server serves the viewer page, its assets and a small JSON API
// over chi.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/microcosm-cc/bluemonday"

	"github.com/gogpu/modelo/capability"
	"github.com/gogpu/modelo/internal/config"
	"github.com/gogpu/modelo/internal/prefs"
)

//go:embed web
var webFS embed.FS

var pageTemplate = template.Must(template.ParseFS(webFS, "web/index.html.tmpl"))

// Server is the modelo HTTP server.
type Server struct {
	cfg      *config.Config
	desc     capability.Descriptor
	store    *prefs.Store
	logger   *slog.Logger
	sanitize *bluemonday.Policy
	router   *chi.Mux
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore enables the preference endpoints.
func WithStore(st *prefs.Store) Option {
	return func(s *Server) { s.store = st }
}

// New builds a server for the detected capability desc.
func New(cfg *config.Config, desc capability.Descriptor, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{
		cfg:      cfg,
		desc:     desc,
		logger:   slog.Default(),
		sanitize: bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/sw.js", s.handleServiceWorker)
	r.Get("/modelo.js", s.handleScript)

	r.Route("/modelo/assets", func(r chi.Router) {
		r.Get("/models.json", s.handleManifest)
		r.Get("/{name}", s.handleAsset)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/capabilities", s.handleCapabilities)
		r.Get("/quality", s.handleQuality)
		r.Get("/status.png", s.handleStatusCard)
		r.Post("/controls", s.handleControls)
		r.Post("/prefs/theme/toggle", s.handleThemeToggle)
		r.Get("/prefs/{key}", s.handleGetPref)
		r.Put("/prefs/{key}", s.handlePutPref)
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on the configured address until ctx is done, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server: listening", "addr", srv.Addr, "tier", s.desc.Tier)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
