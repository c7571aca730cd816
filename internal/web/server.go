// Package web serves the operator page and its JSON API.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/casemaster/internal/config"
	"github.com/JonMunkholm/casemaster/internal/ui"
	mw "github.com/JonMunkholm/casemaster/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Caller runs fn on the goroutine that owns the machine and waits for it.
// *task.Loop satisfies it.
type Caller interface {
	Call(ctx context.Context, fn func()) error
}

// Server is the HTTP server for the operator page.
type Server struct {
	cfg     *config.Config
	loop    Caller
	machine *ui.Machine
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server driving machine through loop.
func NewServer(cfg *config.Config, loop Caller, machine *ui.Machine) *Server {
	s := &Server{
		cfg:     cfg,
		loop:    loop,
		machine: machine,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	// The event stream stays open; it is outside the request timeout.
	s.router.Get("/events", s.handleEvents)

	s.router.Group(func(r chi.Router) {
		if s.cfg.Server.RequestTimeout > 0 {
			r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
		}

		r.Get("/", s.handlePage)
		r.Post("/select", s.handleSelect)
		r.Post("/submit", s.handleSubmit)
		r.Post("/report", s.handleReport)

		r.Route("/api", func(r chi.Router) {
			r.Use(mw.APIKeyAuth(s.cfg.Security))

			r.Get("/state", s.handleState)
			r.Post("/select", s.handleSelect)
			r.Post("/submit", s.handleSubmit)
			r.Post("/report", s.handleReport)
		})
	})
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		// The page carries its script and styles inline.
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
