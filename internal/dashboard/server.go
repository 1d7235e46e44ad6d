// Package dashboard serves the studydash pages, the live channel and the
// static report.
package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/drew/studydash/assets"
	"github.com/drew/studydash/internal/charts"
	"github.com/drew/studydash/internal/config"
	"github.com/drew/studydash/internal/logging"
	"github.com/drew/studydash/internal/stats"
)

// Backend is everything the pages read from the statistics backend
type Backend interface {
	charts.Source
	TableSource(ctx context.Context, path string) ([]byte, error)
}

// Options configures a Server
type Options struct {
	// Backend overrides the HTTP client built from the config. A server
	// given a Backend keeps it across config reloads.
	Backend Backend
	Logger  *slog.Logger
	// Now is the clock of the live timer
	Now func() time.Time
}

// Server is the dashboard HTTP server. Its config can be swapped while it
// runs.
type Server struct {
	logger      *slog.Logger
	now         func() time.Time
	pages       map[string]*template.Template
	static      http.Handler
	upgrader    websocket.Upgrader
	ownsBackend bool

	mu      sync.RWMutex
	cfg     config.Config
	backend Backend
}

// NewServer returns a server for cfg
func NewServer(cfg config.Config, opts Options) (*Server, error) {
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(assets.Static, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	s := &Server{
		logger: opts.Logger,
		now:    opts.Now,
		pages:  pages,
		static: http.StripPrefix("/static/", http.FileServerFS(static)),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.Backend == nil {
		s.ownsBackend = true
	}
	s.backend = opts.Backend
	s.SetConfig(cfg)
	return s, nil
}

func newClient(cfg config.Config, logger *slog.Logger) *stats.Client {
	return stats.NewClient(cfg.Server.Backend, &http.Client{Timeout: cfg.RequestTimeout()}, logger)
}

// SetConfig replaces the config used by every later request. Requests in
// flight keep the config they started with. The listen address only takes
// effect on restart.
func (s *Server) SetConfig(cfg config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.Server.Listen != "" && s.cfg.Server.Listen != cfg.Server.Listen {
		s.logger.Warn("listen address changed, restart to apply", "old", s.cfg.Server.Listen, "new", cfg.Server.Listen)
	}
	s.cfg = cfg
	if s.ownsBackend {
		s.backend = newClient(cfg, s.logger)
	}
}

// Config returns the current config
func (s *Server) Config() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Server) current() (config.Config, Backend) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.backend
}

// Handler returns the routed handler wrapped in request logging
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /meals", s.handleCharts("Meals", charts.MealsPage))
	mux.HandleFunc("GET /messages", s.handleCharts("Messages", charts.MessagesPage))
	mux.HandleFunc("GET /users", s.handleUsers)
	mux.HandleFunc("GET /tables/{name}", s.handleTable)
	mux.HandleFunc("GET /live", s.handleLive)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /static/", s.static)
	return s.withRequestID(mux)
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	cfg := s.Config()
	srv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", "addr", cfg.Server.Listen, "backend", cfg.Server.Backend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("dashboard stopped")
	return nil
}

// render executes a page into a buffer so a template error never leaves a
// half-written response
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := s.pages[name].Execute(&buf, data); err != nil {
		loggerFrom(r.Context(), s.logger).Error("template execution failed", "page", name, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}
