// Package server serves the landing page, the web chat and the proxy API in
// front of the LATAM backend.
//
// Routes:
//   - GET  /                 landing page
//   - GET  /chat             web chat
//   - GET  /static/...       page assets
//   - POST /api/chat         chat proxy, backend JSON forwarded as is
//   - POST /api/chat/stream  chat proxy revealed as server-sent events
//   - GET  /api/sources      sources listing proxy
//   - GET  /healthz          liveness
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/buker/latamai/internal/chat"
	"github.com/buker/latamai/internal/stream"
)

// DefaultAddr is where the server listens when no address is configured.
const DefaultAddr = ":3000"

const shutdownTimeout = 10 * time.Second

// Backend is the part of the backend client the proxy needs.
type Backend interface {
	ChatRaw(ctx context.Context, req chat.Request) (json.RawMessage, error)
	SourcesRaw(ctx context.Context) (json.RawMessage, error)
}

// Options configures a Server.
type Options struct {
	Addr    string
	Backend Backend
	Logger  *log.Logger
	// RateLimit is requests per second per client; zero disables limiting.
	RateLimit float64
	RateBurst int
	// Clock paces the streamed reveal. Nil means wall time.
	Clock   stream.Clock
	Version string
}

// Server is the HTTP front end.
type Server struct {
	addr    string
	backend Backend
	logger  *log.Logger
	limiter *RateLimiter
	clock   stream.Clock
	version string

	router *http.ServeMux
	pages  *template.Template
}

// New creates a Server. The backend is required.
func New(opts Options) (*Server, error) {
	if opts.Backend == nil {
		return nil, errors.New("server: backend is required")
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	s := &Server{
		addr:    opts.Addr,
		backend: opts.Backend,
		logger:  opts.Logger,
		limiter: NewRateLimiter(opts.RateLimit, opts.RateBurst),
		clock:   opts.Clock,
		version: opts.Version,
		router:  http.NewServeMux(),
		pages:   pages,
	}
	if s.addr == "" {
		s.addr = DefaultAddr
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.clock == nil {
		s.clock = stream.RealClock{}
	}

	s.setupRoutes()
	return s, nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.addr }

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /{$}", s.handleLanding)
	s.router.HandleFunc("GET /chat", s.handleChatPage)
	s.router.Handle("GET /static/", staticHandler())

	s.router.HandleFunc("POST /api/chat", s.handleChat)
	s.router.HandleFunc("POST /api/chat/stream", s.handleChatStream)
	s.router.HandleFunc("GET /api/sources", s.handleSources)

	s.router.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(s.logger),
		RequestIDMiddleware(),
		LoggingMiddleware(s.logger),
		SecurityHeadersMiddleware(),
		RateLimitMiddleware(s.limiter, s.logger),
	)(s.router)
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		// Requests outlive ctx; Shutdown drains them.
		BaseContext: func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", "addr", ln.Addr().String(), "version", s.version)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
