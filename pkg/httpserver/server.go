package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrymomot/leasekit/pkg/logger"
)

type config struct {
	addr              string
	readTimeout       time.Duration
	readHeaderTimeout time.Duration
	writeTimeout      time.Duration
	idleTimeout       time.Duration
	shutdownTimeout   time.Duration
	logger            *slog.Logger
	startHooks        []func(addr string, log *slog.Logger)
	stopHooks         []func(log *slog.Logger)
}

// Server runs an http.Server until its context is cancelled or the process
// receives SIGINT/SIGTERM, then drains in-flight requests.
type Server struct {
	cfg      *config
	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
	once     sync.Once
}

// New returns a configured Server.
func New(opts ...Option) *Server {
	cfg := &config{
		addr:              ":8080",
		readHeaderTimeout: 10 * time.Second,
		shutdownTimeout:   5 * time.Second,
		logger:            logger.Noop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.logger = cfg.logger.With(logger.Component("httpserver"))
	return &Server{cfg: cfg}
}

// Addr returns the bound address once Run is listening, or "" before that.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run listens and serves handler, blocking until shutdown completes.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	if handler == nil {
		handler = http.NotFoundHandler()
	}

	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, ErrAlreadyRunning)
	}

	ln, err := net.Listen("tcp", s.cfg.addr)
	if err != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       s.cfg.readTimeout,
		ReadHeaderTimeout: s.cfg.readHeaderTimeout,
		WriteTimeout:      s.cfg.writeTimeout,
		IdleTimeout:       s.cfg.idleTimeout,
		ErrorLog:          slog.NewLogLogger(s.cfg.logger.Handler(), slog.LevelWarn),
	}
	s.srv = srv
	s.listener = ln
	s.mu.Unlock()

	addr := ln.Addr().String()
	s.cfg.logger.InfoContext(ctx, "server started", slog.String("addr", addr))
	for _, h := range s.cfg.startHooks {
		h(addr, s.cfg.logger)
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	var runErr error
	select {
	case <-sigCtx.Done():
		if err := s.Shutdown(context.WithoutCancel(ctx)); err != nil {
			s.cfg.logger.ErrorContext(ctx, "graceful shutdown failed", logger.Error(err))
		}
		runErr = <-errCh
	case runErr = <-errCh:
	}

	if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
		return errors.Join(ErrStart, runErr)
	}
	return nil
}

// Shutdown stops accepting connections and waits up to the shutdown timeout
// for active requests. Repeated calls are no-ops.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		srv := s.srv
		s.mu.Unlock()
		if srv == nil {
			return
		}

		ctx, cancel := context.WithTimeout(ctx, s.cfg.shutdownTimeout)
		defer cancel()

		err = srv.Shutdown(ctx)
		s.cfg.logger.InfoContext(ctx, "server stopped")
		for _, h := range s.cfg.stopHooks {
			h(s.cfg.logger)
		}
	})

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Join(ErrShutdown, err)
	}
	return nil
}
