// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/bureau-foundation/being/lib/clock"
)

const (
	defaultTimeout        = 10 * time.Second
	defaultIdleTimeout    = 60 * time.Second
	defaultMaxHeaderBytes = 16 << 10
)

// HTTPServer serves one handler on a TCP listener. Serve blocks until
// its context is cancelled and in-flight requests drain.
type HTTPServer struct {
	config HTTPServerConfig
	ready  chan struct{}

	// addr is valid once ready is closed.
	addr net.Addr
}

// HTTPServerConfig configures an HTTPServer.
type HTTPServerConfig struct {
	// Address is the TCP listen address, e.g. "127.0.0.1:8470".
	Address string

	Handler http.Handler

	// ReadTimeout, WriteTimeout and ShutdownTimeout default to 10
	// seconds. IdleTimeout defaults to 60 seconds.
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// MaxHeaderBytes defaults to 16 KiB.
	MaxHeaderBytes int

	// Clock times requests for the access log. Nil means the real
	// clock.
	Clock clock.Clock

	Logger *slog.Logger
}

// NewHTTPServer validates config and fills in defaults. Address,
// Handler and Logger are required.
func NewHTTPServer(config HTTPServerConfig) (*HTTPServer, error) {
	var problems []error
	if config.Address == "" {
		problems = append(problems, errors.New("address is required"))
	}
	if config.Handler == nil {
		problems = append(problems, errors.New("handler is required"))
	}
	if config.Logger == nil {
		problems = append(problems, errors.New("logger is required"))
	}
	if err := errors.Join(problems...); err != nil {
		return nil, fmt.Errorf("service: invalid HTTP server config: %w", err)
	}

	config.ReadTimeout = orDefault(config.ReadTimeout, defaultTimeout)
	config.WriteTimeout = orDefault(config.WriteTimeout, defaultTimeout)
	config.IdleTimeout = orDefault(config.IdleTimeout, defaultIdleTimeout)
	config.ShutdownTimeout = orDefault(config.ShutdownTimeout, defaultTimeout)
	if config.MaxHeaderBytes <= 0 {
		config.MaxHeaderBytes = defaultMaxHeaderBytes
	}
	config.Clock = clock.OrReal(config.Clock)

	return &HTTPServer{config: config, ready: make(chan struct{})}, nil
}

func orDefault(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}

// Ready is closed once the listener is bound.
func (s *HTTPServer) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address. Only valid after Ready is closed.
func (s *HTTPServer) Addr() net.Addr {
	return s.addr
}

// Serve accepts connections until ctx is cancelled, then stops
// accepting and waits up to ShutdownTimeout for active requests.
func (s *HTTPServer) Serve(ctx context.Context) error {
	logger := s.config.Logger

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("service: listening on %s: %w", s.config.Address, err)
	}
	s.addr = listener.Addr()
	close(s.ready)

	server := &http.Server{
		Handler:           s.accessLog(s.config.Handler),
		ReadHeaderTimeout: s.config.ReadTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
		MaxHeaderBytes:    s.config.MaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	logger.Info("http server listening", "address", s.addr.String())

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- server.Serve(listener)
	}()

	select {
	case err := <-serveDone:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("service: serving %s: %w", s.addr, err)
	case <-ctx.Done():
	}

	logger.Info("http server shutting down", "drain_timeout", s.config.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("service: http server shutdown: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(data []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(data)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// accessLog logs one debug record per request. Request bodies carry key
// material and are never logged.
func (s *HTTPServer) accessLog(next http.Handler) http.Handler {
	logger := s.config.Logger
	now := s.config.Clock.Now
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		started := now()
		recorder := &statusRecorder{ResponseWriter: writer}
		next.ServeHTTP(recorder, request)
		if recorder.status == 0 {
			recorder.status = http.StatusOK
		}
		logger.LogAttrs(request.Context(), slog.LevelDebug, "http request",
			slog.String("method", request.Method),
			slog.String("path", request.URL.Path),
			slog.Int("status", recorder.status),
			slog.Duration("duration", now().Sub(started)),
			slog.String("remote_addr", request.RemoteAddr),
		)
	})
}
