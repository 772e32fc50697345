// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
)

// lockedBuffer lets the server goroutines and the test share a log sink.
type lockedBuffer struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.String()
}

func TestHTTPServer_ServeAndDrain(t *testing.T) {
	var logs lockedBuffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(writer http.ResponseWriter, _ *http.Request) {
		io.WriteString(writer, "ok")
	})

	server, err := NewHTTPServer(HTTPServerConfig{
		Address:         "127.0.0.1:0",
		Handler:         mux,
		ShutdownTimeout: 2 * time.Second,
		Logger:          logger,
	})
	if err != nil {
		t.Fatalf("NewHTTPServer: %v", err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	serveDone := make(chan error, 1)
	go func() { serveDone <- server.Serve(ctx) }()

	select {
	case <-server.Ready():
	case <-t.Context().Done():
		t.Fatal("server never became ready")
	}

	base := "http://" + server.Addr().String()
	response, err := http.Get(base + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	body, _ := io.ReadAll(response.Body)
	response.Body.Close()
	if response.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("GET /healthz = %d %q, want 200 \"ok\"", response.StatusCode, body)
	}

	response, err = http.Get(base + "/missing")
	if err != nil {
		t.Fatalf("GET /missing: %v", err)
	}
	response.Body.Close()

	cancel()
	select {
	case err := <-serveDone:
		if err != nil {
			t.Errorf("Serve = %v, want nil after cancellation", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	output := logs.String()
	for _, want := range []string{
		"path=/healthz status=200",
		"path=/missing status=404",
		"http server stopped",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("log output missing %q:\n%s", want, output)
		}
	}
}

func TestNewHTTPServer_ReportsEveryMissingField(t *testing.T) {
	_, err := NewHTTPServer(HTTPServerConfig{})
	if err == nil {
		t.Fatal("NewHTTPServer accepted an empty config")
	}
	for _, want := range []string{"address", "handler", "logger"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestNewHTTPServer_Defaults(t *testing.T) {
	server, err := NewHTTPServer(HTTPServerConfig{
		Address:     ":0",
		Handler:     http.NotFoundHandler(),
		ReadTimeout: time.Second,
		Logger:      slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("NewHTTPServer: %v", err)
	}
	config := server.config
	if config.ReadTimeout != time.Second {
		t.Errorf("ReadTimeout = %v, want the configured 1s", config.ReadTimeout)
	}
	if config.WriteTimeout != defaultTimeout || config.ShutdownTimeout != defaultTimeout {
		t.Errorf("WriteTimeout = %v, ShutdownTimeout = %v, want %v", config.WriteTimeout, config.ShutdownTimeout, defaultTimeout)
	}
	if config.IdleTimeout != defaultIdleTimeout || config.MaxHeaderBytes != defaultMaxHeaderBytes {
		t.Errorf("IdleTimeout = %v, MaxHeaderBytes = %d", config.IdleTimeout, config.MaxHeaderBytes)
	}
	if config.Clock == nil {
		t.Error("Clock was not defaulted")
	}
}

func TestHTTPServer_ListenError(t *testing.T) {
	server, err := NewHTTPServer(HTTPServerConfig{
		Address: "256.0.0.1:0",
		Handler: http.NotFoundHandler(),
		Logger:  slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("NewHTTPServer: %v", err)
	}
	if err := server.Serve(t.Context()); err == nil {
		t.Fatal("Serve on an invalid address succeeded")
	}
}
