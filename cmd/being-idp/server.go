// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bureau-foundation/being/lib/idpclient"
	"github.com/bureau-foundation/being/lib/registration"
)

// maxRequestBody bounds registration request bodies. An auth request
// is two public keys, a signature, and an optional intent.
const maxRequestBody = 64 << 10

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status string `json:"status"`
	Beings int    `json:"beings"`
}

func (d *daemon) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST "+idpclient.PathStart, d.limited(d.handleStart))
	mux.Handle("POST "+idpclient.PathComplete, d.limited(d.handleComplete))
	mux.HandleFunc("GET "+idpclient.PathHealth, d.handleHealth)
	mux.Handle("GET "+idpclient.PathMetrics, promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{}))
	return mux
}

func (d *daemon) handleStart(writer http.ResponseWriter, request *http.Request) {
	var body registration.StartRequest
	if err := decodeBody(writer, request, &body); err != nil {
		d.writeError(writer, request, err)
		return
	}
	challenge, err := d.service.Start(request.Context(), body)
	if err != nil {
		d.writeError(writer, request, err)
		return
	}
	writeJSON(writer, http.StatusOK, challenge)
}

func (d *daemon) handleComplete(writer http.ResponseWriter, request *http.Request) {
	var body registration.CompleteRequest
	if err := decodeBody(writer, request, &body); err != nil {
		d.writeError(writer, request, err)
		return
	}
	being, err := d.service.Complete(request.Context(), body)
	if err != nil {
		d.writeError(writer, request, err)
		return
	}
	writeJSON(writer, http.StatusOK, being)
}

func (d *daemon) handleHealth(writer http.ResponseWriter, request *http.Request) {
	count, err := d.beings.count(request.Context())
	if err != nil {
		d.logger.Error("health check failed", "error", err)
		writeJSON(writer, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	writeJSON(writer, http.StatusOK, healthResponse{Status: "ok", Beings: count})
}

// limited applies the per-client rate limit. Clients are keyed by
// remote IP.
func (d *daemon) limited(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if !d.limiter.Allow(clientKey(request)) {
			d.rateLimited.Inc()
			d.writeError(writer, request, idpclient.ErrRateLimited)
			return
		}
		next(writer, request)
	})
}

func clientKey(request *http.Request) string {
	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}

func decodeBody(writer http.ResponseWriter, request *http.Request, value any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(writer, request.Body, maxRequestBody))
	if err := decoder.Decode(value); err != nil {
		return fmt.Errorf("%w: %w", idpclient.ErrMalformedBody, err)
	}
	return nil
}

// writeError sends the error body for err. Protocol errors carry
// their message; anything else is logged and reported generically.
func (d *daemon) writeError(writer http.ResponseWriter, request *http.Request, err error) {
	status, safe := idpclient.StatusForError(err)
	message := err.Error()
	if !safe {
		d.logger.Error("request failed",
			"method", request.Method,
			"path", request.URL.Path,
			"error", err,
		)
		message = http.StatusText(status)
	}
	writeJSON(writer, status, idpclient.ErrorResponse{Error: message})
}

func writeJSON(writer http.ResponseWriter, status int, value any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	json.NewEncoder(writer).Encode(value)
}
