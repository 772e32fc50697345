// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package idpclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bureau-foundation/being/lib/handshake"
	"github.com/bureau-foundation/being/lib/registration"
)

// Endpoint paths served by being-idp.
const (
	PathStart    = "/v1/registration/start"
	PathComplete = "/v1/registration/complete"
	PathHealth   = "/healthz"
	PathMetrics  = "/metrics"
)

var (
	// ErrMalformedBody is reported when a request body is not the
	// expected JSON.
	ErrMalformedBody = errors.New("malformed request body")

	// ErrRateLimited is reported when the caller exceeded its request
	// budget.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// errorTable maps protocol errors to HTTP status codes. Order
// matters only for readability; the sentinel messages do not prefix
// one another.
var errorTable = []struct {
	err    error
	status int
}{
	{ErrMalformedBody, http.StatusBadRequest},
	{handshake.ErrMalformedAuthRequest, http.StatusBadRequest},
	{registration.ErrMessageMismatch, http.StatusBadRequest},
	{registration.ErrInvalidName, http.StatusBadRequest},
	{handshake.ErrInvalidAuthSignature, http.StatusUnauthorized},
	{registration.ErrResponseVerificationFailed, http.StatusUnauthorized},
	{registration.ErrChallengeNotFound, http.StatusNotFound},
	{ErrRateLimited, http.StatusTooManyRequests},
}

// StatusForError returns the HTTP status for err and whether err is a
// protocol error whose message is safe to send to the caller.
// Anything else is a 500 with a generic message.
func StatusForError(err error) (int, bool) {
	for _, entry := range errorTable {
		if errors.Is(err, entry.err) {
			return entry.status, true
		}
	}
	return http.StatusInternalServerError, false
}

// Error is a non-2xx response from being-idp.
type Error struct {
	StatusCode int
	Message    string

	sentinel error
}

func (e *Error) Error() string {
	return fmt.Sprintf("being-idp: HTTP %d: %s", e.StatusCode, e.Message)
}

// Unwrap returns the protocol sentinel the response corresponds to,
// or nil for unrecognized failures.
func (e *Error) Unwrap() error {
	return e.sentinel
}

func newError(statusCode int, message string) *Error {
	result := &Error{StatusCode: statusCode, Message: message}
	if statusCode == http.StatusTooManyRequests {
		result.sentinel = ErrRateLimited
		return result
	}
	for _, entry := range errorTable {
		if entry.status == statusCode && strings.HasPrefix(message, entry.err.Error()) {
			result.sentinel = entry.err
			break
		}
	}
	return result
}
