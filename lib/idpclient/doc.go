// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package idpclient is the HTTP client for being-idp registration.
//
// The wire surface is two JSON endpoints:
//
//	POST /v1/registration/start     {name, request}  -> IdpChallenge
//	POST /v1/registration/complete  {response}       -> BeingRecord
//
// Failures come back as {"error": "<message>"} with a status code.
// The client maps them back to the sentinel errors of the handshake
// and registration packages so callers can use errors.Is on either
// side of the wire. The same table drives the daemon's status codes
// through [StatusForError].
//
// [Client.Register] runs the whole handshake for a being: it builds
// the signed auth request, opens the returned challenge with the
// being's encryption key, and answers it.
package idpclient
