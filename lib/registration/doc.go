// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package registration composes the handshake into the two calls an
// IDP exposes for registering a new being: [Service.Start] and
// [Service.Complete].
//
// Start verifies the being's auth request, checks the transport echo
// of the canonical message, validates the requested name, issues a
// challenge, and persists a [ChallengeRecord] before returning the
// public challenge. Complete loads the pending record, verifies the
// being's response, consumes the record, and hands the verified keys
// to the caller's [BeingUpserter].
//
// Each challenge moves through three persisted states:
//
//	pending --(valid response)--> completed
//	pending --(invalid response)--> failed
//
// Only pending records are loadable. The consume step is performed by
// [Store.CompleteChallenge], which must be an atomic compare-and-set
// from pending; of two Complete calls racing on one challenge exactly
// one reaches the upserter. The record is consumed before the upsert
// runs, so a failed upsert requires a fresh Start.
//
// Whether a new being is accepted at all is the upserter's decision.
// Nothing here retries.
//
// Outcomes are logged with slog and counted in two Prometheus counter
// vectors labelled by result: being_registration_starts_total and
// being_registration_completions_total.
package registration
