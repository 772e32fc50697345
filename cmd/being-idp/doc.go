// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Being-idp is the identity provider daemon that registers beings.
//
// A being proves control of its signing and encryption keys with a
// two-request handshake over HTTP:
//
//	POST /v1/registration/start     {name, request}  -> IdpChallenge
//	POST /v1/registration/complete  {response}       -> BeingRecord
//
// Start verifies the being's signed auth request and returns a nonce
// encrypted to the being's age key and signed by an ephemeral IDP key.
// Complete checks the being's signature over the decrypted nonce,
// consumes the challenge exactly once, and upserts the being record
// keyed by its signing public key. A being that registers again keeps
// its ID.
//
// GET /healthz answers 200 while the daemon is up. GET /metrics serves
// Prometheus counters for registration outcomes and rate-limit
// rejections.
//
// # Configuration
//
// The YAML config file is named by --config or BEING_IDP_CONFIG; there
// is no discovery. See lib/config for the schema. With the sqlite
// backend, pending challenges and being records share one database
// file. The memory backend keeps everything in-process and is meant
// for development.
//
// Expired challenges are purged every challenges.purge_interval.
package main
