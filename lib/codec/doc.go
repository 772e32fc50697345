// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the shared CBOR configuration for the being
// authentication packages.
//
// The module uses two serialization formats with a clear boundary:
//
//   - JSON for everything a being or an operator handles: auth
//     requests, challenges, responses, credential files, session
//     records, and the IDP's HTTP bodies. Those shapes are fixed by the
//     wire contract and must stay readable.
//   - CBOR for bytes only this module produces and consumes: the
//     IDP-signed nonce payload sealed inside a challenge, and challenge
//     records at rest in the SQLite store.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2), so a
// signed payload re-encodes to the exact bytes that were signed. The
// decoder rejects duplicate map keys, which would otherwise let two
// readers disagree about the contents of a signed payload.
package codec
