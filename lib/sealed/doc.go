// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed encrypts data to a being's encryption public key and
// decrypts it with the matching private key. It wraps filippo.io/age
// for the two operations the handshake needs.
//
// Ciphertext is Base64 so it can sit in a JSON challenge. Keys are the
// commented age text produced by lib/identity.
//
// Key exports:
//
//   - [Encrypt] -- seal plaintext to one or more age recipients
//   - [Decrypt] -- open a sealed Base64 ciphertext with an age identity
//
// Used by lib/handshake to deliver the IDP challenge nonce.
package sealed
