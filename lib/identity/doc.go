// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package identity generates and parses the key material that makes up
// a being.
//
// A being holds two independent key pairs:
//
//   - A signing key pair (Ed25519). The private key proves authorship
//     of auth requests and challenge responses.
//   - An encryption key pair (age X25519). Others seal data to the
//     public key; the IDP uses it to deliver the challenge nonce.
//
// Both are carried as armored text so they can travel in JSON and be
// written to credential files unchanged:
//
//	-----BEGIN BEING SIGNING PUBLIC KEY-----
//	User-Id: Root Solar Being <being@root.solar>
//
//	<base64 of the 32-byte Ed25519 public key>
//	-----END BEING SIGNING PUBLIC KEY-----
//
//	# user: Root Solar Being <being@root.solar>
//	age1...
//
// The private signing key is the PEM block "BEING SIGNING PRIVATE KEY"
// holding the 32-byte seed; the private encryption key is the age
// "AGE-SECRET-KEY-1..." string under the same comment line. Every key
// is tagged with the fixed [UserID].
//
// Key pairs are immutable values. Generation draws fresh randomness on
// every call and fails only when the platform random source does.
//
// [Fingerprint] derives a short BLAKE3 identifier from a signing public
// key. It is used for provisional being IDs and log fields, never as a
// security check.
package identity
