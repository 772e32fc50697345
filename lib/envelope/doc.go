// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package envelope provides password-based symmetric encryption for
// credential files and session records.
//
// A password (or a short session PIN) is stretched with PBKDF2 over a
// fresh random salt into an AES-GCM key, and the plaintext is sealed
// under a fresh random 12-byte IV. The result, [EncryptedPayload],
// records every parameter that went into it: algorithm, KDF hash,
// iteration count, key length, salt, and IV. Decryption reads those
// parameters from the payload alone, so raising the defaults later
// never breaks payloads written earlier.
//
// Defaults are a 16-byte salt, 200,000 PBKDF2 iterations with SHA-256,
// and a 256-bit AES key. SHA-384 and SHA-512 are accepted as KDF
// hashes; 128-bit and 192-bit AES keys are accepted as key lengths.
//
// Two failure classes are distinguished. [ErrInvalidPayload] means the
// payload failed schema validation and no cryptography was attempted.
// [ErrDecryptionFailed] means the payload was well-formed but the AEAD
// tag did not authenticate: a wrong password, or tampering. Callers
// map the latter to "wrong passphrase".
//
// Derived keys are zeroed once the cipher has been constructed.
package envelope
