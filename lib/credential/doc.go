// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package credential protects a being's key material at rest and for
// the length of a session.
//
// # Credential files
//
// A [File] is a versioned JSON document of kind
// "root.solar/being-credentials". It holds the being's ID and name and
// the two key pairs, each JSON-encoded and sealed independently in an
// envelope under the same password. Public keys are repeated in the
// clear so a file can be identified without the password.
//
// [ParseFile] validates the whole schema, including every envelope,
// before any key derivation happens; a corrupt file is
// [ErrInvalidFile] and never reaches the cipher. A wrong password is
// envelope.ErrDecryptionFailed. [WriteFile] writes atomically with mode
// 0600.
//
// # Session records
//
// A [SessionRecord] is the same idea with lower friction: the whole
// [Bundle] is sealed as one envelope under a four-digit PIN from
// [GenerateSessionPIN], and the record lives in a [Storage] under the
// key [SessionStorageKey]. A record that fails to parse when loaded is
// removed from storage and reported as absent.
//
// [Session] owns one Storage and wraps the create, unlock, and clear
// cycle. Each caller constructs its own; there is no package-level
// current session.
//
// PINs are drawn by rejection sampling over two random bytes. Values
// at or above 60000 are redrawn, so value mod 10000 is uniform.
package credential
