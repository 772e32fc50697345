// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package handshake

import "github.com/bureau-foundation/being/lib/wire"

// AuthenticationContext domain-separates every signature made by the
// handshake.
const AuthenticationContext = "root.solar/authentication/v1"

// challengeSeparator joins the fields of the canonical challenge text.
const challengeSeparator = "::"

// CanonicalAuthMessage returns the exact bytes a being signs in an auth
// request. A nil intent contributes no bytes.
func CanonicalAuthMessage(signingPublicKey, encryptionPublicKey string, intent []byte) []byte {
	return wire.Concat(
		wire.UTF8(AuthenticationContext),
		wire.UTF8(signingPublicKey),
		wire.UTF8(encryptionPublicKey),
		intent,
	)
}

// CanonicalChallengeText returns the text a being signs to answer a
// challenge.
func CanonicalChallengeText(challengeID, nonce string) string {
	return AuthenticationContext + challengeSeparator + challengeID + challengeSeparator + nonce
}
