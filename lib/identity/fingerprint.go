// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"crypto/ed25519"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// fingerprintDomain keeps fingerprints disjoint from any other BLAKE3
// use of the same key bytes.
var fingerprintDomain = []byte("root.solar/being-fingerprint/v1")

// FingerprintPrefix starts every fingerprint string.
const FingerprintPrefix = "being1_"

// Fingerprint returns the short identifier of an armored signing public
// key.
func Fingerprint(signingPublicKey string) (string, error) {
	public, err := ParseSigningPublicKey(signingPublicKey)
	if err != nil {
		return "", err
	}
	return FingerprintKey(public), nil
}

// FingerprintKey returns the short identifier of a raw signing public
// key: the first 10 bytes of BLAKE3(domain ‖ key), hex encoded.
func FingerprintKey(public ed25519.PublicKey) string {
	hasher := blake3.New()
	hasher.Write(fingerprintDomain)
	hasher.Write(public)
	sum := hasher.Sum(nil)
	return FingerprintPrefix + hex.EncodeToString(sum[:10])
}
