// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/bureau-foundation/being/lib/wire"
)

// Errors returned by Verify.
var (
	ErrMalformedSignature = errors.New("identity: malformed signature")
	ErrInvalidSignature   = errors.New("identity: signature verification failed")
)

// Sign returns the Base64 detached Ed25519 signature of message under
// the armored private key.
func Sign(privateKeyText string, message []byte) (string, error) {
	private, err := ParseSigningPrivateKey(privateKeyText)
	if err != nil {
		return "", err
	}
	return wire.EncodeBase64(ed25519.Sign(private, message)), nil
}

// Verify checks a Base64 detached signature of message against the
// armored public key. A signature that does not decode to exactly 64
// bytes is ErrMalformedSignature; one that decodes but does not verify
// is ErrInvalidSignature.
func Verify(publicKeyText string, message []byte, signature string) error {
	public, err := ParseSigningPublicKey(publicKeyText)
	if err != nil {
		return err
	}
	raw, err := wire.DecodeBase64(signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}
	if len(raw) != ed25519.SignatureSize {
		return fmt.Errorf("%w: %d bytes, want %d", ErrMalformedSignature, len(raw), ed25519.SignatureSize)
	}
	if !ed25519.Verify(public, message, raw) {
		return ErrInvalidSignature
	}
	return nil
}
