// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package handshake

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/being/lib/identity"
	"github.com/bureau-foundation/being/lib/wire"
)

var (
	// ErrInvalidAuthSignature is returned when an auth request's
	// signature does not verify over the rebuilt canonical message,
	// including a signature that is not 64 bytes of Base64.
	ErrInvalidAuthSignature = errors.New("handshake: invalid auth request signature")

	// ErrMalformedAuthRequest is returned when an auth request is
	// structurally broken: a missing field, a key that does not parse,
	// or an intent that is not valid Base64.
	ErrMalformedAuthRequest = errors.New("handshake: malformed auth request")
)

// AuthRequestPayload is the transmissible, self-contained claim of
// identity. Intent, when present, is Base64.
type AuthRequestPayload struct {
	SigningPublicKey    string `json:"signingPublicKey"`
	EncryptionPublicKey string `json:"encryptionPublicKey"`
	Signature           string `json:"signature"`
	Intent              string `json:"intent,omitempty"`
}

// AuthRequest is a payload plus the Base64 canonical message that was
// signed.
type AuthRequest struct {
	Payload AuthRequestPayload `json:"payload"`
	Message string             `json:"message"`
}

// VerifiedAuthRequest is the result of a successful verification.
// Message is the recomputed canonical message.
type VerifiedAuthRequest struct {
	SigningPublicKey    string
	EncryptionPublicKey string
	Intent              []byte
	Message             []byte
}

// AuthRequestOptions configures CreateAuthRequest.
type AuthRequestOptions struct {
	// Intent is signed along with the keys. Use IntentString for
	// textual intents.
	Intent []byte
}

// IntentString returns the UTF-8 bytes of a textual intent.
func IntentString(intent string) []byte {
	return wire.UTF8(intent)
}

// CreateAuthRequest signs the canonical auth message for material.
func CreateAuthRequest(material identity.BeingKeyMaterial, options AuthRequestOptions) (*AuthRequest, error) {
	message := CanonicalAuthMessage(material.Signing.PublicKey, material.Encryption.PublicKey, options.Intent)
	signature, err := identity.Sign(material.Signing.PrivateKey, message)
	if err != nil {
		return nil, fmt.Errorf("handshake: signing auth request: %w", err)
	}

	payload := AuthRequestPayload{
		SigningPublicKey:    material.Signing.PublicKey,
		EncryptionPublicKey: material.Encryption.PublicKey,
		Signature:           signature,
	}
	if len(options.Intent) > 0 {
		payload.Intent = wire.EncodeBase64(options.Intent)
	}
	return &AuthRequest{
		Payload: payload,
		Message: wire.EncodeBase64(message),
	}, nil
}

// VerifyAuthRequest rebuilds the canonical message from the payload
// fields and checks the signature against the payload's signing key.
func VerifyAuthRequest(payload AuthRequestPayload) (*VerifiedAuthRequest, error) {
	switch {
	case payload.SigningPublicKey == "":
		return nil, fmt.Errorf("%w: signingPublicKey is empty", ErrMalformedAuthRequest)
	case payload.EncryptionPublicKey == "":
		return nil, fmt.Errorf("%w: encryptionPublicKey is empty", ErrMalformedAuthRequest)
	case payload.Signature == "":
		return nil, fmt.Errorf("%w: signature is empty", ErrMalformedAuthRequest)
	}

	var intent []byte
	if payload.Intent != "" {
		decoded, err := wire.DecodeBase64(payload.Intent)
		if err != nil {
			return nil, fmt.Errorf("%w: intent: %w", ErrMalformedAuthRequest, err)
		}
		intent = decoded
	}

	// The encryption key must be usable later to seal the challenge.
	if _, err := identity.ParseEncryptionRecipient(payload.EncryptionPublicKey); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedAuthRequest, err)
	}

	message := CanonicalAuthMessage(payload.SigningPublicKey, payload.EncryptionPublicKey, intent)
	err := identity.Verify(payload.SigningPublicKey, message, payload.Signature)
	switch {
	case err == nil:
	case errors.Is(err, identity.ErrInvalidSignature):
		return nil, ErrInvalidAuthSignature
	case errors.Is(err, identity.ErrMalformedSignature):
		return nil, fmt.Errorf("%w: %w", ErrInvalidAuthSignature, err)
	default:
		return nil, fmt.Errorf("%w: %w", ErrMalformedAuthRequest, err)
	}

	return &VerifiedAuthRequest{
		SigningPublicKey:    payload.SigningPublicKey,
		EncryptionPublicKey: payload.EncryptionPublicKey,
		Intent:              intent,
		Message:             message,
	}, nil
}
