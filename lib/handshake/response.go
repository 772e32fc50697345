// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package handshake

import (
	"fmt"

	"github.com/bureau-foundation/being/lib/identity"
	"github.com/bureau-foundation/being/lib/wire"
)

// ChallengeResponse is the being's proof that it decrypted the nonce.
type ChallengeResponse struct {
	ChallengeID string `json:"challengeId"`
	Signature   string `json:"signature"`
}

// CreateChallengeResponse answers a challenge with material. Any
// failure to open or authenticate the challenge is
// ErrIdpChallengeSignature.
func CreateChallengeResponse(challenge IdpChallenge, material identity.BeingKeyMaterial) (*ChallengeResponse, error) {
	nonce, err := openChallenge(challenge, material.Encryption.PrivateKey)
	if err != nil {
		return nil, err
	}

	text := CanonicalChallengeText(challenge.ChallengeID, nonce)
	signature, err := identity.Sign(material.Signing.PrivateKey, wire.UTF8(text))
	if err != nil {
		return nil, fmt.Errorf("handshake: signing challenge response: %w", err)
	}
	return &ChallengeResponse{
		ChallengeID: challenge.ChallengeID,
		Signature:   signature,
	}, nil
}

// VerifyChallengeResponse reports whether response proves possession
// of the being keys named in record.
func VerifyChallengeResponse(response ChallengeResponse, record IdpChallengeRecord) bool {
	if response.ChallengeID != record.ChallengeID {
		return false
	}
	text := CanonicalChallengeText(record.ChallengeID, record.Nonce)
	return identity.Verify(record.BeingSigningPublicKey, wire.UTF8(text), response.Signature) == nil
}
