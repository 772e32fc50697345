// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package handshake

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"io"

	"github.com/bureau-foundation/being/lib/codec"
	"github.com/bureau-foundation/being/lib/csprng"
	"github.com/bureau-foundation/being/lib/identity"
	"github.com/bureau-foundation/being/lib/sealed"
	"github.com/bureau-foundation/being/lib/wire"
)

// DefaultNonceLength is the number of random bytes in a challenge
// nonce.
const DefaultNonceLength = 32

// challengeIDLength is the number of random bytes in a generated
// challenge ID.
const challengeIDLength = 16

// ErrIdpChallengeSignature is returned by CreateChallengeResponse
// when the challenge cannot be decrypted or its embedded IDP signature
// does not verify.
var ErrIdpChallengeSignature = errors.New("unable to verify IDP challenge signature")

// IdpChallenge is sent to the being. EncryptedNonce is Base64 age
// ciphertext.
type IdpChallenge struct {
	ChallengeID         string `json:"challengeId"`
	EncryptedNonce      string `json:"encryptedNonce"`
	IdpSigningPublicKey string `json:"idpSigningPublicKey"`
}

// IdpChallengeRecord is the IDP's secret twin of an IdpChallenge. It
// holds the plaintext nonce and the ephemeral IDP private key.
type IdpChallengeRecord struct {
	ChallengeID              string           `json:"challengeId"`
	Nonce                    string           `json:"nonce"`
	IdpSigningKeyPair        identity.KeyPair `json:"idpSigningKeyPair"`
	BeingSigningPublicKey    string           `json:"beingSigningPublicKey"`
	BeingEncryptionPublicKey string           `json:"beingEncryptionPublicKey"`
}

// ChallengeOptions configures CreateIdpChallenge. The zero value
// generates everything.
type ChallengeOptions struct {
	// IdpSigningKeyPair is used instead of a fresh ephemeral key.
	IdpSigningKeyPair *identity.KeyPair

	// NonceLength defaults to DefaultNonceLength.
	NonceLength int

	// ChallengeID is used instead of a random one.
	ChallengeID string

	// Random supplies nonce and challenge ID bytes. Nil means
	// crypto/rand.
	Random io.Reader
}

// signedNonce is the CBOR payload the IDP signs inside the sealed
// challenge.
type signedNonce struct {
	ChallengeID string `cbor:"1,keyasint"`
	Nonce       string `cbor:"2,keyasint"`
}

// CreateIdpChallenge issues a challenge for a verified auth request.
// The caller must persist the returned record and send only the
// IdpChallenge to the being.
func CreateIdpChallenge(verified *VerifiedAuthRequest, options ChallengeOptions) (*IdpChallenge, *IdpChallengeRecord, error) {
	if verified == nil {
		return nil, nil, fmt.Errorf("handshake: verified auth request is nil")
	}

	nonceLength := options.NonceLength
	if nonceLength == 0 {
		nonceLength = DefaultNonceLength
	}
	nonceBytes, err := csprng.BytesFrom(options.Random, nonceLength)
	if err != nil {
		return nil, nil, fmt.Errorf("handshake: drawing nonce: %w", err)
	}
	nonce := wire.EncodeBase64(nonceBytes)

	challengeID := options.ChallengeID
	if challengeID == "" {
		idBytes, err := csprng.BytesFrom(options.Random, challengeIDLength)
		if err != nil {
			return nil, nil, fmt.Errorf("handshake: drawing challenge id: %w", err)
		}
		challengeID = wire.EncodeBase64(idBytes)
	}

	var idpKeyPair identity.KeyPair
	if options.IdpSigningKeyPair != nil {
		if err := identity.ValidateSigningKeyPair(*options.IdpSigningKeyPair); err != nil {
			return nil, nil, fmt.Errorf("handshake: IDP signing key pair: %w", err)
		}
		idpKeyPair = *options.IdpSigningKeyPair
	} else {
		idpKeyPair, err = identity.GenerateSigningKeyPair()
		if err != nil {
			return nil, nil, err
		}
	}
	idpPrivateKey, err := identity.ParseSigningPrivateKey(idpKeyPair.PrivateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("handshake: IDP signing key pair: %w", err)
	}

	payload, err := codec.Marshal(signedNonce{ChallengeID: challengeID, Nonce: nonce})
	if err != nil {
		return nil, nil, fmt.Errorf("handshake: encoding challenge payload: %w", err)
	}
	plaintext := wire.Concat(payload, ed25519.Sign(idpPrivateKey, payload))

	encryptedNonce, err := sealed.Encrypt(plaintext, verified.EncryptionPublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("handshake: sealing challenge: %w", err)
	}

	challenge := &IdpChallenge{
		ChallengeID:         challengeID,
		EncryptedNonce:      encryptedNonce,
		IdpSigningPublicKey: idpKeyPair.PublicKey,
	}
	record := &IdpChallengeRecord{
		ChallengeID:              challengeID,
		Nonce:                    nonce,
		IdpSigningKeyPair:        idpKeyPair,
		BeingSigningPublicKey:    verified.SigningPublicKey,
		BeingEncryptionPublicKey: verified.EncryptionPublicKey,
	}
	return challenge, record, nil
}

// openChallenge decrypts a challenge and verifies the embedded IDP
// signature and challenge ID, returning the nonce.
func openChallenge(challenge IdpChallenge, encryptionPrivateKey string) (string, error) {
	idpPublicKey, err := identity.ParseSigningPublicKey(challenge.IdpSigningPublicKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIdpChallengeSignature, err)
	}
	plaintext, err := sealed.Decrypt(challenge.EncryptedNonce, encryptionPrivateKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIdpChallengeSignature, err)
	}
	if len(plaintext) <= ed25519.SignatureSize {
		return "", fmt.Errorf("%w: sealed payload too short", ErrIdpChallengeSignature)
	}

	splitPoint := len(plaintext) - ed25519.SignatureSize
	payload := plaintext[:splitPoint]
	signature := plaintext[splitPoint:]
	if !ed25519.Verify(idpPublicKey, payload, signature) {
		return "", ErrIdpChallengeSignature
	}

	var signed signedNonce
	if err := codec.Unmarshal(payload, &signed); err != nil {
		return "", fmt.Errorf("%w: decoding payload: %v", ErrIdpChallengeSignature, err)
	}
	if signed.ChallengeID != challenge.ChallengeID {
		return "", fmt.Errorf("%w: sealed for a different challenge", ErrIdpChallengeSignature)
	}
	if signed.Nonce == "" {
		return "", fmt.Errorf("%w: empty nonce", ErrIdpChallengeSignature)
	}
	return signed.Nonce, nil
}
