// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	"filippo.io/age"
)

// UserID is the user identifier every generated key is tagged with.
const UserID = "Root Solar Being <being@root.solar>"

const (
	signingPublicKeyType  = "BEING SIGNING PUBLIC KEY"
	signingPrivateKeyType = "BEING SIGNING PRIVATE KEY"
	userIDHeader          = "User-Id"
	encryptionKeyComment  = "# user: " + UserID
)

// Errors returned when parsing or validating key text.
var (
	ErrInvalidSigningKey    = errors.New("identity: invalid signing key")
	ErrInvalidEncryptionKey = errors.New("identity: invalid encryption key")
	ErrKeyPairMismatch      = errors.New("identity: private key does not match public key")
)

// KeyPair is one asymmetric key pair in armored text form.
type KeyPair struct {
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
}

// BeingKeyMaterial is a being's complete identity.
type BeingKeyMaterial struct {
	Signing    KeyPair `json:"signing"`
	Encryption KeyPair `json:"encryption"`
}

// GenerateSigningKeyPair returns a fresh Ed25519 key pair.
func GenerateSigningKeyPair() (KeyPair, error) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("identity: generating Ed25519 key pair: %w", err)
	}
	return KeyPair{
		PublicKey:  armorSigningKey(signingPublicKeyType, public),
		PrivateKey: armorSigningKey(signingPrivateKeyType, private.Seed()),
	}, nil
}

// GenerateEncryptionKeyPair returns a fresh age X25519 key pair.
func GenerateEncryptionKeyPair() (KeyPair, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return KeyPair{}, fmt.Errorf("identity: generating age key pair: %w", err)
	}
	return KeyPair{
		PublicKey:  encryptionKeyComment + "\n" + identity.Recipient().String(),
		PrivateKey: encryptionKeyComment + "\n" + identity.String(),
	}, nil
}

// GenerateBeingKeyMaterial returns a signing and an encryption key pair.
func GenerateBeingKeyMaterial() (BeingKeyMaterial, error) {
	signing, err := GenerateSigningKeyPair()
	if err != nil {
		return BeingKeyMaterial{}, err
	}
	encryption, err := GenerateEncryptionKeyPair()
	if err != nil {
		return BeingKeyMaterial{}, err
	}
	return BeingKeyMaterial{Signing: signing, Encryption: encryption}, nil
}

// Validate checks that both key pairs parse and that each private key
// belongs to its public key.
func (m BeingKeyMaterial) Validate() error {
	if err := ValidateSigningKeyPair(m.Signing); err != nil {
		return err
	}
	return ValidateEncryptionKeyPair(m.Encryption)
}

// ValidateSigningKeyPair checks a signing key pair for consistency.
func ValidateSigningKeyPair(pair KeyPair) error {
	public, err := ParseSigningPublicKey(pair.PublicKey)
	if err != nil {
		return err
	}
	private, err := ParseSigningPrivateKey(pair.PrivateKey)
	if err != nil {
		return err
	}
	if !public.Equal(private.Public()) {
		return fmt.Errorf("%w (signing)", ErrKeyPairMismatch)
	}
	return nil
}

// ValidateEncryptionKeyPair checks an encryption key pair for
// consistency.
func ValidateEncryptionKeyPair(pair KeyPair) error {
	recipient, err := ParseEncryptionRecipient(pair.PublicKey)
	if err != nil {
		return err
	}
	identity, err := ParseEncryptionIdentity(pair.PrivateKey)
	if err != nil {
		return err
	}
	if identity.Recipient().String() != recipient.String() {
		return fmt.Errorf("%w (encryption)", ErrKeyPairMismatch)
	}
	return nil
}

// ParseSigningPublicKey decodes an armored signing public key.
func ParseSigningPublicKey(text string) (ed25519.PublicKey, error) {
	raw, err := dearmorSigningKey(text, signingPublicKeyType, ed25519.PublicKeySize)
	if err != nil {
		return nil, err
	}
	return ed25519.PublicKey(raw), nil
}

// ParseSigningPrivateKey decodes an armored signing private key.
func ParseSigningPrivateKey(text string) (ed25519.PrivateKey, error) {
	seed, err := dearmorSigningKey(text, signingPrivateKeyType, ed25519.SeedSize)
	if err != nil {
		return nil, err
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// ParseEncryptionRecipient decodes an encryption public key. Comment
// lines are ignored; exactly one X25519 recipient must remain.
func ParseEncryptionRecipient(text string) (*age.X25519Recipient, error) {
	recipients, err := age.ParseRecipients(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncryptionKey, err)
	}
	if len(recipients) != 1 {
		return nil, fmt.Errorf("%w: want one recipient, found %d", ErrInvalidEncryptionKey, len(recipients))
	}
	recipient, ok := recipients[0].(*age.X25519Recipient)
	if !ok {
		return nil, fmt.Errorf("%w: not an X25519 recipient", ErrInvalidEncryptionKey)
	}
	return recipient, nil
}

// ParseEncryptionIdentity decodes an encryption private key.
func ParseEncryptionIdentity(text string) (*age.X25519Identity, error) {
	identities, err := age.ParseIdentities(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncryptionKey, err)
	}
	if len(identities) != 1 {
		return nil, fmt.Errorf("%w: want one identity, found %d", ErrInvalidEncryptionKey, len(identities))
	}
	identity, ok := identities[0].(*age.X25519Identity)
	if !ok {
		return nil, fmt.Errorf("%w: not an X25519 identity", ErrInvalidEncryptionKey)
	}
	return identity, nil
}

func armorSigningKey(blockType string, raw []byte) string {
	encoded := pem.EncodeToMemory(&pem.Block{
		Type:    blockType,
		Headers: map[string]string{userIDHeader: UserID},
		Bytes:   raw,
	})
	return string(bytes.TrimRight(encoded, "\n"))
}

func dearmorSigningKey(text, blockType string, size int) ([]byte, error) {
	block, rest := pem.Decode([]byte(text))
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block", ErrInvalidSigningKey)
	}
	if len(bytes.TrimSpace(rest)) != 0 {
		return nil, fmt.Errorf("%w: trailing data after PEM block", ErrInvalidSigningKey)
	}
	if block.Type != blockType {
		return nil, fmt.Errorf("%w: block type %q, want %q", ErrInvalidSigningKey, block.Type, blockType)
	}
	if len(block.Bytes) != size {
		return nil, fmt.Errorf("%w: %d key bytes, want %d", ErrInvalidSigningKey, len(block.Bytes), size)
	}
	return block.Bytes, nil
}
