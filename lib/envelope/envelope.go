// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"

	"golang.org/x/crypto/pbkdf2"

	"github.com/bureau-foundation/being/lib/csprng"
	"github.com/bureau-foundation/being/lib/secret"
	"github.com/bureau-foundation/being/lib/wire"
)

// Algorithm is the only symmetric algorithm envelopes are written with.
const Algorithm = "AES-GCM"

// Default parameters for new envelopes.
const (
	DefaultSaltLength = 16
	DefaultIterations = 200_000
	DefaultHash       = "SHA-256"
	DefaultKeyLength  = 256
)

// Bounds on the KDF parameters an envelope may carry. Loaded envelopes
// are untrusted, so these are enforced before any key derivation.
const (
	MinSaltLength = 8
	MaxIterations = 10_000_000
)

// ivLength is the AES-GCM nonce size. It is not configurable.
const ivLength = 12

var (
	// ErrDecryptionFailed is returned when the AEAD tag does not
	// authenticate, which in practice means a wrong password or PIN.
	ErrDecryptionFailed = errors.New("envelope: decryption failed")

	// ErrInvalidPayload is returned when a payload fails schema
	// validation. No key derivation is attempted for such payloads.
	ErrInvalidPayload = errors.New("envelope: invalid encrypted payload")
)

// EncryptedPayload is a self-describing AES-GCM envelope. Binary fields
// are standard padded Base64.
type EncryptedPayload struct {
	Algorithm  string `json:"algorithm"`
	Ciphertext string `json:"ciphertext"`
	IV         string `json:"iv"`
	Salt       string `json:"salt"`
	Iterations int    `json:"iterations"`
	Hash       string `json:"hash"`
	KeyLength  int    `json:"keyLength"`
}

// Params overrides the defaults for a new envelope. Zero fields take
// the default value.
type Params struct {
	SaltLength int
	Iterations int
	Hash       string
	// KeyLength is the AES key size in bits.
	KeyLength int
}

func (p *Params) resolve() (Params, error) {
	resolved := Params{
		SaltLength: DefaultSaltLength,
		Iterations: DefaultIterations,
		Hash:       DefaultHash,
		KeyLength:  DefaultKeyLength,
	}
	if p != nil {
		if p.SaltLength != 0 {
			resolved.SaltLength = p.SaltLength
		}
		if p.Iterations != 0 {
			resolved.Iterations = p.Iterations
		}
		if p.Hash != "" {
			resolved.Hash = p.Hash
		}
		if p.KeyLength != 0 {
			resolved.KeyLength = p.KeyLength
		}
	}

	if err := checkSaltLength(resolved.SaltLength); err != nil {
		return Params{}, err
	}
	if err := checkIterations(resolved.Iterations); err != nil {
		return Params{}, err
	}
	if _, err := hashConstructor(resolved.Hash); err != nil {
		return Params{}, err
	}
	if err := checkKeyLength(resolved.KeyLength); err != nil {
		return Params{}, err
	}
	return resolved, nil
}

// EncryptWithPassword seals plaintext under a key derived from
// password. A nil params uses the defaults.
func EncryptWithPassword(plaintext, password []byte, params *Params) (*EncryptedPayload, error) {
	resolved, err := params.resolve()
	if err != nil {
		return nil, err
	}

	salt, err := csprng.Bytes(resolved.SaltLength)
	if err != nil {
		return nil, err
	}
	iv, err := csprng.Bytes(ivLength)
	if err != nil {
		return nil, err
	}

	aead, err := newAEAD(password, salt, resolved.Iterations, resolved.Hash, resolved.KeyLength)
	if err != nil {
		return nil, err
	}
	ciphertext := aead.Seal(nil, iv, plaintext, nil)

	return &EncryptedPayload{
		Algorithm:  Algorithm,
		Ciphertext: wire.EncodeBase64(ciphertext),
		IV:         wire.EncodeBase64(iv),
		Salt:       wire.EncodeBase64(salt),
		Iterations: resolved.Iterations,
		Hash:       resolved.Hash,
		KeyLength:  resolved.KeyLength,
	}, nil
}

// EncryptString seals the UTF-8 bytes of plaintext.
func EncryptString(plaintext string, password []byte, params *Params) (*EncryptedPayload, error) {
	return EncryptWithPassword(wire.UTF8(plaintext), password, params)
}

// DecryptWithPassword opens payload using only the parameters it
// carries.
func DecryptWithPassword(payload *EncryptedPayload, password []byte) ([]byte, error) {
	fields, err := payload.decode()
	if err != nil {
		return nil, err
	}

	aead, err := newAEAD(password, fields.salt, payload.Iterations, payload.Hash, payload.KeyLength)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, fields.iv, fields.ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// DecryptToUTF8 opens payload and decodes the plaintext as UTF-8.
func DecryptToUTF8(payload *EncryptedPayload, password []byte) (string, error) {
	plaintext, err := DecryptWithPassword(payload, password)
	if err != nil {
		return "", err
	}
	text, err := wire.DecodeUTF8(plaintext)
	if err != nil {
		return "", fmt.Errorf("envelope: decrypted plaintext: %w", err)
	}
	return text, nil
}

// Validate checks the payload's schema without attempting decryption.
func (p *EncryptedPayload) Validate() error {
	_, err := p.decode()
	return err
}

type decodedPayload struct {
	ciphertext []byte
	iv         []byte
	salt       []byte
}

func (p *EncryptedPayload) decode() (decodedPayload, error) {
	if p == nil {
		return decodedPayload{}, fmt.Errorf("%w: nil payload", ErrInvalidPayload)
	}
	if p.Algorithm != Algorithm {
		return decodedPayload{}, fmt.Errorf("%w: algorithm %q, want %q", ErrInvalidPayload, p.Algorithm, Algorithm)
	}
	if err := checkIterations(p.Iterations); err != nil {
		return decodedPayload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if _, err := hashConstructor(p.Hash); err != nil {
		return decodedPayload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := checkKeyLength(p.KeyLength); err != nil {
		return decodedPayload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var decoded decodedPayload
	var err error
	if decoded.ciphertext, err = decodeField("ciphertext", p.Ciphertext); err != nil {
		return decodedPayload{}, err
	}
	if decoded.iv, err = decodeField("iv", p.IV); err != nil {
		return decodedPayload{}, err
	}
	if decoded.salt, err = decodeField("salt", p.Salt); err != nil {
		return decodedPayload{}, err
	}
	if err := checkSaltLength(len(decoded.salt)); err != nil {
		return decodedPayload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if len(decoded.iv) != ivLength {
		return decodedPayload{}, fmt.Errorf("%w: iv is %d bytes, want %d", ErrInvalidPayload, len(decoded.iv), ivLength)
	}
	if len(decoded.ciphertext) < 16 {
		return decodedPayload{}, fmt.Errorf("%w: ciphertext shorter than the authentication tag", ErrInvalidPayload)
	}
	return decoded, nil
}

func decodeField(name, value string) ([]byte, error) {
	if value == "" {
		return nil, fmt.Errorf("%w: %s is empty", ErrInvalidPayload, name)
	}
	raw, err := wire.DecodeBase64(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, name, err)
	}
	return raw, nil
}

func newAEAD(password, salt []byte, iterations int, hashName string, keyLength int) (cipher.AEAD, error) {
	newHash, err := hashConstructor(hashName)
	if err != nil {
		return nil, err
	}
	key := pbkdf2.Key(password, salt, iterations, keyLength/8, newHash)
	defer secret.Zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("envelope: creating AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("envelope: creating GCM: %w", err)
	}
	return aead, nil
}

func hashConstructor(name string) (func() hash.Hash, error) {
	switch name {
	case "SHA-256":
		return sha256.New, nil
	case "SHA-384":
		return sha512.New384, nil
	case "SHA-512":
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("envelope: unsupported hash %q", name)
	}
}

func checkSaltLength(length int) error {
	if length < MinSaltLength {
		return fmt.Errorf("envelope: salt length %d is below the %d-byte minimum", length, MinSaltLength)
	}
	return nil
}

func checkIterations(iterations int) error {
	if iterations <= 0 || iterations > MaxIterations {
		return fmt.Errorf("envelope: iteration count %d outside 1..%d", iterations, MaxIterations)
	}
	return nil
}

func checkKeyLength(bits int) error {
	switch bits {
	case 128, 192, 256:
		return nil
	default:
		return fmt.Errorf("envelope: unsupported AES key length %d bits", bits)
	}
}
