// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bureau-foundation/being/lib/clock"
	"github.com/bureau-foundation/being/lib/envelope"
	"github.com/bureau-foundation/being/lib/identity"
	"github.com/bureau-foundation/being/lib/secret"
)

// FileVersion and FileKind identify a credential file.
const (
	FileVersion = 1
	FileKind    = "root.solar/being-credentials"
)

// ErrInvalidFile is returned when a credential file fails schema
// validation, or when its decrypted contents are inconsistent with its
// clear-text fields.
var ErrInvalidFile = errors.New("credential: invalid credential file")

// File is a password-protected credential file.
type File struct {
	Version    int       `json:"version"`
	Kind       string    `json:"kind"`
	CreatedAt  time.Time `json:"createdAt"`
	Being      FileBeing `json:"being"`
	Signing    FileKey   `json:"signing"`
	Encryption FileKey   `json:"encryption"`
}

// FileBeing identifies the being a file belongs to.
type FileBeing struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// FileKey is one sealed key pair and its clear-text public key.
type FileKey struct {
	PublicKey        string                    `json:"publicKey"`
	EncryptedKeyPair envelope.EncryptedPayload `json:"encryptedKeyPair"`
}

// Options configures CreateFile and CreateSessionRecord.
type Options struct {
	// Clock stamps CreatedAt. Nil means the real clock.
	Clock clock.Clock

	// Params overrides the envelope defaults.
	Params *envelope.Params
}

// CreateFile seals bundle's key pairs under password.
func CreateFile(bundle *Bundle, password []byte, options Options) (*File, error) {
	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	if len(password) == 0 {
		return nil, fmt.Errorf("credential: password is empty")
	}

	signing, err := sealKeyPair(bundle.Signing, password, options.Params)
	if err != nil {
		return nil, fmt.Errorf("credential: sealing signing key pair: %w", err)
	}
	encryption, err := sealKeyPair(bundle.Encryption, password, options.Params)
	if err != nil {
		return nil, fmt.Errorf("credential: sealing encryption key pair: %w", err)
	}

	return &File{
		Version:   FileVersion,
		Kind:      FileKind,
		CreatedAt: clock.OrReal(options.Clock).Now().UTC(),
		Being:     FileBeing{ID: bundle.BeingID, Name: bundle.BeingName},
		Signing: FileKey{
			PublicKey:        bundle.Signing.PublicKey,
			EncryptedKeyPair: *signing,
		},
		Encryption: FileKey{
			PublicKey:        bundle.Encryption.PublicKey,
			EncryptedKeyPair: *encryption,
		},
	}, nil
}

// DecryptFile opens both key pairs and checks them against the file's
// public keys.
func DecryptFile(file *File, password []byte) (*Bundle, error) {
	if err := file.Validate(); err != nil {
		return nil, err
	}

	signing, err := openKeyPair(&file.Signing.EncryptedKeyPair, password)
	if err != nil {
		return nil, err
	}
	encryption, err := openKeyPair(&file.Encryption.EncryptedKeyPair, password)
	if err != nil {
		return nil, err
	}
	if signing.PublicKey != file.Signing.PublicKey || encryption.PublicKey != file.Encryption.PublicKey {
		return nil, fmt.Errorf("%w: sealed key pair does not match the listed public key", ErrInvalidFile)
	}

	bundle := &Bundle{
		BeingID:    file.Being.ID,
		BeingName:  file.Being.Name,
		Signing:    signing,
		Encryption: encryption,
	}
	if err := bundle.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	return bundle, nil
}

// Validate checks the file's schema without decrypting anything.
func (f *File) Validate() error {
	switch {
	case f == nil:
		return fmt.Errorf("%w: nil file", ErrInvalidFile)
	case f.Version != FileVersion:
		return fmt.Errorf("%w: version %d, want %d", ErrInvalidFile, f.Version, FileVersion)
	case f.Kind != FileKind:
		return fmt.Errorf("%w: kind %q, want %q", ErrInvalidFile, f.Kind, FileKind)
	case f.Being.ID == "":
		return fmt.Errorf("%w: being id is empty", ErrInvalidFile)
	case f.Signing.PublicKey == "":
		return fmt.Errorf("%w: signing public key is empty", ErrInvalidFile)
	case f.Encryption.PublicKey == "":
		return fmt.Errorf("%w: encryption public key is empty", ErrInvalidFile)
	}
	if err := f.Signing.EncryptedKeyPair.Validate(); err != nil {
		return fmt.Errorf("%w: signing: %w", ErrInvalidFile, err)
	}
	if err := f.Encryption.EncryptedKeyPair.Validate(); err != nil {
		return fmt.Errorf("%w: encryption: %w", ErrInvalidFile, err)
	}
	return nil
}

// ParseFile decodes and validates a credential file.
func ParseFile(data []byte) (*File, error) {
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if err := file.Validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

// ReadFile reads and validates the credential file at path.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("credential: reading %s: %w", path, err)
	}
	file, err := ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// WriteFile writes file to path atomically with mode 0600.
func WriteFile(path string, file *File) error {
	if err := file.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("credential: encoding file: %w", err)
	}
	data = append(data, '\n')
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("credential: writing %s: %w", path, err)
	}
	return nil
}

func sealKeyPair(pair identity.KeyPair, password []byte, params *envelope.Params) (*envelope.EncryptedPayload, error) {
	encoded, err := json.Marshal(pair)
	if err != nil {
		return nil, err
	}
	defer secret.Zero(encoded)
	return envelope.EncryptWithPassword(encoded, password, params)
}

func openKeyPair(payload *envelope.EncryptedPayload, password []byte) (identity.KeyPair, error) {
	plaintext, err := envelope.DecryptWithPassword(payload, password)
	if err != nil {
		return identity.KeyPair{}, err
	}
	defer secret.Zero(plaintext)

	var pair identity.KeyPair
	if err := json.Unmarshal(plaintext, &pair); err != nil {
		return identity.KeyPair{}, fmt.Errorf("%w: decoding sealed key pair: %v", ErrInvalidFile, err)
	}
	return pair, nil
}
