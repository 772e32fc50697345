// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"

	"github.com/bureau-foundation/being/lib/identity"
	"github.com/bureau-foundation/being/lib/wire"
)

// ErrDecrypt is returned when a ciphertext cannot be opened: wrong
// identity, corruption, truncation, or bad Base64.
var ErrDecrypt = errors.New("sealed: unable to decrypt")

// maxPlaintextSize bounds how much Decrypt will read. Sealed payloads
// in this module are a few hundred bytes.
const maxPlaintextSize = 64 << 10

// Encrypt seals plaintext to every recipient and returns Base64
// ciphertext. At least one recipient is required.
func Encrypt(plaintext []byte, recipientKeys ...string) (string, error) {
	if len(recipientKeys) == 0 {
		return "", fmt.Errorf("sealed: at least one recipient is required")
	}

	recipients := make([]age.Recipient, 0, len(recipientKeys))
	for _, key := range recipientKeys {
		recipient, err := identity.ParseEncryptionRecipient(key)
		if err != nil {
			return "", fmt.Errorf("sealed: parsing recipient: %w", err)
		}
		recipients = append(recipients, recipient)
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, recipients...)
	if err != nil {
		return "", fmt.Errorf("sealed: creating age encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return "", fmt.Errorf("sealed: writing plaintext: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("sealed: finalizing encryption: %w", err)
	}
	return wire.EncodeBase64(ciphertext.Bytes()), nil
}

// Decrypt opens Base64 ciphertext with the armored private key. The
// private key string is borrowed, not retained.
func Decrypt(ciphertext string, privateKey string) ([]byte, error) {
	ageIdentity, err := identity.ParseEncryptionIdentity(privateKey)
	if err != nil {
		return nil, fmt.Errorf("sealed: parsing identity: %w", err)
	}

	raw, err := wire.DecodeBase64(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	reader, err := age.Decrypt(bytes.NewReader(raw), ageIdentity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	plaintext, err := io.ReadAll(io.LimitReader(reader, maxPlaintextSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	if len(plaintext) > maxPlaintextSize {
		return nil, fmt.Errorf("%w: plaintext exceeds %d bytes", ErrDecrypt, maxPlaintextSize)
	}
	return plaintext, nil
}
