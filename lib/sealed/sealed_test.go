// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"errors"
	"testing"

	"github.com/bureau-foundation/being/lib/identity"
	"github.com/bureau-foundation/being/lib/wire"
)

func generateEncryptionKeyPair(t *testing.T) identity.KeyPair {
	t.Helper()
	pair, err := identity.GenerateEncryptionKeyPair()
	if err != nil {
		t.Fatalf("GenerateEncryptionKeyPair: %v", err)
	}
	return pair
}

func TestEncryptDecrypt_SingleRecipient(t *testing.T) {
	pair := generateEncryptionKeyPair(t)

	plaintext := []byte("bm9uY2Ugbm9uY2Ugbm9uY2U=")
	ciphertext, err := Encrypt(plaintext, pair.PublicKey)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := wire.DecodeBase64(ciphertext); err != nil {
		t.Errorf("Encrypt returned invalid base64: %v", err)
	}

	decrypted, err := Decrypt(ciphertext, pair.PrivateKey)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if string(decrypted) != string(plaintext) {
		t.Errorf("Decrypt = %q, want %q", decrypted, plaintext)
	}
}

func TestEncryptDecrypt_MultipleRecipients(t *testing.T) {
	being := generateEncryptionKeyPair(t)
	escrow := generateEncryptionKeyPair(t)

	ciphertext, err := Encrypt([]byte("shared"), being.PublicKey, escrow.PublicKey)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	for name, pair := range map[string]identity.KeyPair{"being": being, "escrow": escrow} {
		decrypted, err := Decrypt(ciphertext, pair.PrivateKey)
		if err != nil {
			t.Fatalf("Decrypt(%s): %v", name, err)
		}
		if string(decrypted) != "shared" {
			t.Errorf("Decrypt(%s) = %q", name, decrypted)
		}
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	intended := generateEncryptionKeyPair(t)
	other := generateEncryptionKeyPair(t)

	ciphertext, err := Encrypt([]byte("secret"), intended.PublicKey)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := Decrypt(ciphertext, other.PrivateKey); !errors.Is(err, ErrDecrypt) {
		t.Errorf("Decrypt(wrong key) error = %v, want ErrDecrypt", err)
	}
}

func TestDecrypt_Corrupted(t *testing.T) {
	pair := generateEncryptionKeyPair(t)
	ciphertext, err := Encrypt([]byte("secret"), pair.PublicKey)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	raw, err := wire.DecodeBase64(ciphertext)
	if err != nil {
		t.Fatal(err)
	}
	raw[len(raw)-1] ^= 0x01

	if _, err := Decrypt(wire.EncodeBase64(raw), pair.PrivateKey); !errors.Is(err, ErrDecrypt) {
		t.Errorf("Decrypt(corrupted) error = %v, want ErrDecrypt", err)
	}
	if _, err := Decrypt("not base64!", pair.PrivateKey); !errors.Is(err, ErrDecrypt) {
		t.Errorf("Decrypt(bad base64) error = %v, want ErrDecrypt", err)
	}
}

func TestEncrypt_NoRecipients(t *testing.T) {
	if _, err := Encrypt([]byte("x")); err == nil {
		t.Fatal("Encrypt with no recipients succeeded")
	}
}

func TestEncrypt_InvalidRecipient(t *testing.T) {
	if _, err := Encrypt([]byte("x"), "age1notakey"); !errors.Is(err, identity.ErrInvalidEncryptionKey) {
		t.Fatalf("Encrypt(invalid) error = %v, want ErrInvalidEncryptionKey", err)
	}
}
