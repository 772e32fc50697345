// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package credential

import (
	"fmt"

	"github.com/bureau-foundation/being/lib/identity"
)

// Bundle is the decrypted form of a credential file or session record.
type Bundle struct {
	BeingID    string           `json:"beingId"`
	BeingName  string           `json:"beingName,omitempty"`
	Signing    identity.KeyPair `json:"signing"`
	Encryption identity.KeyPair `json:"encryption"`
}

// KeyMaterial returns the bundle's key pairs.
func (b *Bundle) KeyMaterial() identity.BeingKeyMaterial {
	return identity.BeingKeyMaterial{Signing: b.Signing, Encryption: b.Encryption}
}

// Validate checks that the bundle names a being and that each private
// key matches its public key.
func (b *Bundle) Validate() error {
	if b.BeingID == "" {
		return fmt.Errorf("credential: bundle has no being id")
	}
	if err := b.KeyMaterial().Validate(); err != nil {
		return fmt.Errorf("credential: bundle key material: %w", err)
	}
	return nil
}
