// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package credential

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bureau-foundation/being/lib/csprng"
)

const (
	pinSpace = 10000
	// pinAcceptBound is the largest multiple of pinSpace that fits in
	// 16 bits. Draws at or above it are redrawn.
	pinAcceptBound = (1 << 16) / pinSpace * pinSpace
)

// GenerateSessionPIN returns a uniformly random four-digit PIN.
func GenerateSessionPIN() (string, error) {
	return GenerateSessionPINFrom(nil)
}

// GenerateSessionPINFrom draws the PIN from random. Nil means
// crypto/rand.
func GenerateSessionPINFrom(random io.Reader) (string, error) {
	for {
		draw, err := csprng.BytesFrom(random, 2)
		if err != nil {
			return "", fmt.Errorf("credential: drawing session PIN: %w", err)
		}
		value := int(binary.BigEndian.Uint16(draw))
		if value >= pinAcceptBound {
			continue
		}
		return fmt.Sprintf("%04d", value%pinSpace), nil
	}
}
