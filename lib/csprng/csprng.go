// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package csprng

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// ErrUnavailable is returned when the random source fails or returns
// fewer bytes than requested.
var ErrUnavailable = errors.New("csprng: secure random source unavailable")

// Bytes returns n bytes from crypto/rand.
func Bytes(n int) ([]byte, error) {
	return BytesFrom(rand.Reader, n)
}

// BytesFrom returns n bytes read from source. A nil source means
// crypto/rand.
func BytesFrom(source io.Reader, n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("csprng: length must be positive, got %d", n)
	}
	if source == nil {
		source = rand.Reader
	}
	buffer := make([]byte, n)
	if _, err := io.ReadFull(source, buffer); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return buffer, nil
}
