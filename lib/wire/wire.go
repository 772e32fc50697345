// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/base64"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidUTF8 is returned by DecodeUTF8 for byte sequences that are
// not valid UTF-8.
var ErrInvalidUTF8 = errors.New("wire: invalid UTF-8")

// UTF8 returns the UTF-8 bytes of s. Go strings are already byte
// sequences; the copy means callers can mutate the result freely.
func UTF8(s string) []byte {
	return []byte(s)
}

// DecodeUTF8 converts data to a string, failing if data is not valid
// UTF-8.
func DecodeUTF8(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	return string(data), nil
}

// EncodeBase64 encodes data with the standard padded alphabet.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 decodes standard padded Base64. Unpadded or URL-safe
// input is rejected.
func DecodeBase64(encoded string) ([]byte, error) {
	decoded, err := base64.StdEncoding.Strict().DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("wire: decoding base64: %w", err)
	}
	return decoded, nil
}

// Concat returns a new slice holding every part in order. Nil and
// empty parts contribute nothing.
func Concat(parts ...[]byte) []byte {
	total := 0
	for _, part := range parts {
		total += len(part)
	}
	result := make([]byte, 0, total)
	for _, part := range parts {
		result = append(result, part...)
	}
	return result
}
