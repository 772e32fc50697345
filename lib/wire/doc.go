// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire holds the byte-level encoding primitives shared by the
// handshake and envelope packages: UTF-8 conversion, standard Base64,
// and byte concatenation.
//
// Every canonical message in the authentication protocol is assembled
// from these helpers, so their behavior is deliberately strict: Base64
// decoding accepts only the padded standard alphabet, and UTF-8
// decoding rejects invalid sequences instead of substituting U+FFFD.
//
// This package has no dependencies outside the standard library.
package wire
