// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds passwords and session PINs outside the Go heap
// while they are in use.
//
// A [Buffer] is an anonymous mmap region, locked against swap and
// excluded from core dumps, that is zeroed and unmapped on Close. The
// being CLI reads credential-file passwords and session PINs into a
// Buffer ([ReadFromPath], [Prompt]) and passes the bytes straight to
// the envelope KDF, so the secret never lives in a Go string longer
// than the KDF call needs.
//
// [Zero] clears heap slices that held secret material (derived keys,
// decrypted bundles) once they are no longer needed.
//
// Depends on golang.org/x/sys/unix and golang.org/x/term.
package secret
