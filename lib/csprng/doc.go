// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package csprng draws fixed-length random byte strings from the
// platform CSPRNG.
//
// A failed or short draw is an environment failure, reported as
// [ErrUnavailable]. Callers abort the operation that needed the
// randomness; nothing in this module retries a draw.
//
// [BytesFrom] takes an explicit reader so tests can substitute a
// deterministic or failing source without touching a package-level
// variable.
package csprng
