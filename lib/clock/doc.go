// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts the wall clock so timestamps written into
// challenge records, credential files and session records, and the
// challenge store's expiry decisions, are deterministic under test.
//
// Production code injects [Real]; tests inject [Fake] and move time
// with [FakeClock.Advance]. Code in this module that needs the current
// time takes a Clock rather than calling time.Now directly.
package clock
