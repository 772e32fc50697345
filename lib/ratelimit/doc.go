// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ratelimit applies a token bucket per client key. The IDP
// daemon keys buckets by remote address so one caller cannot flood
// challenge issuance. Idle buckets are evicted as the limiter is used;
// there is no background goroutine.
package ratelimit
