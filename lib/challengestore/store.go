// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package challengestore

import (
	"errors"
	"time"

	"github.com/bureau-foundation/being/lib/registration"
)

// DefaultTTL is how long a challenge stays completable.
const DefaultTTL = 10 * time.Minute

// ErrDuplicateChallenge is returned by PersistChallenge when the
// challenge ID is already stored.
var ErrDuplicateChallenge = errors.New("challengestore: challenge id already exists")

// Compile-time interface checks.
var (
	_ registration.Store = (*Memory)(nil)
	_ registration.Store = (*SQLite)(nil)
)

func resolveTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}

func cloneRecord(record *registration.ChallengeRecord) *registration.ChallengeRecord {
	clone := *record
	return &clone
}
