// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package challengestore implements registration.Store twice: [Memory]
// for tests and single-process deployments, and [SQLite] for an IDP
// that must survive restarts.
//
// Both stores keep a challenge for a fixed TTL (default ten minutes)
// measured from PersistChallenge. An expired challenge is not
// loadable and cannot be completed, whatever its status. Completed and
// failed records are kept until they expire so operators can see what
// happened; PurgeExpired deletes everything past its expiry.
//
// CompleteChallenge is an atomic compare-and-set from pending to
// completed. The memory store holds a mutex across the check and the
// write. The SQLite store issues UPDATE ... WHERE status = 'pending'
// inside an IMMEDIATE transaction and inspects the changed-row count.
package challengestore
