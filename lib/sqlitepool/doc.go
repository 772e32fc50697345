// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides the SQLite connection pool shared by the
// IDP's challenge store and being repository.
//
// It wraps zombiezen.com/go/sqlite's sqlitex.Pool. Callers either
// [Pool.Take] and [Pool.Put] connections themselves or use the
// [Pool.WithConn] and [Pool.WithImmediate] helpers, which return the
// connection on every path. Connections are not safe for concurrent
// use; each goroutine holds its own for the duration of its work.
//
// # Pragmas
//
// Every connection is initialized with:
//
//   - journal_mode=WAL: readers never block the single writer.
//   - synchronous=FULL: a committed challenge consumption survives
//     power loss. Registration traffic is low; the fsync is not a
//     bottleneck.
//   - busy_timeout=5000: wait up to 5 seconds for the write lock
//     instead of failing with SQLITE_BUSY.
//   - foreign_keys=ON.
//   - temp_store=MEMORY.
//
// # Schema
//
// [Config.Schema] is run with sqlitex.ExecuteScript on every new
// connection, so it must be idempotent (CREATE TABLE IF NOT EXISTS).
// [Config.OnConnect] runs after it for anything else.
//
// # Transactions
//
// [Pool.WithImmediate] runs a function inside BEGIN IMMEDIATE. The
// write lock is taken up front, so a read-then-write sequence inside
// the function cannot interleave with another writer. The challenge
// store's consume-once step depends on this.
package sqlitepool
