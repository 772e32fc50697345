// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service hosts long-running network listeners for the being
// daemons. [HTTPServer] binds a TCP address, serves a caller-supplied
// handler behind a debug-level access log, and drains in-flight requests
// when its context is cancelled.
package service
