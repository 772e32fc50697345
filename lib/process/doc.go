// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides entrypoint helpers for the being binaries.
// Fatal is for errors returned from run() before or after the
// structured logger exists.
package process
