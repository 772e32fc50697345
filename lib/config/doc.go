// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the YAML configuration for the being-idp
// daemon.
//
// Configuration comes from a single file named by either the
// BEING_IDP_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There is no discovery and no search path.
//
// The file may carry development, staging, and production sections
// that override base values when [Config].Environment matches.
// Production without its own section gets stricter defaults: rate
// limiting on, a five-minute challenge TTL, and JSON logs.
//
// ${HOME}, ${BEING_IDP_ROOT}, and ${VAR:-default} are expanded in path
// fields after overrides are applied. No other environment variable
// overrides a config value.
//
// Key exports:
//
//   - [Config] -- listen, storage, challenge, rate limit, and logging settings
//   - [Default] -- development defaults
//   - [Load] and [LoadFile] -- the two entry points
//   - [Config.Validate] -- reports every problem at once
package config
