// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Being is the client CLI for being key custody and registration.
//
//	being keygen --out scout.json --name scout
//	being inspect scout.json
//	being register --credentials scout.json --idp http://127.0.0.1:8470
//	being session create --credentials scout.json
//	being register --session --idp http://127.0.0.1:8470
//
// auth-request and respond expose the two being-side handshake steps
// individually for use with other transports.
package main
