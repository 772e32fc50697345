// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands assembles the being command tree.
package commands

import (
	"github.com/bureau-foundation/being/cmd/being/cli"
	"github.com/bureau-foundation/being/lib/version"
)

// Root returns the top-level being command bound to env.
func Root(env *Env) *cli.Command {
	return &cli.Command{
		Name:    "being",
		Summary: "Being key custody and IDP registration",
		Description: `Being manages a being's signing and encryption keys and registers the
being with an identity provider.

Keys live in a password-protected credential file. A session record
holds the same keys under a short PIN for day-to-day unlocking.`,
		HelpOutput: env.Stderr,
		Subcommands: []*cli.Command{
			keygenCommand(env),
			inspectCommand(env),
			authRequestCommand(env),
			respondCommand(env),
			registerCommand(env),
			sessionCommand(env),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func([]string) error {
					version.Print(env.Stdout, "being")
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{Description: "Create a credential file", Command: "being keygen --out scout.json --name scout"},
			{Description: "Register with a local IDP", Command: "being register --credentials scout.json --idp http://127.0.0.1:8470"},
		},
	}
}
