// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/being/cmd/being/cli"
	"github.com/bureau-foundation/being/lib/credential"
	"github.com/bureau-foundation/being/lib/identity"
)

func sessionCommand(env *Env) *cli.Command {
	return &cli.Command{
		Name:    "session",
		Summary: "Manage the PIN-protected session record",
		Description: `A session record holds the being's keys sealed under a four-digit PIN,
so day-to-day commands can use --session instead of the credential
password. Creating a session replaces any existing one.`,
		Subcommands: []*cli.Command{
			sessionCreateCommand(env),
			sessionUnlockCommand(env),
			sessionClearCommand(env),
		},
	}
}

func sessionCreateCommand(env *Env) *cli.Command {
	var (
		credentials  string
		passwordFile string
		sessionDir   string
	)
	return &cli.Command{
		Name:    "create",
		Summary: "Seal the credential file's keys under a new PIN",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("create", pflag.ContinueOnError)
			flagSet.StringVar(&credentials, "credentials", "", "credential file (required)")
			flagSet.StringVar(&passwordFile, "password-file", "", "read the credential password from a file (- for stdin)")
			flagSet.StringVar(&sessionDir, "session-dir", "", "session directory")
			return flagSet
		},
		Run: func([]string) error {
			if credentials == "" {
				return fmt.Errorf("--credentials is required")
			}
			bundle, err := env.openCredentials(credentials, passwordFile)
			if err != nil {
				return err
			}
			session, err := env.session(sessionDir)
			if err != nil {
				return err
			}
			pin, record, err := session.Create(bundle)
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Stderr, "session created for %s; the PIN is shown once\n", record.Being.ID)
			fmt.Fprintln(env.Stdout, pin)
			return nil
		},
	}
}

func sessionUnlockCommand(env *Env) *cli.Command {
	var (
		sessionDir string
		pinFile    string
	)
	return &cli.Command{
		Name:    "unlock",
		Summary: "Check the PIN and show the session's being",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("unlock", pflag.ContinueOnError)
			flagSet.StringVar(&sessionDir, "session-dir", "", "session directory")
			flagSet.StringVar(&pinFile, "pin-file", "", "read the PIN from a file (- for stdin)")
			return flagSet
		},
		Run: func([]string) error {
			bundle, err := unlockSession(env, sessionDir, pinFile)
			if err != nil {
				return err
			}
			fingerprint, _ := identity.Fingerprint(bundle.Signing.PublicKey)
			fmt.Fprintf(env.Stdout, "being:       %s\nfingerprint: %s\n", bundle.BeingID, fingerprint)
			return nil
		},
	}
}

func sessionClearCommand(env *Env) *cli.Command {
	var sessionDir string
	return &cli.Command{
		Name:    "clear",
		Summary: "Delete the session record",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("clear", pflag.ContinueOnError)
			flagSet.StringVar(&sessionDir, "session-dir", "", "session directory")
			return flagSet
		},
		Run: func([]string) error {
			session, err := env.session(sessionDir)
			if err != nil {
				return err
			}
			return session.Clear()
		},
	}
}

func unlockSession(env *Env, sessionDir, pinFile string) (*credential.Bundle, error) {
	session, err := env.session(sessionDir)
	if err != nil {
		return nil, err
	}
	record, err := session.Current()
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, credential.ErrNoSession
	}
	pin, err := env.readSecret(pinFile, "PIN: ")
	if err != nil {
		return nil, err
	}
	defer pin.Close()
	return session.Unlock(pin.String())
}
