// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/being/cmd/being/cli"
	"github.com/bureau-foundation/being/lib/credential"
	"github.com/bureau-foundation/being/lib/handshake"
	"github.com/bureau-foundation/being/lib/idpclient"
)

// keySource selects where a command gets the being's keys: a
// credential file unlocked by password, or the session record
// unlocked by PIN.
type keySource struct {
	credentials  string
	passwordFile string
	useSession   bool
	sessionDir   string
	pinFile      string
}

func (k *keySource) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&k.credentials, "credentials", "", "credential file")
	flagSet.StringVar(&k.passwordFile, "password-file", "", "read the credential password from a file (- for stdin)")
	flagSet.BoolVar(&k.useSession, "session", false, "use the session record instead of a credential file")
	flagSet.StringVar(&k.sessionDir, "session-dir", "", "session directory (default: $"+SessionDirectoryVariable+" or ~/.config/being/session)")
	flagSet.StringVar(&k.pinFile, "pin-file", "", "read the session PIN from a file (- for stdin)")
}

func (k *keySource) open(env *Env) (*credential.Bundle, error) {
	switch {
	case k.useSession && k.credentials != "":
		return nil, fmt.Errorf("--session and --credentials are mutually exclusive")
	case k.useSession:
		return unlockSession(env, k.sessionDir, k.pinFile)
	case k.credentials != "":
		return env.openCredentials(k.credentials, k.passwordFile)
	default:
		return nil, fmt.Errorf("--credentials or --session is required")
	}
}

func authRequestCommand(env *Env) *cli.Command {
	var (
		keys   keySource
		intent string
	)
	return &cli.Command{
		Name:    "auth-request",
		Summary: "Print a signed auth request",
		Description: `Sign the being's public keys, and an optional intent, and print the
auth request JSON an IDP expects at the start of registration.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("auth-request", pflag.ContinueOnError)
			keys.register(flagSet)
			flagSet.StringVar(&intent, "intent", "", "intent text to sign with the keys")
			return flagSet
		},
		Run: func([]string) error {
			bundle, err := keys.open(env)
			if err != nil {
				return err
			}
			request, err := handshake.CreateAuthRequest(bundle.KeyMaterial(), handshake.AuthRequestOptions{
				Intent: intentBytes(intent),
			})
			if err != nil {
				return err
			}
			return cli.WriteJSON(env.Stdout, request)
		},
	}
}

func respondCommand(env *Env) *cli.Command {
	var (
		keys      keySource
		challenge string
	)
	return &cli.Command{
		Name:    "respond",
		Summary: "Answer an IDP challenge",
		Description: `Read an IDP challenge, verify the IDP's signature, decrypt the nonce,
and print the signed challenge response JSON.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("respond", pflag.ContinueOnError)
			keys.register(flagSet)
			flagSet.StringVar(&challenge, "challenge", "-", "challenge JSON file (- for stdin)")
			return flagSet
		},
		Run: func([]string) error {
			var idpChallenge handshake.IdpChallenge
			if err := cli.ReadJSON(challenge, env.Stdin, &idpChallenge); err != nil {
				return err
			}
			bundle, err := keys.open(env)
			if err != nil {
				return err
			}
			response, err := handshake.CreateChallengeResponse(idpChallenge, bundle.KeyMaterial())
			if err != nil {
				return err
			}
			return cli.WriteJSON(env.Stdout, response)
		},
	}
}

func registerCommand(env *Env) *cli.Command {
	var (
		keys   keySource
		idpURL string
		name   string
		intent string
	)
	return &cli.Command{
		Name:    "register",
		Summary: "Register the being with an IDP",
		Description: `Run the full registration handshake against an IDP and print the
resulting being record. Registering the same keys again keeps the
being's IDP id.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("register", pflag.ContinueOnError)
			keys.register(flagSet)
			flagSet.StringVar(&idpURL, "idp", "", "IDP base URL (required)")
			flagSet.StringVar(&name, "name", "", "being name (default: the name in the credentials)")
			flagSet.StringVar(&intent, "intent", "", "intent text to sign with the keys")
			return flagSet
		},
		Run: func([]string) error {
			if idpURL == "" {
				return fmt.Errorf("--idp is required")
			}
			bundle, err := keys.open(env)
			if err != nil {
				return err
			}
			if name == "" {
				name = bundle.BeingName
			}

			client, err := idpclient.New(idpclient.Config{
				BaseURL:    idpURL,
				HTTPClient: env.HTTPClient,
				Logger:     env.logger(),
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			being, err := client.Register(ctx, name, bundle.KeyMaterial(), idpclient.RegisterOptions{
				Intent: intentBytes(intent),
			})
			if err != nil {
				return err
			}
			return cli.WriteJSON(env.Stdout, being)
		},
	}
}

func intentBytes(intent string) []byte {
	if intent == "" {
		return nil
	}
	return handshake.IntentString(intent)
}
