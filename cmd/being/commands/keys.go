// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/being/cmd/being/cli"
	"github.com/bureau-foundation/being/lib/credential"
	"github.com/bureau-foundation/being/lib/identity"
)

func keygenCommand(env *Env) *cli.Command {
	var (
		out          string
		beingID      string
		name         string
		passwordFile string
		force        bool
	)
	return &cli.Command{
		Name:    "keygen",
		Summary: "Generate keys and write a credential file",
		Description: `Generate a fresh Ed25519 signing key pair and age encryption key pair
and seal them in a password-protected credential file.`,
		Usage: "being keygen --out <file> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("keygen", pflag.ContinueOnError)
			flagSet.StringVar(&out, "out", "", "credential file to write (required)")
			flagSet.StringVar(&beingID, "id", "", "being id (default: a random UUID)")
			flagSet.StringVar(&name, "name", "", "being name recorded in the file")
			flagSet.StringVar(&passwordFile, "password-file", "", "read the password from a file (- for stdin)")
			flagSet.BoolVar(&force, "force", false, "overwrite an existing file")
			return flagSet
		},
		Run: func([]string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			if !force {
				if _, err := os.Stat(out); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", out)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}
			if beingID == "" {
				beingID = uuid.NewString()
			}

			material, err := identity.GenerateBeingKeyMaterial()
			if err != nil {
				return err
			}
			bundle := &credential.Bundle{
				BeingID:    beingID,
				BeingName:  name,
				Signing:    material.Signing,
				Encryption: material.Encryption,
			}

			password, err := env.readSecret(passwordFile, "New password: ")
			if err != nil {
				return err
			}
			defer password.Close()

			file, err := credential.CreateFile(bundle, password.Bytes(), credential.Options{Params: env.Params})
			if err != nil {
				return err
			}
			if err := credential.WriteFile(out, file); err != nil {
				return err
			}

			fingerprint, _ := identity.Fingerprint(material.Signing.PublicKey)
			fmt.Fprintf(env.Stdout, "wrote %s\n  being:       %s\n  fingerprint: %s\n", out, beingID, fingerprint)
			return nil
		},
	}
}

// inspectResult is the public view of a credential file.
type inspectResult struct {
	Kind                string    `json:"kind"`
	Version             int       `json:"version"`
	CreatedAt           time.Time `json:"createdAt"`
	BeingID             string    `json:"beingId"`
	BeingName           string    `json:"beingName,omitempty"`
	Fingerprint         string    `json:"fingerprint"`
	SigningPublicKey    string    `json:"signingPublicKey"`
	EncryptionPublicKey string    `json:"encryptionPublicKey"`
}

func inspectCommand(env *Env) *cli.Command {
	var outputJSON bool
	return &cli.Command{
		Name:    "inspect",
		Summary: "Show the public parts of a credential file",
		Usage:   "being inspect <file> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			flagSet.BoolVar(&outputJSON, "json", false, "output as JSON")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: being inspect <file>")
			}
			file, err := credential.ReadFile(args[0])
			if err != nil {
				return err
			}
			fingerprint, err := identity.Fingerprint(file.Signing.PublicKey)
			if err != nil {
				return err
			}
			result := inspectResult{
				Kind:                file.Kind,
				Version:             file.Version,
				CreatedAt:           file.CreatedAt,
				BeingID:             file.Being.ID,
				BeingName:           file.Being.Name,
				Fingerprint:         fingerprint,
				SigningPublicKey:    file.Signing.PublicKey,
				EncryptionPublicKey: file.Encryption.PublicKey,
			}
			if outputJSON {
				return cli.WriteJSON(env.Stdout, result)
			}

			tw := tabwriter.NewWriter(env.Stdout, 2, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "kind:\t%s (version %d)\n", result.Kind, result.Version)
			fmt.Fprintf(tw, "created:\t%s\n", result.CreatedAt.Format(time.RFC3339))
			fmt.Fprintf(tw, "being:\t%s\n", result.BeingID)
			if result.BeingName != "" {
				fmt.Fprintf(tw, "name:\t%s\n", result.BeingName)
			}
			fmt.Fprintf(tw, "fingerprint:\t%s\n", result.Fingerprint)
			fmt.Fprintf(tw, "encryption key:\t%s\n", result.EncryptionPublicKey)
			return tw.Flush()
		},
	}
}
