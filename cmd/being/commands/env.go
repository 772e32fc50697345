// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/being/lib/credential"
	"github.com/bureau-foundation/being/lib/envelope"
	"github.com/bureau-foundation/being/lib/secret"
)

// SessionDirectoryVariable overrides the default session directory.
const SessionDirectoryVariable = "BEING_SESSION_DIR"

// Env is everything a command touches outside its flags.
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Prompt reads a secret interactively. Defaults to secret.Prompt.
	Prompt func(prompt string) (*secret.Buffer, error)

	// HTTPClient is used by register. Nil uses the idpclient default.
	HTTPClient *http.Client

	// Params overrides the envelope defaults for files and sessions.
	Params *envelope.Params

	// SessionDirectory holds the session record. Defaults to
	// $BEING_SESSION_DIR, then ~/.config/being/session.
	SessionDirectory string

	Logger *slog.Logger
}

// DefaultEnv returns the process environment.
func DefaultEnv() *Env {
	return &Env{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Prompt: secret.Prompt,
	}
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

func (e *Env) sessionDirectory() (string, error) {
	if e.SessionDirectory != "" {
		return e.SessionDirectory, nil
	}
	if directory := os.Getenv(SessionDirectoryVariable); directory != "" {
		return directory, nil
	}
	configDirectory, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating session directory: %w", err)
	}
	return filepath.Join(configDirectory, "being", "session"), nil
}

func (e *Env) session(directory string) (*credential.Session, error) {
	if directory == "" {
		var err error
		if directory, err = e.sessionDirectory(); err != nil {
			return nil, err
		}
	}
	storage, err := credential.NewFileStorage(directory)
	if err != nil {
		return nil, err
	}
	return credential.NewSession(credential.SessionConfig{
		Storage: storage,
		Params:  e.Params,
		Logger:  e.logger(),
	})
}

// readSecret returns the contents of path when set ("-" is stdin),
// otherwise prompts.
func (e *Env) readSecret(path, prompt string) (*secret.Buffer, error) {
	if path == "-" {
		return secret.ReadLine(e.Stdin)
	}
	if path != "" {
		return secret.ReadFromPath(path)
	}
	if e.Prompt == nil {
		return nil, fmt.Errorf("no prompt available; pass the secret with a file flag")
	}
	return e.Prompt(prompt)
}

// openCredentials reads and decrypts the credential file at path.
func (e *Env) openCredentials(path, passwordFile string) (*credential.Bundle, error) {
	file, err := credential.ReadFile(path)
	if err != nil {
		return nil, err
	}
	password, err := e.readSecret(passwordFile, "Password: ")
	if err != nil {
		return nil, err
	}
	defer password.Close()
	return credential.DecryptFile(file, password.Bytes())
}
