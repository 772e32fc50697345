// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/being/lib/config"
)

func TestNewLogger(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buffer bytes.Buffer
		logger, err := newLogger(config.LoggingConfig{Level: "info", Format: "json"}, &buffer)
		if err != nil {
			t.Fatal(err)
		}
		logger.Debug("hidden")
		logger.Info("registration challenge issued", "challenge_id", "abc")

		var entry map[string]any
		if err := json.Unmarshal(buffer.Bytes(), &entry); err != nil {
			t.Fatalf("output is not a single JSON line: %q", buffer.String())
		}
		if entry["challenge_id"] != "abc" {
			t.Errorf("entry = %v", entry)
		}
	})

	t.Run("text_debug", func(t *testing.T) {
		var buffer bytes.Buffer
		logger, err := newLogger(config.LoggingConfig{Level: "debug", Format: "text"}, &buffer)
		if err != nil {
			t.Fatal(err)
		}
		logger.Debug("challenge received")
		if !strings.Contains(buffer.String(), "msg=\"challenge received\"") {
			t.Errorf("output = %q", buffer.String())
		}
	})

	for _, logging := range []config.LoggingConfig{
		{Level: "chatty", Format: "text"},
		{Level: "info", Format: "xml"},
	} {
		if _, err := newLogger(logging, &bytes.Buffer{}); err == nil {
			t.Errorf("newLogger(%+v) succeeded", logging)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "being-idp.yaml")
	content := "storage:\n  path: " + filepath.Join(root, "data", "idp.db") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "data")); err != nil {
		t.Errorf("database directory not created: %v", err)
	}

	t.Setenv(config.EnvironmentVariable, path)
	fromEnvironment, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig from environment: %v", err)
	}
	if fromEnvironment.Storage.Path != cfg.Storage.Path {
		t.Errorf("environment path %s, flag path %s", fromEnvironment.Storage.Path, cfg.Storage.Path)
	}

	invalid := filepath.Join(root, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("environment: qa\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(invalid); err == nil || !strings.Contains(err.Error(), "invalid environment") {
		t.Errorf("loadConfig(invalid) = %v", err)
	}
}

func TestRun_VersionAndHelp(t *testing.T) {
	if err := run([]string{"--version"}); err != nil {
		t.Errorf("run --version: %v", err)
	}
	if err := run([]string{"--no-such-flag"}); err == nil {
		t.Error("run accepted an unknown flag")
	}
}
