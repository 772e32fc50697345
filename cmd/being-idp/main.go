// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/being/lib/config"
	"github.com/bureau-foundation/being/lib/process"
	"github.com/bureau-foundation/being/lib/service"
	"github.com/bureau-foundation/being/lib/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("being-idp", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to being-idp.yaml (default: $"+config.EnvironmentVariable+")")
	showVersion := flags.Bool("version", false, "print version information and exit")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if *showVersion {
		version.Print(os.Stdout, "being-idp")
		return nil
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	idp, err := newDaemon(cfg, daemonOptions{Logger: logger})
	if err != nil {
		return err
	}
	defer idp.Close()

	readTimeout, _ := cfg.ReadTimeout()
	writeTimeout, _ := cfg.WriteTimeout()
	purgeInterval, _ := cfg.PurgeInterval()

	server, err := service.NewHTTPServer(service.HTTPServerConfig{
		Address:      cfg.Listen.Address,
		Handler:      idp.handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	go idp.purgeLoop(ctx, purgeInterval)

	logger.Info("being-idp running",
		"environment", cfg.Environment,
		"storage_backend", cfg.Storage.Backend,
		"version", version.Info(),
	)
	return server.Serve(ctx)
}

// loadConfig reads path, or BEING_IDP_CONFIG when path is empty, and
// validates the result.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.EnsurePaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}
