// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/bureau-foundation/being/cmd/being/commands"
	"github.com/bureau-foundation/being/lib/process"
)

func main() {
	if err := commands.Root(commands.DefaultEnv()).Execute(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}
