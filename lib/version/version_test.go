// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"bytes"
	"runtime"
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	savedCommit, savedTime, savedVersion := GitCommit, BuildTime, Version
	t.Cleanup(func() { GitCommit, BuildTime, Version = savedCommit, savedTime, savedVersion })

	GitCommit, BuildTime, Version = "abc1234", "2026-03-01T12:00:00Z", "1.2.3"
	if got, want := Info(), "1.2.3 (abc1234, 2026-03-01T12:00:00Z)"; got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}
}

func TestPrint(t *testing.T) {
	var buffer bytes.Buffer
	Print(&buffer, "being-idp")

	output := buffer.String()
	if !strings.HasPrefix(output, "being-idp "+Info()) {
		t.Errorf("Print output %q does not start with binary and Info", output)
	}
	if !strings.Contains(output, runtime.Version()) {
		t.Errorf("Print output %q lacks the Go version", output)
	}
}
