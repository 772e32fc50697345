// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

func TestReport(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   int
		output string
	}{
		{"plain", errors.New("boom"), 1, "error: boom\n"},
		{"exit_code", &ExitError{Code: 3, Err: errors.New("bad pin")}, 3, "error: bad pin\n"},
		{"wrapped_exit_code", fmt.Errorf("unlock: %w", &ExitError{Code: 4, Err: errors.New("locked")}), 4, "error: unlock: locked\n"},
		{"silent", &ExitError{Code: 2}, 2, ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var buffer bytes.Buffer
			if code := report(&buffer, test.err); code != test.code {
				t.Errorf("code = %d, want %d", code, test.code)
			}
			if buffer.String() != test.output {
				t.Errorf("output = %q, want %q", buffer.String(), test.output)
			}
		})
	}
}
