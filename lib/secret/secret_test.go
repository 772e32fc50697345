// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFromBytes_ZeroesSource(t *testing.T) {
	source := []byte("correct horse battery staple")
	buffer, err := NewFromBytes(source)
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	defer buffer.Close()

	if got := buffer.String(); got != "correct horse battery staple" {
		t.Errorf("String() = %q", got)
	}
	for index, value := range source {
		if value != 0 {
			t.Fatalf("source byte %d not zeroed", index)
		}
	}
}

func TestNew_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -4} {
		if _, err := New(size); err == nil {
			t.Errorf("New(%d) succeeded, want error", size)
		}
	}
}

func TestBuffer_Equal(t *testing.T) {
	buffer, err := NewFromBytes([]byte("1234"))
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	defer buffer.Close()

	if !buffer.Equal([]byte("1234")) {
		t.Error("Equal(same) = false")
	}
	if buffer.Equal([]byte("1235")) {
		t.Error("Equal(different) = true")
	}
	if buffer.Equal([]byte("123")) {
		t.Error("Equal(shorter) = true")
	}
}

func TestBuffer_CloseIdempotentAndPanicsAfter(t *testing.T) {
	buffer, err := NewFromBytes([]byte("pin"))
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if buffer.Len() != 0 {
		t.Errorf("Len() after Close = %d, want 0", buffer.Len())
	}

	defer func() {
		if recover() == nil {
			t.Error("Bytes() after Close did not panic")
		}
	}()
	buffer.Bytes()
}

func TestReadFromPath_TrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "password")
	if err := os.WriteFile(path, []byte("  hunter2 \n"), 0600); err != nil {
		t.Fatal(err)
	}
	buffer, err := ReadFromPath(path)
	if err != nil {
		t.Fatalf("ReadFromPath: %v", err)
	}
	defer buffer.Close()
	if got := buffer.String(); got != "hunter2" {
		t.Errorf("ReadFromPath = %q, want %q", got, "hunter2")
	}
}

func TestReadFromPath_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, []byte(" \n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFromPath(path); err == nil {
		t.Fatal("ReadFromPath(whitespace) succeeded, want error")
	}
}

func TestReadLine_FirstLineOnly(t *testing.T) {
	buffer, err := ReadLine(strings.NewReader("0427\nignored\n"))
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	defer buffer.Close()
	if got := buffer.String(); got != "0427" {
		t.Errorf("ReadLine = %q, want %q", got, "0427")
	}
}

func TestReadLine_NoInput(t *testing.T) {
	if _, err := ReadLine(strings.NewReader("")); err == nil {
		t.Fatal("ReadLine(empty) succeeded, want error")
	}
}
