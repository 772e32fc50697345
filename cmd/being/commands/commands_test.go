// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/bureau-foundation/being/lib/challengestore"
	"github.com/bureau-foundation/being/lib/credential"
	"github.com/bureau-foundation/being/lib/envelope"
	"github.com/bureau-foundation/being/lib/handshake"
	"github.com/bureau-foundation/being/lib/idpclient"
	"github.com/bureau-foundation/being/lib/registration"
	"github.com/bureau-foundation/being/lib/secret"
)

type testEnv struct {
	*Env
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
	directory string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	directory := t.TempDir()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &testEnv{
		Env: &Env{
			Stdin:  strings.NewReader(""),
			Stdout: stdout,
			Stderr: stderr,
			Prompt: func(string) (*secret.Buffer, error) {
				return nil, errors.New("unexpected prompt")
			},
			Params:           &envelope.Params{Iterations: 1000},
			SessionDirectory: filepath.Join(directory, "session"),
		},
		stdout:    stdout,
		stderr:    stderr,
		directory: directory,
	}
}

// run executes a fresh command tree and resets the output buffers
// first, so each call sees only its own output.
func (e *testEnv) run(t *testing.T, args ...string) error {
	t.Helper()
	e.stdout.Reset()
	e.stderr.Reset()
	return Root(e.Env).Execute(args)
}

func (e *testEnv) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.directory, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// keygen writes scout.json under password "correct horse" and returns
// its path and the password file path.
func (e *testEnv) keygen(t *testing.T) (string, string) {
	t.Helper()
	passwordFile := e.writeFile(t, "password", "correct horse\n")
	out := filepath.Join(e.directory, "scout.json")
	if err := e.run(t, "keygen", "--out", out, "--name", "scout", "--id", "being-1", "--password-file", passwordFile); err != nil {
		t.Fatalf("keygen: %v", err)
	}
	return out, passwordFile
}

func TestKeygenAndInspect(t *testing.T) {
	env := newTestEnv(t)
	out, passwordFile := env.keygen(t)
	if !strings.Contains(env.stdout.String(), "being-1") || !strings.Contains(env.stdout.String(), "fingerprint: being1_") {
		t.Errorf("keygen output = %q", env.stdout.String())
	}

	info, err := os.Stat(out)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("credential file mode = %v, want 0600", info.Mode().Perm())
	}

	if err := env.run(t, "keygen", "--out", out, "--password-file", passwordFile); err == nil {
		t.Error("keygen overwrote an existing file without --force")
	}

	if err := env.run(t, "inspect", "--json", out); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	var result inspectResult
	if err := json.Unmarshal(env.stdout.Bytes(), &result); err != nil {
		t.Fatalf("inspect --json output: %v\n%s", err, env.stdout.String())
	}
	if result.BeingID != "being-1" || result.BeingName != "scout" {
		t.Errorf("inspect = %+v", result)
	}
	if result.Kind != credential.FileKind || !strings.HasPrefix(result.Fingerprint, "being1_") {
		t.Errorf("inspect = %+v", result)
	}
	if strings.Contains(env.stdout.String(), "PRIVATE") {
		t.Error("inspect printed private key material")
	}

	if err := env.run(t, "inspect", out); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.Contains(env.stdout.String(), "name:") || !strings.Contains(env.stdout.String(), "scout") {
		t.Errorf("inspect text output = %q", env.stdout.String())
	}
}

func TestAuthRequestAndRespond(t *testing.T) {
	env := newTestEnv(t)
	out, passwordFile := env.keygen(t)

	if err := env.run(t, "auth-request", "--credentials", out, "--password-file", passwordFile, "--intent", "register-being"); err != nil {
		t.Fatalf("auth-request: %v", err)
	}
	var authRequest handshake.AuthRequest
	if err := json.Unmarshal(env.stdout.Bytes(), &authRequest); err != nil {
		t.Fatal(err)
	}
	verified, err := handshake.VerifyAuthRequest(authRequest.Payload)
	if err != nil {
		t.Fatalf("VerifyAuthRequest: %v", err)
	}
	if string(verified.Intent) != "register-being" {
		t.Errorf("intent = %q", verified.Intent)
	}

	challenge, record, err := handshake.CreateIdpChallenge(verified, handshake.ChallengeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	challengeJSON, _ := json.Marshal(challenge)
	challengePath := env.writeFile(t, "challenge.json", string(challengeJSON))

	if err := env.run(t, "respond", "--credentials", out, "--password-file", passwordFile, "--challenge", challengePath); err != nil {
		t.Fatalf("respond: %v", err)
	}
	var response handshake.ChallengeResponse
	if err := json.Unmarshal(env.stdout.Bytes(), &response); err != nil {
		t.Fatal(err)
	}
	if !handshake.VerifyChallengeResponse(response, *record) {
		t.Error("challenge response from respond does not verify")
	}

	// The challenge can also arrive on stdin.
	env.Stdin = bytes.NewReader(challengeJSON)
	if err := env.run(t, "respond", "--credentials", out, "--password-file", passwordFile); err != nil {
		t.Fatalf("respond from stdin: %v", err)
	}
}

func TestWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	out, _ := env.keygen(t)
	wrong := env.writeFile(t, "wrong", "battery staple")

	err := env.run(t, "auth-request", "--credentials", out, "--password-file", wrong)
	if !errors.Is(err, envelope.ErrDecryptionFailed) {
		t.Errorf("auth-request with wrong password = %v, want ErrDecryptionFailed", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	out, passwordFile := env.keygen(t)

	if err := env.run(t, "session", "create", "--credentials", out, "--password-file", passwordFile); err != nil {
		t.Fatalf("session create: %v", err)
	}
	pin := strings.TrimSpace(env.stdout.String())
	if !regexp.MustCompile(`^[0-9]{4}$`).MatchString(pin) {
		t.Fatalf("session create printed %q, want a four-digit PIN", pin)
	}

	pinFile := env.writeFile(t, "pin", pin+"\n")
	if err := env.run(t, "session", "unlock", "--pin-file", pinFile); err != nil {
		t.Fatalf("session unlock: %v", err)
	}
	if !strings.Contains(env.stdout.String(), "being-1") {
		t.Errorf("session unlock output = %q", env.stdout.String())
	}

	// Keys from the session drive the handshake commands too.
	env.Stdin = strings.NewReader(pin + "\n")
	if err := env.run(t, "auth-request", "--session", "--pin-file", "-"); err != nil {
		t.Fatalf("auth-request --session: %v", err)
	}

	wrongPIN := fmt.Sprintf("%04d", (atoi(t, pin)+1)%10000)
	if err := env.run(t, "session", "unlock", "--pin-file", env.writeFile(t, "wrong-pin", wrongPIN)); !errors.Is(err, envelope.ErrDecryptionFailed) {
		t.Errorf("unlock with wrong PIN = %v, want ErrDecryptionFailed", err)
	}

	if err := env.run(t, "session", "clear"); err != nil {
		t.Fatalf("session clear: %v", err)
	}
	if err := env.run(t, "session", "unlock", "--pin-file", pinFile); !errors.Is(err, credential.ErrNoSession) {
		t.Errorf("unlock after clear = %v, want ErrNoSession", err)
	}
}

func atoi(t *testing.T, digits string) int {
	t.Helper()
	var value int
	if _, err := fmt.Sscanf(digits, "%d", &value); err != nil {
		t.Fatal(err)
	}
	return value
}

type memoryBeings struct {
	mu      sync.Mutex
	records map[string]*registration.BeingRecord
}

func (b *memoryBeings) UpsertBeing(_ context.Context, request registration.UpsertBeingRequest) (*registration.BeingRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.records == nil {
		b.records = make(map[string]*registration.BeingRecord)
	}
	record, ok := b.records[request.SigningPublicKey]
	if !ok {
		record = &registration.BeingRecord{ID: fmt.Sprintf("idp-%d", len(b.records)+1)}
		b.records[request.SigningPublicKey] = record
	}
	record.Name = request.Name
	record.SigningPublicKey = request.SigningPublicKey
	record.EncryptionPublicKey = request.EncryptionPublicKey
	record.IntentBase64 = request.IntentBase64
	record.MessageBase64 = request.MessageBase64
	result := *record
	return &result, nil
}

func newTestIDP(t *testing.T) *httptest.Server {
	t.Helper()
	service, err := registration.NewService(registration.Config{
		Store:  challengestore.NewMemory(challengestore.MemoryConfig{}),
		Beings: &memoryBeings{},
	})
	if err != nil {
		t.Fatal(err)
	}
	respond := func(writer http.ResponseWriter, value any, err error) {
		writer.Header().Set("Content-Type", "application/json")
		if err != nil {
			status, _ := idpclient.StatusForError(err)
			writer.WriteHeader(status)
			json.NewEncoder(writer).Encode(idpclient.ErrorResponse{Error: err.Error()})
			return
		}
		json.NewEncoder(writer).Encode(value)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+idpclient.PathStart, func(writer http.ResponseWriter, request *http.Request) {
		var body registration.StartRequest
		json.NewDecoder(request.Body).Decode(&body)
		challenge, err := service.Start(request.Context(), body)
		respond(writer, challenge, err)
	})
	mux.HandleFunc("POST "+idpclient.PathComplete, func(writer http.ResponseWriter, request *http.Request) {
		var body registration.CompleteRequest
		json.NewDecoder(request.Body).Decode(&body)
		being, err := service.Complete(request.Context(), body)
		respond(writer, being, err)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	out, passwordFile := env.keygen(t)
	idp := newTestIDP(t)
	env.HTTPClient = idp.Client()

	if err := env.run(t, "register", "--credentials", out, "--password-file", passwordFile, "--idp", idp.URL); err != nil {
		t.Fatalf("register: %v", err)
	}
	var first registration.BeingRecord
	if err := json.Unmarshal(env.stdout.Bytes(), &first); err != nil {
		t.Fatal(err)
	}
	if first.Name != "scout" {
		t.Errorf("registered name = %q, want the credential file's name", first.Name)
	}

	if err := env.run(t, "register", "--credentials", out, "--password-file", passwordFile, "--idp", idp.URL, "--name", "scout-2"); err != nil {
		t.Fatalf("second register: %v", err)
	}
	var second registration.BeingRecord
	if err := json.Unmarshal(env.stdout.Bytes(), &second); err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID || second.Name != "scout-2" {
		t.Errorf("second registration = %+v, first = %+v", second, first)
	}

	if err := env.run(t, "register", "--credentials", out, "--password-file", passwordFile); err == nil {
		t.Error("register without --idp succeeded")
	}
}

func TestKeySourceErrors(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run(t, "auth-request"); err == nil || !strings.Contains(err.Error(), "--credentials or --session") {
		t.Errorf("auth-request without keys = %v", err)
	}
	if err := env.run(t, "auth-request", "--session", "--credentials", "x.json"); err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("auth-request with both sources = %v", err)
	}
	if err := env.run(t, "auth-request", "--credentials", filepath.Join(env.directory, "missing.json"), "--password-file", "-"); err == nil {
		t.Error("auth-request with a missing credential file succeeded")
	}
}
