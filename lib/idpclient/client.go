// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package idpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bureau-foundation/being/lib/handshake"
	"github.com/bureau-foundation/being/lib/identity"
	"github.com/bureau-foundation/being/lib/registration"
)

// maxResponseSize bounds response body reads. Registration responses
// are a few kilobytes.
const maxResponseSize int64 = 1 << 20

// DefaultTimeout is used when Config.HTTPClient is nil.
const DefaultTimeout = 30 * time.Second

// Config configures a Client.
type Config struct {
	// BaseURL is the being-idp root, e.g. "http://127.0.0.1:8470".
	// Required.
	BaseURL string

	// HTTPClient defaults to a client with DefaultTimeout.
	HTTPClient *http.Client

	// Logger defaults to discarding.
	Logger *slog.Logger
}

// Client talks to one being-idp.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// New returns a Client for cfg.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("idpclient: BaseURL is required")
	}
	baseURL, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("idpclient: parsing BaseURL: %w", err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("idpclient: BaseURL scheme must be http or https, got %q", baseURL.Scheme)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{baseURL: baseURL, httpClient: httpClient, logger: logger}, nil
}

// Start submits an auth request and returns the IDP's challenge.
func (c *Client) Start(ctx context.Context, request registration.StartRequest) (*handshake.IdpChallenge, error) {
	var challenge handshake.IdpChallenge
	if err := c.post(ctx, PathStart, request, &challenge); err != nil {
		return nil, err
	}
	return &challenge, nil
}

// Complete submits a challenge response and returns the registered
// being.
func (c *Client) Complete(ctx context.Context, request registration.CompleteRequest) (*registration.BeingRecord, error) {
	var being registration.BeingRecord
	if err := c.post(ctx, PathComplete, request, &being); err != nil {
		return nil, err
	}
	return &being, nil
}

// Health returns nil if the IDP answers its health check.
func (c *Client) Health(ctx context.Context) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(PathHealth), nil)
	if err != nil {
		return fmt.Errorf("idpclient: building health request: %w", err)
	}
	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("idpclient: health check: %w", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return c.decodeError(response)
	}
	return nil
}

// RegisterOptions configures Register.
type RegisterOptions struct {
	// Intent is signed into the auth request.
	Intent []byte
}

// Register runs the full handshake for material under name.
func (c *Client) Register(ctx context.Context, name string, material identity.BeingKeyMaterial, options RegisterOptions) (*registration.BeingRecord, error) {
	authRequest, err := handshake.CreateAuthRequest(material, handshake.AuthRequestOptions{Intent: options.Intent})
	if err != nil {
		return nil, fmt.Errorf("idpclient: creating auth request: %w", err)
	}

	challenge, err := c.Start(ctx, registration.StartRequest{Name: name, Request: *authRequest})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("challenge received", "challenge_id", challenge.ChallengeID)

	response, err := handshake.CreateChallengeResponse(*challenge, material)
	if err != nil {
		return nil, fmt.Errorf("idpclient: answering challenge %s: %w", challenge.ChallengeID, err)
	}

	being, err := c.Complete(ctx, registration.CompleteRequest{Response: *response})
	if err != nil {
		return nil, err
	}
	c.logger.Info("being registered", "being_id", being.ID, "challenge_id", challenge.ChallengeID)
	return being, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.JoinPath(path).String()
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("idpclient: encoding %s request: %w", path, err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("idpclient: building %s request: %w", path, err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("idpclient: POST %s: %w", path, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return c.decodeError(response)
	}

	data, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("idpclient: reading %s response: %w", path, err)
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("idpclient: decoding %s response: %w", path, err)
	}
	return nil
}

// decodeError turns a non-2xx response into an *Error. A body that is
// not an ErrorResponse is kept verbatim as the message.
func (c *Client) decodeError(response *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))

	var body ErrorResponse
	message := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		message = body.Error
	}
	if message == "" {
		message = http.StatusText(response.StatusCode)
	}
	return newError(response.StatusCode, message)
}
