// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package registration

import (
	"context"
	"errors"
	"time"

	"github.com/bureau-foundation/being/lib/handshake"
)

var (
	// ErrMessageMismatch is returned by Start when the echoed message
	// does not equal the recomputed canonical message.
	ErrMessageMismatch = errors.New("registration: auth request message does not match its payload")

	// ErrInvalidName is returned by Start for an empty or overlong
	// being name.
	ErrInvalidName = errors.New("registration: invalid being name")

	// ErrChallengeNotFound is returned when a challenge is absent,
	// expired, or no longer pending.
	ErrChallengeNotFound = errors.New("challenge not found")

	// ErrResponseVerificationFailed is returned by Complete when the
	// challenge response does not verify.
	ErrResponseVerificationFailed = errors.New("challenge response verification failed")
)

// MaxNameLength is the maximum being name length in runes.
const MaxNameLength = 128

// ChallengeStatus is the persisted state of a registration challenge.
type ChallengeStatus string

const (
	StatusPending   ChallengeStatus = "pending"
	StatusCompleted ChallengeStatus = "completed"
	StatusFailed    ChallengeStatus = "failed"
)

// ChallengeRecord is the unit a Store persists for each Start.
type ChallengeRecord struct {
	handshake.IdpChallengeRecord

	BeingName     string    `json:"beingName"`
	CreatedAt     time.Time `json:"createdAt"`
	IntentBase64  string    `json:"intentBase64,omitempty"`
	MessageBase64 string    `json:"messageBase64"`
}

// Store persists pending challenges.
type Store interface {
	// PersistChallenge stores record as pending. The record must be
	// loadable once PersistChallenge returns.
	PersistChallenge(ctx context.Context, record *ChallengeRecord) error

	// LoadChallenge returns the pending record for challengeID, or nil
	// with no error if there is none.
	LoadChallenge(ctx context.Context, challengeID string) (*ChallengeRecord, error)

	// CompleteChallenge atomically moves a pending record to
	// completed. It returns ErrChallengeNotFound if the record was not
	// pending, including when a concurrent caller consumed it first.
	CompleteChallenge(ctx context.Context, challengeID string) error

	// FailChallenge moves a pending record to failed. Records that are
	// not pending are left alone.
	FailChallenge(ctx context.Context, challengeID string) error
}

// UpsertBeingRequest carries a verified being identity to the
// upserter.
type UpsertBeingRequest struct {
	Name                string
	SigningPublicKey    string
	EncryptionPublicKey string
	IntentBase64        string
	MessageBase64       string
}

// BeingRecord is a registered being as returned by the upserter.
type BeingRecord struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	SigningPublicKey    string    `json:"signingPublicKey"`
	EncryptionPublicKey string    `json:"encryptionPublicKey"`
	IntentBase64        string    `json:"intentBase64,omitempty"`
	MessageBase64       string    `json:"messageBase64"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// BeingUpserter creates or updates the being record for a verified
// identity.
type BeingUpserter interface {
	UpsertBeing(ctx context.Context, request UpsertBeingRequest) (*BeingRecord, error)
}

// StartRequest is the input to Service.Start.
type StartRequest struct {
	Name    string                `json:"name"`
	Request handshake.AuthRequest `json:"request"`
}

// CompleteRequest is the input to Service.Complete.
type CompleteRequest struct {
	Response handshake.ChallengeResponse `json:"response"`
}
