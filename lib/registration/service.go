// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/bureau-foundation/being/lib/clock"
	"github.com/bureau-foundation/being/lib/handshake"
	"github.com/bureau-foundation/being/lib/identity"
	"github.com/bureau-foundation/being/lib/wire"
)

// Config holds the collaborators for a Service. Store and Beings are
// required.
type Config struct {
	Store  Store
	Beings BeingUpserter

	// Clock stamps CreatedAt on new records. Nil means the real clock.
	Clock clock.Clock

	// Logger receives one event per Start and Complete. Nil discards.
	Logger *slog.Logger

	// Metrics counts outcomes. Nil creates unregistered counters.
	Metrics *Metrics

	// NonceLength overrides the handshake default.
	NonceLength int
}

// Service runs registration handshakes. It holds no per-challenge
// state of its own; everything lives in the Store.
type Service struct {
	store       Store
	beings      BeingUpserter
	clock       clock.Clock
	logger      *slog.Logger
	metrics     *Metrics
	nonceLength int
}

// NewService validates cfg and returns a Service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("registration: Store is required")
	}
	if cfg.Beings == nil {
		return nil, fmt.Errorf("registration: Beings is required")
	}
	if cfg.NonceLength < 0 {
		return nil, fmt.Errorf("registration: NonceLength must not be negative")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	metrics := cfg.Metrics
	if metrics == nil {
		// Unregistered counters cannot fail to register.
		metrics, _ = NewMetrics(nil)
	}

	return &Service{
		store:       cfg.Store,
		beings:      cfg.Beings,
		clock:       clock.OrReal(cfg.Clock),
		logger:      logger,
		metrics:     metrics,
		nonceLength: cfg.NonceLength,
	}, nil
}

// Start verifies request, issues a challenge, and persists its record.
// Only the public challenge is returned.
func (s *Service) Start(ctx context.Context, request StartRequest) (*handshake.IdpChallenge, error) {
	verified, err := handshake.VerifyAuthRequest(request.Request.Payload)
	if err != nil {
		s.metrics.Starts.WithLabelValues(resultInvalidRequest).Inc()
		s.logger.Warn("registration start rejected", "reason", "auth request", "error", err)
		return nil, err
	}
	fingerprint := s.fingerprint(verified.SigningPublicKey)

	messageBase64 := wire.EncodeBase64(verified.Message)
	if messageBase64 != request.Request.Message {
		s.metrics.Starts.WithLabelValues(resultMismatch).Inc()
		s.logger.Warn("registration start rejected",
			"reason", "message mismatch",
			"being_fingerprint", fingerprint,
		)
		return nil, ErrMessageMismatch
	}

	name, err := normalizeName(request.Name)
	if err != nil {
		s.metrics.Starts.WithLabelValues(resultInvalidName).Inc()
		s.logger.Warn("registration start rejected",
			"reason", "name",
			"being_fingerprint", fingerprint,
			"error", err,
		)
		return nil, err
	}

	challenge, challengeRecord, err := handshake.CreateIdpChallenge(verified, handshake.ChallengeOptions{
		NonceLength: s.nonceLength,
	})
	if err != nil {
		s.metrics.Starts.WithLabelValues(resultError).Inc()
		return nil, fmt.Errorf("registration: issuing challenge: %w", err)
	}

	record := &ChallengeRecord{
		IdpChallengeRecord: *challengeRecord,
		BeingName:          name,
		CreatedAt:          s.clock.Now().UTC(),
		MessageBase64:      messageBase64,
	}
	if len(verified.Intent) > 0 {
		record.IntentBase64 = wire.EncodeBase64(verified.Intent)
	}
	if err := s.store.PersistChallenge(ctx, record); err != nil {
		s.metrics.Starts.WithLabelValues(resultError).Inc()
		return nil, fmt.Errorf("registration: persisting challenge: %w", err)
	}

	s.metrics.Starts.WithLabelValues(resultSuccess).Inc()
	s.logger.Info("registration challenge issued",
		"challenge_id", challenge.ChallengeID,
		"being_fingerprint", fingerprint,
		"being_name", name,
	)
	return challenge, nil
}

// Complete verifies the response to a pending challenge, consumes the
// challenge, and upserts the being.
func (s *Service) Complete(ctx context.Context, request CompleteRequest) (*BeingRecord, error) {
	challengeID := request.Response.ChallengeID

	record, err := s.store.LoadChallenge(ctx, challengeID)
	if err != nil {
		s.metrics.Completions.WithLabelValues(resultError).Inc()
		return nil, fmt.Errorf("registration: loading challenge: %w", err)
	}
	if record == nil {
		s.metrics.Completions.WithLabelValues(resultNotFound).Inc()
		s.logger.Warn("registration complete rejected", "reason", "not found", "challenge_id", challengeID)
		return nil, ErrChallengeNotFound
	}
	fingerprint := s.fingerprint(record.BeingSigningPublicKey)

	if !handshake.VerifyChallengeResponse(request.Response, record.IdpChallengeRecord) {
		if err := s.store.FailChallenge(ctx, challengeID); err != nil {
			s.logger.Error("marking challenge failed",
				"challenge_id", challengeID,
				"error", err,
			)
		}
		s.metrics.Completions.WithLabelValues(resultVerifyFailed).Inc()
		s.logger.Warn("registration complete rejected",
			"reason", "verification failed",
			"challenge_id", challengeID,
			"being_fingerprint", fingerprint,
		)
		return nil, ErrResponseVerificationFailed
	}

	if err := s.store.CompleteChallenge(ctx, challengeID); err != nil {
		if errors.Is(err, ErrChallengeNotFound) {
			s.metrics.Completions.WithLabelValues(resultNotFound).Inc()
			s.logger.Warn("registration complete rejected",
				"reason", "consumed concurrently",
				"challenge_id", challengeID,
			)
			return nil, ErrChallengeNotFound
		}
		s.metrics.Completions.WithLabelValues(resultError).Inc()
		return nil, fmt.Errorf("registration: consuming challenge: %w", err)
	}

	being, err := s.beings.UpsertBeing(ctx, UpsertBeingRequest{
		Name:                record.BeingName,
		SigningPublicKey:    record.BeingSigningPublicKey,
		EncryptionPublicKey: record.BeingEncryptionPublicKey,
		IntentBase64:        record.IntentBase64,
		MessageBase64:       record.MessageBase64,
	})
	if err != nil {
		s.metrics.Completions.WithLabelValues(resultError).Inc()
		s.logger.Error("upserting being",
			"challenge_id", challengeID,
			"being_fingerprint", fingerprint,
			"error", err,
		)
		return nil, fmt.Errorf("registration: upserting being: %w", err)
	}

	s.metrics.Completions.WithLabelValues(resultSuccess).Inc()
	s.logger.Info("being registered",
		"challenge_id", challengeID,
		"being_id", being.ID,
		"being_fingerprint", fingerprint,
	)
	return being, nil
}

// normalizeName trims surrounding whitespace and enforces the length
// bounds.
func normalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if !utf8.ValidString(trimmed) {
		return "", fmt.Errorf("%w: name is not valid UTF-8", ErrInvalidName)
	}
	if length := utf8.RuneCountInString(trimmed); length > MaxNameLength {
		return "", fmt.Errorf("%w: name is %d characters, maximum is %d", ErrInvalidName, length, MaxNameLength)
	}
	return trimmed, nil
}

// fingerprint returns the log identifier for a being signing key, or ""
// when the stored key does not parse.
func (s *Service) fingerprint(signingPublicKey string) string {
	fingerprint, err := identity.Fingerprint(signingPublicKey)
	if err != nil {
		s.logger.Warn("fingerprinting being signing key", "error", err)
		return ""
	}
	return fingerprint
}
