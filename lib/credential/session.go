// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bureau-foundation/being/lib/clock"
	"github.com/bureau-foundation/being/lib/envelope"
	"github.com/bureau-foundation/being/lib/secret"
)

// SessionVersion identifies the session record format.
const SessionVersion = 1

// SessionStorageKey is the Storage key session records live under.
const SessionStorageKey = "root.solar/being-session"

var (
	// ErrInvalidSession is returned when a session record fails
	// validation or its decrypted bundle does not match its clear-text
	// fields.
	ErrInvalidSession = errors.New("credential: invalid session record")

	// ErrNoSession is returned by Session.Unlock when there is no
	// stored record.
	ErrNoSession = errors.New("credential: no session record")
)

// SessionRecord is a PIN-protected copy of a bundle.
type SessionRecord struct {
	Version         int                       `json:"version"`
	CreatedAt       time.Time                 `json:"createdAt"`
	Being           SessionBeing              `json:"being"`
	EncryptedBundle envelope.EncryptedPayload `json:"encryptedBundle"`
}

// SessionBeing is the clear-text identity of a session record.
type SessionBeing struct {
	ID                  string `json:"id"`
	Name                string `json:"name,omitempty"`
	SigningPublicKey    string `json:"signingPublicKey"`
	EncryptionPublicKey string `json:"encryptionPublicKey"`
}

// CreateSessionRecord seals bundle under pin.
func CreateSessionRecord(bundle *Bundle, pin string, options Options) (*SessionRecord, error) {
	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	if pin == "" {
		return nil, fmt.Errorf("credential: PIN is empty")
	}

	encoded, err := json.Marshal(bundle)
	if err != nil {
		return nil, fmt.Errorf("credential: encoding bundle: %w", err)
	}
	defer secret.Zero(encoded)

	sealed, err := envelope.EncryptWithPassword(encoded, []byte(pin), options.Params)
	if err != nil {
		return nil, fmt.Errorf("credential: sealing session bundle: %w", err)
	}
	return &SessionRecord{
		Version:   SessionVersion,
		CreatedAt: clock.OrReal(options.Clock).Now().UTC(),
		Being: SessionBeing{
			ID:                  bundle.BeingID,
			Name:                bundle.BeingName,
			SigningPublicKey:    bundle.Signing.PublicKey,
			EncryptionPublicKey: bundle.Encryption.PublicKey,
		},
		EncryptedBundle: *sealed,
	}, nil
}

// UnlockSessionRecord opens record with pin. A wrong PIN is
// envelope.ErrDecryptionFailed.
func UnlockSessionRecord(record *SessionRecord, pin string) (*Bundle, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}
	plaintext, err := envelope.DecryptWithPassword(&record.EncryptedBundle, []byte(pin))
	if err != nil {
		return nil, err
	}
	defer secret.Zero(plaintext)

	var bundle Bundle
	if err := json.Unmarshal(plaintext, &bundle); err != nil {
		return nil, fmt.Errorf("%w: decoding bundle: %v", ErrInvalidSession, err)
	}
	if bundle.BeingID != record.Being.ID ||
		bundle.Signing.PublicKey != record.Being.SigningPublicKey ||
		bundle.Encryption.PublicKey != record.Being.EncryptionPublicKey {
		return nil, fmt.Errorf("%w: sealed bundle does not match the record's being", ErrInvalidSession)
	}
	if err := bundle.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return &bundle, nil
}

// Validate checks the record's schema without decrypting anything.
func (r *SessionRecord) Validate() error {
	switch {
	case r == nil:
		return fmt.Errorf("%w: nil record", ErrInvalidSession)
	case r.Version != SessionVersion:
		return fmt.Errorf("%w: version %d, want %d", ErrInvalidSession, r.Version, SessionVersion)
	case r.Being.ID == "":
		return fmt.Errorf("%w: being id is empty", ErrInvalidSession)
	case r.Being.SigningPublicKey == "" || r.Being.EncryptionPublicKey == "":
		return fmt.Errorf("%w: public key is empty", ErrInvalidSession)
	}
	if err := r.EncryptedBundle.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	return nil
}

// PersistSessionRecord stores record under SessionStorageKey.
func PersistSessionRecord(storage Storage, record *SessionRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("credential: encoding session record: %w", err)
	}
	return storage.Set(SessionStorageKey, data)
}

// LoadSessionRecord returns the stored record, or nil if there is
// none. A malformed record is removed and reported as absent.
func LoadSessionRecord(storage Storage) (*SessionRecord, error) {
	record, _, err := loadSessionRecord(storage)
	return record, err
}

// ClearSessionRecord removes the stored record.
func ClearSessionRecord(storage Storage) error {
	return storage.Remove(SessionStorageKey)
}

// loadSessionRecord also reports whether a malformed record was
// cleared.
func loadSessionRecord(storage Storage) (*SessionRecord, bool, error) {
	data, ok, err := storage.Get(SessionStorageKey)
	if err != nil || !ok {
		return nil, false, err
	}

	var record SessionRecord
	if err := json.Unmarshal(data, &record); err == nil && record.Validate() == nil {
		return &record, false, nil
	}
	if err := storage.Remove(SessionStorageKey); err != nil {
		return nil, false, fmt.Errorf("credential: clearing malformed session record: %w", err)
	}
	return nil, true, nil
}

// SessionConfig configures a Session.
type SessionConfig struct {
	// Storage is required.
	Storage Storage

	Clock  clock.Clock
	Params *envelope.Params

	// Logger receives create, unlock, and clear events. Nil discards.
	Logger *slog.Logger
}

// Session manages the session record in one Storage.
type Session struct {
	storage Storage
	options Options
	logger  *slog.Logger
}

// NewSession returns a Session over cfg.Storage.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Storage == nil {
		return nil, fmt.Errorf("credential: session Storage is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		storage: cfg.Storage,
		options: Options{Clock: cfg.Clock, Params: cfg.Params},
		logger:  logger,
	}, nil
}

// Create seals bundle under a fresh PIN, stores the record, and
// returns the PIN. Any previous record is replaced.
func (s *Session) Create(bundle *Bundle) (string, *SessionRecord, error) {
	pin, err := GenerateSessionPIN()
	if err != nil {
		return "", nil, err
	}
	record, err := CreateSessionRecord(bundle, pin, s.options)
	if err != nil {
		return "", nil, err
	}
	if err := PersistSessionRecord(s.storage, record); err != nil {
		return "", nil, err
	}
	s.logger.Info("session created", "being_id", record.Being.ID)
	return pin, record, nil
}

// Current returns the stored record without unlocking it, or nil.
func (s *Session) Current() (*SessionRecord, error) {
	record, cleared, err := loadSessionRecord(s.storage)
	if cleared {
		s.logger.Warn("malformed session record cleared")
	}
	return record, err
}

// Unlock opens the stored record with pin.
func (s *Session) Unlock(pin string) (*Bundle, error) {
	record, err := s.Current()
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNoSession
	}
	bundle, err := UnlockSessionRecord(record, pin)
	if err != nil {
		s.logger.Warn("session unlock failed", "being_id", record.Being.ID, "error", err)
		return nil, err
	}
	s.logger.Info("session unlocked", "being_id", record.Being.ID)
	return bundle, nil
}

// Clear removes the stored record.
func (s *Session) Clear() error {
	if err := ClearSessionRecord(s.storage); err != nil {
		return err
	}
	s.logger.Info("session cleared")
	return nil
}
