// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package challengestore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bureau-foundation/being/lib/clock"
	"github.com/bureau-foundation/being/lib/registration"
)

// MemoryConfig configures a Memory store.
type MemoryConfig struct {
	// TTL defaults to DefaultTTL.
	TTL time.Duration

	// Clock defaults to the real clock.
	Clock clock.Clock
}

// Memory is an in-process registration.Store. Safe for concurrent use.
type Memory struct {
	ttl   time.Duration
	clock clock.Clock

	mu      sync.Mutex
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	record    *registration.ChallengeRecord
	status    registration.ChallengeStatus
	expiresAt time.Time
}

// NewMemory returns an empty store.
func NewMemory(cfg MemoryConfig) *Memory {
	return &Memory{
		ttl:     resolveTTL(cfg.TTL),
		clock:   clock.OrReal(cfg.Clock),
		entries: make(map[string]*memoryEntry),
	}
}

// PersistChallenge implements registration.Store.
func (m *Memory) PersistChallenge(_ context.Context, record *registration.ChallengeRecord) error {
	if record == nil || record.ChallengeID == "" {
		return fmt.Errorf("challengestore: record has no challenge id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[record.ChallengeID]; exists {
		return ErrDuplicateChallenge
	}
	m.entries[record.ChallengeID] = &memoryEntry{
		record:    cloneRecord(record),
		status:    registration.StatusPending,
		expiresAt: m.clock.Now().Add(m.ttl),
	}
	return nil
}

// LoadChallenge implements registration.Store.
func (m *Memory) LoadChallenge(_ context.Context, challengeID string) (*registration.ChallengeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := m.pendingLocked(challengeID)
	if entry == nil {
		return nil, nil
	}
	return cloneRecord(entry.record), nil
}

// CompleteChallenge implements registration.Store.
func (m *Memory) CompleteChallenge(_ context.Context, challengeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := m.pendingLocked(challengeID)
	if entry == nil {
		return registration.ErrChallengeNotFound
	}
	entry.status = registration.StatusCompleted
	return nil
}

// FailChallenge implements registration.Store.
func (m *Memory) FailChallenge(_ context.Context, challengeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry := m.pendingLocked(challengeID); entry != nil {
		entry.status = registration.StatusFailed
	}
	return nil
}

// Status returns the stored status of a challenge regardless of
// expiry. The bool is false if the challenge is unknown.
func (m *Memory) Status(_ context.Context, challengeID string) (registration.ChallengeStatus, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[challengeID]
	if !ok {
		return "", false, nil
	}
	return entry.status, true, nil
}

// PurgeExpired deletes every challenge past its expiry and returns how
// many were removed.
func (m *Memory) PurgeExpired(_ context.Context) (int, error) {
	now := m.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	purged := 0
	for challengeID, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, challengeID)
			purged++
		}
	}
	return purged, nil
}

// pendingLocked returns the entry if it is pending and unexpired.
// Caller holds mu.
func (m *Memory) pendingLocked(challengeID string) *memoryEntry {
	entry, ok := m.entries[challengeID]
	if !ok || entry.status != registration.StatusPending {
		return nil
	}
	if !m.clock.Now().Before(entry.expiresAt) {
		return nil
	}
	return entry
}
