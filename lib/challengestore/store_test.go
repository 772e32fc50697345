// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package challengestore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/being/lib/clock"
	"github.com/bureau-foundation/being/lib/handshake"
	"github.com/bureau-foundation/being/lib/identity"
	"github.com/bureau-foundation/being/lib/registration"
	"github.com/bureau-foundation/being/lib/sqlitepool"
)

var storeTestClockEpoch = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

// testStore is the surface shared by both implementations.
type testStore interface {
	registration.Store
	Status(ctx context.Context, challengeID string) (registration.ChallengeStatus, bool, error)
	PurgeExpired(ctx context.Context) (int, error)
}

type storeFactory func(t *testing.T, fakeClock *clock.FakeClock) testStore

func storeFactories() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T, fakeClock *clock.FakeClock) testStore {
			return NewMemory(MemoryConfig{Clock: fakeClock})
		},
		"sqlite": func(t *testing.T, fakeClock *clock.FakeClock) testStore {
			t.Helper()
			pool, err := sqlitepool.Open(sqlitepool.Config{
				Path:   filepath.Join(t.TempDir(), "challenges.db"),
				Schema: Schema,
			})
			if err != nil {
				t.Fatalf("sqlitepool.Open: %v", err)
			}
			t.Cleanup(func() {
				if err := pool.Close(); err != nil {
					t.Errorf("pool.Close: %v", err)
				}
			})
			store, err := NewSQLite(SQLiteConfig{Pool: pool, Clock: fakeClock})
			if err != nil {
				t.Fatalf("NewSQLite: %v", err)
			}
			return store
		},
	}
}

func forEachStore(t *testing.T, test func(t *testing.T, store testStore, fakeClock *clock.FakeClock)) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			fakeClock := clock.Fake(storeTestClockEpoch)
			test(t, factory(t, fakeClock), fakeClock)
		})
	}
}

func testRecord(t *testing.T, challengeID string) *registration.ChallengeRecord {
	t.Helper()
	idpKeys, err := identity.GenerateSigningKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	return &registration.ChallengeRecord{
		IdpChallengeRecord: handshake.IdpChallengeRecord{
			ChallengeID:              challengeID,
			Nonce:                    "bm9uY2U=",
			IdpSigningKeyPair:        idpKeys,
			BeingSigningPublicKey:    "signing-public",
			BeingEncryptionPublicKey: "encryption-public",
		},
		BeingName:     "Ada",
		CreatedAt:     storeTestClockEpoch,
		IntentBase64:  "cmVnaXN0ZXItYmVpbmc=",
		MessageBase64: "bWVzc2FnZQ==",
	}
}

func TestPersistAndLoad(t *testing.T) {
	forEachStore(t, func(t *testing.T, store testStore, _ *clock.FakeClock) {
		ctx := context.Background()
		record := testRecord(t, "challenge-1")
		record.CreatedAt = storeTestClockEpoch.Add(123456789 * time.Nanosecond)
		if err := store.PersistChallenge(ctx, record); err != nil {
			t.Fatalf("PersistChallenge: %v", err)
		}

		loaded, err := store.LoadChallenge(ctx, "challenge-1")
		if err != nil {
			t.Fatalf("LoadChallenge: %v", err)
		}
		if loaded == nil {
			t.Fatal("LoadChallenge returned nil for a pending challenge")
		}
		if loaded.IdpChallengeRecord != record.IdpChallengeRecord {
			t.Errorf("challenge record = %+v, want %+v", loaded.IdpChallengeRecord, record.IdpChallengeRecord)
		}
		if loaded.BeingName != "Ada" || loaded.IntentBase64 != record.IntentBase64 || loaded.MessageBase64 != record.MessageBase64 {
			t.Errorf("registration fields = %+v", loaded)
		}
		if !loaded.CreatedAt.Equal(record.CreatedAt) {
			t.Errorf("CreatedAt = %v, want %v", loaded.CreatedAt, record.CreatedAt)
		}

		missing, err := store.LoadChallenge(ctx, "no-such-challenge")
		if err != nil || missing != nil {
			t.Errorf("LoadChallenge(missing) = %v, %v; want nil, nil", missing, err)
		}
	})
}

func TestPersist_RejectsDuplicate(t *testing.T) {
	forEachStore(t, func(t *testing.T, store testStore, _ *clock.FakeClock) {
		ctx := context.Background()
		if err := store.PersistChallenge(ctx, testRecord(t, "dup")); err != nil {
			t.Fatal(err)
		}
		if err := store.PersistChallenge(ctx, testRecord(t, "dup")); !errors.Is(err, ErrDuplicateChallenge) {
			t.Fatalf("second PersistChallenge error = %v, want ErrDuplicateChallenge", err)
		}
	})
}

func TestComplete_ConsumesOnce(t *testing.T) {
	forEachStore(t, func(t *testing.T, store testStore, _ *clock.FakeClock) {
		ctx := context.Background()
		if err := store.PersistChallenge(ctx, testRecord(t, "once")); err != nil {
			t.Fatal(err)
		}
		if err := store.CompleteChallenge(ctx, "once"); err != nil {
			t.Fatalf("first CompleteChallenge: %v", err)
		}
		if err := store.CompleteChallenge(ctx, "once"); !errors.Is(err, registration.ErrChallengeNotFound) {
			t.Fatalf("second CompleteChallenge error = %v, want ErrChallengeNotFound", err)
		}
		if loaded, _ := store.LoadChallenge(ctx, "once"); loaded != nil {
			t.Error("completed challenge is still loadable")
		}
		status, found, err := store.Status(ctx, "once")
		if err != nil || !found || status != registration.StatusCompleted {
			t.Errorf("Status = %q, %v, %v; want completed", status, found, err)
		}
	})
}

func TestFail_MakesUnloadable(t *testing.T) {
	forEachStore(t, func(t *testing.T, store testStore, _ *clock.FakeClock) {
		ctx := context.Background()
		if err := store.PersistChallenge(ctx, testRecord(t, "bad")); err != nil {
			t.Fatal(err)
		}
		if err := store.FailChallenge(ctx, "bad"); err != nil {
			t.Fatalf("FailChallenge: %v", err)
		}
		if loaded, _ := store.LoadChallenge(ctx, "bad"); loaded != nil {
			t.Error("failed challenge is still loadable")
		}
		if err := store.CompleteChallenge(ctx, "bad"); !errors.Is(err, registration.ErrChallengeNotFound) {
			t.Errorf("CompleteChallenge after fail error = %v, want ErrChallengeNotFound", err)
		}
		status, _, _ := store.Status(ctx, "bad")
		if status != registration.StatusFailed {
			t.Errorf("Status = %q, want failed", status)
		}

		// Failing an unknown or already-final challenge is a no-op.
		if err := store.FailChallenge(ctx, "unknown"); err != nil {
			t.Errorf("FailChallenge(unknown): %v", err)
		}
	})
}

func TestExpiry(t *testing.T) {
	forEachStore(t, func(t *testing.T, store testStore, fakeClock *clock.FakeClock) {
		ctx := context.Background()
		if err := store.PersistChallenge(ctx, testRecord(t, "stale")); err != nil {
			t.Fatal(err)
		}
		if err := store.PersistChallenge(ctx, testRecord(t, "done")); err != nil {
			t.Fatal(err)
		}
		if err := store.CompleteChallenge(ctx, "done"); err != nil {
			t.Fatal(err)
		}

		fakeClock.Advance(DefaultTTL - time.Second)
		if loaded, _ := store.LoadChallenge(ctx, "stale"); loaded == nil {
			t.Fatal("challenge expired early")
		}
		if purged, err := store.PurgeExpired(ctx); err != nil || purged != 0 {
			t.Fatalf("PurgeExpired before expiry = %d, %v", purged, err)
		}

		fakeClock.Advance(time.Second)
		if loaded, _ := store.LoadChallenge(ctx, "stale"); loaded != nil {
			t.Error("expired challenge is loadable")
		}
		if err := store.CompleteChallenge(ctx, "stale"); !errors.Is(err, registration.ErrChallengeNotFound) {
			t.Errorf("CompleteChallenge(expired) error = %v, want ErrChallengeNotFound", err)
		}

		purged, err := store.PurgeExpired(ctx)
		if err != nil {
			t.Fatalf("PurgeExpired: %v", err)
		}
		if purged != 2 {
			t.Errorf("PurgeExpired = %d, want 2", purged)
		}
		if _, found, _ := store.Status(ctx, "stale"); found {
			t.Error("purged challenge still has a status")
		}
	})
}

func TestComplete_ConcurrentExactlyOnce(t *testing.T) {
	forEachStore(t, func(t *testing.T, store testStore, _ *clock.FakeClock) {
		ctx := context.Background()
		const challengeCount = 4
		const racersPerChallenge = 8

		for index := range challengeCount {
			if err := store.PersistChallenge(ctx, testRecord(t, fmt.Sprintf("race-%d", index))); err != nil {
				t.Fatal(err)
			}
		}

		var waitGroup sync.WaitGroup
		var mu sync.Mutex
		wins := make(map[string]int)
		var unexpected []error
		for index := range challengeCount {
			challengeID := fmt.Sprintf("race-%d", index)
			for range racersPerChallenge {
				waitGroup.Add(1)
				go func() {
					defer waitGroup.Done()
					err := store.CompleteChallenge(ctx, challengeID)
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						wins[challengeID]++
					case errors.Is(err, registration.ErrChallengeNotFound):
					default:
						unexpected = append(unexpected, err)
					}
				}()
			}
		}
		waitGroup.Wait()

		for _, err := range unexpected {
			t.Errorf("CompleteChallenge: %v", err)
		}
		for index := range challengeCount {
			challengeID := fmt.Sprintf("race-%d", index)
			if wins[challengeID] != 1 {
				t.Errorf("%s completed %d times, want exactly 1", challengeID, wins[challengeID])
			}
		}
	})
}

func TestPersistChallenge_RequiresID(t *testing.T) {
	forEachStore(t, func(t *testing.T, store testStore, _ *clock.FakeClock) {
		if err := store.PersistChallenge(context.Background(), testRecord(t, "")); err == nil {
			t.Fatal("PersistChallenge without an id succeeded")
		}
	})
}

func TestNewSQLite_RequiresPool(t *testing.T) {
	if _, err := NewSQLite(SQLiteConfig{}); err == nil {
		t.Fatal("NewSQLite without a pool succeeded")
	}
}
