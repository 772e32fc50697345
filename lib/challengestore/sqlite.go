// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package challengestore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/being/lib/clock"
	"github.com/bureau-foundation/being/lib/codec"
	"github.com/bureau-foundation/being/lib/registration"
	"github.com/bureau-foundation/being/lib/sqlitepool"
)

// Schema is the challenge table. Timestamps are Unix nanoseconds; the
// record column is the CBOR-encoded registration.ChallengeRecord.
const Schema = `
	CREATE TABLE IF NOT EXISTS registration_challenges (
		challenge_id TEXT PRIMARY KEY,
		status       TEXT NOT NULL,
		record       BLOB NOT NULL,
		created_at   INTEGER NOT NULL,
		expires_at   INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS registration_challenges_expires_at
		ON registration_challenges (expires_at);
`

// SQLiteConfig configures a SQLite store.
type SQLiteConfig struct {
	// Pool must have been opened with Schema applied.
	Pool *sqlitepool.Pool

	// TTL defaults to DefaultTTL.
	TTL time.Duration

	// Clock defaults to the real clock.
	Clock clock.Clock

	// Logger receives purge events. Nil discards.
	Logger *slog.Logger
}

// SQLite is a registration.Store backed by a sqlitepool.Pool. Safe for
// concurrent use.
type SQLite struct {
	pool   *sqlitepool.Pool
	ttl    time.Duration
	clock  clock.Clock
	logger *slog.Logger
}

// NewSQLite returns a store over cfg.Pool. The store does not own the
// pool; the caller closes it.
func NewSQLite(cfg SQLiteConfig) (*SQLite, error) {
	if cfg.Pool == nil {
		return nil, fmt.Errorf("challengestore: Pool is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLite{
		pool:   cfg.Pool,
		ttl:    resolveTTL(cfg.TTL),
		clock:  clock.OrReal(cfg.Clock),
		logger: logger,
	}, nil
}

// PersistChallenge implements registration.Store.
func (s *SQLite) PersistChallenge(ctx context.Context, record *registration.ChallengeRecord) error {
	if record == nil || record.ChallengeID == "" {
		return fmt.Errorf("challengestore: record has no challenge id")
	}
	encoded, err := codec.Marshal(record)
	if err != nil {
		return fmt.Errorf("challengestore: encoding record: %w", err)
	}
	now := s.clock.Now()

	return s.pool.WithImmediate(ctx, func(conn *sqlite.Conn) error {
		exists := false
		err := sqlitex.Execute(conn,
			"SELECT 1 FROM registration_challenges WHERE challenge_id = ?",
			&sqlitex.ExecOptions{
				Args: []any{record.ChallengeID},
				ResultFunc: func(*sqlite.Stmt) error {
					exists = true
					return nil
				},
			})
		if err != nil {
			return fmt.Errorf("challengestore: checking for duplicate: %w", err)
		}
		if exists {
			return ErrDuplicateChallenge
		}

		err = sqlitex.Execute(conn, `
			INSERT INTO registration_challenges
				(challenge_id, status, record, created_at, expires_at)
			VALUES (?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{
				Args: []any{
					record.ChallengeID,
					string(registration.StatusPending),
					encoded,
					now.UnixNano(),
					now.Add(s.ttl).UnixNano(),
				},
			})
		if err != nil {
			return fmt.Errorf("challengestore: inserting challenge: %w", err)
		}
		return nil
	})
}

// LoadChallenge implements registration.Store.
func (s *SQLite) LoadChallenge(ctx context.Context, challengeID string) (*registration.ChallengeRecord, error) {
	var encoded []byte
	err := s.pool.WithConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `
			SELECT record FROM registration_challenges
			WHERE challenge_id = ? AND status = ? AND expires_at > ?`,
			&sqlitex.ExecOptions{
				Args: []any{challengeID, string(registration.StatusPending), s.clock.Now().UnixNano()},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					encoded = make([]byte, stmt.ColumnLen(0))
					stmt.ColumnBytes(0, encoded)
					return nil
				},
			})
	})
	if err != nil {
		return nil, fmt.Errorf("challengestore: loading challenge: %w", err)
	}
	if encoded == nil {
		return nil, nil
	}

	var record registration.ChallengeRecord
	if err := codec.Unmarshal(encoded, &record); err != nil {
		return nil, fmt.Errorf("challengestore: decoding challenge %s: %w", challengeID, err)
	}
	return &record, nil
}

// CompleteChallenge implements registration.Store.
func (s *SQLite) CompleteChallenge(ctx context.Context, challengeID string) error {
	changed, err := s.transition(ctx, challengeID, registration.StatusCompleted)
	if err != nil {
		return err
	}
	if !changed {
		return registration.ErrChallengeNotFound
	}
	return nil
}

// FailChallenge implements registration.Store.
func (s *SQLite) FailChallenge(ctx context.Context, challengeID string) error {
	_, err := s.transition(ctx, challengeID, registration.StatusFailed)
	return err
}

// transition moves a pending, unexpired challenge to status and
// reports whether a row changed.
func (s *SQLite) transition(ctx context.Context, challengeID string, status registration.ChallengeStatus) (bool, error) {
	changed := false
	err := s.pool.WithImmediate(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn, `
			UPDATE registration_challenges SET status = ?
			WHERE challenge_id = ? AND status = ? AND expires_at > ?`,
			&sqlitex.ExecOptions{
				Args: []any{
					string(status),
					challengeID,
					string(registration.StatusPending),
					s.clock.Now().UnixNano(),
				},
			})
		if err != nil {
			return err
		}
		changed = conn.Changes() == 1
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("challengestore: marking challenge %s: %w", status, err)
	}
	return changed, nil
}

// Status returns the stored status of a challenge regardless of
// expiry. The bool is false if the challenge is unknown.
func (s *SQLite) Status(ctx context.Context, challengeID string) (registration.ChallengeStatus, bool, error) {
	var status registration.ChallengeStatus
	found := false
	err := s.pool.WithConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			"SELECT status FROM registration_challenges WHERE challenge_id = ?",
			&sqlitex.ExecOptions{
				Args: []any{challengeID},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					status = registration.ChallengeStatus(stmt.ColumnText(0))
					found = true
					return nil
				},
			})
	})
	if err != nil {
		return "", false, fmt.Errorf("challengestore: reading status: %w", err)
	}
	return status, found, nil
}

// PurgeExpired deletes every challenge past its expiry and returns how
// many were removed.
func (s *SQLite) PurgeExpired(ctx context.Context) (int, error) {
	purged := 0
	err := s.pool.WithImmediate(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn,
			"DELETE FROM registration_challenges WHERE expires_at <= ?",
			&sqlitex.ExecOptions{Args: []any{s.clock.Now().UnixNano()}})
		if err != nil {
			return err
		}
		purged = conn.Changes()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("challengestore: purging expired challenges: %w", err)
	}
	if purged > 0 {
		s.logger.Info("expired challenges purged", "count", purged)
	}
	return purged, nil
}
