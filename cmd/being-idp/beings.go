// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/being/lib/clock"
	"github.com/bureau-foundation/being/lib/registration"
	"github.com/bureau-foundation/being/lib/sqlitepool"
)

// beingSchema holds registered beings. signing_public_key is the
// identity; re-registering the same key updates the row in place.
const beingSchema = `
	CREATE TABLE IF NOT EXISTS beings (
		id                    TEXT PRIMARY KEY,
		name                  TEXT NOT NULL,
		signing_public_key    TEXT NOT NULL UNIQUE,
		encryption_public_key TEXT NOT NULL,
		intent_base64         TEXT NOT NULL DEFAULT '',
		message_base64        TEXT NOT NULL,
		created_at            INTEGER NOT NULL,
		updated_at            INTEGER NOT NULL
	);
`

// sqliteBeings is the being repository for the sqlite backend.
type sqliteBeings struct {
	pool  *sqlitepool.Pool
	clock clock.Clock
}

func newSQLiteBeings(pool *sqlitepool.Pool, c clock.Clock) *sqliteBeings {
	return &sqliteBeings{pool: pool, clock: clock.OrReal(c)}
}

// UpsertBeing implements registration.BeingUpserter.
func (b *sqliteBeings) UpsertBeing(ctx context.Context, request registration.UpsertBeingRequest) (*registration.BeingRecord, error) {
	now := b.clock.Now().UTC()
	record := &registration.BeingRecord{
		Name:                request.Name,
		SigningPublicKey:    request.SigningPublicKey,
		EncryptionPublicKey: request.EncryptionPublicKey,
		IntentBase64:        request.IntentBase64,
		MessageBase64:       request.MessageBase64,
		UpdatedAt:           now,
	}

	err := b.pool.WithImmediate(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn,
			"SELECT id, created_at FROM beings WHERE signing_public_key = ?",
			&sqlitex.ExecOptions{
				Args: []any{request.SigningPublicKey},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					record.ID = stmt.ColumnText(0)
					record.CreatedAt = time.Unix(0, stmt.ColumnInt64(1)).UTC()
					return nil
				},
			})
		if err != nil {
			return fmt.Errorf("looking up being: %w", err)
		}

		if record.ID != "" {
			return sqlitex.Execute(conn, `
				UPDATE beings SET
					name = ?, encryption_public_key = ?, intent_base64 = ?,
					message_base64 = ?, updated_at = ?
				WHERE id = ?`,
				&sqlitex.ExecOptions{
					Args: []any{
						record.Name,
						record.EncryptionPublicKey,
						record.IntentBase64,
						record.MessageBase64,
						now.UnixNano(),
						record.ID,
					},
				})
		}

		record.ID = uuid.NewString()
		record.CreatedAt = now
		return sqlitex.Execute(conn, `
			INSERT INTO beings
				(id, name, signing_public_key, encryption_public_key,
				 intent_base64, message_base64, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{
				Args: []any{
					record.ID,
					record.Name,
					record.SigningPublicKey,
					record.EncryptionPublicKey,
					record.IntentBase64,
					record.MessageBase64,
					now.UnixNano(),
					now.UnixNano(),
				},
			})
	})
	if err != nil {
		return nil, fmt.Errorf("upserting being: %w", err)
	}
	return record, nil
}

// count returns the number of registered beings.
func (b *sqliteBeings) count(ctx context.Context) (int, error) {
	count := 0
	err := b.pool.WithConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "SELECT COUNT(*) FROM beings", &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				count = stmt.ColumnInt(0)
				return nil
			},
		})
	})
	return count, err
}

// memoryBeings is the being repository for the memory backend.
type memoryBeings struct {
	clock clock.Clock

	mu        sync.Mutex
	bySigning map[string]*registration.BeingRecord
}

func newMemoryBeings(c clock.Clock) *memoryBeings {
	return &memoryBeings{
		clock:     clock.OrReal(c),
		bySigning: make(map[string]*registration.BeingRecord),
	}
}

// UpsertBeing implements registration.BeingUpserter.
func (b *memoryBeings) UpsertBeing(_ context.Context, request registration.UpsertBeingRequest) (*registration.BeingRecord, error) {
	now := b.clock.Now().UTC()

	b.mu.Lock()
	defer b.mu.Unlock()

	record, ok := b.bySigning[request.SigningPublicKey]
	if !ok {
		record = &registration.BeingRecord{
			ID:               uuid.NewString(),
			SigningPublicKey: request.SigningPublicKey,
			CreatedAt:        now,
		}
		b.bySigning[request.SigningPublicKey] = record
	}
	record.Name = request.Name
	record.EncryptionPublicKey = request.EncryptionPublicKey
	record.IntentBase64 = request.IntentBase64
	record.MessageBase64 = request.MessageBase64
	record.UpdatedAt = now

	result := *record
	return &result, nil
}

func (b *memoryBeings) count(context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.bySigning), nil
}
