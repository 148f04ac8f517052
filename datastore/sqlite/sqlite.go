/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/storagemodels"
)

const (
	kindString = 0
	kindInt    = 1
)

// Client implements datastore.Client on a single SQLite table
type Client struct {
	db     *sql.DB
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock replaces the clock used for TTL
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New opens (creating if needed) the database at dbPath. ":memory:" gives a
// private in-memory database.
func New(dbPath string, opts ...Option) (*Client, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	c := &Client{db: db, now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return c, nil
}

func (c *Client) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		namespace TEXT NOT NULL,
		set_name TEXT NOT NULL,
		id_kind INTEGER NOT NULL,
		id_key TEXT NOT NULL,
		bins JSON NOT NULL,
		expires_at INTEGER,
		PRIMARY KEY (namespace, set_name, id_kind, id_key)
	);
	`

	_, err := c.db.Exec(schema)
	return err
}

// Close closes the database
func (c *Client) Close() error {
	return c.db.Close()
}

// Get retrieves a record by key
func (c *Client) Get(ctx context.Context, key storagemodels.Key) (storagemodels.Record, error) {
	rec, _, found, err := c.load(ctx, c.db, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NewNotFoundError(recordType(key), key.ID.String())
	}
	return rec, nil
}

// Exists reports whether a live record is stored at key
func (c *Client) Exists(ctx context.Context, key storagemodels.Key) (bool, error) {
	var one int
	err := c.db.QueryRowContext(ctx, `
		SELECT 1 FROM records
		WHERE namespace = ? AND set_name = ? AND id_kind = ? AND id_key = ?
		  AND (expires_at IS NULL OR expires_at > ?)
	`, append(keyArgs(key), c.nowMillis())...).Scan(&one)
	if stderrors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check record %s: %w", key, err)
	}
	return true, nil
}

// Put writes rec under key following the write policy. A nil bin value
// removes the bin.
func (c *Client) Put(ctx context.Context, key storagemodels.Key, rec storagemodels.Record, meta *storagemodels.RecordMeta, policy *storagemodels.WritePolicy) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, expires, exists, err := c.load(ctx, tx, key)
	if err != nil {
		return err
	}

	action := storagemodels.ActionOf(policy)
	next := make(storagemodels.Record, len(rec))
	switch action {
	case storagemodels.UpdateOnly:
		if !exists {
			return errors.NewNotFoundError(recordType(key), key.ID.String())
		}
		next = current
	case storagemodels.CreateOnly:
		if exists {
			return errors.NewAlreadyExistsError(recordType(key), key.ID.String())
		}
	case storagemodels.Update:
		if exists {
			next = current
		}
	default:
		expires = sql.NullInt64{}
	}

	for name, value := range rec {
		if value == nil {
			delete(next, name)
			continue
		}
		next[name] = value
	}
	if meta != nil && meta.TTL > 0 {
		expires = sql.NullInt64{Int64: c.now().Add(meta.TTL).UnixMilli(), Valid: true}
	}

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", key, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO records (namespace, set_name, id_kind, id_key, bins, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (namespace, set_name, id_kind, id_key)
		DO UPDATE SET bins = excluded.bins, expires_at = excluded.expires_at
	`, append(keyArgs(key), string(data), expires)...)
	if err != nil {
		return fmt.Errorf("failed to write record %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit record %s: %w", key, err)
	}
	c.logger.Debug("record written", zap.Stringer("key", key), zap.Stringer("policy", action))
	return nil
}

// Remove deletes a record by key
func (c *Client) Remove(ctx context.Context, key storagemodels.Key) error {
	res, err := c.db.ExecContext(ctx, `
		DELETE FROM records
		WHERE namespace = ? AND set_name = ? AND id_kind = ? AND id_key = ?
		  AND (expires_at IS NULL OR expires_at > ?)
	`, append(keyArgs(key), c.nowMillis())...)
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", key, err)
	}
	if n == 0 {
		return errors.NewNotFoundError(recordType(key), key.ID.String())
	}
	return nil
}

// BatchRead reads every key, reporting a status per key
func (c *Client) BatchRead(ctx context.Context, keys []storagemodels.Key) ([]storagemodels.BatchRecord, error) {
	results := make([]storagemodels.BatchRecord, 0, len(keys))
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result := storagemodels.BatchRecord{Key: key, Status: storagemodels.StatusNotFound}
		rec, _, found, err := c.load(ctx, c.db, key)
		switch {
		case err != nil:
			result.Status = storagemodels.StatusError
			result.Err = err
		case found:
			result.Status = storagemodels.StatusOK
			result.Record = rec
		}
		results = append(results, result)
	}
	return results, nil
}

// BatchRemove deletes every key in one transaction, ignoring absent ones
func (c *Client) BatchRemove(ctx context.Context, keys []storagemodels.Key) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		DELETE FROM records
		WHERE namespace = ? AND set_name = ? AND id_kind = ? AND id_key = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete: %w", err)
	}
	defer stmt.Close()

	for _, key := range keys {
		if _, err := stmt.ExecContext(ctx, keyArgs(key)...); err != nil {
			return fmt.Errorf("failed to delete record %s: %w", key, err)
		}
	}
	return tx.Commit()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// load reads the live record at key
func (c *Client) load(ctx context.Context, q queryer, key storagemodels.Key) (storagemodels.Record, sql.NullInt64, bool, error) {
	var (
		data    string
		expires sql.NullInt64
	)
	err := q.QueryRowContext(ctx, `
		SELECT bins, expires_at FROM records
		WHERE namespace = ? AND set_name = ? AND id_kind = ? AND id_key = ?
		  AND (expires_at IS NULL OR expires_at > ?)
	`, append(keyArgs(key), c.nowMillis())...).Scan(&data, &expires)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, expires, false, nil
	}
	if err != nil {
		return nil, expires, false, fmt.Errorf("failed to read record %s: %w", key, err)
	}

	rec, err := decodeBins(data)
	if err != nil {
		return nil, expires, false, fmt.Errorf("failed to unmarshal record %s: %w", key, err)
	}
	return rec, expires, true, nil
}

func (c *Client) nowMillis() int64 {
	return c.now().UnixMilli()
}

func keyArgs(key storagemodels.Key) []any {
	kind := kindString
	if key.ID.IsInt() {
		kind = kindInt
	}
	return []any{key.Namespace, key.Set, kind, sortableID(key.ID)}
}

// sortableID encodes the id so that text order matches id order within a kind
func sortableID(id storagemodels.ID) string {
	if !id.IsInt() {
		return id.String()
	}
	n, _ := id.Value().(int64)
	// flip the sign bit so negatives sort first
	return fmt.Sprintf("%016x", uint64(n)^(1<<63))
}

func recordType(key storagemodels.Key) string {
	return key.Namespace + "." + key.Set
}

// isBusy reports whether err is a transient lock error
func isBusy(err error) bool {
	var se *sqlitedriver.Error
	if !stderrors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}
