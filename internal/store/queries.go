// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries wraps the console's SQL statements.
type Queries struct {
	db DBTX
}

// New returns Queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns Queries bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("not found")

const getValue = `SELECT value FROM kv WHERE key = ?`

// GetValue returns the value stored under key, or ErrNotFound.
func (q *Queries) GetValue(ctx context.Context, key string) (string, error) {
	var value string
	err := q.db.QueryRowContext(ctx, getValue, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

const setValue = `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

// SetValue stores value under key, replacing any previous value.
func (q *Queries) SetValue(ctx context.Context, key, value string) error {
	_, err := q.db.ExecContext(ctx, setValue, key, value, time.Now().UTC())
	return err
}

const deleteValue = `DELETE FROM kv WHERE key = ?`

// DeleteValue removes key. Deleting a missing key is not an error.
func (q *Queries) DeleteValue(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, deleteValue, key)
	return err
}

// AuditEvent is a row of audit_events.
type AuditEvent struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	Actor     string
	Metadata  string
	CreatedAt time.Time
}

// CreateAuditEventParams holds the columns of a new audit event.
type CreateAuditEventParams struct {
	Level     string
	Category  string
	Message   string
	Actor     string
	Metadata  string
	CreatedAt time.Time
}

const createAuditEvent = `INSERT INTO audit_events (level, category, message, actor, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, level, category, message, actor, metadata, created_at`

// CreateAuditEvent inserts an audit event.
func (q *Queries) CreateAuditEvent(ctx context.Context, arg CreateAuditEventParams) (AuditEvent, error) {
	if arg.Metadata == "" {
		arg.Metadata = "{}"
	}
	if arg.CreatedAt.IsZero() {
		arg.CreatedAt = time.Now()
	}
	row := q.db.QueryRowContext(ctx, createAuditEvent,
		arg.Level, arg.Category, arg.Message, arg.Actor, arg.Metadata, arg.CreatedAt.UTC())
	var e AuditEvent
	err := row.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.Actor, &e.Metadata, &e.CreatedAt)
	return e, err
}

// ListAuditEventsParams filters and pages audit events.
type ListAuditEventsParams struct {
	Category string
	Search   string
	Limit    int64
	Offset   int64
}

func (p ListAuditEventsParams) where() (string, []any) {
	var clauses []string
	var args []any
	if p.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, p.Category)
	}
	if s := strings.TrimSpace(p.Search); s != "" {
		clauses = append(clauses, "(message LIKE ? OR actor LIKE ?)")
		like := "%" + s + "%"
		args = append(args, like, like)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// ListAuditEvents returns events newest first.
func (q *Queries) ListAuditEvents(ctx context.Context, arg ListAuditEventsParams) ([]AuditEvent, error) {
	where, args := arg.where()
	query := `SELECT id, level, category, message, actor, metadata, created_at FROM audit_events` +
		where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []AuditEvent
	for rows.Next() {
		var e AuditEvent
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.Actor, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// CountAuditEvents counts events matching the same filters as ListAuditEvents.
func (q *Queries) CountAuditEvents(ctx context.Context, arg ListAuditEventsParams) (int64, error) {
	where, args := arg.where()
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_events`+where, args...).Scan(&n)
	return n, err
}

const deleteAuditEventsBefore = `DELETE FROM audit_events WHERE created_at < ?`

// DeleteAuditEventsBefore removes events older than cutoff and returns how many were removed.
func (q *Queries) DeleteAuditEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteAuditEventsBefore, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
