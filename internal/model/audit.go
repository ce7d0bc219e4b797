// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Audit levels
const (
	AuditLevelInfo    = "info"
	AuditLevelWarning = "warning"
	AuditLevelError   = "error"
)

// Audit categories
const (
	AuditCategoryAuth       = "auth"
	AuditCategoryModeration = "moderation"
	AuditCategorySession    = "session"
	AuditCategorySystem     = "system"
)

// AuditEvent is a locally recorded console event.
type AuditEvent struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	Actor     string
	Metadata  string // JSON string
	CreatedAt time.Time
}

// RowID implements Row.
func (e AuditEvent) RowID() string { return itoa64(e.ID) }

// RowStatus implements Row.
func (e AuditEvent) RowStatus() string { return e.Level }

// Cells implements Row.
func (e AuditEvent) Cells() []string {
	return []string{e.CreatedAt.Format("Jan 2, 2006 15:04"), e.Category, e.Message, e.Actor}
}
