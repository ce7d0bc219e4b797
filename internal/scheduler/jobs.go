// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Job names.
const (
	JobSessionRecheck = "session-recheck"
	JobPruneConfirms  = "prune-confirmations"
	JobAuditRetention = "audit-retention"
)

// AuthChecker re-verifies the admin session. session.Session implements it.
type AuthChecker interface {
	Authenticated() bool
	CheckAuth(ctx context.Context) bool
}

// Pruner drops expired confirmation intents. confirm.Gate implements it.
type Pruner interface {
	Prune() int
}

// AuditPruner deletes old audit events. service.AuditService implements it.
type AuditPruner interface {
	DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// SessionRecheck verifies the stored token again. It revokes a session the
// backend no longer accepts and restores one after a backend outage.
func SessionRecheck(c AuthChecker, logger *slog.Logger) JobFunc {
	return func(ctx context.Context) error {
		was := c.Authenticated()
		now := c.CheckAuth(ctx)
		if was != now {
			logger.Info("session state changed on recheck", "authenticated", now, "category", "session")
		}
		return nil
	}
}

// PruneConfirmations drops expired intents.
func PruneConfirmations(p Pruner, logger *slog.Logger) JobFunc {
	return func(context.Context) error {
		if n := p.Prune(); n > 0 {
			logger.Debug("pruned expired confirmations", "count", n)
		}
		return nil
	}
}

// AuditRetention deletes audit events older than age. A non-positive age
// keeps everything.
func AuditRetention(a AuditPruner, age time.Duration, logger *slog.Logger) JobFunc {
	return func(ctx context.Context) error {
		if age <= 0 {
			return nil
		}
		n, err := a.DeleteOlderThan(ctx, age)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("deleted old audit events", "count", n, "older_than", age)
		}
		return nil
	}
}
