// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package confirm implements the confirmation step that sits between a
// moderation click and the request it eventually sends.
package confirm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity is the visual and semantic weight of a confirmation.
type Severity string

// Supported severities.
const (
	SeverityDanger  Severity = "danger"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityDanger, SeveritySuccess, SeverityWarning:
		return true
	}
	return false
}

// DefaultTTL is how long an unanswered intent stays pending.
const DefaultTTL = 10 * time.Minute

var (
	// ErrNotFound is returned when an intent is unknown, already answered or expired.
	ErrNotFound = errors.New("confirmation not found")

	// ErrInvalidRequest is returned when Open is called without an action or with a bad severity.
	ErrInvalidRequest = errors.New("invalid confirmation request")
)

// Action is the deferred operation guarded by an intent.
type Action func(ctx context.Context) error

// Request describes an intent to open.
type Request struct {
	Title    string
	Message  string
	Severity Severity
	Action   Action
	// Meta carries caller data such as the return URL. It is copied.
	Meta map[string]string
}

// Intent is the public view of a pending confirmation.
type Intent struct {
	ID        string
	Title     string
	Message   string
	Severity  Severity
	Open      bool
	CreatedAt time.Time
	ExpiresAt time.Time
	Meta      map[string]string
}

type entry struct {
	intent Intent
	action Action
}

// Gate holds pending intents. It is safe for concurrent use.
type Gate struct {
	mu      sync.Mutex
	pending map[string]*entry
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

// NewGate creates a gate whose intents expire after ttl (DefaultTTL if ttl <= 0).
func NewGate(ttl time.Duration, logger *slog.Logger) *Gate {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		pending: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

// Open registers a pending intent. The action is not run.
func (g *Gate) Open(req Request) (Intent, error) {
	if req.Action == nil {
		return Intent{}, fmt.Errorf("%w: action is required", ErrInvalidRequest)
	}
	if req.Severity == "" {
		req.Severity = SeverityWarning
	}
	if !req.Severity.Valid() {
		return Intent{}, fmt.Errorf("%w: unknown severity %q", ErrInvalidRequest, req.Severity)
	}

	now := g.now()
	intent := Intent{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Message:   req.Message,
		Severity:  req.Severity,
		Open:      true,
		CreatedAt: now,
		ExpiresAt: now.Add(g.ttl),
		Meta:      copyMeta(req.Meta),
	}

	g.mu.Lock()
	g.pending[intent.ID] = &entry{intent: intent, action: req.Action}
	g.mu.Unlock()

	g.logger.Debug("confirmation opened", "intent", intent.ID, "severity", intent.Severity, "title", intent.Title)
	return cloneIntent(intent), nil
}

// Get returns a pending intent.
func (g *Gate) Get(id string) (Intent, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.pending[id]
	if !ok {
		return Intent{}, false
	}
	if g.expiredLocked(e) {
		delete(g.pending, id)
		return Intent{}, false
	}
	return cloneIntent(e.intent), true
}

// Confirm removes the intent and runs its action exactly once.
// The action's error is returned as is.
func (g *Gate) Confirm(ctx context.Context, id string) error {
	g.mu.Lock()
	e, ok := g.pending[id]
	if ok {
		delete(g.pending, id)
	}
	expired := ok && g.expiredLocked(e)
	g.mu.Unlock()

	if !ok || expired {
		return ErrNotFound
	}

	g.logger.Debug("confirmation accepted", "intent", id, "title", e.intent.Title)
	return e.action(ctx)
}

// Cancel discards a pending intent without running it.
func (g *Gate) Cancel(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.pending[id]; !ok {
		return false
	}
	delete(g.pending, id)
	g.logger.Debug("confirmation cancelled", "intent", id)
	return true
}

// Pending returns the open intents, oldest first.
func (g *Gate) Pending() []Intent {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]Intent, 0, len(g.pending))
	for _, e := range g.pending {
		if !g.expiredLocked(e) {
			out = append(out, cloneIntent(e.intent))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Prune drops expired intents and returns how many were removed.
func (g *Gate) Prune() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for id, e := range g.pending {
		if g.expiredLocked(e) {
			delete(g.pending, id)
			removed++
		}
	}
	return removed
}

func (g *Gate) expiredLocked(e *entry) bool {
	return !g.now().Before(e.intent.ExpiresAt)
}

func cloneIntent(in Intent) Intent {
	in.Meta = copyMeta(in.Meta)
	return in
}

func copyMeta(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
