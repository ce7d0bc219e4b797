// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that copies audit-worthy records
// into the local audit_events table.
package logging

import (
	"context"
	"log/slog"

	"github.com/olegiv/staydesk/internal/model"
)

// Recorder persists audit events. service.AuditService implements it.
type Recorder interface {
	Log(ctx context.Context, level, category, message, actor string, metadata map[string]any) error
}

// AuditHandler is a slog.Handler that wraps another handler and also writes
// WARN and ERROR records, and records tagged with an audited category, to
// the audit log.
type AuditHandler struct {
	inner      slog.Handler
	recorder   Recorder
	level      slog.Level // minimum level forwarded regardless of category
	categories map[string]bool
	attrs      []slog.Attr
}

// NewAuditHandler creates an AuditHandler forwarding WARN+ records and any
// record with category auth, session or moderation.
func NewAuditHandler(inner slog.Handler, rec Recorder) *AuditHandler {
	return NewAuditHandlerWithLevel(inner, rec, slog.LevelWarn)
}

// NewAuditHandlerWithLevel creates an AuditHandler with a custom minimum level.
func NewAuditHandlerWithLevel(inner slog.Handler, rec Recorder, level slog.Level) *AuditHandler {
	return &AuditHandler{
		inner:    inner,
		recorder: rec,
		level:    level,
		categories: map[string]bool{
			model.AuditCategoryAuth:       true,
			model.AuditCategorySession:    true,
			model.AuditCategoryModeration: true,
		},
	}
}

// Enabled implements slog.Handler.
func (h *AuditHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *AuditHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	attrs := h.collect(r)
	category := attrString(attrs, "category")
	if r.Level >= h.level || h.categories[category] {
		h.write(r, attrs, category)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *AuditHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.inner = h.inner.WithAttrs(attrs)
	c.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &c
}

// WithGroup implements slog.Handler. Grouped attributes are flattened in
// the stored metadata.
func (h *AuditHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.inner = h.inner.WithGroup(name)
	return &c
}

func (h *AuditHandler) collect(r slog.Record) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	return attrs
}

// write stores the record. A background context is used so the event is
// kept even when the request context is already cancelled.
func (h *AuditHandler) write(r slog.Record, attrs []slog.Attr, category string) {
	if category == "" {
		category = model.AuditCategorySystem
	}
	actor := attrString(attrs, "actor")
	if actor == "" {
		actor = attrString(attrs, "email")
	}

	_ = h.recorder.Log(context.Background(), levelName(r.Level), category, r.Message, actor, metadata(attrs))
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.AuditLevelError
	case level >= slog.LevelWarn:
		return model.AuditLevelWarning
	default:
		return model.AuditLevelInfo
	}
}

// attrString returns the last value of key; later attributes win.
func attrString(attrs []slog.Attr, key string) string {
	var v string
	for _, a := range attrs {
		if a.Key == key {
			v = a.Value.Resolve().String()
		}
	}
	return v
}

func metadata(attrs []slog.Attr) map[string]any {
	m := make(map[string]any, len(attrs))
	for _, a := range attrs {
		switch a.Key {
		case "category", "actor", "":
			continue
		}
		m[a.Key] = a.Value.Resolve().String()
	}
	if len(m) == 0 {
		return nil
	}
	return m
}
