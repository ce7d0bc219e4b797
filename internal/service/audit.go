// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/olegiv/staydesk/internal/model"
	"github.com/olegiv/staydesk/internal/store"
)

// AuditService records and lists local audit events.
type AuditService struct {
	queries *store.Queries
}

// NewAuditService creates a new AuditService.
func NewAuditService(db *sql.DB) *AuditService {
	return &AuditService{
		queries: store.New(db),
	}
}

// Log records an audit event.
func (s *AuditService) Log(ctx context.Context, level, category, message, actor string, metadata map[string]any) error {
	metadataJSON := "{}"
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(b)
		}
	}

	_, err := s.queries.CreateAuditEvent(ctx, store.CreateAuditEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		Actor:     actor,
		Metadata:  metadataJSON,
		CreatedAt: time.Now(),
	})
	return err
}

// List returns a page of events filtered by category (Status) and search.
func (s *AuditService) List(ctx context.Context, q model.ListQuery) (model.PageResult[model.AuditEvent], error) {
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	page := max(q.Page, 1)
	params := store.ListAuditEventsParams{
		Category: q.Status,
		Search:   q.Search,
		Limit:    int64(pageSize),
		Offset:   int64((page - 1) * pageSize),
	}

	total, err := s.queries.CountAuditEvents(ctx, params)
	if err != nil {
		return model.PageResult[model.AuditEvent]{}, err
	}
	rows, err := s.queries.ListAuditEvents(ctx, params)
	if err != nil {
		return model.PageResult[model.AuditEvent]{}, err
	}

	items := make([]model.AuditEvent, len(rows))
	for i, r := range rows {
		items[i] = model.AuditEvent{
			ID:        r.ID,
			Level:     r.Level,
			Category:  r.Category,
			Message:   r.Message,
			Actor:     r.Actor,
			Metadata:  r.Metadata,
			CreatedAt: r.CreatedAt,
		}
	}
	return model.PageResult[model.AuditEvent]{Items: items, Total: int(total)}, nil
}

// DeleteOlderThan removes events older than the given age.
func (s *AuditService) DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	return s.queries.DeleteAuditEventsBefore(ctx, time.Now().Add(-age))
}
