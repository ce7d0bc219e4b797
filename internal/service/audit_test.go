// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"
	"time"

	"github.com/olegiv/staydesk/internal/model"
	"github.com/olegiv/staydesk/internal/testutil"
)

func TestAuditServiceLogAndList(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	svc := NewAuditService(db)
	ctx := context.Background()

	if err := svc.Log(ctx, model.AuditLevelInfo, model.AuditCategoryAuth, "admin logged in", "ops@example.com", nil); err != nil {
		t.Fatalf("Log: %v", err)
	}
	for i := range 3 {
		meta := map[string]any{"resource": "hotels", "n": i}
		if err := svc.Log(ctx, model.AuditLevelInfo, model.AuditCategoryModeration, "property approved", "ops@example.com", meta); err != nil {
			t.Fatalf("Log moderation: %v", err)
		}
	}

	page, err := svc.List(ctx, model.ListQuery{Page: 1, PageSize: 2, Status: model.AuditCategoryModeration})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 3 {
		t.Errorf("Total = %d, want 3", page.Total)
	}
	if len(page.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(page.Items))
	}
	if page.Items[0].Category != model.AuditCategoryModeration {
		t.Errorf("Category = %q", page.Items[0].Category)
	}

	page, err = svc.List(ctx, model.ListQuery{Page: 1, PageSize: 10, Search: "logged"})
	if err != nil {
		t.Fatalf("List search: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("search Total = %d, want 1", page.Total)
	}

	n, err := svc.DeleteOlderThan(ctx, -time.Hour)
	if err != nil {
		t.Fatalf("DeleteOlderThan: %v", err)
	}
	if n != 4 {
		t.Errorf("deleted %d, want 4", n)
	}
}
