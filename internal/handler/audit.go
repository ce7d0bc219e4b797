// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/olegiv/staydesk/internal/listing"
	"github.com/olegiv/staydesk/internal/model"
	"github.com/olegiv/staydesk/internal/render"
	"github.com/olegiv/staydesk/internal/service"
	"github.com/olegiv/staydesk/internal/uikit"
)

// auditCategories are the selectable audit filters.
var auditCategories = []string{
	model.AuditCategoryAuth,
	model.AuditCategoryModeration,
	model.AuditCategorySession,
	model.AuditCategorySystem,
}

// AuditLogHandler serves the local audit log using the same list
// controller as the backend resources.
type AuditLogHandler struct {
	list     *listing.Controller[model.AuditEvent]
	renderer *render.Renderer
	logger   *slog.Logger
}

// NewAuditLogHandler creates an AuditLogHandler over audit.
func NewAuditLogHandler(audit *service.AuditService, opts listing.Options, renderer *render.Renderer) *AuditLogHandler {
	opts.Name = "audit"
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &AuditLogHandler{
		list:     listing.New[model.AuditEvent](audit.List, opts),
		renderer: renderer,
		logger:   opts.Logger,
	}
}

// Close stops the list controller.
func (h *AuditLogHandler) Close() {
	h.list.Close()
}

// auditView is the data of the audit page.
type auditView struct {
	Query      model.ListQuery
	Events     []model.AuditEvent
	Total      int
	Categories []string
	Pagination uikit.Pagination
	Error      string
}

// List handles GET /admin/audit. The status parameter selects a category.
func (h *AuditLogHandler) List(w http.ResponseWriter, r *http.Request) {
	q := model.ListQuery{
		Page:     uikit.ParsePage(r.URL.Query()),
		PageSize: h.list.PageSize(),
		Search:   cleanSearch(r.URL.Query().Get(model.ParamSearch)),
	}
	if c := r.URL.Query().Get(model.ParamStatus); slices.Contains(auditCategories, c) {
		q.Status = c
	}
	if q.Equal(h.list.Query()) {
		h.list.Refresh()
	} else {
		h.list.Apply(q)
	}

	ctx, cancel := context.WithTimeout(r.Context(), settleTimeout)
	defer cancel()
	st, _ := h.list.Settle(ctx)

	v := auditView{
		Query:      st.Query,
		Events:     st.Items,
		Total:      st.Total,
		Categories: auditCategories,
		Pagination: uikit.Paginate(st.Query, st.Total, redirectAudit),
	}
	if st.Err != nil {
		v.Error = "Could not read the audit log."
		h.logger.Error("failed to list audit events", "error", st.Err)
	}

	renderPage(w, r, h.renderer, page{
		template: tmplAudit,
		title:    "Audit log",
		data:     v,
		breadcrumbs: []uikit.Breadcrumb{
			{Label: "Dashboard", URL: redirectAdmin},
			{Label: "Audit log", Active: true},
		},
	})
}
