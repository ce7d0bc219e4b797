// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"github.com/olegiv/staydesk/internal/apiclient"
	"github.com/olegiv/staydesk/internal/confirm"
	"github.com/olegiv/staydesk/internal/model"
	"github.com/olegiv/staydesk/internal/render"
	"github.com/olegiv/staydesk/internal/service"
)

const dateLayout = "2006-01-02"

// DashboardHandler serves the console home page.
type DashboardHandler struct {
	dashboard *service.DashboardService
	gate      *confirm.Gate
	renderer  *render.Renderer
	now       func() time.Time
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService, gate *confirm.Gate, renderer *render.Renderer) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, gate: gate, renderer: renderer, now: time.Now}
}

// kindRevenue is one line of the revenue-by-type table.
type kindRevenue struct {
	Kind   string
	Amount float64
}

// dashboardView is the data of the dashboard page.
type dashboardView struct {
	Stats         model.DashboardStats
	Finance       model.FinanceSummary
	RevenueByKind []kindRevenue
	StatsError    string
	FinanceError  string
	From          string
	To            string
	Pending       []confirm.Intent
}

// Dashboard handles GET /admin. Stats and finance load in parallel and
// fail independently.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	from, to := service.ParseRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"), h.now())
	ov := h.dashboard.Overview(r.Context(), from, to)

	for _, err := range []error{ov.StatsErr, ov.FinanceErr} {
		if err != nil && isUnauthorized(err) {
			flashError(w, r, h.renderer, redirectLogin, apiclient.UserMessage(err))
			return
		}
	}

	v := dashboardView{
		Stats:   ov.Stats,
		Finance: ov.Finance,
		From:    from.Format(dateLayout),
		To:      to.Format(dateLayout),
	}
	if h.gate != nil {
		v.Pending = h.gate.Pending()
	}
	for _, kind := range model.PropertyKinds {
		if amount, ok := ov.Finance.RevenueByKind[kind]; ok {
			v.RevenueByKind = append(v.RevenueByKind, kindRevenue{Kind: kind, Amount: amount})
		}
	}
	if ov.StatsErr != nil {
		v.StatsError = apiclient.UserMessage(ov.StatsErr)
	}
	if ov.FinanceErr != nil {
		v.FinanceError = apiclient.UserMessage(ov.FinanceErr)
	}

	renderPage(w, r, h.renderer, page{
		template: tmplDashboard,
		title:    "Dashboard",
		data:     v,
	})
}
