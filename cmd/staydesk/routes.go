// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/staydesk/internal/config"
	"github.com/olegiv/staydesk/internal/handler"
	"github.com/olegiv/staydesk/internal/middleware"
	"github.com/olegiv/staydesk/internal/session"
)

// handlers are the HTTP handlers of the console.
type handlers struct {
	auth      *handler.AuthHandler
	dashboard *handler.DashboardHandler
	resources *handler.ResourceHandler
	confirms  *handler.ConfirmHandler
	content   *handler.ContentHandler
	audit     *handler.AuditLogHandler
	live      *handler.LiveHandler
	health    *handler.HealthHandler
}

func routes(cfg *config.Config, sess *session.Session, sm *scs.SessionManager, h handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.LoadSession(sm))

	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerAddr()))

	r.Get(handler.RouteHealth, h.health.Health)
	r.Get(handler.RouteRoot, func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, handler.RouteAdmin, http.StatusSeeOther)
	})

	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.With(middleware.RedirectIfAuthenticated(sess, handler.RouteAdmin)).Get(handler.RouteLogin, h.auth.LoginForm)
		r.Post(handler.RouteLogin, h.auth.Login)
		r.Post(handler.RouteLogout, h.auth.Logout)
	})

	r.Route(handler.RouteAdmin, func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.RequireSession(sess))

		r.Get("/", h.dashboard.Dashboard)
		r.Get(handler.RouteAudit, h.audit.List)

		r.Get(handler.RouteConfirm, h.confirms.Show)
		r.Post(handler.RouteConfirm, h.confirms.Confirm)
		r.Post(handler.RouteConfirmCancel, h.confirms.Cancel)

		r.Get(handler.RouteFAQNew, h.content.FAQForm)
		r.Post(handler.RouteFAQNew, h.content.FAQCreate)
		r.Get(handler.RouteNotificationNew, h.content.NotificationForm)
		r.Post(handler.RouteNotificationNew, h.content.NotificationSend)
		r.Get(handler.RouteLegalEdit, h.content.LegalEditForm)
		r.Post(handler.RouteLegalEdit, h.content.LegalEdit)

		r.Get(handler.RouteResource, h.resources.List)
		r.Get(handler.RouteResourceState, h.resources.State)
		r.Get(handler.RouteResourceLive, h.live.Live)
		r.Get(handler.RouteResourceID, h.resources.Detail)
		r.Post(handler.RouteResourceAction, h.resources.Action)
	})

	return r
}
