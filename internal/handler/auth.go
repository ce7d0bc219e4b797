// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/mileusna/useragent"

	"github.com/olegiv/staydesk/internal/model"
	"github.com/olegiv/staydesk/internal/render"
	"github.com/olegiv/staydesk/internal/session"
)

// AuthHandler handles the login and logout routes.
type AuthHandler struct {
	session        *session.Session
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	logger         *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sess *session.Session, renderer *render.Renderer, sm *scs.SessionManager, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		session:        sess,
		renderer:       renderer,
		sessionManager: sm,
		logger:         logger,
	}
}

// loginView is the data of the login page.
type loginView struct {
	Email string
	Next  string
}

// safeNext keeps post-login redirects inside the console.
func safeNext(next string) string {
	if next == RouteAdmin || strings.HasPrefix(next, RouteAdmin+"/") {
		if !strings.Contains(next, "//") && !strings.Contains(next, `\`) {
			return next
		}
	}
	return redirectAdmin
}

// LoginForm renders the login page.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, page{
		template: tmplLogin,
		title:    "Sign in",
		data:     loginView{Next: safeNext(r.URL.Query().Get("next"))},
	})
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectLogin) {
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	next := safeNext(r.FormValue("next"))

	if err := h.session.Login(r.Context(), email, password); err != nil {
		status := http.StatusUnauthorized
		var lerr *session.LoginError
		if errors.As(err, &lerr) {
			switch lerr.Reason {
			case session.ReasonInvalidInput:
				status = http.StatusUnprocessableEntity
			case session.ReasonNotAdmin:
				status = http.StatusForbidden
			case session.ReasonNetwork, session.ReasonServer:
				status = http.StatusBadGateway
			}
		}
		renderPage(w, r, h.renderer, page{
			status:    status,
			template:  tmplLogin,
			title:     "Sign in",
			data:      loginView{Email: email, Next: next},
			flash:     err.Error(),
			flashType: render.FlashError,
		})
		return
	}

	// Renew the browser session token to prevent session fixation.
	if h.sessionManager != nil {
		if err := h.sessionManager.RenewToken(r.Context()); err != nil {
			h.logger.Error("failed to renew session token", "error", err)
		}
	}

	id, _ := h.session.Identity()
	h.logger.Info("admin signed in", append([]any{
		"category", model.AuditCategoryAuth,
		"actor", id.Email,
		"role", string(id.Role),
		"ip", r.RemoteAddr,
	}, browserAttrs(r.UserAgent())...)...)

	flashSuccess(w, r, h.renderer, next, "Welcome back, "+displayName(id)+".")
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Logout(r.Context()); err != nil {
		// The in-memory session is gone either way.
		h.logger.Error("failed to clear stored token", "error", err)
	}
	if h.sessionManager != nil {
		if err := h.sessionManager.RenewToken(r.Context()); err != nil {
			h.logger.Error("failed to renew session token", "error", err)
		}
	}
	flashAndRedirect(w, r, h.renderer, redirectLogin, "You have been signed out.", render.FlashInfo)
}

func displayName(id session.Identity) string {
	if id.DisplayName != "" {
		return id.DisplayName
	}
	return id.Email
}

// browserAttrs describes the client for the audit log.
func browserAttrs(userAgent string) []any {
	if userAgent == "" {
		return nil
	}
	ua := useragent.Parse(userAgent)
	device := "desktop"
	switch {
	case ua.Bot:
		device = "bot"
	case ua.Tablet:
		device = "tablet"
	case ua.Mobile:
		device = "mobile"
	}
	attrs := []any{"device", device}
	if ua.Name != "" {
		attrs = append(attrs, "browser", strings.TrimSpace(ua.Name+" "+ua.Version))
	}
	if ua.OS != "" {
		attrs = append(attrs, "os", strings.TrimSpace(ua.OS+" "+ua.OSVersion))
	}
	return attrs
}
