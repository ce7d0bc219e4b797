// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/staydesk/internal/apiclient"
	"github.com/olegiv/staydesk/internal/confirm"
	"github.com/olegiv/staydesk/internal/render"
	"github.com/olegiv/staydesk/internal/uikit"
)

// mutationTimeout bounds a confirmed action. It is detached from the
// request so a closed tab does not abort a half-sent mutation.
const mutationTimeout = 30 * time.Second

const expiredMessage = "This confirmation has expired or was already answered."

// ConfirmHandler serves the confirmation dialog of pending intents.
type ConfirmHandler struct {
	gate     *confirm.Gate
	renderer *render.Renderer
	logger   *slog.Logger
}

// NewConfirmHandler creates a ConfirmHandler.
func NewConfirmHandler(gate *confirm.Gate, renderer *render.Renderer, logger *slog.Logger) *ConfirmHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfirmHandler{gate: gate, renderer: renderer, logger: logger}
}

// confirmView is the data of the confirmation page.
type confirmView struct {
	ID        string
	Title     string
	Message   string
	Severity  string
	ReturnURL string
	ExpiresAt time.Time
}

// returnURL reads a console-local URL from intent metadata.
func returnURL(intent confirm.Intent, key string) string {
	u := intent.Meta[key]
	if !strings.HasPrefix(u, RouteAdmin) || strings.HasPrefix(u, "//") {
		return redirectAdmin
	}
	return u
}

// Show handles GET /admin/confirm/{intent}.
func (h *ConfirmHandler) Show(w http.ResponseWriter, r *http.Request) {
	intent, ok := h.gate.Get(chi.URLParam(r, "intent"))
	if !ok {
		flashError(w, r, h.renderer, redirectAdmin, expiredMessage)
		return
	}

	renderPage(w, r, h.renderer, page{
		template: tmplConfirm,
		title:    intent.Title,
		data: confirmView{
			ID:        intent.ID,
			Title:     intent.Title,
			Message:   intent.Message,
			Severity:  string(intent.Severity),
			ReturnURL: returnURL(intent, metaReturn),
			ExpiresAt: intent.ExpiresAt,
		},
		breadcrumbs: []uikit.Breadcrumb{
			{Label: "Dashboard", URL: redirectAdmin},
			{Label: "Confirm", Active: true},
		},
	})
}

// Confirm handles POST /admin/confirm/{intent}. The guarded action runs
// exactly once; a second submit finds the intent gone.
func (h *ConfirmHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "intent")
	intent, ok := h.gate.Get(id)
	if !ok {
		flashError(w, r, h.renderer, redirectAdmin, expiredMessage)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), mutationTimeout)
	defer cancel()

	err := h.gate.Confirm(ctx, id)
	switch {
	case errors.Is(err, confirm.ErrNotFound):
		flashError(w, r, h.renderer, returnURL(intent, metaReturn), expiredMessage)
	case err != nil && isUnauthorized(err):
		flashError(w, r, h.renderer, redirectLogin, apiclient.UserMessage(err))
	case err != nil:
		h.logger.Warn("confirmed action failed", "intent", id, "title", intent.Title, "error", err)
		flashError(w, r, h.renderer, returnURL(intent, metaReturn), apiclient.UserMessage(err))
	default:
		message := intent.Meta[metaSuccess]
		if message == "" {
			message = "Done."
		}
		flashSuccess(w, r, h.renderer, returnURL(intent, metaDone), message)
	}
}

// Cancel handles POST /admin/confirm/{intent}/cancel.
func (h *ConfirmHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "intent")
	intent, ok := h.gate.Get(id)
	if !ok || !h.gate.Cancel(id) {
		flashError(w, r, h.renderer, redirectAdmin, expiredMessage)
		return
	}
	flashAndRedirect(w, r, h.renderer, returnURL(intent, metaReturn), "Cancelled. Nothing was changed.", render.FlashInfo)
}
