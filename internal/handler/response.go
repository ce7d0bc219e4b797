// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/olegiv/staydesk/internal/apiclient"
	"github.com/olegiv/staydesk/internal/middleware"
	"github.com/olegiv/staydesk/internal/render"
	"github.com/olegiv/staydesk/internal/uikit"
)

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, render.FlashError)
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, render.FlashSuccess)
}

// parseFormOrRedirect parses the request form and redirects with an error message on failure.
// Returns true if parsing succeeded, false if it failed (and redirect was performed).
func parseFormOrRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, redirectURL string) bool {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, renderer, redirectURL, "Invalid form data")
		return false
	}
	return true
}

// logAndInternalError logs an error and writes a 500 Internal Server Error response.
func logAndInternalError(w http.ResponseWriter, logMsg string, args ...any) {
	slog.Error(logMsg, args...)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// page is one console page to render.
type page struct {
	status      int
	template    string
	title       string
	data        any
	breadcrumbs []uikit.Breadcrumb
	flash       string
	flashType   string
}

// renderPage renders p with the signed-in operator filled in.
func renderPage(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, p page) {
	td := render.TemplateData{
		Title:       p.title,
		Data:        p.data,
		Breadcrumbs: p.breadcrumbs,
		Flash:       p.flash,
		FlashType:   p.flashType,
	}
	if id, ok := middleware.GetAdmin(r); ok {
		td.Admin = &id
	}
	status := p.status
	if status == 0 {
		status = http.StatusOK
	}
	if err := renderer.RenderStatus(w, r, status, p.template, td); err != nil {
		logAndInternalError(w, "failed to render page", "template", p.template, "error", err)
	}
}

// notFoundView is the data of the "not found" page.
type notFoundView struct {
	Message string
	BackURL string
	BackTo  string
}

// renderNotFound renders the "not found" page with a link back.
func renderNotFound(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, message, backURL, backTo string) {
	renderPage(w, r, renderer, page{
		status:   http.StatusNotFound,
		template: tmplNotFound,
		title:    "Not found",
		data:     notFoundView{Message: message, BackURL: backURL, BackTo: backTo},
	})
}

// handleAPIError answers a failed backend call on an HTML page: an expired
// session goes to the login page, a missing record gets the "not found"
// page, everything else becomes a toast on fallbackURL.
func handleAPIError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, logger *slog.Logger, err error, fallbackURL string) {
	switch apiclient.KindOf(err) {
	case apiclient.KindUnauthorized, apiclient.KindNoSession:
		flashError(w, r, renderer, redirectLogin, apiclient.UserMessage(err))
	case apiclient.KindNotFound:
		renderNotFound(w, r, renderer, apiclient.UserMessage(err), fallbackURL, "Back")
	default:
		logger.Warn("backend call failed", "path", r.URL.Path, "error", err)
		flashError(w, r, renderer, fallbackURL, apiclient.UserMessage(err))
	}
}

// handleAPIErrorJSON is handleAPIError for JSON endpoints.
func handleAPIErrorJSON(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch apiclient.KindOf(err) {
	case apiclient.KindUnauthorized, apiclient.KindNoSession:
		status = http.StatusUnauthorized
	case apiclient.KindForbidden:
		status = http.StatusForbidden
	case apiclient.KindNotFound:
		status = http.StatusNotFound
	case apiclient.KindValidation:
		status = http.StatusUnprocessableEntity
	}
	writeJSONError(w, status, apiclient.UserMessage(err))
}

// actor returns the e-mail of the signed-in operator for audit records.
func actor(r *http.Request) string {
	if id, ok := middleware.GetAdmin(r); ok {
		return id.Email
	}
	return ""
}

// isUnauthorized reports whether err means the session is gone.
func isUnauthorized(err error) bool {
	k := apiclient.KindOf(err)
	return k == apiclient.KindUnauthorized || k == apiclient.KindNoSession
}
