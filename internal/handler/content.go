// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/staydesk/internal/apiclient"
	"github.com/olegiv/staydesk/internal/model"
	"github.com/olegiv/staydesk/internal/render"
	"github.com/olegiv/staydesk/internal/service"
	"github.com/olegiv/staydesk/internal/uikit"
)

// ContentHandler serves the content forms: legal page editor, FAQ
// creation and notification broadcast.
type ContentHandler struct {
	content  *service.ContentService
	lists    *Lists
	renderer *render.Renderer
	logger   *slog.Logger
}

// NewContentHandler creates a ContentHandler.
func NewContentHandler(content *service.ContentService, lists *Lists, renderer *render.Renderer, logger *slog.Logger) *ContentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentHandler{content: content, lists: lists, renderer: renderer, logger: logger}
}

// formView is shared by the content forms.
type formView[T any] struct {
	Input   T
	Errors  service.ValidationErrors
	Options []string
	// Preview is the rendered markdown of the legal page editor.
	Preview template.HTML
	ID      string
	Action  string
	Cancel  string
}

// fieldErrors extracts per-field errors; a backend validation message is
// returned as toast text instead.
func fieldErrors(err error) (service.ValidationErrors, string) {
	var v service.ValidationErrors
	if errors.As(err, &v) {
		return v, "Please fix the highlighted fields."
	}
	return nil, apiclient.UserMessage(err)
}

func (h *ContentHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, tmpl, title string, data any, err error, crumbs []uikit.Breadcrumb) {
	p := page{status: status, template: tmpl, title: title, data: data, breadcrumbs: crumbs}
	if err != nil {
		_, p.flash = fieldErrors(err)
		p.flashType = render.FlashError
	}
	renderPage(w, r, h.renderer, p)
}

// handleSaveError answers a failed save: validation failures re-render
// the form with the input kept, anything else goes through handleAPIError.
func (h *ContentHandler) handleSaveError(w http.ResponseWriter, r *http.Request, err error, back string, rerender func(errs service.ValidationErrors)) {
	if service.IsValidation(err) {
		errs, _ := fieldErrors(err)
		rerender(errs)
		return
	}
	handleAPIError(w, r, h.renderer, h.logger, err, back)
}

// LegalEditForm handles GET /admin/legal-pages/{id}/edit.
func (h *ContentHandler) LegalEditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	lp, err := h.content.LegalPage(r.Context(), id)
	if err != nil {
		handleAPIError(w, r, h.renderer, h.logger, err, listURL("legal-pages"))
		return
	}

	v := h.legalView(id, service.LegalPageInput{Title: lp.Title, Content: lp.Content, Status: lp.Status})
	h.renderForm(w, r, http.StatusOK, tmplLegalEdit, "Edit "+lp.Title, v, nil, h.legalCrumbs(id, lp.Title))
}

func (h *ContentHandler) legalView(id string, in service.LegalPageInput) formView[service.LegalPageInput] {
	return formView[service.LegalPageInput]{
		Input:   in,
		Options: []string{model.StatusActive, model.StatusInactive},
		ID:      id,
		Action:  RouteAdmin + "/legal-pages/" + id + "/edit",
		Cancel:  detailURL("legal-pages", id),
	}
}

func (h *ContentHandler) legalCrumbs(id, title string) []uikit.Breadcrumb {
	return []uikit.Breadcrumb{
		{Label: "Dashboard", URL: redirectAdmin},
		{Label: "Legal pages", URL: listURL("legal-pages")},
		{Label: title, URL: detailURL("legal-pages", id)},
		{Label: "Edit", Active: true},
	}
}

// LegalEdit handles POST /admin/legal-pages/{id}/edit. The "preview"
// button renders the sanitized markdown without saving.
func (h *ContentHandler) LegalEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := RouteAdmin + "/legal-pages/" + id + "/edit"
	if !parseFormOrRedirect(w, r, h.renderer, back) {
		return
	}

	in := service.LegalPageInput{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
		Status:  r.FormValue("status"),
	}
	v := h.legalView(id, in)

	if r.FormValue("preview") != "" {
		preview, err := uikit.RenderMarkdown(in.Content)
		if err != nil {
			h.logger.Warn("markdown preview failed", "id", id, "error", err)
		}
		v.Preview = preview
		h.renderForm(w, r, http.StatusOK, tmplLegalEdit, "Edit "+in.Title, v, nil, h.legalCrumbs(id, in.Title))
		return
	}

	err := h.lists.Mutate(r.Context(), "legal-pages", func(ctx context.Context) error {
		_, err := h.content.UpdateLegalPage(ctx, id, in)
		return err
	})
	if err != nil {
		h.handleSaveError(w, r, err, back, func(errs service.ValidationErrors) {
			v.Errors = errs
			h.renderForm(w, r, http.StatusUnprocessableEntity, tmplLegalEdit, "Edit "+in.Title, v, err, h.legalCrumbs(id, in.Title))
		})
		return
	}

	h.logger.Info("legal page updated", "category", model.AuditCategoryModeration, "actor", actor(r), "id", id, "title", v.Input.Title)
	flashSuccess(w, r, h.renderer, detailURL("legal-pages", id), "Legal page saved.")
}

func faqCrumbs() []uikit.Breadcrumb {
	return []uikit.Breadcrumb{
		{Label: "Dashboard", URL: redirectAdmin},
		{Label: "FAQs", URL: listURL("faqs")},
		{Label: "New", Active: true},
	}
}

func faqView(in service.FAQInput) formView[service.FAQInput] {
	return formView[service.FAQInput]{
		Input:   in,
		Options: []string{model.StatusActive, model.StatusInactive},
		Action:  RouteAdmin + RouteFAQNew,
		Cancel:  listURL("faqs"),
	}
}

// FAQForm handles GET /admin/faqs/new.
func (h *ContentHandler) FAQForm(w http.ResponseWriter, r *http.Request) {
	v := faqView(service.FAQInput{Status: model.StatusActive})
	h.renderForm(w, r, http.StatusOK, tmplFAQForm, "New FAQ", v, nil, faqCrumbs())
}

// FAQCreate handles POST /admin/faqs/new.
func (h *ContentHandler) FAQCreate(w http.ResponseWriter, r *http.Request) {
	back := RouteAdmin + RouteFAQNew
	if !parseFormOrRedirect(w, r, h.renderer, back) {
		return
	}

	in := service.FAQInput{
		Question: r.FormValue("question"),
		Answer:   r.FormValue("answer"),
		Category: r.FormValue("category"),
		Order:    parseIntForm(r, "order"),
		Status:   r.FormValue("status"),
	}

	var m service.Mutation[model.FAQ]
	err := h.lists.Mutate(r.Context(), "faqs", func(ctx context.Context) error {
		var err error
		m, err = h.content.CreateFAQ(ctx, in)
		return err
	})
	if err != nil {
		h.handleSaveError(w, r, err, back, func(errs service.ValidationErrors) {
			v := faqView(in)
			v.Errors = errs
			h.renderForm(w, r, http.StatusUnprocessableEntity, tmplFAQForm, "New FAQ", v, err, faqCrumbs())
		})
		return
	}

	h.logger.Info("faq created", "category", model.AuditCategoryModeration, "actor", actor(r), "question", uikit.Truncate(in.Question, 80))
	target := listURL("faqs")
	if m.Entity != nil && m.Entity.ID != "" {
		target = detailURL("faqs", m.Entity.ID)
	}
	flashSuccess(w, r, h.renderer, target, "FAQ created.")
}

func notificationCrumbs() []uikit.Breadcrumb {
	return []uikit.Breadcrumb{
		{Label: "Dashboard", URL: redirectAdmin},
		{Label: "Notifications", URL: listURL("notifications")},
		{Label: "New", Active: true},
	}
}

func notificationView(in service.NotificationInput) formView[service.NotificationInput] {
	return formView[service.NotificationInput]{
		Input:   in,
		Options: service.Audiences,
		Action:  RouteAdmin + RouteNotificationNew,
		Cancel:  listURL("notifications"),
	}
}

// NotificationForm handles GET /admin/notifications/new.
func (h *ContentHandler) NotificationForm(w http.ResponseWriter, r *http.Request) {
	v := notificationView(service.NotificationInput{Audience: model.AudienceAll})
	h.renderForm(w, r, http.StatusOK, tmplNotify, "New notification", v, nil, notificationCrumbs())
}

// NotificationSend handles POST /admin/notifications/new.
func (h *ContentHandler) NotificationSend(w http.ResponseWriter, r *http.Request) {
	back := RouteAdmin + RouteNotificationNew
	if !parseFormOrRedirect(w, r, h.renderer, back) {
		return
	}

	in := service.NotificationInput{
		Title:    r.FormValue("title"),
		Message:  r.FormValue("message"),
		Audience: r.FormValue("audience"),
	}

	err := h.lists.Mutate(r.Context(), "notifications", func(ctx context.Context) error {
		_, err := h.content.SendNotification(ctx, in)
		return err
	})
	if err != nil {
		h.handleSaveError(w, r, err, back, func(errs service.ValidationErrors) {
			v := notificationView(in)
			v.Errors = errs
			h.renderForm(w, r, http.StatusUnprocessableEntity, tmplNotify, "New notification", v, err, notificationCrumbs())
		})
		return
	}

	h.logger.Info("notification sent", "category", model.AuditCategoryModeration, "actor", actor(r), "audience", in.Audience, "title", in.Title)
	flashSuccess(w, r, h.renderer, listURL("notifications"), "Notification sent.")
}
