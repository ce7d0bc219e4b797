// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteHealth is the health check route.
	RouteHealth = "/health"
	// RouteAdmin is the prefix of every console page.
	RouteAdmin = "/admin"

	// RouteAudit is the local audit log.
	RouteAudit = "/audit"
	// RouteConfirm is a pending confirmation.
	RouteConfirm = "/confirm/{intent}"
	// RouteConfirmCancel cancels a pending confirmation.
	RouteConfirmCancel = RouteConfirm + "/cancel"

	// RouteFAQNew is the FAQ create form.
	RouteFAQNew = "/faqs/new"
	// RouteNotificationNew is the broadcast form.
	RouteNotificationNew = "/notifications/new"
	// RouteLegalEdit is the legal page editor.
	RouteLegalEdit = "/legal-pages/{id}/edit"

	// RouteResource is a resource list page.
	RouteResource = "/{resource}"
	// RouteResourceState is the JSON snapshot of a list.
	RouteResourceState = RouteResource + "/state"
	// RouteResourceLive is the websocket feed of a list.
	RouteResourceLive = RouteResource + "/live"
	// RouteResourceID is a detail page.
	RouteResourceID = RouteResource + "/{id}"
	// RouteResourceAction opens a confirmation for a moderation action.
	RouteResourceAction = RouteResourceID + "/actions/{action}"
)

const (
	redirectAdmin = RouteAdmin
	redirectLogin = RouteLogin
	redirectAudit = RouteAdmin + RouteAudit
)

// Template names.
const (
	tmplLogin     = "auth/login"
	tmplDashboard = "admin/dashboard"
	tmplList      = "admin/list"
	tmplDetail    = "admin/detail"
	tmplConfirm   = "admin/confirm"
	tmplLegalEdit = "admin/legal_edit"
	tmplFAQForm   = "admin/faq_form"
	tmplNotify    = "admin/notification_form"
	tmplAudit     = "admin/audit"
	tmplNotFound  = "admin/not_found"
)
