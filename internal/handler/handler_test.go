// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/olegiv/staydesk/internal/apiclient"
	"github.com/olegiv/staydesk/internal/confirm"
	"github.com/olegiv/staydesk/internal/listing"
	"github.com/olegiv/staydesk/internal/middleware"
	"github.com/olegiv/staydesk/internal/render"
	"github.com/olegiv/staydesk/internal/service"
	"github.com/olegiv/staydesk/internal/session"
	"github.com/olegiv/staydesk/internal/testutil"
	"github.com/olegiv/staydesk/internal/uikit"
	"github.com/olegiv/staydesk/internal/version"
	"github.com/olegiv/staydesk/web"
)

const (
	testEmail    = "ops@example.com"
	testPassword = "s3cret-pass"
)

// testEnv is a console wired to a fake backend and served over httptest.
type testEnv struct {
	backend *testutil.Backend
	session *session.Session
	lists   *Lists
	gate    *confirm.Gate
	audit   *service.AuditService
	db      *sql.DB
	server  *httptest.Server
	client  *http.Client
}

// newTestEnv builds the console. The operator is signed in unless
// signedOut is set.
func newTestEnv(t *testing.T, signedOut bool) *testEnv {
	t.Helper()

	b := testutil.NewBackend(t)
	b.JSON("POST /auth/admin/login", http.StatusOK, map[string]any{
		"success": true,
		"token":   "tok-abc",
		"admin":   map[string]any{"id": "a1", "name": "Asha", "email": testEmail, "role": "admin"},
	})

	logger := testutil.TestLoggerSilent()
	raw, err := apiclient.New(apiclient.Config{BaseURL: b.URL, Logger: logger})
	require.NoError(t, err)

	sess := session.New(service.NewAuthService(raw), session.NewMemoryStorage(), logger)
	if !signedOut {
		require.NoError(t, sess.Login(context.Background(), testEmail, testPassword))
	}
	api := apiclient.NewSessionClient(raw, sess, logger)

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	catalog := service.NewCatalog(api)
	listOpts := listing.Options{PageSize: 10, Debounce: time.Millisecond, Logger: logger}
	lists := NewLists(catalog, listOpts)
	t.Cleanup(lists.Close)
	sess.OnChange(lists.SessionChanged)
	gate := confirm.NewGate(time.Minute, logger)
	audit := service.NewAuditService(db)

	money, err := uikit.NewMoney("USD", language.English)
	require.NoError(t, err)
	sm := scs.New()
	renderer, err := render.New(render.Config{TemplatesFS: web.TemplatesFS(), SessionManager: sm, Money: money})
	require.NoError(t, err)

	authHandler := NewAuthHandler(sess, renderer, sm, logger)
	resources := NewResourceHandler(catalog, lists, gate, renderer, logger)
	confirms := NewConfirmHandler(gate, renderer, logger)
	content := NewContentHandler(service.NewContentService(api), lists, renderer, logger)
	dashboard := NewDashboardHandler(service.NewDashboardService(api), gate, renderer)
	auditLog := NewAuditLogHandler(audit, listOpts, renderer)
	t.Cleanup(auditLog.Close)
	live := NewLiveHandler(lists, logger)
	health := NewHealthHandler(db, sess, version.Info{Version: "test"})

	r := chi.NewRouter()
	r.Use(middleware.LoadSession(sm))
	r.Get(RouteHealth, health.Health)
	r.With(middleware.RedirectIfAuthenticated(sess, redirectAdmin)).Get(RouteLogin, authHandler.LoginForm)
	r.Post(RouteLogin, authHandler.Login)
	r.Post(RouteLogout, authHandler.Logout)
	r.Route(RouteAdmin, func(r chi.Router) {
		r.Use(middleware.RequireSession(sess))
		r.Get("/", dashboard.Dashboard)
		r.Get(RouteAudit, auditLog.List)
		r.Get(RouteConfirm, confirms.Show)
		r.Post(RouteConfirm, confirms.Confirm)
		r.Post(RouteConfirmCancel, confirms.Cancel)
		r.Get(RouteFAQNew, content.FAQForm)
		r.Post(RouteFAQNew, content.FAQCreate)
		r.Get(RouteNotificationNew, content.NotificationForm)
		r.Post(RouteNotificationNew, content.NotificationSend)
		r.Get(RouteLegalEdit, content.LegalEditForm)
		r.Post(RouteLegalEdit, content.LegalEdit)
		r.Get(RouteResource, resources.List)
		r.Get(RouteResourceState, resources.State)
		r.Get(RouteResourceLive, live.Live)
		r.Get(RouteResourceID, resources.Detail)
		r.Post(RouteResourceAction, resources.Action)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testEnv{
		backend: b,
		session: sess,
		lists:   lists,
		gate:    gate,
		audit:   audit,
		db:      db,
		server:  srv,
		client:  client,
	}
}

// response is a fully read HTTP response.
type response struct {
	status   int
	location string
	body     string
	header   http.Header
}

func (e *testEnv) do(t *testing.T, method, path string, form url.Values) response {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, e.server.URL+path, body)
	require.NoError(t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return response{
		status:   resp.StatusCode,
		location: resp.Header.Get("Location"),
		body:     string(data),
		header:   resp.Header,
	}
}

func (e *testEnv) get(t *testing.T, path string) response {
	t.Helper()
	return e.do(t, http.MethodGet, path, nil)
}

func (e *testEnv) post(t *testing.T, path string, form url.Values) response {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	return e.do(t, http.MethodPost, path, form)
}

// follow asserts a 303 redirect to target and fetches it.
func (e *testEnv) follow(t *testing.T, resp response, target string) response {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, resp.status, resp.body)
	require.Equal(t, target, resp.location)
	return e.get(t, resp.location)
}

// hotelFixtures registers a pending hotel with related collections.
func hotelFixtures(b *testutil.Backend, status string) {
	b.JSON("GET /admin/hotels", http.StatusOK, map[string]any{
		"success": true,
		"items": []map[string]any{
			{"id": "h1", "name": "Sea View", "type": "hotel", "city": "Goa", "status": status},
			{"id": "h2", "name": "Hill Stay", "type": "pg", "city": "Ooty", "status": "approved"},
		},
		"total": 2,
	})
	b.JSON("GET /admin/hotels/{id}", http.StatusOK, map[string]any{
		"success": true,
		"data":    map[string]any{"id": "h1", "name": "Sea View", "type": "hotel", "city": "Goa", "status": status},
	})
	b.JSON("GET /admin/hotels/{id}/bookings", http.StatusOK, map[string]any{
		"success": true,
		"items":   []map[string]any{{"id": "b1", "reference": "SD-1001", "status": "confirmed"}},
		"total":   1,
	})
	b.JSON("GET /admin/hotels/{id}/reviews", http.StatusOK, map[string]any{"success": true, "items": []any{}, "total": 0})
	b.JSON("PUT /admin/hotels/{id}/status", http.StatusOK, map[string]any{
		"success":       true,
		"updatedEntity": map[string]any{"id": "h1", "name": "Sea View", "status": "approved"},
	})
}
