// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/staydesk/internal/session"
)

type fakeIdentity struct {
	id session.Identity
	ok bool
}

func (f fakeIdentity) Identity() (session.Identity, bool) { return f.id, f.ok }

func TestRequireSession_Authenticated(t *testing.T) {
	src := fakeIdentity{id: session.Identity{Email: "ops@example.com", Role: session.RoleAdmin}, ok: true}

	var got session.Identity
	handler := RequireSession(src)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ok bool
		got, ok = GetAdmin(r)
		require.True(t, ok)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ops@example.com", got.Email)
}

func TestRequireSession_Unauthenticated(t *testing.T) {
	handler := RequireSession(fakeIdentity{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a session")
	}))

	tests := []struct {
		name     string
		path     string
		header   map[string]string
		wantCode int
	}{
		{"page redirects", "/admin/hotels", nil, http.StatusSeeOther},
		{"state endpoint", "/admin/hotels/state", nil, http.StatusUnauthorized},
		{"json accept", "/admin/hotels", map[string]string{"Accept": "application/json"}, http.StatusUnauthorized},
		{"websocket", "/admin/hotels/live", map[string]string{"Upgrade": "websocket"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusSeeOther {
				assert.Equal(t, LoginPath, rec.Header().Get("Location"))
			}
		})
	}
}

func TestRedirectIfAuthenticated(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })

	rec := httptest.NewRecorder()
	RedirectIfAuthenticated(fakeIdentity{ok: true}, "/admin")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	RedirectIfAuthenticated(fakeIdentity{}, "/admin")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestGetAdmin_Missing(t *testing.T) {
	_, ok := GetAdmin(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}
