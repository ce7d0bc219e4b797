// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginForm(t *testing.T) {
	env := newTestEnv(t, true)

	resp := env.get(t, "/login?next=/admin/hotels")
	require.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, `name="next" value="/admin/hotels"`)
}

func TestLoginFormRedirectsWhenSignedIn(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.get(t, "/login")
	assert.Equal(t, http.StatusSeeOther, resp.status)
	assert.Equal(t, "/admin", resp.location)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, true)

	resp := env.post(t, "/login", url.Values{
		"email":    {testEmail},
		"password": {testPassword},
		"next":     {"/admin/hotels"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.status)
	assert.Equal(t, "/admin/hotels", resp.location)
	assert.True(t, env.session.Authenticated())
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		password   string
		backend    int
		role       string
		wantStatus int
	}{
		{"missing password", testEmail, "", http.StatusOK, "admin", http.StatusUnprocessableEntity},
		{"malformed email", "not-an-email", testPassword, http.StatusOK, "admin", http.StatusUnprocessableEntity},
		{"wrong credentials", testEmail, "wrong", http.StatusUnauthorized, "admin", http.StatusUnauthorized},
		{"not an admin", testEmail, testPassword, http.StatusOK, "partner", http.StatusForbidden},
		{"backend down", testEmail, testPassword, http.StatusInternalServerError, "admin", http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, true)
			env.backend.JSON("POST /auth/admin/login", tt.backend, map[string]any{
				"success": tt.backend == http.StatusOK,
				"token":   "tok-abc",
				"admin":   map[string]any{"id": "a1", "email": testEmail, "role": tt.role},
			})

			resp := env.post(t, "/login", url.Values{"email": {tt.email}, "password": {tt.password}})
			assert.Equal(t, tt.wantStatus, resp.status)
			assert.Contains(t, resp.body, `class="flash error"`)
			assert.False(t, env.session.Authenticated())
		})
	}
}

func TestLoginRejectsOffsiteNext(t *testing.T) {
	env := newTestEnv(t, true)

	resp := env.post(t, "/login", url.Values{
		"email":    {testEmail},
		"password": {testPassword},
		"next":     {"//evil.example.com/admin"},
	})
	assert.Equal(t, "/admin", resp.location)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, false)
	hotelFixtures(env.backend, "pending")

	page := env.follow(t, env.post(t, "/logout", nil), "/login")
	assert.Contains(t, page.body, "You have been signed out.")
	assert.False(t, env.session.Authenticated())

	resp := env.get(t, "/admin/hotels")
	assert.Equal(t, http.StatusSeeOther, resp.status)
	assert.Equal(t, "/login", resp.location)
	assert.Zero(t, env.backend.Count(http.MethodGet, "/admin/hotels"))
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/admin"},
		{"/admin", "/admin"},
		{"/admin/bookings?status=pending", "/admin/bookings?status=pending"},
		{"/administrator", "/admin"},
		{"https://example.com/admin", "/admin"},
		{"/admin//evil.example.com", "/admin"},
		{`/admin/\evil`, "/admin"},
	}
	for _, tt := range tests {
		if got := safeNext(tt.in); got != tt.want {
			t.Errorf("safeNext(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBrowserAttrs(t *testing.T) {
	assert.Nil(t, browserAttrs(""))

	attrs := browserAttrs("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	require.GreaterOrEqual(t, len(attrs), 2)
	assert.Equal(t, "device", attrs[0])
	assert.Equal(t, "desktop", attrs[1])
	assert.Contains(t, attrs, "browser")
}
