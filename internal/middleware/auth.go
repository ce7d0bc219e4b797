// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/olegiv/staydesk/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyAdmin holds the signed-in operator's session.Identity.
const ContextKeyAdmin ContextKey = "admin"

// LoginPath is where unauthenticated page requests are sent.
const LoginPath = "/login"

// IdentitySource reports the signed-in operator. session.Session implements it.
type IdentitySource interface {
	Identity() (session.Identity, bool)
}

// RequireSession rejects requests while the admin session is not
// authenticated. Pages are redirected to the login page; JSON and websocket
// callers get 401. The operator identity is stored in the request context.
func RequireSession(src IdentitySource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := src.Identity()
			if !ok {
				if WantsJSON(r) || isUpgrade(r) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusUnauthorized)
					_, _ = w.Write([]byte(`{"success":false,"error":"not signed in"}`))
					return
				}
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyAdmin, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RedirectIfAuthenticated sends an already signed-in operator from the
// login page to target.
func RedirectIfAuthenticated(src IdentitySource, target string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := src.Identity(); ok && r.Method == http.MethodGet {
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetAdmin returns the operator stored by RequireSession.
func GetAdmin(r *http.Request) (session.Identity, bool) {
	id, ok := r.Context().Value(ContextKeyAdmin).(session.Identity)
	return id, ok
}

// WantsJSON reports whether the caller asked for JSON.
func WantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasSuffix(r.URL.Path, "/state")
}
