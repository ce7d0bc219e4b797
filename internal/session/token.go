// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
)

// Values left behind in storage by clients that serialized nothing.
var junkTokens = map[string]bool{
	"undefined":       true,
	"null":            true,
	"[object Object]": true,
	"NaN":             true,
	"false":           true,
}

// WellFormed reports whether token looks like a usable bearer token.
func WellFormed(token string) bool {
	return WellFormedAt(token, time.Now())
}

// WellFormedAt is WellFormed evaluated at the given instant. A JWT-shaped
// token must decode and must not be expired at now. The signature is not
// checked; the backend does that.
func WellFormedAt(token string, now time.Time) bool {
	if token == "" || token != strings.TrimSpace(token) || junkTokens[token] {
		return false
	}
	for _, r := range token {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	if strings.Count(token, ".") != 2 {
		return true
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return false
	}
	if exp != nil && !now.Before(exp.Time) {
		return false
	}
	return true
}
