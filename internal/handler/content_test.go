// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFAQCreate(t *testing.T) {
	env := newTestEnv(t, false)
	env.backend.JSON("POST /admin/faqs", http.StatusCreated, map[string]any{
		"success":       true,
		"updatedEntity": map[string]any{"id": "f1", "question": "How do refunds work?", "status": "active"},
	})

	resp := env.post(t, "/admin/faqs/new", url.Values{
		"question": {"  How do refunds work?  "},
		"answer":   {"Refunds reach the original card in 5-7 days."},
		"category": {"payments"},
		"order":    {"3"},
		"status":   {"active"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.status)
	assert.Equal(t, "/admin/faqs/f1", resp.location)

	reqs := env.backend.Matching(http.MethodPost, "/admin/faqs")
	require.Len(t, reqs, 1)
	var sent map[string]any
	require.NoError(t, json.Unmarshal(reqs[0].Body, &sent))
	assert.Equal(t, "How do refunds work?", sent["question"])
	assert.EqualValues(t, 3, sent["order"])
}

func TestFAQCreateValidation(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.post(t, "/admin/faqs/new", url.Values{
		"question": {"Hi"},
		"answer":   {""},
		"order":    {"-2"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
	assert.Contains(t, resp.body, "Please fix the highlighted fields.")
	assert.Contains(t, resp.body, "is too short")
	assert.Contains(t, resp.body, "is required")
	assert.Contains(t, resp.body, "must not be negative")
	assert.Contains(t, resp.body, `value="Hi"`, "input is kept")
	assert.Zero(t, env.backend.Count(http.MethodPost, "/admin/faqs"))
}

func TestFAQCreateBackendValidation(t *testing.T) {
	env := newTestEnv(t, false)
	env.backend.JSON("POST /admin/faqs", http.StatusBadRequest, map[string]any{
		"success": false,
		"message": "An FAQ with this question already exists",
	})

	resp := env.post(t, "/admin/faqs/new", url.Values{
		"question": {"How do refunds work?"},
		"answer":   {"Refunds reach the original card in 5-7 days."},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
	assert.Contains(t, resp.body, "An FAQ with this question already exists")
}

func TestNotificationSend(t *testing.T) {
	env := newTestEnv(t, false)
	env.backend.JSON("POST /admin/notifications", http.StatusOK, map[string]any{"success": true})

	form := env.get(t, "/admin/notifications/new")
	require.Equal(t, http.StatusOK, form.status)
	assert.Contains(t, form.body, `<option value="partners"`)

	resp := env.post(t, "/admin/notifications/new", url.Values{
		"title":    {"Monsoon sale"},
		"message":  {"20% off all hill stations this week."},
		"audience": {"users"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.status)
	assert.Equal(t, "/admin/notifications", resp.location)
	assert.Equal(t, 1, env.backend.Count(http.MethodPost, "/admin/notifications"))
}

func TestNotificationSendRejectsUnknownAudience(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.post(t, "/admin/notifications/new", url.Values{
		"title":    {"Monsoon sale"},
		"message":  {"20% off all hill stations this week."},
		"audience": {"everyone"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
	assert.Contains(t, resp.body, "must be all, users or partners")
	assert.Zero(t, env.backend.Count(http.MethodPost, "/admin/notifications"))
}

func legalFixtures(env *testEnv) {
	env.backend.JSON("GET /admin/legal-pages/{id}", http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"id": "terms", "slug": "terms", "title": "Terms of service",
			"content": "# Terms\n\nBe nice to hosts.", "status": "active",
		},
	})
	env.backend.JSON("PUT /admin/legal-pages/{id}", http.StatusOK, map[string]any{"success": true})
}

func TestLegalEditForm(t *testing.T) {
	env := newTestEnv(t, false)
	legalFixtures(env)

	resp := env.get(t, "/admin/legal-pages/terms/edit")
	require.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, `value="Terms of service"`)
	assert.Contains(t, resp.body, "Be nice to hosts.")
}

func TestLegalEditFormNotFound(t *testing.T) {
	env := newTestEnv(t, false)
	env.backend.JSON("GET /admin/legal-pages/{id}", http.StatusNotFound, map[string]any{"success": false})

	resp := env.get(t, "/admin/legal-pages/nope/edit")
	assert.Equal(t, http.StatusNotFound, resp.status)
}

func TestLegalEditPreviewDoesNotSave(t *testing.T) {
	env := newTestEnv(t, false)
	legalFixtures(env)

	resp := env.post(t, "/admin/legal-pages/terms/edit", url.Values{
		"title":   {"Terms of service"},
		"content": {"## Refunds\n\nAsk <script>alert(1)</script> support."},
		"status":  {"active"},
		"preview": {"1"},
	})
	require.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, "<h2")
	assert.NotContains(t, resp.body, "<script>alert(1)</script>")
	assert.Zero(t, env.backend.Count(http.MethodPut, "/admin/legal-pages/terms"))
}

func TestLegalEditSave(t *testing.T) {
	env := newTestEnv(t, false)
	legalFixtures(env)

	content := "# Terms\n\n" + strings.Repeat("Be nice to hosts. ", 3)
	resp := env.post(t, "/admin/legal-pages/terms/edit", url.Values{
		"title":   {"Terms of service"},
		"content": {content},
		"status":  {"active"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.status)
	assert.Equal(t, "/admin/legal-pages/terms", resp.location)

	reqs := env.backend.Matching(http.MethodPut, "/admin/legal-pages/terms")
	require.Len(t, reqs, 1)
	var sent map[string]any
	require.NoError(t, json.Unmarshal(reqs[0].Body, &sent))
	assert.Equal(t, content, sent["content"])
}

func TestLegalEditValidation(t *testing.T) {
	env := newTestEnv(t, false)
	legalFixtures(env)

	resp := env.post(t, "/admin/legal-pages/terms/edit", url.Values{
		"title":   {"T"},
		"content": {"short"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
	assert.Contains(t, resp.body, "is too short")
	assert.Zero(t, env.backend.Count(http.MethodPut, "/admin/legal-pages/terms"))
}
