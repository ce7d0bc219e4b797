// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/staydesk/internal/testutil"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL + "/api", Logger: testutil.TestLoggerSilent()})
	require.NoError(t, err)
	return c
}

func TestNewValidatesBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"empty", "", true},
		{"no scheme", "backend.local/api", true},
		{"ftp", "ftp://backend.local", true},
		{"http", "http://backend.local/api", false},
		{"https trailing slash", "https://backend.local/api/", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Config{BaseURL: tt.baseURL})
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%q) err = %v, wantErr %v", tt.baseURL, err, tt.wantErr)
			}
		})
	}
}

func TestDoSendsHeadersAndDecodes(t *testing.T) {
	var got *http.Request
	var gotBody map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"p1","name":"Sea View"}}`))
	})

	var out EntityEnvelope[struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}]
	err := c.Do(context.Background(), Request{
		Method: http.MethodPut,
		Path:   "/admin/hotels/p1",
		Query:  url.Values{"notify": {"1"}},
		Body:   map[string]string{"status": "approved"},
		Token:  "tok-1",
	}, &out)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, got.Method)
	assert.Equal(t, "/api/admin/hotels/p1", got.URL.Path)
	assert.Equal(t, "1", got.URL.Query().Get("notify"))
	assert.Equal(t, "Bearer tok-1", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, DefaultUserAgent, got.Header.Get("User-Agent"))
	assert.NotEmpty(t, got.Header.Get(RequestIDHeader))
	assert.Equal(t, "approved", gotBody["status"])
	assert.Equal(t, "Sea View", out.Data.Name)
}

func TestDoErrorKinds(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		kind    Kind
		message string
	}{
		{http.StatusUnauthorized, `{"success":false,"message":"jwt expired"}`, KindUnauthorized, "jwt expired"},
		{http.StatusForbidden, ``, KindForbidden, "Forbidden"},
		{http.StatusNotFound, `{"success":false,"message":"Hotel not found"}`, KindNotFound, "Hotel not found"},
		{http.StatusUnprocessableEntity, `{"success":false,"message":"reason is required"}`, KindValidation, "reason is required"},
		{http.StatusBadRequest, `{"error":"bad filter"}`, KindValidation, "bad filter"},
		{http.StatusInternalServerError, `oops`, KindServer, "Internal Server Error"},
		{http.StatusOK, `{"success":false,"message":"already approved"}`, KindValidation, "already approved"},
		{http.StatusOK, `{not json`, KindDecode, "invalid JSON response"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"_"+http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := c.Do(context.Background(), Request{Path: "admin/users"}, &struct{}{})

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, http.MethodGet, apiErr.Method)
			assert.True(t, IsKind(err, tt.kind))
			assert.NotEmpty(t, apiErr.UserMessage())
		})
	}
}

func TestDoNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	c, err := New(Config{BaseURL: base, Timeout: time.Second, Logger: testutil.TestLoggerSilent()})
	require.NoError(t, err)

	err = c.Do(context.Background(), Request{Path: "auth/me"}, nil)
	assert.Equal(t, KindNetwork, KindOf(err))
}

func TestDoCanceledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Do(ctx, Request{Path: "auth/me"}, nil)
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDoRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, RateLimit: 1, Burst: 1, Logger: testutil.TestLoggerSilent()})
	require.NoError(t, err)

	require.NoError(t, c.Do(context.Background(), Request{Path: "a"}, nil))

	// The second call has to wait about a second for a token.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = c.Do(ctx, Request{Path: "a"}, nil)
	assert.Equal(t, KindNetwork, KindOf(err))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, "Something went wrong. Try again later.", UserMessage(errors.New("plain")))
}

func TestMutationEnvelopeHasEntity(t *testing.T) {
	assert.False(t, MutationEnvelope{}.HasEntity())
	assert.False(t, MutationEnvelope{UpdatedEntity: json.RawMessage("null")}.HasEntity())
	assert.True(t, MutationEnvelope{UpdatedEntity: json.RawMessage(`{"id":"1"}`)}.HasEntity())
}
