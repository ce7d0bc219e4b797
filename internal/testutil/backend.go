// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// RecordedRequest is a request seen by Backend.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
	Auth   string
}

// Backend is a fake marketplace backend. Routes use http.ServeMux
// patterns such as "GET /admin/hotels/{id}". Registering a pattern again
// replaces its handler, so tests can override shared fixtures.
type Backend struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	mux      *http.ServeMux
	requests []RecordedRequest
}

// NewBackend starts a fake backend that is closed with the test.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{routes: make(map[string]http.HandlerFunc), mux: http.NewServeMux()}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	b.mu.Lock()
	b.requests = append(b.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Body:   body,
		Auth:   r.Header.Get("Authorization"),
	})
	mux := b.mux
	b.mu.Unlock()

	mux.ServeHTTP(w, r)
}

// Handle registers a handler for pattern, replacing any earlier one.
func (b *Backend) Handle(pattern string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.routes[pattern] = h
	mux := http.NewServeMux()
	for p, fn := range b.routes {
		mux.HandleFunc(p, fn)
	}
	b.mux = mux
}

// JSON registers a fixed JSON answer for pattern.
func (b *Backend) JSON(pattern string, status int, body any) {
	b.Handle(pattern, func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, status, body)
	})
}

// Requests returns a copy of every request seen so far.
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedRequest(nil), b.requests...)
}

// Matching returns the requests with the given method and path.
func (b *Backend) Matching(method, path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Count returns how many requests had the given method and path.
func (b *Backend) Count(method, path string) int {
	return len(b.Matching(method, path))
}

// Reset forgets recorded requests.
func (b *Backend) Reset() {
	b.mu.Lock()
	b.requests = nil
	b.mu.Unlock()
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
