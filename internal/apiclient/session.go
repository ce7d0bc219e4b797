// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/olegiv/staydesk/internal/session"
)

// Session is the part of session.Session the client needs.
type Session interface {
	Credentials() (token string, generation uint64, ok bool)
	InvalidateIfCurrent(generation uint64, reason string) bool
}

// SessionClient sends requests on behalf of the signed-in admin.
type SessionClient struct {
	client  *Client
	session Session
	logger  *slog.Logger
}

// NewSessionClient wraps c with the admin session s.
func NewSessionClient(c *Client, s Session, logger *slog.Logger) *SessionClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionClient{client: c, session: s, logger: logger}
}

// Do reads the credentials at dispatch time and attaches the bearer token.
// Without a usable session nothing is sent and a KindNoSession error is
// returned. A 401 answer invalidates the session the request was sent
// under, once.
func (sc *SessionClient) Do(ctx context.Context, req Request, out any) error {
	token, generation, ok := sc.session.Credentials()
	if !ok || !session.WellFormed(token) {
		method := req.Method
		if method == "" {
			method = http.MethodGet
		}
		return &Error{Kind: KindNoSession, Method: method, Path: req.Path, Message: "not signed in"}
	}

	req.Token = token
	err := sc.client.Do(ctx, req, out)
	if IsKind(err, KindUnauthorized) {
		if sc.session.InvalidateIfCurrent(generation, "backend answered 401") {
			sc.logger.Warn("admin token rejected by backend, session cleared",
				"method", req.Method, "path", req.Path, "category", "session")
		}
	}
	return err
}

// Get sends a GET request.
func (sc *SessionClient) Get(ctx context.Context, path string, query url.Values, out any) error {
	return sc.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post sends a POST request with a JSON body.
func (sc *SessionClient) Post(ctx context.Context, path string, body, out any) error {
	return sc.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put sends a PUT request with a JSON body.
func (sc *SessionClient) Put(ctx context.Context, path string, body, out any) error {
	return sc.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Delete sends a DELETE request.
func (sc *SessionClient) Delete(ctx context.Context, path string, out any) error {
	return sc.Do(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}
