// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/olegiv/staydesk/internal/apiclient"
	"github.com/olegiv/staydesk/internal/session"
)

// AuthService implements session.Authenticator over the backend auth endpoints.
type AuthService struct {
	api apiclient.Doer
}

// NewAuthService creates an AuthService. api must be the session-agnostic
// client; these calls carry their own credentials.
func NewAuthService(api apiclient.Doer) *AuthService {
	return &AuthService{api: api}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool             `json:"success"`
	Token   string           `json:"token"`
	Admin   session.Identity `json:"admin"`
}

type meResponse struct {
	Success bool             `json:"success"`
	Admin   session.Identity `json:"admin"`
}

// Login implements session.Authenticator.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, session.Identity, error) {
	var out loginResponse
	err := s.api.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "auth/admin/login",
		Body:   loginRequest{Email: email, Password: password},
	}, &out)
	if err != nil {
		return "", session.Identity{}, classifyAuth(err)
	}
	if out.Token == "" {
		return "", session.Identity{}, errors.New("login response carried no token")
	}
	return out.Token, out.Admin, nil
}

// Me implements session.Authenticator.
func (s *AuthService) Me(ctx context.Context, token string) (session.Identity, error) {
	var out meResponse
	err := s.api.Do(ctx, apiclient.Request{Path: "auth/me", Token: token}, &out)
	if err != nil {
		return session.Identity{}, classifyAuth(err)
	}
	return out.Admin, nil
}

func classifyAuth(err error) error {
	switch apiclient.KindOf(err) {
	case apiclient.KindUnauthorized, apiclient.KindForbidden, apiclient.KindValidation, apiclient.KindNotFound:
		return fmt.Errorf("%w: %w", session.ErrRejected, err)
	case apiclient.KindNetwork:
		return fmt.Errorf("%w: %w", session.ErrUnavailable, err)
	default:
		return err
	}
}
