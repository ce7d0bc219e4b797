// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session owns the operator's authenticated admin session: the
// identity, the bearer token and its durable storage, and the rules for
// creating and destroying them.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"
)

// TokenKey is the storage key of the persisted admin token.
const TokenKey = "adminToken"

// Role is the backend role of the signed-in operator.
type Role string

// Roles allowed into the console.
const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// IsAdmin reports whether the role may use the console.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Identity describes the signed-in operator.
type Identity struct {
	AdminID     string `json:"id"`
	DisplayName string `json:"name"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
}

// State is a snapshot of the session.
type State struct {
	Identity      Identity
	Token         string
	Authenticated bool
	Loading       bool
	// Generation increases on every change of the token.
	Generation uint64
}

// Sentinel errors shared with Authenticator implementations.
var (
	// ErrNoToken is returned by Storage when nothing is stored.
	ErrNoToken = errors.New("no stored admin token")
	// ErrRejected means the backend refused the credentials or token.
	ErrRejected = errors.New("credentials rejected")
	// ErrUnavailable means the backend could not be reached.
	ErrUnavailable = errors.New("auth backend unavailable")
)

// Authenticator talks to the backend auth endpoints. Implementations wrap
// ErrRejected for 401/403 answers and ErrUnavailable for transport failures.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (token string, id Identity, err error)
	Me(ctx context.Context, token string) (Identity, error)
}

// Login failure reasons.
const (
	ReasonInvalidInput       = "invalid_input"
	ReasonInvalidCredentials = "invalid_credentials"
	ReasonNotAdmin           = "not_admin"
	ReasonNetwork            = "network"
	ReasonServer             = "server"
)

// LoginError is the structured result of a failed login.
type LoginError struct {
	Reason string
	Err    error
}

func (e *LoginError) Error() string {
	switch e.Reason {
	case ReasonInvalidInput:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "email and password are required"
	case ReasonInvalidCredentials:
		return "invalid email or password"
	case ReasonNotAdmin:
		return "this account does not have admin access"
	case ReasonNetwork:
		return "could not reach the server, try again"
	default:
		return "login failed, try again later"
	}
}

func (e *LoginError) Unwrap() error { return e.Err }

// Session is the single authenticated admin session of the console.
// It is safe for concurrent use.
type Session struct {
	auth    Authenticator
	storage Storage
	logger  *slog.Logger

	// storeMu orders stored-token writes with the state transitions that
	// produce them. Taken before mu.
	storeMu sync.Mutex

	mu        sync.RWMutex
	state     State
	observers []func(State)
}

// New creates an unauthenticated session. Call CheckAuth to restore a
// persisted token.
func New(auth Authenticator, storage Storage, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{auth: auth, storage: storage, logger: logger}
}

// OnChange registers an observer called after every state change.
// Observers run on the goroutine that changed the state.
func (s *Session) OnChange(fn func(State)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Authenticated reports whether the session holds a verified token.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Authenticated
}

// Identity returns the signed-in operator.
func (s *Session) Identity() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Identity, s.state.Authenticated
}

// Credentials returns the bearer token and the generation it belongs to.
// ok is false when the session is not authenticated.
func (s *Session) Credentials() (token string, generation uint64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.state.Authenticated || s.state.Token == "" {
		return "", s.state.Generation, false
	}
	return s.state.Token, s.state.Generation, true
}

// Login verifies the credentials with the backend and, for admin roles,
// persists the token and authenticates the session.
func (s *Session) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return &LoginError{Reason: ReasonInvalidInput}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return &LoginError{Reason: ReasonInvalidInput, Err: errors.New("enter a valid email address")}
	}

	s.setLoading(true)

	token, id, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.setLoading(false)
		lerr := &LoginError{Reason: ReasonServer, Err: err}
		switch {
		case errors.Is(err, ErrRejected):
			lerr.Reason = ReasonInvalidCredentials
		case errors.Is(err, ErrUnavailable):
			lerr.Reason = ReasonNetwork
		}
		s.logger.Warn("admin login failed", "email", email, "reason", lerr.Reason, "error", err, "category", "auth")
		return lerr
	}
	if !id.Role.IsAdmin() {
		s.setLoading(false)
		s.logger.Warn("login rejected for non-admin role", "email", email, "role", string(id.Role), "category", "auth")
		return &LoginError{Reason: ReasonNotAdmin}
	}
	if !WellFormed(token) {
		s.setLoading(false)
		return &LoginError{Reason: ReasonServer, Err: errors.New("backend returned a malformed token")}
	}

	s.storeMu.Lock()
	if err := s.storage.Set(ctx, TokenKey, token); err != nil {
		// The session still works in memory; it will not survive a restart.
		s.logger.Warn("failed to persist admin token", "error", err)
	}
	s.mu.Lock()
	s.state = State{
		Identity:      id,
		Token:         token,
		Authenticated: true,
		Generation:    s.state.Generation + 1,
	}
	st := s.state
	s.mu.Unlock()
	s.storeMu.Unlock()

	// The sign-in audit event is written by the HTTP layer, which knows the browser.
	s.logger.Info("admin logged in", "email", id.Email, "role", string(id.Role))
	s.notify(st)
	return nil
}

// Logout clears the session and the stored token. Once it returns,
// Credentials reports nothing.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	email := s.state.Identity.Email
	s.state = State{Generation: s.state.Generation + 1}
	st := s.state
	s.mu.Unlock()

	s.notify(st)

	if err := s.deleteTokenIf(ctx, st.Generation); err != nil {
		return fmt.Errorf("clearing stored token: %w", err)
	}
	if email != "" {
		s.logger.Info("admin logged out", "email", email, "category", "auth")
	}
	return nil
}

// InvalidateIfCurrent clears the session if generation is still current.
// It reports whether this call cleared it; concurrent callers holding the
// same generation clear it exactly once.
func (s *Session) InvalidateIfCurrent(generation uint64, reason string) bool {
	s.mu.Lock()
	if s.state.Generation != generation || !s.state.Authenticated {
		s.mu.Unlock()
		return false
	}
	email := s.state.Identity.Email
	s.state = State{Generation: s.state.Generation + 1}
	st := s.state
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.deleteTokenIf(ctx, st.Generation); err != nil {
		s.logger.Error("failed to clear stored token", "error", err)
	}

	s.logger.Warn("admin session invalidated", "email", email, "reason", reason, "category", "session")
	s.notify(st)
	return true
}

// CheckAuth restores the session from the stored token and verifies it
// with the backend. The session is authenticated only if the backend
// confirms an admin role; any failure leaves it unauthenticated. The stored
// token is removed only when it is malformed or definitively rejected.
func (s *Session) CheckAuth(ctx context.Context) bool {
	s.mu.Lock()
	s.state.Loading = true
	start := s.state.Generation
	s.mu.Unlock()

	token, err := s.storage.Get(ctx, TokenKey)
	if err != nil {
		if !errors.Is(err, ErrNoToken) {
			s.logger.Error("failed to read stored token", "error", err)
		}
		s.failCheck(start)
		return false
	}

	if !WellFormed(token) {
		s.logger.Warn("discarding malformed stored token", "category", "session")
		s.deleteToken(ctx, start)
		s.failCheck(start)
		return false
	}

	id, err := s.auth.Me(ctx, token)
	switch {
	case errors.Is(err, ErrRejected):
		s.logger.Warn("stored token rejected by backend", "category", "session")
		s.deleteToken(ctx, start)
		s.failCheck(start)
		return false
	case err != nil:
		s.logger.Warn("session verification failed", "error", err, "category", "session")
		s.failCheck(start)
		return false
	case !id.Role.IsAdmin():
		s.logger.Warn("stored token belongs to a non-admin role", "role", string(id.Role), "category", "session")
		s.deleteToken(ctx, start)
		s.failCheck(start)
		return false
	}

	s.mu.Lock()
	if s.state.Generation != start {
		// A login or logout happened meanwhile; it wins.
		ok := s.state.Authenticated
		s.mu.Unlock()
		return ok
	}
	changed := s.state.Token != token || !s.state.Authenticated
	s.state = State{Identity: id, Token: token, Authenticated: true, Generation: s.state.Generation}
	if changed {
		s.state.Generation++
	}
	st := s.state
	s.mu.Unlock()

	s.notify(st)
	return true
}

func (s *Session) failCheck(start uint64) {
	s.mu.Lock()
	if s.state.Generation != start {
		s.state.Loading = false
		s.mu.Unlock()
		return
	}
	next := State{Generation: s.state.Generation}
	if s.state.Authenticated {
		next.Generation++
	}
	s.state = next
	st := s.state
	s.mu.Unlock()
	s.notify(st)
}

func (s *Session) deleteToken(ctx context.Context, generation uint64) {
	if err := s.deleteTokenIf(ctx, generation); err != nil {
		s.logger.Error("failed to clear stored token", "error", err)
	}
}

// deleteTokenIf removes the stored token unless the session moved past
// generation, in which case the stored token belongs to a newer login.
func (s *Session) deleteTokenIf(ctx context.Context, generation uint64) error {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()
	s.mu.RLock()
	current := s.state.Generation == generation
	s.mu.RUnlock()
	if !current {
		return nil
	}
	return s.storage.Delete(ctx, TokenKey)
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.state.Loading = v
	st := s.state
	s.mu.Unlock()
	s.notify(st)
}

func (s *Session) notify(st State) {
	s.mu.RLock()
	observers := append([]func(State){}, s.observers...)
	s.mu.RUnlock()
	for _, fn := range observers {
		fn(st)
	}
}
