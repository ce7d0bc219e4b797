// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/staydesk/internal/session"
	"github.com/olegiv/staydesk/internal/testutil"
)

type stubAuth struct{}

func (stubAuth) Login(context.Context, string, string) (string, session.Identity, error) {
	return "tok-live", session.Identity{AdminID: "a1", Email: "ops@example.com", Role: session.RoleAdmin}, nil
}

func (stubAuth) Me(context.Context, string) (session.Identity, error) {
	return session.Identity{AdminID: "a1", Email: "ops@example.com", Role: session.RoleAdmin}, nil
}

func signedIn(t *testing.T) *session.Session {
	t.Helper()
	s := session.New(stubAuth{}, session.NewMemoryStorage(), testutil.TestLoggerSilent())
	require.NoError(t, s.Login(context.Background(), "ops@example.com", "pw"))
	return s
}

func TestSessionClientAttachesToken(t *testing.T) {
	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"success":true,"items":[],"total":0}`))
	})
	sc := NewSessionClient(c, signedIn(t), testutil.TestLoggerSilent())

	var out ListEnvelope[map[string]any]
	require.NoError(t, sc.Get(context.Background(), "admin/users", nil, &out))
	assert.Equal(t, "Bearer tok-live", auth)
}

func TestSessionClientRefusesWithoutSession(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	})
	s := session.New(stubAuth{}, session.NewMemoryStorage(), testutil.TestLoggerSilent())
	sc := NewSessionClient(c, s, testutil.TestLoggerSilent())

	err := sc.Delete(context.Background(), "admin/faqs/f1", nil)
	assert.Equal(t, KindNoSession, KindOf(err))
	assert.Equal(t, int32(0), hits.Load(), "no request may leave without a session")
}

func TestSessionClientConcurrent401LogsOutOnce(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"token expired"}`))
	})
	s := signedIn(t)

	var logouts atomic.Int32
	s.OnChange(func(st session.State) {
		if !st.Authenticated && !st.Loading {
			logouts.Add(1)
		}
	})

	// Each caller reads the credentials before any 401 comes back.
	var ready, release sync.WaitGroup
	gate := &gatedSession{Session: s, ready: &ready, release: &release}
	sc := NewSessionClient(c, gate, testutil.TestLoggerSilent())

	const callers = 8
	ready.Add(callers)
	release.Add(1)
	errs := make(chan error, callers)
	for range callers {
		go func() {
			errs <- sc.Get(context.Background(), "admin/bookings", nil, nil)
		}()
	}
	ready.Wait()
	release.Done()

	for range callers {
		assert.Equal(t, KindUnauthorized, KindOf(<-errs))
	}
	assert.Equal(t, int32(1), logouts.Load())
	assert.False(t, s.Authenticated())

	// Further calls are refused locally.
	plain := NewSessionClient(c, s, testutil.TestLoggerSilent())
	err := plain.Get(context.Background(), "admin/bookings", nil, nil)
	assert.Equal(t, KindNoSession, KindOf(err))
}

// gatedSession holds every caller after it read its credentials until all
// callers have read them.
type gatedSession struct {
	*session.Session
	ready   *sync.WaitGroup
	release *sync.WaitGroup
}

func (g *gatedSession) Credentials() (string, uint64, bool) {
	token, gen, ok := g.Session.Credentials()
	g.ready.Done()
	g.release.Wait()
	return token, gen, ok
}
