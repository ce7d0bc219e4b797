// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package detail

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/staydesk/internal/confirm"
	"github.com/olegiv/staydesk/internal/model"
	"github.com/olegiv/staydesk/internal/testutil"
)

type partner struct {
	ID     string
	Status string
}

var errMissing = errors.New("missing")

func isMissing(err error) bool { return errors.Is(err, errMissing) }

func newGate() *confirm.Gate {
	return confirm.NewGate(time.Minute, testutil.TestLoggerSilent())
}

type docRow struct{ id string }

func (d docRow) RowID() string     { return d.id }
func (d docRow) RowStatus() string { return "" }
func (d docRow) Cells() []string   { return []string{d.id} }

func TestLoadHydratesInParallel(t *testing.T) {
	var started sync.WaitGroup
	started.Add(3)
	barrier := func(ctx context.Context) error {
		started.Done()
		done := make(chan struct{})
		go func() { started.Wait(); close(done) }()
		select {
		case <-done:
			return nil
		case <-time.After(time.Second):
			return errors.New("loaders did not run in parallel")
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	c := New("p1", func(ctx context.Context, id string) (partner, error) {
		if err := barrier(ctx); err != nil {
			return partner{}, err
		}
		return partner{ID: id, Status: "pending"}, nil
	}, Options{Logger: testutil.TestLoggerSilent()})
	c.AddRelated("documents", func(ctx context.Context, _ string) (model.PageResult[model.Row], error) {
		if err := barrier(ctx); err != nil {
			return model.PageResult[model.Row]{}, err
		}
		return model.PageResult[model.Row]{Items: []model.Row{docRow{"d1"}}, Total: 1}, nil
	})
	c.AddRelated("hotels", func(ctx context.Context, _ string) (model.PageResult[model.Row], error) {
		if err := barrier(ctx); err != nil {
			return model.PageResult[model.Row]{}, err
		}
		return model.PageResult[model.Row]{Total: 0}, nil
	})

	st := c.Load(context.Background())

	require.NoError(t, st.Err)
	assert.True(t, st.Loaded)
	assert.False(t, st.Loading)
	assert.Equal(t, "pending", st.Entity.Status)
	require.Contains(t, st.Related, "documents")
	assert.Equal(t, 1, st.Related["documents"].Total)
	assert.Contains(t, st.Related, "hotels")
}

func TestLoadNotFound(t *testing.T) {
	c := New("gone", func(context.Context, string) (partner, error) {
		return partner{}, errMissing
	}, Options{IsNotFound: isMissing, Logger: testutil.TestLoggerSilent()})

	st := c.Load(context.Background())
	assert.True(t, st.NotFound)
	assert.NoError(t, st.Err)
	assert.False(t, st.Loaded)
}

func TestLoadFailureKeepsEntity(t *testing.T) {
	fail := false
	c := New("p1", func(context.Context, string) (partner, error) {
		if fail {
			return partner{}, errors.New("502")
		}
		return partner{ID: "p1", Status: "approved"}, nil
	}, Options{Logger: testutil.TestLoggerSilent()})

	c.Load(context.Background())
	fail = true
	st := c.Load(context.Background())

	assert.Error(t, st.Err)
	assert.True(t, st.Loaded)
	assert.Equal(t, "approved", st.Entity.Status)
}

func TestRelatedFailureDoesNotFailPage(t *testing.T) {
	c := New("p1", func(context.Context, string) (partner, error) {
		return partner{ID: "p1"}, nil
	}, Options{Logger: testutil.TestLoggerSilent()})
	c.AddRelated("documents", func(context.Context, string) (model.PageResult[model.Row], error) {
		return model.PageResult[model.Row]{}, errors.New("documents service down")
	})

	st := c.Load(context.Background())
	assert.NoError(t, st.Err)
	assert.True(t, st.Loaded)
	assert.Error(t, st.Related["documents"].Err)
}

func TestRequestRunsOnlyAfterConfirm(t *testing.T) {
	gate := newGate()
	var loads atomic.Int32
	c := New("p1", func(context.Context, string) (partner, error) {
		loads.Add(1)
		return partner{ID: "p1", Status: "pending"}, nil
	}, Options{Gate: gate, Logger: testutil.TestLoggerSilent()})
	c.Load(context.Background())

	var runs atomic.Int32
	intent, err := c.Request(Mutation[partner]{
		Title:    "Approve partner?",
		Severity: confirm.SeveritySuccess,
		Run: func(context.Context) (*partner, error) {
			runs.Add(1)
			return &partner{ID: "p1", Status: "approved"}, nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(0), runs.Load(), "opening the intent must not run the mutation")
	assert.Equal(t, "pending", c.State().Entity.Status)

	require.NoError(t, gate.Confirm(context.Background(), intent.ID))
	assert.ErrorIs(t, gate.Confirm(context.Background(), intent.ID), confirm.ErrNotFound)

	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, "approved", c.State().Entity.Status, "echoed entity is merged")
	assert.Equal(t, int32(1), loads.Load(), "merge must not reload")
}

func TestRequestReloadsWithoutEcho(t *testing.T) {
	gate := newGate()
	status := "pending"
	c := New("p1", func(context.Context, string) (partner, error) {
		return partner{ID: "p1", Status: status}, nil
	}, Options{Gate: gate, Logger: testutil.TestLoggerSilent()})
	c.Load(context.Background())

	var done State[partner]
	intent, err := c.Request(Mutation[partner]{
		Run: func(context.Context) (*partner, error) {
			status = "rejected"
			return nil, nil
		},
		Done: func(_ context.Context, st State[partner]) { done = st },
	})
	require.NoError(t, err)
	require.NoError(t, gate.Confirm(context.Background(), intent.ID))

	assert.Equal(t, "rejected", c.State().Entity.Status)
	assert.Equal(t, "rejected", done.Entity.Status)
}

func TestRequestCancelNeverRuns(t *testing.T) {
	gate := newGate()
	c := New("p1", func(context.Context, string) (partner, error) {
		return partner{ID: "p1"}, nil
	}, Options{Gate: gate, Logger: testutil.TestLoggerSilent()})

	var runs atomic.Int32
	intent, err := c.Request(Mutation[partner]{
		Run: func(context.Context) (*partner, error) {
			runs.Add(1)
			return nil, nil
		},
	})
	require.NoError(t, err)

	assert.True(t, gate.Cancel(intent.ID))
	assert.ErrorIs(t, gate.Confirm(context.Background(), intent.ID), confirm.ErrNotFound)
	assert.Equal(t, int32(0), runs.Load())
}

func TestRequestFailureLeavesState(t *testing.T) {
	gate := newGate()
	c := New("p1", func(context.Context, string) (partner, error) {
		return partner{ID: "p1", Status: "pending"}, nil
	}, Options{Gate: gate, Logger: testutil.TestLoggerSilent()})
	c.Load(context.Background())

	boom := errors.New("422 reason required")
	intent, err := c.Request(Mutation[partner]{
		Run: func(context.Context) (*partner, error) { return nil, boom },
	})
	require.NoError(t, err)

	assert.ErrorIs(t, gate.Confirm(context.Background(), intent.ID), boom)
	assert.Equal(t, "pending", c.State().Entity.Status)
}

func TestRequestRemoves(t *testing.T) {
	gate := newGate()
	var loads atomic.Int32
	c := New("f1", func(context.Context, string) (partner, error) {
		loads.Add(1)
		return partner{ID: "f1"}, nil
	}, Options{Gate: gate, Logger: testutil.TestLoggerSilent()})
	c.Load(context.Background())

	intent, err := c.Request(Mutation[partner]{
		Severity: confirm.SeverityDanger,
		Removes:  true,
		Run:      func(context.Context) (*partner, error) { return nil, nil },
	})
	require.NoError(t, err)
	require.NoError(t, gate.Confirm(context.Background(), intent.ID))

	assert.True(t, c.State().Deleted)
	assert.Equal(t, int32(1), loads.Load())
}

func TestRequestWithoutGate(t *testing.T) {
	c := New("p1", func(context.Context, string) (partner, error) { return partner{}, nil }, Options{})
	_, err := c.Request(Mutation[partner]{Run: func(context.Context) (*partner, error) { return nil, nil }})
	assert.ErrorIs(t, err, ErrNoGate)
}
