// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package detail implements the detail-page controller: one entity and its
// related collections hydrated in parallel, with every change routed
// through a confirmation gate.
package detail

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/staydesk/internal/confirm"
	"github.com/olegiv/staydesk/internal/model"
)

// Loader fetches the primary entity.
type Loader[T any] func(ctx context.Context, id string) (T, error)

// RelatedLoader fetches a collection shown next to the entity.
type RelatedLoader func(ctx context.Context, id string) (model.PageResult[model.Row], error)

// Collection is a hydrated related collection.
type Collection struct {
	Items []model.Row
	Total int
	Err   error
}

// State is a snapshot of a detail page.
type State[T any] struct {
	ID       string
	Entity   T
	Loaded   bool
	NotFound bool
	Deleted  bool
	Loading  bool
	Err      error
	Related  map[string]Collection
	// UpdatedAt is the time of the last successful load or merge.
	UpdatedAt time.Time
}

// Options configures a Controller.
type Options struct {
	Gate   *confirm.Gate
	Logger *slog.Logger
	// IsNotFound classifies a primary load error as "not found".
	IsNotFound func(error) bool
}

type related struct {
	name string
	load RelatedLoader
}

// Controller owns one detail page. It is safe for concurrent use.
type Controller[T any] struct {
	id         string
	load       Loader[T]
	related    []related
	gate       *confirm.Gate
	logger     *slog.Logger
	isNotFound func(error) bool

	mu    sync.Mutex
	seq   uint64
	state State[T]
}

// New creates a controller for entity id.
func New[T any](id string, load Loader[T], opts Options) *Controller[T] {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	isNotFound := opts.IsNotFound
	if isNotFound == nil {
		isNotFound = func(error) bool { return false }
	}
	return &Controller[T]{
		id:         id,
		load:       load,
		gate:       opts.Gate,
		logger:     logger,
		isNotFound: isNotFound,
		state:      State[T]{ID: id, Related: map[string]Collection{}},
	}
}

// AddRelated registers a related collection. Call before Load.
func (c *Controller[T]) AddRelated(name string, load RelatedLoader) {
	c.mu.Lock()
	c.related = append(c.related, related{name: name, load: load})
	c.mu.Unlock()
}

// ID returns the entity ID.
func (c *Controller[T]) ID() string { return c.id }

// State returns a snapshot.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Load fetches the entity and every related collection in parallel. When
// the entity fails to load the related loads are cancelled. A related
// failure is kept on its Collection and does not fail the page.
func (c *Controller[T]) Load(ctx context.Context) State[T] {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.state.Loading = true
	rel := append([]related(nil), c.related...)
	c.mu.Unlock()

	var entity T
	collections := make([]Collection, len(rel))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entity, err = c.load(gctx, c.id)
		return err
	})
	for i, r := range rel {
		g.Go(func() error {
			page, err := r.load(gctx, c.id)
			collections[i] = Collection{Items: page.Items, Total: page.Total, Err: err}
			return nil
		})
	}
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		// A newer load owns the state.
		return c.snapshotLocked()
	}
	c.state.Loading = false

	if err != nil {
		if c.isNotFound(err) {
			c.state.NotFound = true
			c.state.Err = nil
		} else {
			c.state.Err = err
			c.logger.Warn("detail load failed", "id", c.id, "error", err)
		}
		return c.snapshotLocked()
	}

	c.state.Entity = entity
	c.state.Loaded = true
	c.state.NotFound = false
	c.state.Err = nil
	c.state.UpdatedAt = time.Now()
	c.state.Related = make(map[string]Collection, len(rel))
	for i, r := range rel {
		c.state.Related[r.name] = collections[i]
	}
	return c.snapshotLocked()
}

// Mutation is a confirmation-gated change of the entity.
type Mutation[T any] struct {
	Title    string
	Message  string
	Severity confirm.Severity
	Meta     map[string]string
	// Run performs the backend call. It returns the updated entity when
	// the backend echoed it, nil otherwise.
	Run func(ctx context.Context) (*T, error)
	// Removes marks a delete: on success the page is not reloaded.
	Removes bool
	// Done, if set, is called after a successful mutation and the merge or
	// reload that followed it.
	Done func(ctx context.Context, st State[T])
}

// ErrNoGate is returned by Request when the controller has no gate.
var ErrNoGate = errors.New("detail controller has no confirmation gate")

// Request opens a confirmation intent for m. Nothing reaches the backend
// until the intent is confirmed; then Run executes once and the result is
// merged into the state, or the whole page is reloaded.
func (c *Controller[T]) Request(m Mutation[T]) (confirm.Intent, error) {
	if c.gate == nil {
		return confirm.Intent{}, ErrNoGate
	}
	if m.Run == nil {
		return confirm.Intent{}, errors.New("mutation has no Run function")
	}

	return c.gate.Open(confirm.Request{
		Title:    m.Title,
		Message:  m.Message,
		Severity: m.Severity,
		Meta:     m.Meta,
		Action: func(ctx context.Context) error {
			updated, err := m.Run(ctx)
			if err != nil {
				return err
			}

			var st State[T]
			switch {
			case m.Removes:
				c.mu.Lock()
				c.state.Deleted = true
				st = c.snapshotLocked()
				c.mu.Unlock()
			case updated != nil:
				st = c.Merge(*updated)
			default:
				st = c.Load(ctx)
			}

			if m.Done != nil {
				m.Done(ctx, st)
			}
			return nil
		},
	})
}

// Merge replaces the entity with an updated copy from the backend.
func (c *Controller[T]) Merge(updated T) State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++ // loads started before the merge must not overwrite it
	c.state.Entity = updated
	c.state.Loaded = true
	c.state.Loading = false
	c.state.NotFound = false
	c.state.Err = nil
	c.state.UpdatedAt = time.Now()
	return c.snapshotLocked()
}

func (c *Controller[T]) snapshotLocked() State[T] {
	st := c.state
	st.Related = make(map[string]Collection, len(c.state.Related))
	for k, v := range c.state.Related {
		st.Related[k] = v
	}
	return st
}
