// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package listing implements the list-page controller: filters, a 1-based
// page of fixed size, debounced fetching and refetch after mutations.
package listing

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/olegiv/staydesk/internal/model"
)

// DefaultPageSize is used when Options.PageSize is not set.
const DefaultPageSize = 10

// Fetcher loads one page for a query.
type Fetcher[T any] func(ctx context.Context, q model.ListQuery) (model.PageResult[T], error)

// State is a snapshot of a list page.
type State[T any] struct {
	Query     model.ListQuery
	Items     []T
	Total     int
	PageCount int
	Loading   bool
	Err       error
	// Generation identifies the fetch that produced Items.
	Generation uint64
	UpdatedAt  time.Time
}

// Loaded reports whether any fetch has completed.
func (s State[T]) Loaded() bool {
	return s.Generation > 0
}

// Options configures a Controller.
type Options struct {
	Name     string
	PageSize int
	Debounce time.Duration
	// MaxWait bounds how long continuous filter changes can hold off a
	// fetch. Zero means no bound.
	MaxWait time.Duration
	Logger  *slog.Logger
}

// Controller owns the query and results of one list page. Filter changes
// are debounced; page changes and refreshes fetch immediately. Responses
// of superseded fetches are dropped. It is safe for concurrent use.
type Controller[T any] struct {
	fetch     Fetcher[T]
	name      string
	pageSize  int
	logger    *slog.Logger
	debouncer *Debouncer

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	query       model.ListQuery
	state       State[T]
	issued      uint64
	pending     bool
	inflight    int
	closed      bool
	changed     chan struct{}
	subscribers map[int]func(State[T])
	nextSub     int
	seq         uint64

	// pubMu orders deliveries; delivered is the newest seq handed out.
	pubMu     sync.Mutex
	delivered uint64
}

// change is a state snapshot tagged with the order it was taken in.
type change[T any] struct {
	seq   uint64
	state State[T]
}

// New creates a controller. Nothing is fetched until a setter, Apply or
// Refresh is called.
func New[T any](fetch Fetcher[T], opts Options) *Controller[T] {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller[T]{
		fetch:       fetch,
		name:        opts.Name,
		pageSize:    pageSize,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		query:       model.ListQuery{Page: 1, PageSize: pageSize},
		changed:     make(chan struct{}),
		subscribers: make(map[int]func(State[T])),
	}
	c.state.Query = c.query.Clone()
	c.debouncer = NewDebouncer(DebounceConfig{Interval: opts.Debounce, MaxWait: opts.MaxWait}, c.fire)
	return c
}

// PageSize returns the fixed page size.
func (c *Controller[T]) PageSize() int { return c.pageSize }

// Query returns the current query.
func (c *Controller[T]) Query() model.ListQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.Clone()
}

// State returns a snapshot.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SetSearch changes the search text, resets to page 1 and debounces a fetch.
func (c *Controller[T]) SetSearch(search string) {
	c.update(func(q *model.ListQuery) { q.Search = search })
}

// SetStatus changes the status filter, resets to page 1 and debounces a fetch.
func (c *Controller[T]) SetStatus(status string) {
	c.update(func(q *model.ListQuery) { q.Status = status })
}

// SetFilter changes a page-specific filter, resets to page 1 and debounces
// a fetch. An empty value removes the filter.
func (c *Controller[T]) SetFilter(key, value string) {
	c.update(func(q *model.ListQuery) {
		if q.Filters == nil {
			q.Filters = make(map[string]string)
		}
		if value == "" {
			delete(q.Filters, key)
		} else {
			q.Filters[key] = value
		}
	})
}

// SetQuery replaces the whole query, page included, and debounces a fetch.
func (c *Controller[T]) SetQuery(q model.ListQuery) {
	c.mu.Lock()
	next := c.normalize(q)
	if next.Equal(c.query) {
		c.mu.Unlock()
		return
	}
	c.query = next
	c.armLocked()
	ch := c.changeLocked()
	c.mu.Unlock()

	c.publish(ch)
}

func (c *Controller[T]) update(change func(q *model.ListQuery)) {
	c.mu.Lock()
	next := c.query.Clone()
	change(&next)
	if next.SameFilters(c.query) {
		c.mu.Unlock()
		return
	}
	next.Page = 1
	c.query = next
	c.armLocked()
	ch := c.changeLocked()
	c.mu.Unlock()

	c.publish(ch)
}

// SetPage moves to page (at least 1) and fetches immediately. A pending
// debounced fetch is folded into this one.
func (c *Controller[T]) SetPage(page int) {
	c.mu.Lock()
	c.query.Page = max(page, 1)
	c.startLocked()
	ch := c.changeLocked()
	c.mu.Unlock()

	c.publish(ch)
}

// Apply replaces the query and fetches immediately when it differs from
// the current one or nothing was loaded yet. It is used for page loads
// whose query comes from the URL.
func (c *Controller[T]) Apply(q model.ListQuery) {
	c.mu.Lock()
	next := c.normalize(q)
	if next.Equal(c.query) && (c.state.Loaded() || c.inflight > 0 || c.pending) {
		c.mu.Unlock()
		return
	}
	c.query = next
	c.startLocked()
	ch := c.changeLocked()
	c.mu.Unlock()

	c.publish(ch)
}

// Refresh fetches the current query now.
func (c *Controller[T]) Refresh() {
	c.mu.Lock()
	c.startLocked()
	ch := c.changeLocked()
	c.mu.Unlock()

	c.publish(ch)
}

// Mutate runs fn and, if it succeeds, refetches the current page and
// filters instead of patching local rows. The error of fn is returned
// unchanged.
func (c *Controller[T]) Mutate(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	c.Refresh()
	return nil
}

// Settle waits until no fetch is pending or in flight and returns the
// resulting state. On ctx expiry it returns the current state and ctx.Err().
func (c *Controller[T]) Settle(ctx context.Context) (State[T], error) {
	for {
		c.mu.Lock()
		if (!c.pending && c.inflight == 0) || c.closed {
			st := c.snapshotLocked()
			c.mu.Unlock()
			return st, nil
		}
		ch := c.changed
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return c.State(), ctx.Err()
		case <-ch:
		}
	}
}

// Subscribe registers fn for state changes and returns a function that
// removes it. fn runs on the goroutine that changed the state and must not
// block or call back into the controller.
func (c *Controller[T]) Subscribe(fn func(State[T])) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

// Close stops the debounce timer and cancels fetches in flight.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.pending = false
	c.signalLocked()
	c.mu.Unlock()

	c.debouncer.Stop()
	c.cancel()
}

func (c *Controller[T]) normalize(q model.ListQuery) model.ListQuery {
	next := q.Clone()
	next.PageSize = c.pageSize
	next.Page = max(next.Page, 1)
	return next
}

// armLocked (re)starts the debounce window.
func (c *Controller[T]) armLocked() {
	if c.closed {
		return
	}
	c.pending = true
	c.state.Loading = true
	c.signalLocked()
	c.debouncer.Trigger()
}

// fire is the debouncer callback.
func (c *Controller[T]) fire() {
	c.mu.Lock()
	if !c.pending || c.closed {
		c.mu.Unlock()
		return
	}
	c.startLocked()
	ch := c.changeLocked()
	c.mu.Unlock()

	c.publish(ch)
}

// startLocked issues a fetch for the current query.
func (c *Controller[T]) startLocked() {
	if c.closed {
		return
	}
	if c.pending {
		c.pending = false
		c.debouncer.Cancel()
	}
	c.issued++
	gen := c.issued
	q := c.query.Clone()
	c.inflight++
	c.state.Loading = true
	c.signalLocked()

	go c.run(gen, q)
}

func (c *Controller[T]) run(gen uint64, q model.ListQuery) {
	res, err := c.fetch(c.ctx, q)
	c.finish(gen, q, res, err)
}

func (c *Controller[T]) finish(gen uint64, q model.ListQuery, res model.PageResult[T], err error) {
	c.mu.Lock()
	c.inflight--
	c.signalLocked()

	if c.closed {
		c.mu.Unlock()
		return
	}
	if gen < c.issued {
		c.logger.Debug("dropping stale list response", "list", c.name, "generation", gen, "latest", c.issued)
		c.mu.Unlock()
		return
	}

	if err != nil {
		c.state.Loading = c.pending
		c.state.Err = err
		if !errors.Is(err, context.Canceled) {
			c.logger.Warn("list fetch failed", "list", c.name, "error", err)
		}
		ch := c.changeLocked()
		c.mu.Unlock()
		c.publish(ch)
		return
	}

	pageCount := model.PageCount(res.Total, c.pageSize)
	c.state.Items = res.Items
	c.state.Total = res.Total
	c.state.PageCount = pageCount
	c.state.Err = nil
	c.state.Generation = gen
	c.state.UpdatedAt = time.Now()
	c.state.Loading = c.pending

	if clamped := model.ClampPage(q.Page, pageCount); clamped != q.Page && c.query.Equal(q) {
		c.query.Page = clamped
		if res.Total > 0 {
			c.logger.Debug("page out of range, refetching", "list", c.name, "page", q.Page, "clamped", clamped)
			c.startLocked()
		}
	}

	ch := c.changeLocked()
	c.mu.Unlock()
	c.publish(ch)
}

func (c *Controller[T]) snapshotLocked() State[T] {
	st := c.state
	st.Query = c.query.Clone()
	return st
}

// changeLocked snapshots the state for subscribers.
func (c *Controller[T]) changeLocked() change[T] {
	c.seq++
	return change[T]{seq: c.seq, state: c.snapshotLocked()}
}

func (c *Controller[T]) signalLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

// publish delivers ch unless a newer change was already delivered, so
// subscribers never move back to an older state.
func (c *Controller[T]) publish(ch change[T]) {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	if ch.seq <= c.delivered {
		return
	}
	c.delivered = ch.seq

	c.mu.Lock()
	subs := make([]func(State[T]), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(ch.state)
	}
}
