// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"sync"

	"github.com/olegiv/staydesk/internal/listing"
	"github.com/olegiv/staydesk/internal/model"
	"github.com/olegiv/staydesk/internal/service"
	"github.com/olegiv/staydesk/internal/session"
)

// Lists holds one list controller per resource, created on first use.
// The console serves a single operator, so every tab on a resource shares
// one query and one result set.
type Lists struct {
	catalog *service.Catalog
	opts    listing.Options

	mu    sync.Mutex
	lists map[string]*listing.Controller[model.Row]
}

// NewLists creates an empty registry over catalog. opts applies to every
// controller; Name is set per resource.
func NewLists(catalog *service.Catalog, opts listing.Options) *Lists {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Lists{
		catalog: catalog,
		opts:    opts,
		lists:   make(map[string]*listing.Controller[model.Row]),
	}
}

// Get returns the controller and rows of resource.
func (l *Lists) Get(resource string) (*listing.Controller[model.Row], service.Rows, bool) {
	rows, ok := l.catalog.Lookup(resource)
	if !ok {
		return nil, nil, false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	ctrl, ok := l.lists[resource]
	if !ok {
		opts := l.opts
		opts.Name = resource
		ctrl = listing.New[model.Row](rows.List, opts)
		l.lists[resource] = ctrl
	}
	return ctrl, rows, true
}

// Mutate runs fn through the list controller of resource, which refetches
// the same page and filters once fn succeeds. A list that was never
// opened has nothing to refetch, so fn just runs.
func (l *Lists) Mutate(ctx context.Context, resource string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	ctrl, ok := l.lists[resource]
	l.mu.Unlock()
	if !ok {
		return fn(ctx)
	}
	return ctrl.Mutate(ctx, fn)
}

// Reset forgets every controller. The next Get starts from page 1 with no
// filters. It is called when the session ends, possibly from inside a
// fetch, so old controllers are closed once their current fetch settles.
func (l *Lists) Reset() {
	for _, ctrl := range l.detach() {
		go closeWhenSettled(ctrl)
	}
}

// SessionChanged resets the lists when the operator is signed out. It is
// registered with session.Session.OnChange.
func (l *Lists) SessionChanged(st session.State) {
	if !st.Authenticated && !st.Loading {
		l.Reset()
	}
}

// Close stops every controller now.
func (l *Lists) Close() {
	for _, ctrl := range l.detach() {
		ctrl.Close()
	}
}

func (l *Lists) detach() map[string]*listing.Controller[model.Row] {
	l.mu.Lock()
	defer l.mu.Unlock()
	old := l.lists
	l.lists = make(map[string]*listing.Controller[model.Row])
	return old
}

func closeWhenSettled(ctrl *listing.Controller[model.Row]) {
	ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
	defer cancel()
	_, _ = ctrl.Settle(ctx)
	ctrl.Close()
}
