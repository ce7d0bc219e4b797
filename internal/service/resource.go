// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service maps the backend REST resources onto typed Go calls used by
// the list and detail controllers.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/olegiv/staydesk/internal/apiclient"
	"github.com/olegiv/staydesk/internal/model"
)

// Mutation is the result of a create, update or status change.
// Entity is nil when the backend did not return the changed record.
type Mutation[T any] struct {
	Entity *T
}

// StatusChange is the body of PUT /admin/{resource}/{id}/status.
type StatusChange struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Resource is a typed client for /admin/{name}.
type Resource[T any] struct {
	api  apiclient.Doer
	name string
}

// NewResource creates a typed client for the named admin resource.
func NewResource[T any](api apiclient.Doer, name string) *Resource[T] {
	return &Resource[T]{api: api, name: name}
}

// Name returns the resource path segment.
func (r *Resource[T]) Name() string { return r.name }

func (r *Resource[T]) path(parts ...string) string {
	p := "admin/" + r.name
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

// List fetches one page.
func (r *Resource[T]) List(ctx context.Context, q model.ListQuery) (model.PageResult[T], error) {
	var env apiclient.ListEnvelope[T]
	err := r.api.Do(ctx, apiclient.Request{Path: r.path(), Query: q.Values()}, &env)
	if err != nil {
		return model.PageResult[T]{}, err
	}
	return model.PageResult[T]{Items: env.Items, Total: env.Total}, nil
}

// Get fetches one entity.
func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	var env apiclient.EntityEnvelope[T]
	if err := r.api.Do(ctx, apiclient.Request{Path: r.path(id)}, &env); err != nil {
		var zero T
		return zero, err
	}
	return env.Data, nil
}

// Create posts a new entity.
func (r *Resource[T]) Create(ctx context.Context, body any) (Mutation[T], error) {
	return r.mutate(ctx, apiclient.Request{Method: http.MethodPost, Path: r.path(), Body: body})
}

// Update replaces an entity.
func (r *Resource[T]) Update(ctx context.Context, id string, body any) (Mutation[T], error) {
	return r.mutate(ctx, apiclient.Request{Method: http.MethodPut, Path: r.path(id), Body: body})
}

// SetStatus changes the moderation status of an entity.
func (r *Resource[T]) SetStatus(ctx context.Context, id, status, reason string) (Mutation[T], error) {
	return r.mutate(ctx, apiclient.Request{
		Method: http.MethodPut,
		Path:   r.path(id, "status"),
		Body:   StatusChange{Status: status, Reason: reason},
	})
}

// Delete removes an entity.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	return r.api.Do(ctx, apiclient.Request{Method: http.MethodDelete, Path: r.path(id)}, nil)
}

func (r *Resource[T]) mutate(ctx context.Context, req apiclient.Request) (Mutation[T], error) {
	var env apiclient.MutationEnvelope
	if err := r.api.Do(ctx, req, &env); err != nil {
		return Mutation[T]{}, err
	}
	if !env.HasEntity() {
		return Mutation[T]{}, nil
	}
	var entity T
	if err := json.Unmarshal(env.UpdatedEntity, &entity); err != nil {
		// The change went through; the caller reloads instead.
		return Mutation[T]{}, nil
	}
	return Mutation[T]{Entity: &entity}, nil
}

// ListRelated fetches /admin/{resource}/{id}/{collection}.
func ListRelated[R any](ctx context.Context, api apiclient.Doer, resource, id, collection string) (model.PageResult[R], error) {
	path := fmt.Sprintf("admin/%s/%s/%s", resource, url.PathEscape(id), collection)
	var env apiclient.ListEnvelope[R]
	if err := api.Do(ctx, apiclient.Request{Path: path}, &env); err != nil {
		return model.PageResult[R]{}, err
	}
	return model.PageResult[R]{Items: env.Items, Total: env.Total}, nil
}
