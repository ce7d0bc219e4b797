// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import "encoding/json"

// ListEnvelope is the backend list response.
type ListEnvelope[T any] struct {
	Success bool `json:"success"`
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
}

// EntityEnvelope wraps a single entity.
type EntityEnvelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

// MutationEnvelope is returned by create, update, status and delete calls.
// UpdatedEntity is empty when the backend did not echo the entity.
type MutationEnvelope struct {
	Success       bool            `json:"success"`
	Message       string          `json:"message,omitempty"`
	UpdatedEntity json.RawMessage `json:"updatedEntity,omitempty"`
}

// HasEntity reports whether the backend returned the changed entity.
func (m MutationEnvelope) HasEntity() bool {
	return len(m.UpdatedEntity) > 0 && string(m.UpdatedEntity) != "null"
}

// errorEnvelope is the backend failure body.
type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e errorEnvelope) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}
