// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed backend call.
type Kind string

// Error kinds.
const (
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindServer       Kind = "server"
	KindNetwork      Kind = "network"
	KindDecode       Kind = "decode"
	KindNoSession    Kind = "no_session"
)

// Error is returned by every failed call.
type Error struct {
	Kind    Kind
	Status  int
	Method  string
	Path    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: HTTP %d (%s): %s", e.Method, e.Path, e.Status, e.Kind, msg)
	}
	return fmt.Sprintf("%s %s: %s: %s", e.Method, e.Path, e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage returns text suitable for a toast.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindValidation:
		if e.Message != "" {
			return e.Message
		}
		return "The request was rejected. Check the form and try again."
	case KindUnauthorized, KindNoSession:
		return "Your session has expired. Please sign in again."
	case KindForbidden:
		return "You do not have permission to do that."
	case KindNotFound:
		return "The requested record was not found."
	case KindNetwork:
		return "Could not reach the server. Try again."
	default:
		return "Something went wrong on the server. Try again later."
	}
}

// kindForStatus maps a non-2xx HTTP status to a Kind.
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 400 && status < 500:
		return KindValidation
	default:
		return KindServer
	}
}

// KindOf returns the Kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}

// UserMessage returns a toast message for any error.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.UserMessage()
	}
	return "Something went wrong. Try again later."
}
