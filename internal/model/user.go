// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the marketplace entities the console moderates
// and the list query types shared by the controllers.
package model

import "time"

// User account statuses.
const (
	UserStatusActive  = "active"
	UserStatusBlocked = "blocked"
)

// User is a guest account on the marketplace.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Status    string    `json:"status"`
	Bookings  int       `json:"bookingsCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// RowID implements Row.
func (u User) RowID() string { return u.ID }

// RowStatus implements Row.
func (u User) RowStatus() string { return u.Status }

// Cells implements Row.
func (u User) Cells() []string {
	return []string{u.Name, u.Email, u.Phone, itoa(u.Bookings), formatDay(u.CreatedAt)}
}

// IsBlocked returns true if the user can no longer sign in.
func (u User) IsBlocked() bool {
	return u.Status == UserStatusBlocked
}
