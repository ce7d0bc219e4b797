// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strconv"
	"time"
)

// Booking statuses.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

// Booking is a guest reservation against a property.
type Booking struct {
	ID           string    `json:"id"`
	Reference    string    `json:"reference"`
	UserID       string    `json:"userId"`
	GuestName    string    `json:"guestName"`
	PropertyID   string    `json:"propertyId"`
	PropertyName string    `json:"propertyName"`
	CheckIn      time.Time `json:"checkIn"`
	CheckOut     time.Time `json:"checkOut"`
	Amount       float64   `json:"amount"`
	PaymentState string    `json:"paymentStatus"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RowID implements Row.
func (b Booking) RowID() string { return b.ID }

// RowStatus implements Row.
func (b Booking) RowStatus() string { return b.Status }

// Cells implements Row.
func (b Booking) Cells() []string {
	return []string{
		b.Reference,
		b.GuestName,
		b.PropertyName,
		formatDay(b.CheckIn),
		formatDay(b.CheckOut),
		strconv.FormatFloat(b.Amount, 'f', 2, 64),
		b.PaymentState,
	}
}

// Nights returns the number of nights between check-in and check-out.
func (b Booking) Nights() int {
	if b.CheckOut.Before(b.CheckIn) {
		return 0
	}
	return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
}
