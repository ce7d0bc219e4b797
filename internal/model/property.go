// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strconv"
	"time"
)

// Property kinds listed on the marketplace.
const (
	PropertyKindHotel  = "hotel"
	PropertyKindPG     = "pg"
	PropertyKindPlot   = "plot"
	PropertyKindRental = "rental"
)

// PropertyKinds lists every property kind in display order.
var PropertyKinds = []string{PropertyKindHotel, PropertyKindPG, PropertyKindPlot, PropertyKindRental}

// Property moderation statuses.
const (
	PropertyStatusPending  = "pending"
	PropertyStatusApproved = "approved"
	PropertyStatusRejected = "rejected"
	PropertyStatusBlocked  = "blocked"
)

// Property is a listing (hotel, PG, plot or rental) owned by a partner.
type Property struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Kind        string    `json:"type"`
	City        string    `json:"city"`
	PartnerID   string    `json:"partnerId"`
	PartnerName string    `json:"partnerName,omitempty"`
	Status      string    `json:"status"`
	Price       float64   `json:"price"`
	Rating      float64   `json:"rating"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RowID implements Row.
func (p Property) RowID() string { return p.ID }

// RowStatus implements Row.
func (p Property) RowStatus() string { return p.Status }

// Cells implements Row.
func (p Property) Cells() []string {
	return []string{
		p.Name,
		p.Kind,
		p.City,
		p.PartnerName,
		strconv.FormatFloat(p.Price, 'f', 2, 64),
		strconv.FormatFloat(p.Rating, 'f', 1, 64),
	}
}

// IsPending returns true if the property awaits moderation.
func (p Property) IsPending() bool {
	return p.Status == PropertyStatusPending
}
