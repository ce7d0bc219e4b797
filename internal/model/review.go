// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Review moderation statuses.
const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

// Review is a guest review of a property.
type Review struct {
	ID           string    `json:"id"`
	PropertyID   string    `json:"propertyId"`
	PropertyName string    `json:"propertyName"`
	UserName     string    `json:"userName"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RowID implements Row.
func (r Review) RowID() string { return r.ID }

// RowStatus implements Row.
func (r Review) RowStatus() string { return r.Status }

// Cells implements Row.
func (r Review) Cells() []string {
	return []string{r.PropertyName, r.UserName, itoa(r.Rating), truncate(r.Comment, 80), formatDay(r.CreatedAt)}
}
