// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// FinanceSummary aggregates booking revenue for a date range.
type FinanceSummary struct {
	From              time.Time          `json:"from"`
	To                time.Time          `json:"to"`
	GrossRevenue      float64            `json:"grossRevenue"`
	Commission        float64            `json:"commission"`
	PartnerPayouts    float64            `json:"partnerPayouts"`
	Refunds           float64            `json:"refunds"`
	BookingsCount     int                `json:"bookingsCount"`
	RevenueByKind     map[string]float64 `json:"revenueByType,omitempty"`
	PendingSettlement float64            `json:"pendingSettlement"`
}

// NetRevenue is the platform share after refunds.
func (f FinanceSummary) NetRevenue() float64 {
	return f.Commission - f.Refunds
}

// DashboardStats are the headline counters on the dashboard.
type DashboardStats struct {
	Users             int `json:"totalUsers"`
	Partners          int `json:"totalPartners"`
	Properties        int `json:"totalProperties"`
	Bookings          int `json:"totalBookings"`
	PendingPartners   int `json:"pendingPartners"`
	PendingProperties int `json:"pendingProperties"`
	PendingReviews    int `json:"pendingReviews"`
	OpenMessages      int `json:"openMessages"`
}

// PendingTotal is the number of items waiting for moderation.
func (d DashboardStats) PendingTotal() int {
	return d.PendingPartners + d.PendingProperties + d.PendingReviews
}
