// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Partner (property owner) statuses.
const (
	PartnerStatusPending   = "pending"
	PartnerStatusApproved  = "approved"
	PartnerStatusRejected  = "rejected"
	PartnerStatusSuspended = "suspended"
)

// Partner is a property-owner account whose listings need approval.
type Partner struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	BusinessName string    `json:"businessName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Status       string    `json:"status"`
	Properties   int       `json:"propertiesCount"`
	KYCVerified  bool      `json:"kycVerified"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RowID implements Row.
func (p Partner) RowID() string { return p.ID }

// RowStatus implements Row.
func (p Partner) RowStatus() string { return p.Status }

// Cells implements Row.
func (p Partner) Cells() []string {
	kyc := "no"
	if p.KYCVerified {
		kyc = "yes"
	}
	return []string{p.Name, p.BusinessName, p.Email, itoa(p.Properties), kyc, formatDay(p.CreatedAt)}
}

// Document is a verification document attached to a partner or property.
type Document struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	URL        string    `json:"url"`
	Verified   bool      `json:"verified"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// RowID implements Row.
func (d Document) RowID() string { return d.ID }

// RowStatus implements Row.
func (d Document) RowStatus() string {
	if d.Verified {
		return "verified"
	}
	return "unverified"
}

// Cells implements Row.
func (d Document) Cells() []string {
	return []string{d.Kind, d.URL, formatDay(d.UploadedAt)}
}
