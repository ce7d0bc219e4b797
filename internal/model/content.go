// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strconv"
	"time"
)

// Publication statuses shared by FAQs, categories, legal pages and offers.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Notification audiences.
const (
	AudienceAll      = "all"
	AudienceUsers    = "users"
	AudiencePartners = "partners"
)

// Notification is a broadcast message sent to users or partners.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Audience  string    `json:"audience"`
	Status    string    `json:"status"`
	SentAt    time.Time `json:"sentAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// RowID implements Row.
func (n Notification) RowID() string { return n.ID }

// RowStatus implements Row.
func (n Notification) RowStatus() string { return n.Status }

// Cells implements Row.
func (n Notification) Cells() []string {
	return []string{n.Title, truncate(n.Message, 60), n.Audience, formatDay(n.SentAt)}
}

// FAQ is a question shown in the help centre.
type FAQ struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
	Order    int    `json:"order"`
	Status   string `json:"status"`
}

// RowID implements Row.
func (f FAQ) RowID() string { return f.ID }

// RowStatus implements Row.
func (f FAQ) RowStatus() string { return f.Status }

// Cells implements Row.
func (f FAQ) Cells() []string {
	return []string{f.Question, f.Category, itoa(f.Order)}
}

// Category groups properties and amenities for search.
type Category struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	Kind       string `json:"type"`
	Properties int    `json:"propertiesCount"`
	Status     string `json:"status"`
}

// RowID implements Row.
func (c Category) RowID() string { return c.ID }

// RowStatus implements Row.
func (c Category) RowStatus() string { return c.Status }

// Cells implements Row.
func (c Category) Cells() []string {
	return []string{c.Name, c.Slug, c.Kind, itoa(c.Properties)}
}

// LegalPage is a terms, privacy or refund policy document.
// Content is markdown.
type LegalPage struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RowID implements Row.
func (l LegalPage) RowID() string { return l.ID }

// RowStatus implements Row.
func (l LegalPage) RowStatus() string { return l.Status }

// Cells implements Row.
func (l LegalPage) Cells() []string {
	return []string{l.Title, l.Slug, formatDay(l.UpdatedAt)}
}

// Contact message statuses.
const (
	ContactStatusNew      = "new"
	ContactStatusRead     = "read"
	ContactStatusResolved = "resolved"
)

// ContactMessage is an inbound message from the public contact form.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// RowID implements Row.
func (c ContactMessage) RowID() string { return c.ID }

// RowStatus implements Row.
func (c ContactMessage) RowStatus() string { return c.Status }

// Cells implements Row.
func (c ContactMessage) Cells() []string {
	return []string{c.Name, c.Email, c.Subject, formatDay(c.CreatedAt)}
}

// Offer is a promotional discount code.
type Offer struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Title      string    `json:"title"`
	Percentage float64   `json:"discountPercent"`
	ValidFrom  time.Time `json:"validFrom"`
	ValidTo    time.Time `json:"validTo"`
	Status     string    `json:"status"`
}

// RowID implements Row.
func (o Offer) RowID() string { return o.ID }

// RowStatus implements Row.
func (o Offer) RowStatus() string { return o.Status }

// Cells implements Row.
func (o Offer) Cells() []string {
	return []string{o.Code, o.Title, strconv.FormatFloat(o.Percentage, 'f', 0, 64) + "%", formatDay(o.ValidFrom), formatDay(o.ValidTo)}
}

// IsExpired returns true if the offer window has closed at t.
func (o Offer) IsExpired(t time.Time) bool {
	return !o.ValidTo.IsZero() && t.After(o.ValidTo)
}
