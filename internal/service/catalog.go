// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/olegiv/staydesk/internal/apiclient"
	"github.com/olegiv/staydesk/internal/confirm"
	"github.com/olegiv/staydesk/internal/model"
)

// Action is a moderation action offered on a detail page. Every action
// goes through a confirmation intent before it reaches the backend.
type Action struct {
	Name     string
	Label    string
	Status   string // target status, empty for deletes
	Delete   bool
	Severity confirm.Severity
	// From lists the statuses the action applies to; empty means any.
	From        []string
	NeedsReason bool
}

// AppliesTo reports whether the action is offered for an entity in status.
func (a Action) AppliesTo(status string) bool {
	if len(a.From) == 0 {
		return status != a.Status || a.Delete
	}
	return slices.Contains(a.From, status)
}

// Prompt returns the confirmation title and message for the named entity.
func (a Action) Prompt(singular, label string) (title, message string) {
	title = fmt.Sprintf("%s %s?", a.Label, singular)
	if a.Delete {
		return title, fmt.Sprintf("%q will be permanently deleted. This cannot be undone.", label)
	}
	return title, fmt.Sprintf("%q will be marked %s.", label, a.Status)
}

// Filter is a page-specific select filter.
type Filter struct {
	Key     string
	Label   string
	Options []string
}

// Related is a collection hydrated alongside an entity on its detail page.
type Related struct {
	Collection string
	Title      string
	Columns    []string
	load       func(ctx context.Context, api apiclient.Doer, resource, id string) (model.PageResult[model.Row], error)
}

func relatedOf[R model.Row](collection, title string, columns ...string) Related {
	return Related{
		Collection: collection,
		Title:      title,
		Columns:    columns,
		load: func(ctx context.Context, api apiclient.Doer, resource, id string) (model.PageResult[model.Row], error) {
			page, err := ListRelated[R](ctx, api, resource, id, collection)
			if err != nil {
				return model.PageResult[model.Row]{}, err
			}
			return toRows(page), nil
		},
	}
}

// Descriptor describes how an admin resource is listed and moderated.
type Descriptor struct {
	Name     string
	Title    string
	Singular string
	Columns  []string
	Statuses []string
	Filters  []Filter
	Actions  []Action
	Related  []Related
	// CreatePath is the console form for new entities, if any.
	CreatePath string
	// EditPath is a format string taking the entity ID, if editable.
	EditPath string
}

// Action returns the named action.
func (d Descriptor) Action(name string) (Action, bool) {
	for _, a := range d.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// ActionsFor returns the actions offered for an entity in status.
func (d Descriptor) ActionsFor(status string) []Action {
	var out []Action
	for _, a := range d.Actions {
		if a.AppliesTo(status) {
			out = append(out, a)
		}
	}
	return out
}

// Filter returns the named filter.
func (d Descriptor) Filter(key string) (Filter, bool) {
	for _, f := range d.Filters {
		if f.Key == key {
			return f, true
		}
	}
	return Filter{}, false
}

// RelatedCollection returns the named related collection.
func (d Descriptor) RelatedCollection(name string) (Related, bool) {
	for _, r := range d.Related {
		if r.Collection == name {
			return r, true
		}
	}
	return Related{}, false
}

// Rows is a type-erased resource used by the generic list and detail pages.
type Rows interface {
	Descriptor() Descriptor
	List(ctx context.Context, q model.ListQuery) (model.PageResult[model.Row], error)
	Get(ctx context.Context, id string) (model.Row, error)
	Related(ctx context.Context, id, collection string) (model.PageResult[model.Row], error)
	// Apply runs action against id. It returns the updated row when the
	// backend echoed it, nil otherwise.
	Apply(ctx context.Context, id string, action Action, reason string) (model.Row, error)
}

type rowSource[T model.Row] struct {
	api  apiclient.Doer
	res  *Resource[T]
	desc Descriptor
}

// RowsOf exposes a typed resource through the Rows interface.
func RowsOf[T model.Row](api apiclient.Doer, desc Descriptor) Rows {
	return &rowSource[T]{api: api, res: NewResource[T](api, desc.Name), desc: desc}
}

func (s *rowSource[T]) Descriptor() Descriptor { return s.desc }

func (s *rowSource[T]) List(ctx context.Context, q model.ListQuery) (model.PageResult[model.Row], error) {
	page, err := s.res.List(ctx, q)
	if err != nil {
		return model.PageResult[model.Row]{}, err
	}
	return toRows(page), nil
}

func (s *rowSource[T]) Get(ctx context.Context, id string) (model.Row, error) {
	v, err := s.res.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *rowSource[T]) Related(ctx context.Context, id, collection string) (model.PageResult[model.Row], error) {
	rel, ok := s.desc.RelatedCollection(collection)
	if !ok {
		return model.PageResult[model.Row]{}, fmt.Errorf("%s has no related collection %q", s.desc.Name, collection)
	}
	return rel.load(ctx, s.api, s.desc.Name, id)
}

func (s *rowSource[T]) Apply(ctx context.Context, id string, action Action, reason string) (model.Row, error) {
	if action.Delete {
		return nil, s.res.Delete(ctx, id)
	}
	m, err := s.res.SetStatus(ctx, id, action.Status, reason)
	if err != nil {
		return nil, err
	}
	if m.Entity == nil {
		return nil, nil
	}
	return *m.Entity, nil
}

func toRows[T model.Row](page model.PageResult[T]) model.PageResult[model.Row] {
	rows := make([]model.Row, len(page.Items))
	for i, item := range page.Items {
		rows[i] = item
	}
	return model.PageResult[model.Row]{Items: rows, Total: page.Total}
}

// Catalog holds every resource the console moderates.
type Catalog struct {
	order   []string
	sources map[string]Rows
}

// NewCatalog registers the marketplace resources over api.
func NewCatalog(api apiclient.Doer) *Catalog {
	c := &Catalog{sources: make(map[string]Rows)}
	for _, src := range []Rows{
		RowsOf[model.User](api, usersDescriptor),
		RowsOf[model.Partner](api, partnersDescriptor),
		RowsOf[model.Property](api, propertiesDescriptor),
		RowsOf[model.Booking](api, bookingsDescriptor),
		RowsOf[model.Review](api, reviewsDescriptor),
		RowsOf[model.Offer](api, offersDescriptor),
		RowsOf[model.Notification](api, notificationsDescriptor),
		RowsOf[model.FAQ](api, faqsDescriptor),
		RowsOf[model.Category](api, categoriesDescriptor),
		RowsOf[model.LegalPage](api, legalPagesDescriptor),
		RowsOf[model.ContactMessage](api, contactMessagesDescriptor),
	} {
		c.Register(src)
	}
	return c
}

// Register adds or replaces a resource.
func (c *Catalog) Register(src Rows) {
	name := src.Descriptor().Name
	if _, ok := c.sources[name]; !ok {
		c.order = append(c.order, name)
	}
	c.sources[name] = src
}

// Lookup returns the named resource.
func (c *Catalog) Lookup(name string) (Rows, bool) {
	src, ok := c.sources[name]
	return src, ok
}

// Descriptors returns every resource descriptor in navigation order.
func (c *Catalog) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.sources[name].Descriptor())
	}
	return out
}

var (
	actionActivate   = Action{Name: "activate", Label: "Activate", Status: model.StatusActive, Severity: confirm.SeveritySuccess, From: []string{model.StatusInactive}}
	actionDeactivate = Action{Name: "deactivate", Label: "Deactivate", Status: model.StatusInactive, Severity: confirm.SeverityWarning, From: []string{model.StatusActive}}
	actionDelete     = Action{Name: "delete", Label: "Delete", Delete: true, Severity: confirm.SeverityDanger}
	publication      = []string{model.StatusActive, model.StatusInactive}
)

var usersDescriptor = Descriptor{
	Name:     "users",
	Title:    "Users",
	Singular: "user",
	Columns:  []string{"Name", "Email", "Phone", "Bookings", "Joined"},
	Statuses: []string{model.UserStatusActive, model.UserStatusBlocked},
	Actions: []Action{
		{Name: "block", Label: "Block", Status: model.UserStatusBlocked, Severity: confirm.SeverityDanger, From: []string{model.UserStatusActive}, NeedsReason: true},
		{Name: "unblock", Label: "Unblock", Status: model.UserStatusActive, Severity: confirm.SeveritySuccess, From: []string{model.UserStatusBlocked}},
	},
	Related: []Related{
		relatedOf[model.Booking]("bookings", "Bookings", "Reference", "Guest", "Property", "Check-in", "Check-out", "Amount", "Payment"),
	},
}

var partnersDescriptor = Descriptor{
	Name:     "partners",
	Title:    "Partners",
	Singular: "partner",
	Columns:  []string{"Name", "Business", "Email", "Properties", "KYC", "Joined"},
	Statuses: []string{model.PartnerStatusPending, model.PartnerStatusApproved, model.PartnerStatusRejected, model.PartnerStatusSuspended},
	Actions: []Action{
		{Name: "approve", Label: "Approve", Status: model.PartnerStatusApproved, Severity: confirm.SeveritySuccess, From: []string{model.PartnerStatusPending, model.PartnerStatusRejected}},
		{Name: "reject", Label: "Reject", Status: model.PartnerStatusRejected, Severity: confirm.SeverityDanger, From: []string{model.PartnerStatusPending}, NeedsReason: true},
		{Name: "suspend", Label: "Suspend", Status: model.PartnerStatusSuspended, Severity: confirm.SeverityWarning, From: []string{model.PartnerStatusApproved}, NeedsReason: true},
		{Name: "reinstate", Label: "Reinstate", Status: model.PartnerStatusApproved, Severity: confirm.SeveritySuccess, From: []string{model.PartnerStatusSuspended}},
	},
	Related: []Related{
		relatedOf[model.Document]("documents", "KYC documents", "Kind", "File", "Uploaded"),
		relatedOf[model.Property]("hotels", "Properties", "Name", "Type", "City", "Partner", "Price", "Rating"),
	},
}

var propertiesDescriptor = Descriptor{
	Name:     "hotels",
	Title:    "Properties",
	Singular: "property",
	Columns:  []string{"Name", "Type", "City", "Partner", "Price", "Rating"},
	Statuses: []string{model.PropertyStatusPending, model.PropertyStatusApproved, model.PropertyStatusRejected, model.PropertyStatusBlocked},
	Filters: []Filter{
		{Key: "type", Label: "Type", Options: model.PropertyKinds},
	},
	Actions: []Action{
		{Name: "approve", Label: "Approve", Status: model.PropertyStatusApproved, Severity: confirm.SeveritySuccess, From: []string{model.PropertyStatusPending, model.PropertyStatusRejected}},
		{Name: "reject", Label: "Reject", Status: model.PropertyStatusRejected, Severity: confirm.SeverityDanger, From: []string{model.PropertyStatusPending}, NeedsReason: true},
		{Name: "block", Label: "Block", Status: model.PropertyStatusBlocked, Severity: confirm.SeverityDanger, From: []string{model.PropertyStatusApproved}, NeedsReason: true},
		{Name: "unblock", Label: "Unblock", Status: model.PropertyStatusApproved, Severity: confirm.SeveritySuccess, From: []string{model.PropertyStatusBlocked}},
		actionDelete,
	},
	Related: []Related{
		relatedOf[model.Booking]("bookings", "Bookings", "Reference", "Guest", "Property", "Check-in", "Check-out", "Amount", "Payment"),
		relatedOf[model.Review]("reviews", "Reviews", "Property", "Guest", "Rating", "Comment", "Date"),
	},
}

var bookingsDescriptor = Descriptor{
	Name:     "bookings",
	Title:    "Bookings",
	Singular: "booking",
	Columns:  []string{"Reference", "Guest", "Property", "Check-in", "Check-out", "Amount", "Payment"},
	Statuses: []string{model.BookingStatusPending, model.BookingStatusConfirmed, model.BookingStatusCancelled, model.BookingStatusCompleted},
	Filters: []Filter{
		{Key: "paymentStatus", Label: "Payment", Options: []string{"paid", "unpaid", "refunded"}},
	},
	Actions: []Action{
		{Name: "confirm", Label: "Confirm", Status: model.BookingStatusConfirmed, Severity: confirm.SeveritySuccess, From: []string{model.BookingStatusPending}},
		{Name: "cancel", Label: "Cancel", Status: model.BookingStatusCancelled, Severity: confirm.SeverityDanger, From: []string{model.BookingStatusPending, model.BookingStatusConfirmed}, NeedsReason: true},
		{Name: "complete", Label: "Complete", Status: model.BookingStatusCompleted, Severity: confirm.SeverityWarning, From: []string{model.BookingStatusConfirmed}},
	},
}

var reviewsDescriptor = Descriptor{
	Name:     "reviews",
	Title:    "Reviews",
	Singular: "review",
	Columns:  []string{"Property", "Guest", "Rating", "Comment", "Date"},
	Statuses: []string{model.ReviewStatusPending, model.ReviewStatusApproved, model.ReviewStatusRejected},
	Actions: []Action{
		{Name: "approve", Label: "Publish", Status: model.ReviewStatusApproved, Severity: confirm.SeveritySuccess, From: []string{model.ReviewStatusPending, model.ReviewStatusRejected}},
		{Name: "reject", Label: "Hide", Status: model.ReviewStatusRejected, Severity: confirm.SeverityWarning, From: []string{model.ReviewStatusPending, model.ReviewStatusApproved}},
		actionDelete,
	},
}

var offersDescriptor = Descriptor{
	Name:     "offers",
	Title:    "Offers",
	Singular: "offer",
	Columns:  []string{"Code", "Title", "Discount", "From", "To"},
	Statuses: publication,
	Actions:  []Action{actionActivate, actionDeactivate, actionDelete},
}

var notificationsDescriptor = Descriptor{
	Name:       "notifications",
	Title:      "Notifications",
	Singular:   "notification",
	Columns:    []string{"Title", "Message", "Audience", "Sent"},
	Filters:    []Filter{{Key: "audience", Label: "Audience", Options: []string{model.AudienceAll, model.AudienceUsers, model.AudiencePartners}}},
	Actions:    []Action{actionDelete},
	CreatePath: "/admin/notifications/new",
}

var faqsDescriptor = Descriptor{
	Name:       "faqs",
	Title:      "FAQs",
	Singular:   "FAQ",
	Columns:    []string{"Question", "Category", "Order"},
	Statuses:   publication,
	Actions:    []Action{actionActivate, actionDeactivate, actionDelete},
	CreatePath: "/admin/faqs/new",
}

var categoriesDescriptor = Descriptor{
	Name:     "categories",
	Title:    "Categories",
	Singular: "category",
	Columns:  []string{"Name", "Slug", "Type", "Properties"},
	Statuses: publication,
	Actions:  []Action{actionActivate, actionDeactivate, actionDelete},
}

var legalPagesDescriptor = Descriptor{
	Name:     "legal-pages",
	Title:    "Legal pages",
	Singular: "legal page",
	Columns:  []string{"Title", "Slug", "Updated"},
	Statuses: publication,
	Actions: []Action{
		{Name: "publish", Label: "Publish", Status: model.StatusActive, Severity: confirm.SeveritySuccess, From: []string{model.StatusInactive}},
		{Name: "unpublish", Label: "Unpublish", Status: model.StatusInactive, Severity: confirm.SeverityWarning, From: []string{model.StatusActive}},
	},
	EditPath: "/admin/legal-pages/%s/edit",
}

var contactMessagesDescriptor = Descriptor{
	Name:     "contact-messages",
	Title:    "Contact messages",
	Singular: "message",
	Columns:  []string{"Name", "Email", "Subject", "Received"},
	Statuses: []string{model.ContactStatusNew, model.ContactStatusRead, model.ContactStatusResolved},
	Actions: []Action{
		{Name: "read", Label: "Mark read", Status: model.ContactStatusRead, Severity: confirm.SeveritySuccess, From: []string{model.ContactStatusNew}},
		{Name: "resolve", Label: "Resolve", Status: model.ContactStatusResolved, Severity: confirm.SeveritySuccess, From: []string{model.ContactStatusNew, model.ContactStatusRead}},
		actionDelete,
	},
}
