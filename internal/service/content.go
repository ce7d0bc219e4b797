// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/olegiv/staydesk/internal/apiclient"
	"github.com/olegiv/staydesk/internal/model"
)

// ValidationErrors maps form fields to messages.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func requireLen(errs ValidationErrors, field, value string, minLen, maxLen int) {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	switch {
	case n == 0:
		errs[field] = "is required"
	case n < minLen:
		errs[field] = "is too short"
	case maxLen > 0 && n > maxLen:
		errs[field] = "is too long"
	}
}

// FAQInput is the FAQ create form.
type FAQInput struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
	Order    int    `json:"order"`
	Status   string `json:"status"`
}

// Validate checks the form and normalizes it.
func (in *FAQInput) Validate() error {
	errs := ValidationErrors{}
	in.Question = strings.TrimSpace(in.Question)
	in.Answer = strings.TrimSpace(in.Answer)
	in.Category = strings.TrimSpace(in.Category)
	requireLen(errs, "question", in.Question, 5, 300)
	requireLen(errs, "answer", in.Answer, 5, 5000)
	if in.Order < 0 {
		errs["order"] = "must not be negative"
	}
	if in.Status == "" {
		in.Status = model.StatusActive
	}
	if in.Status != model.StatusActive && in.Status != model.StatusInactive {
		errs["status"] = "must be active or inactive"
	}
	return errs.orNil()
}

// NotificationInput is the broadcast form.
type NotificationInput struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Audience string `json:"audience"`
}

// Audiences lists valid notification audiences.
var Audiences = []string{model.AudienceAll, model.AudienceUsers, model.AudiencePartners}

// Validate checks the form and normalizes it.
func (in *NotificationInput) Validate() error {
	errs := ValidationErrors{}
	in.Title = strings.TrimSpace(in.Title)
	in.Message = strings.TrimSpace(in.Message)
	requireLen(errs, "title", in.Title, 3, 120)
	requireLen(errs, "message", in.Message, 3, 1000)
	if !slices.Contains(Audiences, in.Audience) {
		errs["audience"] = "must be all, users or partners"
	}
	return errs.orNil()
}

// LegalPageInput is the legal page editor form. Content is markdown.
type LegalPageInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Status  string `json:"status,omitempty"`
}

// Validate checks the form and normalizes it.
func (in *LegalPageInput) Validate() error {
	errs := ValidationErrors{}
	in.Title = strings.TrimSpace(in.Title)
	requireLen(errs, "title", in.Title, 3, 200)
	requireLen(errs, "content", in.Content, 20, 200000)
	if in.Status != "" && in.Status != model.StatusActive && in.Status != model.StatusInactive {
		errs["status"] = "must be active or inactive"
	}
	return errs.orNil()
}

// ContentService manages FAQs, notifications and legal pages.
type ContentService struct {
	faqs          *Resource[model.FAQ]
	notifications *Resource[model.Notification]
	legal         *Resource[model.LegalPage]
}

// NewContentService creates a ContentService.
func NewContentService(api apiclient.Doer) *ContentService {
	return &ContentService{
		faqs:          NewResource[model.FAQ](api, "faqs"),
		notifications: NewResource[model.Notification](api, "notifications"),
		legal:         NewResource[model.LegalPage](api, "legal-pages"),
	}
}

// CreateFAQ validates and creates an FAQ.
func (s *ContentService) CreateFAQ(ctx context.Context, in FAQInput) (Mutation[model.FAQ], error) {
	if err := in.Validate(); err != nil {
		return Mutation[model.FAQ]{}, err
	}
	return s.faqs.Create(ctx, in)
}

// SendNotification validates and broadcasts a notification.
func (s *ContentService) SendNotification(ctx context.Context, in NotificationInput) (Mutation[model.Notification], error) {
	if err := in.Validate(); err != nil {
		return Mutation[model.Notification]{}, err
	}
	return s.notifications.Create(ctx, in)
}

// LegalPage fetches a legal page for editing.
func (s *ContentService) LegalPage(ctx context.Context, id string) (model.LegalPage, error) {
	return s.legal.Get(ctx, id)
}

// UpdateLegalPage validates and saves a legal page.
func (s *ContentService) UpdateLegalPage(ctx context.Context, id string, in LegalPageInput) (Mutation[model.LegalPage], error) {
	if err := in.Validate(); err != nil {
		return Mutation[model.LegalPage]{}, err
	}
	return s.legal.Update(ctx, id, in)
}

// IsValidation reports whether err should be shown next to the form
// rather than as a generic failure.
func IsValidation(err error) bool {
	var v ValidationErrors
	if errors.As(err, &v) {
		return true
	}
	return apiclient.IsKind(err, apiclient.KindValidation)
}
