// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/staydesk/internal/apiclient"
	"github.com/olegiv/staydesk/internal/model"
)

const dateLayout = "2006-01-02"

// DashboardService loads headline stats and finance summaries.
type DashboardService struct {
	api apiclient.Doer
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(api apiclient.Doer) *DashboardService {
	return &DashboardService{api: api}
}

// Stats fetches /admin/dashboard/stats.
func (s *DashboardService) Stats(ctx context.Context) (model.DashboardStats, error) {
	var env apiclient.EntityEnvelope[model.DashboardStats]
	if err := s.api.Do(ctx, apiclient.Request{Path: "admin/dashboard/stats"}, &env); err != nil {
		return model.DashboardStats{}, err
	}
	return env.Data, nil
}

// Finance fetches the finance summary for [from, to].
func (s *DashboardService) Finance(ctx context.Context, from, to time.Time) (model.FinanceSummary, error) {
	q := url.Values{}
	q.Set("from", from.Format(dateLayout))
	q.Set("to", to.Format(dateLayout))

	var env apiclient.EntityEnvelope[model.FinanceSummary]
	if err := s.api.Do(ctx, apiclient.Request{Path: "admin/finance/summary", Query: q}, &env); err != nil {
		return model.FinanceSummary{}, err
	}
	if env.Data.From.IsZero() {
		env.Data.From = from
	}
	if env.Data.To.IsZero() {
		env.Data.To = to
	}
	return env.Data, nil
}

// Overview is the dashboard page data.
type Overview struct {
	Stats      model.DashboardStats
	Finance    model.FinanceSummary
	StatsErr   error
	FinanceErr error
}

// Overview loads stats and finance in parallel. A failure of one half
// does not hide the other.
func (s *DashboardService) Overview(ctx context.Context, from, to time.Time) Overview {
	var ov Overview
	var g errgroup.Group
	g.Go(func() error {
		ov.Stats, ov.StatsErr = s.Stats(ctx)
		return nil
	})
	g.Go(func() error {
		ov.Finance, ov.FinanceErr = s.Finance(ctx, from, to)
		return nil
	})
	_ = g.Wait()
	return ov
}

// ParseRange reads a from/to date pair, defaulting to the last 30 days
// ending today. Inverted ranges are swapped.
func ParseRange(fromStr, toStr string, now time.Time) (from, to time.Time) {
	to = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from = to.AddDate(0, 0, -30)
	if t, err := time.Parse(dateLayout, toStr); err == nil {
		to = t
	}
	if t, err := time.Parse(dateLayout, fromStr); err == nil {
		from = t
	}
	if from.After(to) {
		from, to = to, from
	}
	return from, to
}
