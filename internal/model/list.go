// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Query parameter names understood by the backend list endpoints.
const (
	ParamPage   = "page"
	ParamLimit  = "limit"
	ParamSearch = "search"
	ParamStatus = "status"
)

// ListQuery is the filter and page tuple behind a list page.
// Page is 1-based. PageSize is fixed by the owning controller.
type ListQuery struct {
	Page     int
	PageSize int
	Search   string
	Status   string
	Filters  map[string]string
}

// Clone returns a deep copy of the query.
func (q ListQuery) Clone() ListQuery {
	c := q
	if q.Filters != nil {
		c.Filters = maps.Clone(q.Filters)
	}
	return c
}

// Filter returns the value of a page-specific filter.
func (q ListQuery) Filter(key string) string {
	if q.Filters == nil {
		return ""
	}
	return q.Filters[key]
}

// SameFilters reports whether two queries select the same rows,
// ignoring page and page size.
func (q ListQuery) SameFilters(o ListQuery) bool {
	if q.Search != o.Search || q.Status != o.Status {
		return false
	}
	return maps.Equal(nonEmpty(q.Filters), nonEmpty(o.Filters))
}

// Equal reports whether two queries are identical.
func (q ListQuery) Equal(o ListQuery) bool {
	return q.Page == o.Page && q.PageSize == o.PageSize && q.SameFilters(o)
}

// Values encodes the query as backend query parameters.
// Empty search, status and filter values are omitted.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	page := q.Page
	if page < 1 {
		page = 1
	}
	v.Set(ParamPage, strconv.Itoa(page))
	if q.PageSize > 0 {
		v.Set(ParamLimit, strconv.Itoa(q.PageSize))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set(ParamSearch, s)
	}
	if q.Status != "" {
		v.Set(ParamStatus, q.Status)
	}
	for _, k := range slices.Sorted(maps.Keys(q.Filters)) {
		if q.Filters[k] != "" {
			v.Set(k, q.Filters[k])
		}
	}
	return v
}

func nonEmpty(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// PageResult is one page of a list endpoint.
type PageResult[T any] struct {
	Items []T
	Total int
}

// PageCount returns ceil(total / pageSize). It is 0 for an empty result.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPage keeps page within [1, max(1, pageCount)].
func ClampPage(page, pageCount int) int {
	upper := max(1, pageCount)
	if page < 1 {
		return 1
	}
	if page > upper {
		return upper
	}
	return page
}

// Row is implemented by entities shown in the generic admin table.
type Row interface {
	RowID() string
	RowStatus() string
	Cells() []string
}
