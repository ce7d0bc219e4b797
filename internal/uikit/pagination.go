// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package uikit

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/olegiv/staydesk/internal/model"
)

// windowSize is how many numbered links surround the current page.
const windowSize = 5

// Pagination is the pager under a list table. Links carry the list's
// search, status and filters so paging never drops them.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int
	PerPage     int
	HasPrev     bool
	HasNext     bool
	Pages       []PageLink

	baseURL string
	params  url.Values
}

// PageLink is one entry of the pager. Gap entries render as an ellipsis.
type PageLink struct {
	Number     int
	URL        string
	IsCurrent  bool
	IsEllipsis bool
}

// Paginate builds the pager for a list controller state. baseURL is the
// list path, e.g. "/admin/hotels".
func Paginate(q model.ListQuery, total int, baseURL string) Pagination {
	pages := max(1, model.PageCount(total, q.PageSize))
	current := model.ClampPage(q.Page, pages)

	p := Pagination{
		CurrentPage: current,
		TotalPages:  pages,
		TotalItems:  total,
		PerPage:     q.PageSize,
		HasPrev:     current > 1,
		HasNext:     current < pages,
		baseURL:     baseURL,
		params:      LinkValues(q),
	}
	for _, n := range pageWindow(current, pages) {
		if n == 0 {
			p.Pages = append(p.Pages, PageLink{IsEllipsis: true})
			continue
		}
		p.Pages = append(p.Pages, PageLink{Number: n, URL: p.PageURL(n), IsCurrent: n == current})
	}
	return p
}

// LinkValues encodes q as console URL parameters. The page size is fixed
// per controller and the page is set per link, so both are left out.
func LinkValues(q model.ListQuery) url.Values {
	v := q.Values()
	v.Del(model.ParamPage)
	v.Del(model.ParamLimit)
	return v
}

// PageURL returns the list URL for page n.
func (p Pagination) PageURL(n int) string {
	v := make(url.Values, len(p.params)+1)
	for k, vals := range p.params {
		v[k] = vals
	}
	if n > 1 {
		v.Set(model.ParamPage, strconv.Itoa(n))
	}
	if len(v) == 0 {
		return p.baseURL
	}
	return p.baseURL + "?" + v.Encode()
}

// PrevURL returns the URL of the previous page.
func (p Pagination) PrevURL() string { return p.PageURL(p.CurrentPage - 1) }

// NextURL returns the URL of the next page.
func (p Pagination) NextURL() string { return p.PageURL(p.CurrentPage + 1) }

// ShouldShow reports whether there is more than one page.
func (p Pagination) ShouldShow() bool { return p.TotalPages > 1 }

// PageRange describes the rows on the current page, e.g. "11-20".
func (p Pagination) PageRange() string {
	if p.TotalItems == 0 {
		return "0"
	}
	start := (p.CurrentPage-1)*p.PerPage + 1
	end := min(p.CurrentPage*p.PerPage, p.TotalItems)
	return fmt.Sprintf("%d-%d", start, end)
}

// pageWindow lists the page numbers to link, centred on current, with
// the first and last page always present. Zero marks a gap.
func pageWindow(current, total int) []int {
	start := max(1, current-windowSize/2)
	end := min(total, start+windowSize-1)
	start = max(1, end-windowSize+1)

	var out []int
	if start > 1 {
		out = append(out, 1)
		if start > 2 {
			out = append(out, 0)
		}
	}
	for n := start; n <= end; n++ {
		out = append(out, n)
	}
	if end < total {
		if end < total-1 {
			out = append(out, 0)
		}
		out = append(out, total)
	}
	return out
}

// ParsePage reads the 1-based page parameter. Missing or invalid values
// yield page 1.
func ParsePage(v url.Values) int {
	n, err := strconv.Atoi(v.Get(model.ParamPage))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
