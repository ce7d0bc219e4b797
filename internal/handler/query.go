// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/olegiv/staydesk/internal/model"
	"github.com/olegiv/staydesk/internal/service"
	"github.com/olegiv/staydesk/internal/uikit"
)

const maxSearchLen = 100

// listQueryFromRequest reads page, search, status and the descriptor's
// filters from the URL. Unknown statuses and filter values are ignored.
func listQueryFromRequest(r *http.Request, desc service.Descriptor) model.ListQuery {
	v := r.URL.Query()
	q := model.ListQuery{
		Page:   uikit.ParsePage(v),
		Search: cleanSearch(v.Get(model.ParamSearch)),
	}
	if status := v.Get(model.ParamStatus); slices.Contains(desc.Statuses, status) {
		q.Status = status
	}
	for _, f := range desc.Filters {
		if val := v.Get(f.Key); val != "" && slices.Contains(f.Options, val) {
			if q.Filters == nil {
				q.Filters = make(map[string]string)
			}
			q.Filters[f.Key] = val
		}
	}
	return q
}

// hasListParams reports whether the URL carries any list parameter.
func hasListParams(r *http.Request, desc service.Descriptor) bool {
	v := r.URL.Query()
	for _, k := range []string{model.ParamPage, model.ParamSearch, model.ParamStatus} {
		if v.Has(k) {
			return true
		}
	}
	for _, f := range desc.Filters {
		if v.Has(f.Key) {
			return true
		}
	}
	return false
}

// cleanSearch trims and bounds the search text.
func cleanSearch(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxSearchLen {
		s = string([]rune(s)[:maxSearchLen])
	}
	return s
}

// parseIntForm reads a non-negative integer form field; invalid input
// yields -1 so validation can report it.
func parseIntForm(r *http.Request, key string) int {
	s := strings.TrimSpace(r.FormValue(key))
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
