package model

import (
	"testing"
)

func TestPageCount(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
		{5, 0, 0},
		{-3, 10, 0},
	}

	for _, tt := range tests {
		if got := PageCount(tt.total, tt.size); got != tt.want {
			t.Errorf("PageCount(%d, %d) = %d; want %d", tt.total, tt.size, got, tt.want)
		}
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		name            string
		page, pageCount int
		want            int
	}{
		{"below range", 0, 5, 1},
		{"negative", -2, 5, 1},
		{"in range", 3, 5, 3},
		{"above range", 9, 5, 5},
		{"no pages", 4, 0, 1},
		{"first of none", 1, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampPage(tt.page, tt.pageCount); got != tt.want {
				t.Errorf("ClampPage(%d, %d) = %d; want %d", tt.page, tt.pageCount, got, tt.want)
			}
		})
	}
}

func TestListQueryValues(t *testing.T) {
	q := ListQuery{
		Page:     2,
		PageSize: 10,
		Search:   "  hotel ",
		Status:   "pending",
		Filters:  map[string]string{"type": "pg", "city": ""},
	}

	v := q.Values()

	if v.Get(ParamPage) != "2" {
		t.Errorf("page = %q; want 2", v.Get(ParamPage))
	}
	if v.Get(ParamLimit) != "10" {
		t.Errorf("limit = %q; want 10", v.Get(ParamLimit))
	}
	if v.Get(ParamSearch) != "hotel" {
		t.Errorf("search = %q; want hotel", v.Get(ParamSearch))
	}
	if v.Get(ParamStatus) != "pending" {
		t.Errorf("status = %q; want pending", v.Get(ParamStatus))
	}
	if v.Get("type") != "pg" {
		t.Errorf("type = %q; want pg", v.Get("type"))
	}
	if v.Has("city") {
		t.Error("empty filter should be omitted")
	}
}

func TestListQueryValuesDefaultsPage(t *testing.T) {
	v := ListQuery{}.Values()
	if v.Get(ParamPage) != "1" {
		t.Errorf("page = %q; want 1", v.Get(ParamPage))
	}
	if v.Has(ParamLimit) || v.Has(ParamSearch) || v.Has(ParamStatus) {
		t.Errorf("unexpected params: %v", v)
	}
}

func TestListQuerySameFilters(t *testing.T) {
	a := ListQuery{Page: 1, Search: "x", Filters: map[string]string{"type": "pg"}}
	b := ListQuery{Page: 4, Search: "x", Filters: map[string]string{"type": "pg", "city": ""}}

	if !a.SameFilters(b) {
		t.Error("queries differing only by page and empty filters should match")
	}

	b.Status = "approved"
	if a.SameFilters(b) {
		t.Error("status change should not match")
	}
}

func TestListQueryCloneIsDeep(t *testing.T) {
	a := ListQuery{Filters: map[string]string{"type": "pg"}}
	b := a.Clone()
	b.Filters["type"] = "plot"

	if a.Filter("type") != "pg" {
		t.Errorf("original mutated: %q", a.Filter("type"))
	}
}
