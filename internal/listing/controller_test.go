// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package listing

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/staydesk/internal/model"
	"github.com/olegiv/staydesk/internal/testutil"
)

const testDebounce = 40 * time.Millisecond

type item struct {
	ID     string
	Status string
}

// recorder is a fake backend list endpoint.
type recorder struct {
	mu      sync.Mutex
	calls   []model.ListQuery
	total   int
	err     error
	respond func(q model.ListQuery) (model.PageResult[item], error)
}

func (r *recorder) fetch(ctx context.Context, q model.ListQuery) (model.PageResult[item], error) {
	r.mu.Lock()
	r.calls = append(r.calls, q.Clone())
	respond, total, err := r.respond, r.total, r.err
	r.mu.Unlock()

	if respond != nil {
		return respond(q)
	}
	if err != nil {
		return model.PageResult[item]{}, err
	}
	var items []item
	start := (q.Page - 1) * q.PageSize
	for i := start; i < min(start+q.PageSize, total); i++ {
		items = append(items, item{ID: string(rune('a' + i%26))})
	}
	return model.PageResult[item]{Items: items, Total: total}, nil
}

func (r *recorder) Calls() []model.ListQuery {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.ListQuery(nil), r.calls...)
}

func newController(t *testing.T, r *recorder) *Controller[item] {
	t.Helper()
	c := New(r.fetch, Options{Name: "test", PageSize: 10, Debounce: testDebounce, Logger: testutil.TestLoggerSilent()})
	t.Cleanup(c.Close)
	return c
}

func settle(t *testing.T, c *Controller[item]) State[item] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := c.Settle(ctx)
	require.NoError(t, err)
	return st
}

func TestFilterChangesCoalesceIntoOneFetch(t *testing.T) {
	r := &recorder{total: 3}
	c := newController(t, r)

	c.SetSearch("h")
	c.SetSearch("ho")
	c.SetSearch("hot")
	c.SetSearch("hotel")
	c.SetStatus("pending")

	assert.Empty(t, r.Calls(), "nothing may be fetched inside the debounce window")

	st := settle(t, c)
	calls := r.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "hotel", calls[0].Search)
	assert.Equal(t, "pending", calls[0].Status)
	assert.Equal(t, 1, calls[0].Page)
	assert.Equal(t, 3, st.Total)
	assert.False(t, st.Loading)
}

func TestSearchStatusPageTwoScenario(t *testing.T) {
	r := &recorder{total: 25}
	c := newController(t, r)

	c.SetQuery(model.ListQuery{Search: "hotel", Status: "pending", Page: 2})
	st := settle(t, c)

	calls := r.Calls()
	require.Len(t, calls, 1)
	v := calls[0].Values()
	assert.Equal(t, "hotel", v.Get("search"))
	assert.Equal(t, "pending", v.Get("status"))
	assert.Equal(t, "2", v.Get("page"))
	assert.Equal(t, "10", v.Get("limit"))
	assert.Equal(t, 3, st.PageCount)
	assert.Len(t, st.Items, 10)
}

func TestSetPageFoldsPendingFilters(t *testing.T) {
	r := &recorder{total: 25}
	c := newController(t, r)

	c.SetSearch("hotel")
	c.SetStatus("pending")
	c.SetPage(2)

	settle(t, c)
	time.Sleep(2 * testDebounce)

	calls := r.Calls()
	require.Len(t, calls, 1, "the page change carries the pending filters")
	assert.Equal(t, model.ListQuery{Page: 2, PageSize: 10, Search: "hotel", Status: "pending"}, calls[0])
}

func TestFilterChangeResetsPage(t *testing.T) {
	r := &recorder{total: 40}
	c := newController(t, r)

	c.SetPage(3)
	settle(t, c)
	c.SetFilter("type", "pg")
	st := settle(t, c)

	assert.Equal(t, 1, st.Query.Page)
	assert.Equal(t, "pg", st.Query.Filter("type"))
	calls := r.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, 1, calls[1].Page)
}

func TestUnchangedFilterDoesNotFetch(t *testing.T) {
	r := &recorder{total: 5}
	c := newController(t, r)

	c.SetStatus("")
	c.SetFilter("type", "")
	settle(t, c)
	assert.Empty(t, r.Calls())
}

func TestStaleResponseDropped(t *testing.T) {
	releaseOld := make(chan struct{})
	r := &recorder{}
	r.respond = func(q model.ListQuery) (model.PageResult[item], error) {
		if q.Search == "old" {
			<-releaseOld
			return model.PageResult[item]{Items: []item{{ID: "old"}}, Total: 1}, nil
		}
		return model.PageResult[item]{Items: []item{{ID: "new"}}, Total: 1}, nil
	}
	c := newController(t, r)

	c.Apply(model.ListQuery{Search: "old"})
	c.Apply(model.ListQuery{Search: "new"})

	require.Eventually(t, func() bool {
		st := c.State()
		return len(st.Items) == 1 && st.Items[0].ID == "new"
	}, time.Second, 5*time.Millisecond)

	close(releaseOld)
	st := settle(t, c)

	require.Len(t, st.Items, 1)
	assert.Equal(t, "new", st.Items[0].ID, "the older response must not overwrite the newer one")
	assert.Equal(t, uint64(2), st.Generation)
}

func TestPageClampedAfterFetch(t *testing.T) {
	r := &recorder{total: 15}
	c := newController(t, r)

	c.SetPage(5)
	st := settle(t, c)

	assert.Equal(t, 2, st.PageCount)
	assert.Equal(t, 2, st.Query.Page)
	calls := r.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, 5, calls[0].Page)
	assert.Equal(t, 2, calls[1].Page)
	assert.Len(t, st.Items, 5)
}

func TestEmptyResultClampsWithoutRefetch(t *testing.T) {
	r := &recorder{total: 0}
	c := newController(t, r)

	c.SetPage(3)
	st := settle(t, c)

	assert.Equal(t, 0, st.PageCount)
	assert.Equal(t, 1, st.Query.Page)
	assert.Len(t, r.Calls(), 1)
}

func TestPageCountInvariant(t *testing.T) {
	for _, total := range []int{0, 1, 9, 10, 11, 99, 100} {
		r := &recorder{total: total}
		c := newController(t, r)
		c.Refresh()
		st := settle(t, c)
		assert.Equal(t, (total+9)/10, st.PageCount, "total=%d", total)
		assert.GreaterOrEqual(t, st.Query.Page, 1)
		assert.LessOrEqual(t, st.Query.Page, max(1, st.PageCount))
	}
}

func TestMutateRefetchesSameQuery(t *testing.T) {
	r := &recorder{total: 30}
	c := newController(t, r)

	c.Apply(model.ListQuery{Page: 2, Status: "pending"})
	settle(t, c)

	ran := 0
	err := c.Mutate(context.Background(), func(context.Context) error {
		ran++
		return nil
	})
	require.NoError(t, err)
	settle(t, c)

	assert.Equal(t, 1, ran)
	calls := r.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0], calls[1])
}

func TestMutateFailureSkipsRefetch(t *testing.T) {
	r := &recorder{total: 30}
	c := newController(t, r)
	c.Refresh()
	settle(t, c)

	boom := errors.New("boom")
	err := c.Mutate(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	settle(t, c)
	assert.Len(t, r.Calls(), 1)
}

func TestFetchErrorCaughtLocally(t *testing.T) {
	r := &recorder{err: errors.New("backend down")}
	c := newController(t, r)

	c.Refresh()
	st := settle(t, c)

	assert.False(t, st.Loading)
	assert.EqualError(t, st.Err, "backend down")
	assert.False(t, st.Loaded())
}

func TestApplySkipsWhenLoaded(t *testing.T) {
	r := &recorder{total: 3}
	c := newController(t, r)

	q := model.ListQuery{Search: "x"}
	c.Apply(q)
	settle(t, c)
	c.Apply(q)
	settle(t, c)
	assert.Len(t, r.Calls(), 1)

	c.Apply(model.ListQuery{})
	settle(t, c)
	assert.Len(t, r.Calls(), 2)
}

func TestSubscribeReceivesStates(t *testing.T) {
	r := &recorder{total: 2}
	c := newController(t, r)

	var mu sync.Mutex
	var seen []State[item]
	unsubscribe := c.Subscribe(func(st State[item]) {
		mu.Lock()
		seen = append(seen, st)
		mu.Unlock()
	})

	c.Refresh()
	settle(t, c)
	unsubscribe()
	c.Refresh()
	settle(t, c)

	mu.Lock()
	defer mu.Unlock()
	var sawLoading, sawLoaded bool
	for _, st := range seen {
		sawLoading = sawLoading || st.Loading
		sawLoaded = sawLoaded || (!st.Loading && st.Generation == 1)
		assert.LessOrEqual(t, st.Generation, uint64(1), "no states after unsubscribe")
	}
	assert.True(t, sawLoading)
	assert.True(t, sawLoaded)
}

func TestCloseCancelsPendingFetch(t *testing.T) {
	r := &recorder{total: 1}
	c := New(r.fetch, Options{PageSize: 10, Debounce: testDebounce, Logger: testutil.TestLoggerSilent()})

	c.SetSearch("x")
	c.Close()
	time.Sleep(3 * testDebounce)

	assert.Empty(t, r.Calls())
	_, err := c.Settle(context.Background())
	assert.NoError(t, err)
}

func TestLoadingWhileDebouncePending(t *testing.T) {
	r := &recorder{total: 3}
	c := newController(t, r)
	c.Refresh()
	settle(t, c)

	c.SetSearch("sea")
	st := c.State()
	assert.Equal(t, "sea", st.Query.Search)
	assert.True(t, st.Loading, "rows of the old query are shown as loading")
	assert.Len(t, r.Calls(), 1)

	st = settle(t, c)
	assert.False(t, st.Loading)
	require.Len(t, r.Calls(), 2)
	assert.Equal(t, "sea", r.Calls()[1].Search)
}

func TestMaxWaitBoundsContinuousTyping(t *testing.T) {
	r := &recorder{total: 3}
	c := New(r.fetch, Options{PageSize: 10, Debounce: testDebounce, MaxWait: 2 * testDebounce, Logger: testutil.TestLoggerSilent()})
	t.Cleanup(c.Close)

	deadline := time.Now().Add(6 * testDebounce)
	for i := 0; time.Now().Before(deadline); i++ {
		c.SetSearch(strings.Repeat("a", i%5+1) + string(rune('a'+i%26)))
		time.Sleep(testDebounce / 4)
	}
	assert.NotEmpty(t, r.Calls(), "a fetch runs while changes keep coming")
}

func TestPublishNeverGoesBack(t *testing.T) {
	r := &recorder{}
	c := newController(t, r)

	var seen []string
	c.Subscribe(func(st State[item]) { seen = append(seen, st.Query.Search) })

	c.publish(change[item]{seq: 2, state: State[item]{Query: model.ListQuery{Search: "new"}}})
	c.publish(change[item]{seq: 1, state: State[item]{Query: model.ListQuery{Search: "old"}}})
	c.publish(change[item]{seq: 3, state: State[item]{Query: model.ListQuery{Search: "newest"}}})

	assert.Equal(t, []string{"new", "newest"}, seen)
}
