// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/staydesk/internal/apiclient"
	"github.com/olegiv/staydesk/internal/confirm"
	"github.com/olegiv/staydesk/internal/detail"
	"github.com/olegiv/staydesk/internal/listing"
	"github.com/olegiv/staydesk/internal/model"
	"github.com/olegiv/staydesk/internal/render"
	"github.com/olegiv/staydesk/internal/service"
	"github.com/olegiv/staydesk/internal/uikit"
)

// settleTimeout bounds how long a page waits for its list fetch.
const settleTimeout = 20 * time.Second

const maxReasonLen = 500

// Confirmation metadata keys.
const (
	metaReturn  = "return"  // where cancel and failures go
	metaDone    = "done"    // where success goes
	metaSuccess = "success" // success toast
)

// ResourceHandler serves the generic list and detail pages of every
// moderated resource.
type ResourceHandler struct {
	catalog  *service.Catalog
	lists    *Lists
	gate     *confirm.Gate
	renderer *render.Renderer
	logger   *slog.Logger
}

// NewResourceHandler creates a ResourceHandler.
func NewResourceHandler(catalog *service.Catalog, lists *Lists, gate *confirm.Gate, renderer *render.Renderer, logger *slog.Logger) *ResourceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResourceHandler{
		catalog:  catalog,
		lists:    lists,
		gate:     gate,
		renderer: renderer,
		logger:   logger,
	}
}

func listURL(resource string) string {
	return RouteAdmin + "/" + resource
}

func detailURL(resource, id string) string {
	return listURL(resource) + "/" + url.PathEscape(id)
}

// rowView is one table row.
type rowView struct {
	ID     string
	Status string
	Cells  []string
	URL    string
}

func rowViews(catalog *service.Catalog, resource string, items []model.Row) []rowView {
	_, linkable := catalog.Lookup(resource)
	out := make([]rowView, len(items))
	for i, item := range items {
		out[i] = rowView{ID: item.RowID(), Status: item.RowStatus(), Cells: item.Cells()}
		if linkable && item.RowID() != "" {
			out[i].URL = detailURL(resource, item.RowID())
		}
	}
	return out
}

// filterView is a select filter with its current value.
type filterView struct {
	Key      string
	Label    string
	Options  []string
	Selected string
}

// listView is the data of the list page.
type listView struct {
	Resource   service.Descriptor
	Query      model.ListQuery
	Rows       []rowView
	Total      int
	Pagination uikit.Pagination
	Filters    []filterView
	Error      string
	Loading    bool
	StateURL   string
	LiveURL    string
}

// List handles GET /admin/{resource}.
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	ctrl, rows, ok := h.lists.Get(resource)
	if !ok {
		renderNotFound(w, r, h.renderer, "There is no such section.", redirectAdmin, "Dashboard")
		return
	}
	desc := rows.Descriptor()

	q := listQueryFromRequest(r, desc)
	q.PageSize = ctrl.PageSize()
	if q.Equal(ctrl.Query()) {
		// A page load always shows fresh rows.
		ctrl.Refresh()
	} else {
		ctrl.Apply(q)
	}

	st := h.settle(r.Context(), ctrl)
	if st.Err != nil && isUnauthorized(st.Err) {
		flashError(w, r, h.renderer, redirectLogin, apiclient.UserMessage(st.Err))
		return
	}

	renderPage(w, r, h.renderer, page{
		template: tmplList,
		title:    desc.Title,
		data:     h.listView(desc, st),
		breadcrumbs: []uikit.Breadcrumb{
			{Label: "Dashboard", URL: redirectAdmin},
			{Label: desc.Title, Active: true},
		},
	})
}

func (h *ResourceHandler) settle(ctx context.Context, ctrl *listing.Controller[model.Row]) listing.State[model.Row] {
	ctx, cancel := context.WithTimeout(ctx, settleTimeout)
	defer cancel()
	st, _ := ctrl.Settle(ctx)
	return st
}

func (h *ResourceHandler) listView(desc service.Descriptor, st listing.State[model.Row]) listView {
	v := listView{
		Resource: desc,
		Query:    st.Query,
		Rows:     rowViews(h.catalog, desc.Name, st.Items),
		Total:    st.Total,
		Loading:  st.Loading,
		StateURL: listURL(desc.Name) + "/state",
		LiveURL:  listURL(desc.Name) + "/live",
	}
	v.Pagination = uikit.Paginate(st.Query, st.Total, listURL(desc.Name))
	for _, f := range desc.Filters {
		v.Filters = append(v.Filters, filterView{Key: f.Key, Label: f.Label, Options: f.Options, Selected: st.Query.Filter(f.Key)})
	}
	if st.Err != nil {
		v.Error = apiclient.UserMessage(st.Err)
	}
	return v
}

// listState is the JSON form of a list snapshot.
type listState struct {
	Success    bool              `json:"success"`
	Items      []rowState        `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	PageCount  int               `json:"pageCount"`
	Search     string            `json:"search,omitempty"`
	Status     string            `json:"status,omitempty"`
	Filters    map[string]string `json:"filters,omitempty"`
	Loading    bool              `json:"loading"`
	Error      string            `json:"error,omitempty"`
	Generation uint64            `json:"generation"`
}

type rowState struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	Cells  []string `json:"cells"`
	URL    string   `json:"url,omitempty"`
}

func stateJSON(catalog *service.Catalog, resource string, st listing.State[model.Row]) listState {
	out := listState{
		Success:    st.Err == nil,
		Items:      make([]rowState, 0, len(st.Items)),
		Total:      st.Total,
		Page:       st.Query.Page,
		PageSize:   st.Query.PageSize,
		PageCount:  st.PageCount,
		Search:     st.Query.Search,
		Status:     st.Query.Status,
		Filters:    st.Query.Filters,
		Loading:    st.Loading,
		Generation: st.Generation,
	}
	for _, row := range rowViews(catalog, resource, st.Items) {
		out.Items = append(out.Items, rowState(row))
	}
	if st.Err != nil {
		out.Error = apiclient.UserMessage(st.Err)
	}
	return out
}

// State handles GET /admin/{resource}/state. List parameters in the URL
// are applied first; without them the current query is reported.
func (h *ResourceHandler) State(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	ctrl, rows, ok := h.lists.Get(resource)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "unknown resource")
		return
	}

	if hasListParams(r, rows.Descriptor()) {
		ctrl.Apply(listQueryFromRequest(r, rows.Descriptor()))
	} else if !ctrl.State().Loaded() {
		ctrl.Refresh()
	}

	st := h.settle(r.Context(), ctrl)
	if st.Err != nil && isUnauthorized(st.Err) {
		handleAPIErrorJSON(w, st.Err)
		return
	}
	writeJSON(w, http.StatusOK, stateJSON(h.catalog, resource, st))
}

// fieldView is a label and value on the detail page.
type fieldView struct {
	Label string
	Value string
}

// actionView is a moderation button.
type actionView struct {
	Name        string
	Label       string
	Severity    string
	NeedsReason bool
	URL         string
}

// relatedView is a related table on the detail page.
type relatedView struct {
	Name    string
	Title   string
	Columns []string
	Rows    []rowView
	Total   int
	Error   string
}

// detailView is the data of the detail page.
type detailView struct {
	Resource service.Descriptor
	ID       string
	Label    string
	Status   string
	Fields   []fieldView
	Actions  []actionView
	Related  []relatedView
	ListURL  string
	EditURL  string
	Error    string
}

func (h *ResourceHandler) controller(rows service.Rows, id string) *detail.Controller[model.Row] {
	ctrl := detail.New[model.Row](id, rows.Get, detail.Options{
		Gate:   h.gate,
		Logger: h.logger,
		IsNotFound: func(err error) bool {
			return apiclient.IsKind(err, apiclient.KindNotFound)
		},
	})
	for _, rel := range rows.Descriptor().Related {
		collection := rel.Collection
		ctrl.AddRelated(collection, func(ctx context.Context, id string) (model.PageResult[model.Row], error) {
			return rows.Related(ctx, id, collection)
		})
	}
	return ctrl
}

// Detail handles GET /admin/{resource}/{id}.
func (h *ResourceHandler) Detail(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	id := chi.URLParam(r, "id")
	rows, ok := h.catalog.Lookup(resource)
	if !ok {
		renderNotFound(w, r, h.renderer, "There is no such section.", redirectAdmin, "Dashboard")
		return
	}
	desc := rows.Descriptor()

	st := h.controller(rows, id).Load(r.Context())
	switch {
	case st.NotFound:
		renderNotFound(w, r, h.renderer, fmt.Sprintf("This %s does not exist or was deleted.", desc.Singular), listURL(resource), desc.Title)
		return
	case st.Err != nil && isUnauthorized(st.Err):
		flashError(w, r, h.renderer, redirectLogin, apiclient.UserMessage(st.Err))
		return
	}

	v := h.detailView(desc, st)
	renderPage(w, r, h.renderer, page{
		template: tmplDetail,
		title:    v.Label,
		data:     v,
		breadcrumbs: []uikit.Breadcrumb{
			{Label: "Dashboard", URL: redirectAdmin},
			{Label: desc.Title, URL: listURL(resource)},
			{Label: v.Label, Active: true},
		},
	})
}

func (h *ResourceHandler) detailView(desc service.Descriptor, st detail.State[model.Row]) detailView {
	v := detailView{
		Resource: desc,
		ID:       st.ID,
		Label:    st.ID,
		ListURL:  listURL(desc.Name),
	}
	if desc.EditPath != "" {
		v.EditURL = fmt.Sprintf(desc.EditPath, url.PathEscape(st.ID))
	}
	if st.Err != nil {
		v.Error = apiclient.UserMessage(st.Err)
	}
	if st.Loaded && st.Entity != nil {
		v.Label = entityLabel(st.Entity)
		v.Status = st.Entity.RowStatus()
		cells := st.Entity.Cells()
		for i, col := range desc.Columns {
			if i < len(cells) {
				v.Fields = append(v.Fields, fieldView{Label: col, Value: cells[i]})
			}
		}
		for _, a := range desc.ActionsFor(v.Status) {
			v.Actions = append(v.Actions, actionView{
				Name:        a.Name,
				Label:       a.Label,
				Severity:    string(a.Severity),
				NeedsReason: a.NeedsReason,
				URL:         detailURL(desc.Name, st.ID) + "/actions/" + a.Name,
			})
		}
	}
	for _, rel := range desc.Related {
		c := st.Related[rel.Collection]
		rv := relatedView{
			Name:    rel.Collection,
			Title:   rel.Title,
			Columns: rel.Columns,
			Rows:    rowViews(h.catalog, rel.Collection, c.Items),
			Total:   c.Total,
		}
		if c.Err != nil {
			rv.Error = apiclient.UserMessage(c.Err)
		}
		v.Related = append(v.Related, rv)
	}
	return v
}

// entityLabel names an entity in prompts and titles.
func entityLabel(row model.Row) string {
	if cells := row.Cells(); len(cells) > 0 && strings.TrimSpace(cells[0]) != "" {
		return cells[0]
	}
	return row.RowID()
}

// Action handles POST /admin/{resource}/{id}/actions/{action}. It opens a
// confirmation intent and redirects to it; nothing is sent to the backend
// until the intent is confirmed.
func (h *ResourceHandler) Action(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	id := chi.URLParam(r, "id")
	rows, ok := h.catalog.Lookup(resource)
	if !ok {
		renderNotFound(w, r, h.renderer, "There is no such section.", redirectAdmin, "Dashboard")
		return
	}
	desc := rows.Descriptor()
	back := detailURL(resource, id)

	action, ok := desc.Action(chi.URLParam(r, "action"))
	if !ok {
		flashError(w, r, h.renderer, back, "Unknown action.")
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, back) {
		return
	}
	reason := strings.TrimSpace(r.FormValue("reason"))
	if action.NeedsReason && reason == "" {
		flashError(w, r, h.renderer, back, "Give a reason for this action.")
		return
	}
	if len(reason) > maxReasonLen {
		flashError(w, r, h.renderer, back, fmt.Sprintf("The reason must be at most %d characters.", maxReasonLen))
		return
	}

	ctrl := h.controller(rows, id)
	st := ctrl.Load(r.Context())
	switch {
	case st.NotFound:
		renderNotFound(w, r, h.renderer, fmt.Sprintf("This %s does not exist or was deleted.", desc.Singular), listURL(resource), desc.Title)
		return
	case st.Err != nil:
		handleAPIError(w, r, h.renderer, h.logger, st.Err, back)
		return
	}
	if !action.AppliesTo(st.Entity.RowStatus()) {
		flashError(w, r, h.renderer, back, fmt.Sprintf("%s is not available for a %s %s.", action.Label, st.Entity.RowStatus(), desc.Singular))
		return
	}

	label := entityLabel(st.Entity)
	title, message := action.Prompt(desc.Singular, label)
	if reason != "" {
		message += " Reason: " + reason
	}
	done := back
	if action.Delete {
		done = listURL(resource)
	}
	operator := actor(r)

	intent, err := ctrl.Request(detail.Mutation[model.Row]{
		Title:    title,
		Message:  message,
		Severity: action.Severity,
		Removes:  action.Delete,
		Meta: map[string]string{
			metaReturn:  back,
			metaDone:    done,
			metaSuccess: fmt.Sprintf("%s: %s done.", label, strings.ToLower(action.Label)),
		},
		Run: func(ctx context.Context) (*model.Row, error) {
			var updated model.Row
			err := h.lists.Mutate(ctx, resource, func(ctx context.Context) error {
				var err error
				updated, err = rows.Apply(ctx, id, action, reason)
				return err
			})
			if err != nil {
				return nil, err
			}
			h.logger.Info("moderation action applied",
				"category", model.AuditCategoryModeration,
				"actor", operator,
				"resource", resource,
				"id", id,
				"action", action.Name,
				"reason", reason,
			)
			if updated == nil {
				return nil, nil
			}
			return &updated, nil
		},
	})
	if err != nil {
		logAndInternalError(w, "failed to open confirmation", "resource", resource, "id", id, "error", err)
		return
	}

	http.Redirect(w, r, RouteAdmin+"/confirm/"+intent.ID, http.StatusSeeOther)
}
