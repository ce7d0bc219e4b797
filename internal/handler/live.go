// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/olegiv/staydesk/internal/listing"
	"github.com/olegiv/staydesk/internal/model"
	"github.com/olegiv/staydesk/internal/service"
)

// Websocket timings.
const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = (livePongWait * 9) / 10
	liveMaxMessage = 4 << 10
)

// LiveHandler pushes list states over a websocket. Filter messages from
// the browser go through the list controller, so typing in the search box
// is debounced exactly like the HTML form.
type LiveHandler struct {
	lists    *Lists
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewLiveHandler creates a LiveHandler. The upgrader keeps gorilla's
// same-origin check.
func NewLiveHandler(lists *Lists, logger *slog.Logger) *LiveHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LiveHandler{
		lists:  lists,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// liveCommand is a message from the browser.
type liveCommand struct {
	Type    string            `json:"type"`
	Search  *string           `json:"search,omitempty"`
	Status  *string           `json:"status,omitempty"`
	Filters map[string]string `json:"filters,omitempty"`
	Page    int               `json:"page,omitempty"`
}

// liveMessage is a message to the browser.
type liveMessage struct {
	Type    string     `json:"type"`
	State   *listState `json:"state,omitempty"`
	Message string     `json:"message,omitempty"`
	Code    string     `json:"code,omitempty"`
}

// Live handles GET /admin/{resource}/live.
//
// Commands: {"type":"filter","search":"…","status":"…","filters":{…}},
// {"type":"page","page":2}, {"type":"refresh"} and {"type":"ping"}.
// Every state change of the list is sent as {"type":"state","state":{…}}.
func (h *LiveHandler) Live(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	ctrl, rows, ok := h.lists.Get(resource)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "unknown resource")
		return
	}
	desc := rows.Descriptor()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "resource", resource, "error", err)
		return
	}
	defer func() { _ = conn.Close() }()
	conn.SetReadLimit(liveMaxMessage)

	// Only the newest state matters; a slow client skips intermediate ones.
	states := make(chan listing.State[model.Row], 1)
	unsubscribe := ctrl.Subscribe(func(st listing.State[model.Row]) {
		select {
		case states <- st:
		default:
			select {
			case <-states:
			default:
			}
			select {
			case states <- st:
			default:
			}
		}
	})
	defer unsubscribe()

	var writeMu sync.Mutex
	send := func(msg liveMessage) bool {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
		return conn.WriteJSON(msg) == nil
	}

	done := make(chan struct{})
	defer close(done)
	go h.writeLoop(conn, resource, states, done, send)

	// Initial snapshot.
	st := ctrl.State()
	if !st.Loaded() {
		ctrl.Refresh()
	} else {
		send(liveMessage{Type: "state", State: h.state(resource, st)})
	}

	_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	for {
		var cmd liveCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("live connection closed", "resource", resource, "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(livePongWait))

		switch strings.ToLower(strings.TrimSpace(cmd.Type)) {
		case "filter":
			applyFilters(ctrl, desc, cmd)
		case "page":
			ctrl.SetPage(cmd.Page)
		case "refresh":
			ctrl.Refresh()
		case "ping":
			send(liveMessage{Type: "pong"})
		default:
			send(liveMessage{Type: "error", Message: "unknown command", Code: "unknown_command"})
		}
	}
}

func (h *LiveHandler) state(resource string, st listing.State[model.Row]) *listState {
	s := stateJSON(h.lists.catalog, resource, st)
	return &s
}

func (h *LiveHandler) writeLoop(conn *websocket.Conn, resource string, states <-chan listing.State[model.Row], done <-chan struct{}, send func(liveMessage) bool) {
	ticker := time.NewTicker(livePingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case st := <-states:
			if !send(liveMessage{Type: "state", State: h.state(resource, st)}) {
				return
			}
		case <-ticker.C:
			// WriteControl may run concurrently with WriteJSON.
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait)); err != nil {
				return
			}
		}
	}
}

// applyFilters routes a filter command through the debounced setters.
// Unknown statuses and filter values are ignored.
func applyFilters(ctrl *listing.Controller[model.Row], desc service.Descriptor, cmd liveCommand) {
	if cmd.Search != nil {
		ctrl.SetSearch(cleanSearch(*cmd.Search))
	}
	if cmd.Status != nil && (*cmd.Status == "" || slices.Contains(desc.Statuses, *cmd.Status)) {
		ctrl.SetStatus(*cmd.Status)
	}
	for key, value := range cmd.Filters {
		f, ok := desc.Filter(key)
		if !ok {
			continue
		}
		if value == "" || slices.Contains(f.Options, value) {
			ctrl.SetFilter(key, value)
		}
	}
}
