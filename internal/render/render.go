// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render executes the console's html/template pages.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"maps"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/staydesk/internal/session"
	"github.com/olegiv/staydesk/internal/uikit"
)

// Session keys for flash messages.
const (
	flashKey     = "flash"
	flashTypeKey = "flash_type"
)

// Flash types understood by the layout.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// NavItem is a link in the admin sidebar.
type NavItem struct {
	Label  string
	URL    string
	Active bool
}

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	money          *uikit.Money
	nav            []NavItem
	now            func() time.Time
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	// Money formats finance figures; nil falls back to plain numbers.
	Money *uikit.Money
	Nav   []NavItem
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		money:          cfg.Money,
		nav:            cfg.Nav,
		now:            time.Now,
	}

	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}

	return r, nil
}

// parseTemplates parses all templates from the filesystem. Admin pages get
// the admin layout, auth pages only the base layout.
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := templateFiles(templatesFS, "partials")
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	groups := []struct {
		dir     string
		layouts []string
	}{
		{dir: "admin", layouts: []string{"layouts/base.html", "layouts/admin.html"}},
		{dir: "auth", layouts: []string{"layouts/base.html"}},
	}

	for _, g := range groups {
		pages, err := templateFiles(templatesFS, g.dir)
		if err != nil {
			return fmt.Errorf("getting %s templates: %w", g.dir, err)
		}
		for _, page := range pages {
			name := g.dir + "/" + strings.TrimSuffix(path.Base(page), ".html")

			files := append([]string{}, g.layouts...)
			files = append(files, partials...)
			files = append(files, page)

			tmpl, err := template.New("").Funcs(r.TemplateFuncs()).ParseFS(templatesFS, files...)
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", name, err)
			}
			r.templates[name] = tmpl
		}
	}

	return nil
}

// templateFiles returns all .html files in a directory. A missing
// directory yields no files.
func templateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		return nil, nil
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// Has reports whether a page template is registered.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// TemplateFuncs returns the uikit functions plus money formatting bound to
// the configured currency.
func (r *Renderer) TemplateFuncs() template.FuncMap {
	funcs := uikit.TemplateFuncs()
	maps.Copy(funcs, template.FuncMap{
		"money": func(amount float64) string {
			if r.money == nil {
				return fmt.Sprintf("%.2f", amount)
			}
			return r.money.Format(amount)
		},
		"number": func(n int) string {
			if r.money == nil {
				return fmt.Sprint(n)
			}
			return r.money.Number(n)
		},
		"currency": func() string {
			if r.money == nil {
				return ""
			}
			return r.money.Code()
		},
	})
	return funcs
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Admin       *session.Identity
	Nav         []NavItem
	Breadcrumbs []uikit.Breadcrumb
	Data        any
	Flash       string
	FlashType   string
	CurrentPath string
	CurrentYear int
}

// Render renders a page with status 200.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus renders a page with the given status code.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = r.now().Year()
	data.CurrentPath = req.URL.Path
	if data.Nav == nil {
		data.Nav = r.navFor(req.URL.Path)
	}

	if r.sessionManager != nil {
		if flash := r.sessionManager.PopString(req.Context(), flashKey); flash != "" {
			data.Flash = flash
			data.FlashType = r.sessionManager.PopString(req.Context(), flashTypeKey)
			if data.FlashType == "" {
				data.FlashType = FlashInfo
			}
		}
	}

	// Render to buffer first to catch errors
	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

// navFor marks the sidebar entry matching the current path. The longest
// matching prefix wins so /admin does not shadow /admin/hotels.
func (r *Renderer) navFor(current string) []NavItem {
	if len(r.nav) == 0 {
		return nil
	}
	items := make([]NavItem, len(r.nav))
	copy(items, r.nav)

	best, bestLen := -1, 0
	for i, item := range items {
		if current == item.URL || strings.HasPrefix(current, item.URL+"/") {
			if len(item.URL) > bestLen {
				best, bestLen = i, len(item.URL)
			}
		}
	}
	if best >= 0 {
		items[best].Active = true
	}
	return items
}

// SetFlash sets a flash message in the session.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager != nil {
		r.sessionManager.Put(req.Context(), flashKey, message)
		r.sessionManager.Put(req.Context(), flashTypeKey, flashType)
	}
}
