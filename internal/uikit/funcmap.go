// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package uikit provides template helpers, pagination logic and formatting
// shared by the console's HTML views.
package uikit

import (
	"encoding/json"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"
)

// TemplateFuncs returns a template.FuncMap with pure helper functions.
//
// Callers can merge project-specific functions on top:
//
//	funcs := uikit.TemplateFuncs()
//	funcs["money"] = money.Format
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		// String functions
		"lower":     strings.ToLower,
		"upper":     strings.ToUpper,
		"hasPrefix": strings.HasPrefix,
		"truncate":  Truncate,
		"humanize":  Humanize,
		"contains": func(collection []string, element string) bool {
			for _, s := range collection {
				if s == element {
					return true
				}
			}
			return false
		},

		// Math
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"seq": func(start, end int) []int {
			var result []int
			for i := start; i <= end; i++ {
				result = append(result, i)
			}
			return result
		},

		// Time
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"formatDateTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006 3:04 PM")
		},
		"isoDate": func(t time.Time) string {
			return t.Format(time.DateOnly)
		},

		// Status badges
		"statusClass":   StatusClass,
		"severityClass": SeverityClass,

		// Markdown
		"markdown": func(s string) template.HTML {
			out, err := RenderMarkdown(s)
			if err != nil {
				return SanitizeHTML(s)
			}
			return out
		},

		// JSON
		"toJSON": func(v any) template.JS {
			b, err := json.Marshal(v)
			if err != nil {
				return "null"
			}
			return template.JS(b)
		},

		// Data structures
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			dict := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				dict[key] = values[i+1]
			}
			return dict
		},
	}
}

// Truncate shortens s to at most length runes, appending "...".
func Truncate(s string, length int) string {
	if utf8.RuneCountInString(s) <= length {
		return s
	}
	return string([]rune(s)[:length]) + "..."
}

// Humanize turns an identifier such as "legal-pages" or "payment_status"
// into "Legal pages" or "Payment status".
func Humanize(s string) string {
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return strings.ToUpper(string(r)) + s[size:]
}

// StatusClass maps an entity status to a badge class.
func StatusClass(status string) string {
	switch status {
	case "approved", "active", "confirmed", "completed", "resolved", "paid", "verified", "published", "sent":
		return "success"
	case "pending", "new", "read", "draft", "scheduled":
		return "warning"
	case "rejected", "blocked", "suspended", "cancelled", "inactive", "refunded", "failed", "error":
		return "danger"
	default:
		return "muted"
	}
}

// SeverityClass maps a confirmation severity to a button class.
func SeverityClass(severity string) string {
	switch severity {
	case "danger":
		return "btn-danger"
	case "success":
		return "btn-success"
	default:
		return "btn-warning"
	}
}
