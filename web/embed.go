// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package web embeds the console's HTML templates.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:templates
var Templates embed.FS

// TemplatesFS returns the templates rooted at the templates directory.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(Templates, "templates")
	if err != nil {
		// The directory is embedded at build time.
		panic(err)
	}
	return sub
}
