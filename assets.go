// Package kjconnect provides embedded assets for production builds.
package kjconnect

import "embed"

// In dev mode templates and static files are read from disk so edits show on reload.

//go:embed all:frontend/static
var StaticFS embed.FS

//go:embed all:frontend/templates
var TemplateFS embed.FS
