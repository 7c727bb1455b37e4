// Package ui embeds the HTML templates and static assets of the web server.
package ui

import "embed"

//go:embed templates
var Templates embed.FS

//go:embed static
var Static embed.FS
