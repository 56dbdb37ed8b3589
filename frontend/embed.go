package frontend

import "embed"

// StaticFiles holds the built single page app
//
//go:embed dist
var StaticFiles embed.FS
