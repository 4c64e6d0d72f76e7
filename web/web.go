// Package web holds the page templates served by the front-end.
package web

import "embed"

// Templates contains every page template under templates/.
//
//go:embed templates/*.html
var Templates embed.FS
