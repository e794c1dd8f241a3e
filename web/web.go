// Package web holds the funnel landing page markup.
package web

import _ "embed"

// IndexHTML is the landing page served at the site root
//
//go:embed index.html
var IndexHTML []byte
