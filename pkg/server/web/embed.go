// Package web provides the embedded page and static assets of the share viewer widget.
package web

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed index.html
var pageFS embed.FS

//go:embed static
var staticFS embed.FS

// PageTemplate is the pre-compiled widget page.
var PageTemplate = template.Must(template.New("index.html").ParseFS(pageFS, "index.html"))

// Static returns the static assets rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
