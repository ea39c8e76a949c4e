// Package web embeds the page templates and static assets.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html static/*
var files embed.FS

// Page names accepted by ParsePages
const (
	PageListings = "index.html"
	PageSelling  = "selling.html"
)

// ParsePages parses every page together with the shared layout. Each page
// is its own template set so their "content" blocks do not collide.
func ParsePages(funcs template.FuncMap) (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{PageListings, PageSelling} {
		t, err := template.New("base.html").Funcs(funcs).ParseFS(files, "templates/base.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// Static serves the embedded assets; mount it under /static/
func Static() http.Handler {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServerFS(sub)
}
