// Package web embeds the HTML templates and static assets of the catalogue.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"time"

	"github.com/stuproj/projectshelf/internal/modules/model"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the asset tree rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

var funcs = template.FuncMap{
	"fmtTime": func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
	"isLink":  func(c model.CodeRef) bool { return c.IsLink() },
	"isFile":  func(c model.CodeRef) bool { return c.IsFile() },
}

// Templates parses every page template. Page templates are addressed by file
// name, e.g. "index.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}
