// Package web holds the landing page templates and static assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"strings"
)

// FS contains the embedded web templates (index, partials) and static assets.
//
//go:embed *.tmpl.html css/* js/*
var FS embed.FS

// IndexTemplate is the name of the landing page template.
const IndexTemplate = "index"

// Templates parses every *.tmpl.html file found at the root of fsys.
func Templates(fsys fs.FS) (*template.Template, error) {
	return template.New("web").ParseFS(fsys, "*.tmpl.html")
}

// staticDirs lists the only directories exposed under /static/.
var staticDirs = []string{"css/", "js/"}

// staticFS restricts an fs.FS to the static asset directories so templates
// and Go sources next to them are never served.
type staticFS struct{ fsys fs.FS }

// Static wraps fsys so only css/ and js/ entries can be opened.
func Static(fsys fs.FS) fs.FS { return staticFS{fsys: fsys} }

func (s staticFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	for _, dir := range staticDirs {
		if strings.HasPrefix(name, dir) || name+"/" == dir {
			return s.fsys.Open(name)
		}
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}
