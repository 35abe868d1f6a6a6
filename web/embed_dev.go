//go:build !prod

package web

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
)

// Assets is a filesystem rooted at the web/ package directory, independent
// of the process working directory. This makes both `go run ./cmd/waitlist`
// and `go test ./web` pick up template and CSS edits without a rebuild.
var Assets fs.FS

func init() {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("runtime.Caller failed in web/embed_dev.go")
	}
	Assets = os.DirFS(filepath.Dir(file))
}
