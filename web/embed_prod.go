//go:build prod

package web

import (
	"io/fs"
	"log/slog"
)

// Assets serves the files compiled into the binary.
var Assets fs.FS = FS

func init() {
	slog.Info("serving web assets from embedded filesystem", "build_tag", "prod")
}
