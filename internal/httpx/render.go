package httpx

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
)

// captureWriter buffers template output and any status the template might set.
type captureWriter struct {
	buf    bytes.Buffer
	header http.Header
	status int
}

func newCaptureWriter() *captureWriter               { return &captureWriter{header: make(http.Header)} }
func (c *captureWriter) Header() http.Header         { return c.header }
func (c *captureWriter) Write(b []byte) (int, error) { return c.buf.Write(b) }
func (c *captureWriter) WriteHeader(status int)      { c.status = status }

// renderTemplate renders an HTML template with standard security/cache headers.
// Output is buffered so a failing Execute yields a clean 500 with a fallback
// body instead of a truncated page. status is used unless the template set
// one explicitly.
func renderTemplate(w http.ResponseWriter, tmpl TemplateRenderer, status int, data any) {
	w.Header().Set("Cache-Control", "no-store")
	cw := newCaptureWriter()
	if err := tmpl.Execute(cw, data); err != nil {
		// template internals are not logged
		slog.Error("render", "domain", "ui", "action", "error")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("template error"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if cw.status != 0 {
		status = cw.status
	}
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if cw.buf.Len() > 0 {
		// bytes come solely from html/template (auto-escaped)
		_, _ = io.Copy(w, bytes.NewReader(cw.buf.Bytes()))
	}
}
